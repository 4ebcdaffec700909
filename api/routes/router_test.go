package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	article "github.com/avpro-events/avpro-backend/internal/articles"
	"github.com/avpro-events/avpro-backend/pkg/config"
	"github.com/avpro-events/avpro-backend/pkg/logger"
)

type stubArticleService struct {
	listed bool
}

func (s *stubArticleService) Create(_ context.Context, _ article.CreateArticleInput) (*article.ArticleDTO, error) {
	panic("unimplemented")
}

func (s *stubArticleService) Update(_ context.Context, _ uuid.UUID, _ article.UpdateArticleInput) (*article.ArticleDTO, error) {
	panic("unimplemented")
}

func (s *stubArticleService) Delete(_ context.Context, _ uuid.UUID) error {
	panic("unimplemented")
}

func (s *stubArticleService) Get(_ context.Context, _ uuid.UUID) (*article.ArticleDTO, error) {
	panic("unimplemented")
}

func (s *stubArticleService) List(_ context.Context, _ article.ListArticlesInput) (*article.ArticleListResult, error) {
	s.listed = true
	return &article.ArticleListResult{Items: []article.ArticleDTO{}}, nil
}

func newTestRouter(articles article.Service) http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Dependencies{
		Config:   cfg,
		Logger:   logg,
		Articles: articles,
	})
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter(&stubArticleService{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health/live, got %d", rec.Code)
	}
	if env := rec.Header().Get("X-AVPro-Env"); env != "test" {
		t.Fatalf("expected env header, got %q", env)
	}
	if reqID := rec.Header().Get("X-Request-Id"); reqID == "" {
		t.Fatalf("expected request id header to be set")
	}
}

func TestRouterRoutesArticleList(t *testing.T) {
	stub := &stubArticleService{}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/articulos", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from article list, got %d: %s", rec.Code, rec.Body.String())
	}
	if !stub.listed {
		t.Fatalf("expected list handler invoked")
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(&stubArticleService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/desconocido", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown route, got %d", rec.Code)
	}
}
