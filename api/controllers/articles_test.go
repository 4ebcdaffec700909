package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	article "github.com/avpro-events/avpro-backend/internal/articles"
	pkgerrors "github.com/avpro-events/avpro-backend/pkg/errors"
	"github.com/avpro-events/avpro-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

type stubArticleService struct {
	created   *article.CreateArticleInput
	deleted   uuid.UUID
	deleteErr error
}

func (s *stubArticleService) Create(_ context.Context, input article.CreateArticleInput) (*article.ArticleDTO, error) {
	s.created = &input
	return &article.ArticleDTO{ID: uuid.New(), Code: input.Code, Description: input.Description}, nil
}

func (s *stubArticleService) Update(_ context.Context, _ uuid.UUID, _ article.UpdateArticleInput) (*article.ArticleDTO, error) {
	panic("unimplemented")
}

func (s *stubArticleService) Delete(_ context.Context, articleID uuid.UUID) error {
	s.deleted = articleID
	return s.deleteErr
}

func (s *stubArticleService) Get(_ context.Context, _ uuid.UUID) (*article.ArticleDTO, error) {
	panic("unimplemented")
}

func (s *stubArticleService) List(_ context.Context, _ article.ListArticlesInput) (*article.ArticleListResult, error) {
	panic("unimplemented")
}

func TestArticleCreate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		stub := &stubArticleService{}
		body := `{"codigo":"PRJ-001","descripcion":"Proyector 4K","tipo":"equipo","valor":350.5,"cantidad_total":8}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/articulos", strings.NewReader(body))
		rec := httptest.NewRecorder()

		ArticleCreate(stub, testLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.created == nil || stub.created.Code != "PRJ-001" {
			t.Fatalf("expected service invoked with codigo PRJ-001, got %+v", stub.created)
		}
		if stub.created.TotalQty != 8 {
			t.Fatalf("expected cantidad_total 8, got %d", stub.created.TotalQty)
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		stub := &stubArticleService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/articulos", strings.NewReader(`{"descripcion":"sin codigo"}`))
		rec := httptest.NewRecorder()

		ArticleCreate(stub, testLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if stub.created != nil {
			t.Fatalf("expected service not invoked on validation failure")
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		stub := &stubArticleService{}
		body := `{"codigo":"PRJ-001","descripcion":"x","tipo":"equipo","sku":"oops"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/articulos", strings.NewReader(body))
		rec := httptest.NewRecorder()

		ArticleCreate(stub, testLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
		}
	})

	t.Run("invalid tipo", func(t *testing.T) {
		stub := &stubArticleService{}
		body := `{"codigo":"PRJ-001","descripcion":"x","tipo":"vehiculo","cantidad_total":1}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/articulos", strings.NewReader(body))
		rec := httptest.NewRecorder()

		ArticleCreate(stub, testLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid tipo, got %d", rec.Code)
		}
	})
}

func TestArticleDelete(t *testing.T) {
	articleID := uuid.New()

	makeRequest := func(stub *stubArticleService, rawID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/articulos/"+rawID, nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("articuloId", rawID)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		ArticleDelete(stub, testLogger()).ServeHTTP(rec, req)
		return rec
	}

	t.Run("success", func(t *testing.T) {
		stub := &stubArticleService{}
		rec := makeRequest(stub, articleID.String())
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if stub.deleted != articleID {
			t.Fatalf("expected delete invoked with %s, got %s", articleID, stub.deleted)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := makeRequest(&stubArticleService{}, "not-a-uuid")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
		}
	})

	t.Run("referenced article", func(t *testing.T) {
		stub := &stubArticleService{deleteErr: pkgerrors.New(pkgerrors.CodeInUse, "articulo is referenced by eventos")}
		rec := makeRequest(stub, articleID.String())
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409 for referenced article, got %d", rec.Code)
		}
	})
}
