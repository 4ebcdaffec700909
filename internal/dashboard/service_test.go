package dashboard

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/avpro-events/avpro-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubRepo struct {
	events   []models.Event
	articles []models.Article
}

func (s *stubRepo) ListEvents(context.Context) ([]models.Event, error) {
	return s.events, nil
}

func (s *stubRepo) ListActiveArticles(context.Context) ([]models.Article, error) {
	return s.articles, nil
}

func fixedNow() time.Time {
	return time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func newSummaryService(t *testing.T, repo *stubRepo) *service {
	t.Helper()
	svc, err := NewService(repo, nil, 5, 5)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	typed := svc.(*service)
	typed.now = fixedNow
	return typed
}

func eventWith(code, company string, date time.Time, gross int64, details ...models.EventDetail) models.Event {
	return models.Event{
		ID:         uuid.New(),
		Code:       code,
		Company:    company,
		Date:       date,
		GrossTotal: decimal.NewFromInt(gross),
		Details:    details,
	}
}

func detailFor(description string, qty int) models.EventDetail {
	articleID := uuid.New()
	return models.EventDetail{
		ID:        uuid.New(),
		ArticleID: articleID,
		Qty:       qty,
		Article:   &models.Article{ID: articleID, Description: description},
	}
}

func TestSummaryRevenueAndUpcoming(t *testing.T) {
	repo := &stubRepo{
		events: []models.Event{
			eventWith("EVT-1", "Acme", time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC), 1000),
			eventWith("EVT-2", "Acme", time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC), 500),
			eventWith("EVT-3", "Beta", time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), 250),
		},
	}
	svc := newSummaryService(t, repo)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.TotalRevenue.Equal(decimal.NewFromInt(1750)) {
		t.Fatalf("expected revenue 1750, got %s", summary.TotalRevenue)
	}
	if summary.UpcomingEvents != 2 {
		t.Fatalf("expected 2 upcoming events, got %d", summary.UpcomingEvents)
	}
}

func TestSummaryGroupsMonthsAcrossYears(t *testing.T) {
	repo := &stubRepo{
		events: []models.Event{
			eventWith("EVT-1", "Acme", time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC), 0),
			eventWith("EVT-2", "Acme", time.Date(2026, time.May, 20, 0, 0, 0, 0, time.UTC), 0),
			eventWith("EVT-3", "Acme", time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC), 0),
		},
	}
	svc := newSummaryService(t, repo)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := []MonthCount{{Month: "Jan", Total: 1}, {Month: "May", Total: 2}}
	if len(summary.EventsByMonth) != len(want) {
		t.Fatalf("expected %d buckets, got %+v", len(want), summary.EventsByMonth)
	}
	for i, bucket := range want {
		if summary.EventsByMonth[i] != bucket {
			t.Fatalf("expected bucket %+v at %d, got %+v", bucket, i, summary.EventsByMonth[i])
		}
	}
}

func TestSummaryIncomeByCompanySortedDesc(t *testing.T) {
	repo := &stubRepo{
		events: []models.Event{
			eventWith("EVT-1", "Beta", time.Now(), 200),
			eventWith("EVT-2", "Acme", time.Now(), 900),
			eventWith("EVT-3", "Beta", time.Now(), 300),
		},
	}
	svc := newSummaryService(t, repo)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary.IncomeByCompany) != 2 {
		t.Fatalf("expected 2 companies, got %+v", summary.IncomeByCompany)
	}
	if summary.IncomeByCompany[0].Company != "Acme" || !summary.IncomeByCompany[0].Total.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected Acme first with 900, got %+v", summary.IncomeByCompany[0])
	}
	if summary.IncomeByCompany[1].Company != "Beta" || !summary.IncomeByCompany[1].Total.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected Beta second with 500, got %+v", summary.IncomeByCompany[1])
	}
}

func TestSummaryTopArticlesLimitAndStableTies(t *testing.T) {
	repo := &stubRepo{
		events: []models.Event{
			eventWith("EVT-1", "Acme", time.Now(), 0,
				detailFor("Proyector", 4),
				detailFor("Microfono", 4),
				detailFor("Pantalla", 9),
				detailFor("Truss", 1),
				detailFor("Camara", 2),
				detailFor("Luz LED", 3),
			),
		},
	}
	svc := newSummaryService(t, repo)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary.TopArticles) != 5 {
		t.Fatalf("expected top list capped at 5, got %d", len(summary.TopArticles))
	}
	if summary.TopArticles[0].Description != "Pantalla" {
		t.Fatalf("expected Pantalla first, got %+v", summary.TopArticles[0])
	}
	// Proyector and Microfono tie on 4; first-seen order wins.
	if summary.TopArticles[1].Description != "Proyector" || summary.TopArticles[2].Description != "Microfono" {
		t.Fatalf("expected stable tie order, got %+v", summary.TopArticles[1:3])
	}
	for _, entry := range summary.TopArticles {
		if entry.Description == "Truss" {
			t.Fatalf("expected lowest demand article cut from top 5")
		}
	}
}

func TestSummaryLowStockOnlyBelowThreshold(t *testing.T) {
	repo := &stubRepo{
		articles: []models.Article{
			{ID: uuid.New(), Code: "A-1", Description: "ok", AvailableQty: 5},
			{ID: uuid.New(), Code: "A-2", Description: "low", AvailableQty: 4},
			{ID: uuid.New(), Code: "A-3", Description: "empty", AvailableQty: 0},
		},
	}
	svc := newSummaryService(t, repo)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.LowStockItems != 2 {
		t.Fatalf("expected low stock count 2, got %d", summary.LowStockItems)
	}
	if len(summary.LowStockDetail) != 2 {
		t.Fatalf("expected 2 low stock entries, got %+v", summary.LowStockDetail)
	}
	for _, item := range summary.LowStockDetail {
		if item.AvailableQty >= 5 {
			t.Fatalf("item %s should be below threshold", item.Code)
		}
	}
}

func TestSummaryLowStockItemsMarshalsAsNumber(t *testing.T) {
	repo := &stubRepo{
		articles: []models.Article{
			{ID: uuid.New(), Code: "A-2", Description: "low", AvailableQty: 2},
		},
	}
	svc := newSummaryService(t, repo)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("marshal summary: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	count, ok := payload["lowStockItems"].(float64)
	if !ok {
		t.Fatalf("expected lowStockItems to be a number, got %T", payload["lowStockItems"])
	}
	if count != 1 {
		t.Fatalf("expected lowStockItems 1, got %v", count)
	}
	if _, ok := payload["lowStockDetail"].([]any); !ok {
		t.Fatalf("expected lowStockDetail list, got %T", payload["lowStockDetail"])
	}
}
