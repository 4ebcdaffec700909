package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	pkgerrors "github.com/avpro-events/avpro-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const cacheTTL = 30 * time.Second

// Summary is the aggregate payload backing the dashboard page. The keys
// mirror what the admin UI already renders.
type Summary struct {
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	UpcomingEvents  int             `json:"upcomingEvents"`
	LowStockItems   int             `json:"lowStockItems"`
	LowStockDetail  []LowStockItem  `json:"lowStockDetail"`
	EventsByMonth   []MonthCount    `json:"eventsByMonth"`
	IncomeByCompany []CompanyIncome `json:"incomeByCompany"`
	TopArticles     []ArticleDemand `json:"topArticles"`
}

// LowStockItem is an active article running low on free units.
type LowStockItem struct {
	ArticleID    uuid.UUID `json:"articulo_id"`
	Code         string    `json:"codigo"`
	Description  string    `json:"descripcion"`
	AvailableQty int       `json:"cantidad_disponible"`
}

// MonthCount counts events per short month name. Events from different
// years land in the same bucket; the UI shows a single twelve-month axis.
type MonthCount struct {
	Month string `json:"mes"`
	Total int    `json:"total"`
}

// CompanyIncome is the gross revenue attributed to one client company.
type CompanyIncome struct {
	Company string          `json:"compania"`
	Total   decimal.Decimal `json:"total"`
}

// ArticleDemand ranks articles by units booked across all events.
type ArticleDemand struct {
	Description string `json:"articulo_descripcion"`
	Units       int    `json:"cantidad"`
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

// Service builds the dashboard summary.
type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	repo              Repository
	cache             cacheStore
	lowStockThreshold int
	topArticlesLimit  int
	now               func() time.Time
}

// NewService constructs the dashboard aggregator. The cache is optional.
func NewService(repo Repository, cache cacheStore, lowStockThreshold, topArticlesLimit int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	if lowStockThreshold < 0 {
		return nil, fmt.Errorf("low stock threshold cannot be negative")
	}
	if topArticlesLimit <= 0 {
		return nil, fmt.Errorf("top articles limit must be positive")
	}
	return &service{
		repo:              repo,
		cache:             cache,
		lowStockThreshold: lowStockThreshold,
		topArticlesLimit:  topArticlesLimit,
		now:               time.Now,
	}, nil
}

// Summary aggregates revenue, upcoming load, low stock, and demand. The
// result is cached briefly since the page is polled.
func (s *service) Summary(ctx context.Context) (*Summary, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, s.cache.CacheKey("dashboard", "summary")); err == nil && cached != "" {
			var summary Summary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list events for dashboard")
	}
	articles, err := s.repo.ListActiveArticles(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list articles for dashboard")
	}

	now := s.now()
	summary := &Summary{
		TotalRevenue:    decimal.Zero,
		LowStockDetail:  []LowStockItem{},
		EventsByMonth:   []MonthCount{},
		IncomeByCompany: []CompanyIncome{},
		TopArticles:     []ArticleDemand{},
	}

	monthTotals := map[time.Month]int{}
	companyTotals := map[string]decimal.Decimal{}
	companyOrder := []string{}
	articleUnits := map[string]int{}
	articleOrder := []string{}

	for _, event := range events {
		summary.TotalRevenue = summary.TotalRevenue.Add(event.GrossTotal)
		if event.Date.After(now) {
			summary.UpcomingEvents++
		}
		monthTotals[event.Date.Month()]++

		if _, seen := companyTotals[event.Company]; !seen {
			companyOrder = append(companyOrder, event.Company)
			companyTotals[event.Company] = decimal.Zero
		}
		companyTotals[event.Company] = companyTotals[event.Company].Add(event.GrossTotal)

		for _, detail := range event.Details {
			description := detail.ArticleID.String()
			if detail.Article != nil {
				description = detail.Article.Description
			}
			if _, seen := articleUnits[description]; !seen {
				articleOrder = append(articleOrder, description)
			}
			articleUnits[description] += detail.Qty
		}
	}

	for month := time.January; month <= time.December; month++ {
		if total, ok := monthTotals[month]; ok {
			summary.EventsByMonth = append(summary.EventsByMonth, MonthCount{
				Month: month.String()[:3],
				Total: total,
			})
		}
	}

	for _, company := range companyOrder {
		summary.IncomeByCompany = append(summary.IncomeByCompany, CompanyIncome{
			Company: company,
			Total:   companyTotals[company],
		})
	}
	sort.SliceStable(summary.IncomeByCompany, func(i, j int) bool {
		return summary.IncomeByCompany[i].Total.GreaterThan(summary.IncomeByCompany[j].Total)
	})

	for _, description := range articleOrder {
		summary.TopArticles = append(summary.TopArticles, ArticleDemand{
			Description: description,
			Units:       articleUnits[description],
		})
	}
	// Stable: articles tied on units keep first-seen order.
	sort.SliceStable(summary.TopArticles, func(i, j int) bool {
		return summary.TopArticles[i].Units > summary.TopArticles[j].Units
	})
	if len(summary.TopArticles) > s.topArticlesLimit {
		summary.TopArticles = summary.TopArticles[:s.topArticlesLimit]
	}

	for _, article := range articles {
		if article.AvailableQty < s.lowStockThreshold {
			summary.LowStockDetail = append(summary.LowStockDetail, LowStockItem{
				ArticleID:    article.ID,
				Code:         article.Code,
				Description:  article.Description,
				AvailableQty: article.AvailableQty,
			})
		}
	}
	// The stat card renders a plain number; the detail list backs the drill-in.
	summary.LowStockItems = len(summary.LowStockDetail)

	if s.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			_ = s.cache.Set(ctx, s.cache.CacheKey("dashboard", "summary"), string(raw), cacheTTL)
		}
	}
	return summary, nil
}
