package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avpro-events/avpro-backend/internal/events/reservation"
	"github.com/avpro-events/avpro-backend/pkg/db"
	"github.com/avpro-events/avpro-backend/pkg/db/models"
	"github.com/avpro-events/avpro-backend/pkg/enums"
	pkgerrors "github.com/avpro-events/avpro-backend/pkg/errors"
	"github.com/avpro-events/avpro-backend/pkg/metrics"
	"github.com/avpro-events/avpro-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes event ledger operations. Every write validates the full
// line set against current stock and only then commits, inside one
// transaction.
type Service interface {
	Create(ctx context.Context, input CreateEventInput) (*EventDTO, error)
	Update(ctx context.Context, eventID uuid.UUID, input UpdateEventInput) (*EventDTO, error)
	Delete(ctx context.Context, eventID uuid.UUID) error
	Get(ctx context.Context, eventID uuid.UUID) (*EventDTO, error)
	List(ctx context.Context, input ListEventsInput) (*EventListResult, error)
}

// LineInput is one requested article line. UnitPrice overrides the snapshot
// taken from the article when set; otherwise the current article price (or,
// on updates, the previously booked price) is used.
type LineInput struct {
	ArticleID uuid.UUID
	Qty       int
	UnitPrice *decimal.Decimal
}

// CreateEventInput holds the validated payload to create an event.
type CreateEventInput struct {
	Code        string
	Date        time.Time
	Description string
	Venue       string
	Company     string
	Lines       []LineInput
}

// UpdateEventInput holds optional mutation values for an event. A non-nil
// Lines replaces the full line set; stock moves by the per-article net delta.
type UpdateEventInput struct {
	Code        *string
	Date        *time.Time
	Description *string
	Venue       *string
	Company     *string
	Lines       *[]LineInput
}

// ListEventsInput captures filter and pagination inputs for listings.
type ListEventsInput struct {
	Company    string
	DateFrom   *time.Time
	DateTo     *time.Time
	Pagination pagination.Params
}

type service struct {
	repo     Repository
	dbClient *db.Client
	ivaRate  decimal.Decimal
	metrics  *metrics.LedgerMetrics
}

// NewService constructs an event service instance. The metrics collector is
// optional.
func NewService(repo Repository, dbClient *db.Client, ivaRate decimal.Decimal, ledgerMetrics *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("event repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if ivaRate.IsNegative() || ivaRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("iva rate must be between 0 and 1")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		ivaRate:  ivaRate,
		metrics:  ledgerMetrics,
	}, nil
}

// Create books a new event, debiting stock for every line.
func (s *service) Create(ctx context.Context, input CreateEventInput) (*EventDTO, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "codigo_evento is required")
	}
	if input.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fecha is required")
	}
	if err := validateLines(input.Lines); err != nil {
		s.rejected("invalid_quantity")
		return nil, err
	}

	if _, err := s.repo.FindByCode(ctx, code); err == nil {
		s.rejected("duplicate_code")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("codigo_evento %q already exists", code))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check codigo_evento uniqueness")
	}

	event := &models.Event{
		Code:        code,
		Date:        input.Date,
		Description: strings.TrimSpace(input.Description),
		Venue:       strings.TrimSpace(input.Venue),
		Company:     strings.TrimSpace(input.Company),
	}

	var summary reservation.Summary
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		articles, err := s.loadLineArticles(ctx, txRepo, input.Lines)
		if err != nil {
			return err
		}
		for _, article := range articles {
			if article.Status != enums.ArticleStatusActive {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("articulo %q is inactivo and cannot be booked", article.Code))
			}
		}

		details, deltas := buildDetails(input.Lines, articles, nil)
		event.Details = details
		event.NetTotal, event.Tax, event.GrossTotal = s.totals(details)

		summary, err = reservation.Apply(ctx, tx, deltas)
		if err != nil {
			return err
		}
		return txRepo.Create(ctx, event)
	})
	if err != nil {
		return nil, s.mapWriteError(err, "create event")
	}
	if s.metrics != nil {
		s.metrics.AddCommitted("event_create", summary.Debited)
	}

	return s.reload(ctx, event.ID)
}

// Update rewrites an event. A provided line set fully replaces the old one
// and stock moves by the per-article net difference.
func (s *service) Update(ctx context.Context, eventID uuid.UUID, input UpdateEventInput) (*EventDTO, error) {
	if eventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}

	// The event and its lines are reloaded inside the write transaction so
	// a concurrent mutation cannot land between the read and the save.
	var event *models.Event
	var summary reservation.Summary
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		var err error
		event, err = findEvent(ctx, txRepo, eventID)
		if err != nil {
			return err
		}

		if input.Code != nil {
			code := strings.TrimSpace(*input.Code)
			if code == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "codigo_evento cannot be empty")
			}
			if code != event.Code {
				if _, err := txRepo.FindByCode(ctx, code); err == nil {
					s.rejected("duplicate_code")
					return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("codigo_evento %q already exists", code))
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check codigo_evento uniqueness")
				}
			}
			event.Code = code
		}
		if input.Date != nil {
			if input.Date.IsZero() {
				return pkgerrors.New(pkgerrors.CodeValidation, "fecha cannot be empty")
			}
			event.Date = *input.Date
		}
		if input.Description != nil {
			event.Description = strings.TrimSpace(*input.Description)
		}
		if input.Venue != nil {
			event.Venue = strings.TrimSpace(*input.Venue)
		}
		if input.Company != nil {
			event.Company = strings.TrimSpace(*input.Company)
		}

		if input.Lines != nil {
			lines := *input.Lines
			if err := validateLines(lines); err != nil {
				return err
			}

			previous := aggregateDetails(event.Details)
			priorPrices := snapshotPrices(event.Details)

			articles, err := s.loadLineArticles(ctx, txRepo, lines)
			if err != nil {
				return err
			}
			// Only articles new to this event must still be activo;
			// carried-over lines keep their booking.
			for _, article := range articles {
				if _, carried := previous[article.ID]; !carried && article.Status != enums.ArticleStatusActive {
					return pkgerrors.New(pkgerrors.CodeValidation,
						fmt.Sprintf("articulo %q is inactivo and cannot be booked", article.Code))
				}
			}

			details, requested := buildDetails(lines, articles, priorPrices)
			deltas := make([]reservation.StockDelta, 0, len(requested)+len(previous))
			deltas = append(deltas, requested...)
			for articleID, qty := range previous {
				deltas = append(deltas, reservation.StockDelta{ArticleID: articleID, Qty: -qty})
			}

			summary, err = reservation.Apply(ctx, tx, deltas)
			if err != nil {
				return err
			}
			if err := txRepo.ReplaceDetails(ctx, event.ID, details); err != nil {
				return err
			}
			event.Details = details
			event.NetTotal, event.Tax, event.GrossTotal = s.totals(details)
		}

		return txRepo.Update(ctx, event)
	})
	if err != nil {
		return nil, s.mapWriteError(err, "update event")
	}
	if s.metrics != nil {
		s.metrics.AddCommitted("event_update", summary.Debited)
		s.metrics.AddReleased("event_update", summary.Credited)
	}

	return s.reload(ctx, event.ID)
}

// Delete removes an event and credits its units back to availability.
func (s *service) Delete(ctx context.Context, eventID uuid.UUID) error {
	if eventID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}

	var summary reservation.Summary
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		// Credit from the lines as they exist inside the transaction.
		event, err := findEvent(ctx, txRepo, eventID)
		if err != nil {
			return err
		}

		deltas := make([]reservation.StockDelta, 0, len(event.Details))
		for articleID, qty := range aggregateDetails(event.Details) {
			deltas = append(deltas, reservation.StockDelta{ArticleID: articleID, Qty: -qty})
		}
		summary, err = reservation.Apply(ctx, tx, deltas)
		if err != nil {
			return err
		}
		return txRepo.Delete(ctx, event.ID)
	})
	if err != nil {
		return s.mapWriteError(err, "delete event")
	}
	if s.metrics != nil {
		s.metrics.AddReleased("event_delete", summary.Credited)
	}
	return nil
}

// Get loads a single event with its lines.
func (s *service) Get(ctx context.Context, eventID uuid.UUID) (*EventDTO, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return NewEventDTO(event), nil
}

// List returns one page of events plus the next cursor when more exist.
func (s *service) List(ctx context.Context, input ListEventsInput) (*EventListResult, error) {
	pageSize := pagination.NormalizeLimit(input.Pagination.Limit)
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, ListQuery{
		Company:  strings.TrimSpace(input.Company),
		DateFrom: input.DateFrom,
		DateTo:   input.DateTo,
		Limit:    pagination.LimitWithBuffer(input.Pagination.Limit),
		Cursor:   cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list events")
	}

	result := &EventListResult{Items: make([]EventDTO, 0, len(rows))}
	hasMore := len(rows) > pageSize
	if hasMore {
		rows = rows[:pageSize]
	}
	for i := range rows {
		result.Items = append(result.Items, *NewEventDTO(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &next
	}
	return result, nil
}

func (s *service) loadEvent(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	if eventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	return findEvent(ctx, s.repo, eventID)
}

func findEvent(ctx context.Context, repo Repository, eventID uuid.UUID) (*models.Event, error) {
	event, err := repo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "evento not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load event")
	}
	return event, nil
}

func (s *service) loadLineArticles(ctx context.Context, txRepo Repository, lines []LineInput) (map[uuid.UUID]*models.Article, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := map[uuid.UUID]bool{}
	for _, line := range lines {
		if !seen[line.ArticleID] {
			seen[line.ArticleID] = true
			ids = append(ids, line.ArticleID)
		}
	}

	rows, err := txRepo.FindArticles(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load line articles")
	}

	articles := make(map[uuid.UUID]*models.Article, len(rows))
	for i := range rows {
		articles[rows[i].ID] = &rows[i]
	}
	for _, id := range ids {
		if _, ok := articles[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("articulo %s not found", id))
		}
	}
	return articles, nil
}

// totals derives the denormalized money columns from the line set.
func (s *service) totals(details []models.EventDetail) (net, tax, gross decimal.Decimal) {
	net = decimal.Zero
	for _, detail := range details {
		net = net.Add(detail.Subtotal)
	}
	tax = net.Mul(s.ivaRate).Round(2)
	gross = net.Add(tax)
	return net, tax, gross
}

func (s *service) reload(ctx context.Context, eventID uuid.UUID) (*EventDTO, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload event")
	}
	return NewEventDTO(event), nil
}

func (s *service) mapWriteError(err error, op string) error {
	if typed := pkgerrors.As(err); typed != nil {
		if typed.Code() == pkgerrors.CodeInsufficientStock {
			s.rejected("insufficient_stock")
		}
		return err
	}
	// The unique index on codigo_evento is the backstop for inserts that
	// race past the FindByCode pre-check.
	if pkgerrors.IsUniqueViolation(err) {
		s.rejected("duplicate_code")
		return pkgerrors.New(pkgerrors.CodeConflict, "codigo_evento already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func (s *service) rejected(reason string) {
	if s.metrics != nil {
		s.metrics.IncRejected(reason)
	}
}

func validateLines(lines []LineInput) error {
	for _, line := range lines {
		if line.ArticleID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "articulo_id is required on every line")
		}
		if line.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cantidad must be greater than zero")
		}
		if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "valor_unitario cannot be negative")
		}
	}
	return nil
}

// buildDetails produces the persisted lines and the requested stock debits.
// Prices resolve in order: explicit override, prior snapshot, current article
// price.
func buildDetails(lines []LineInput, articles map[uuid.UUID]*models.Article, priorPrices map[uuid.UUID]decimal.Decimal) ([]models.EventDetail, []reservation.StockDelta) {
	details := make([]models.EventDetail, 0, len(lines))
	requested := map[uuid.UUID]int{}

	for _, line := range lines {
		article := articles[line.ArticleID]

		price := article.UnitValue
		if prior, ok := priorPrices[line.ArticleID]; ok {
			price = prior
		}
		if line.UnitPrice != nil {
			price = *line.UnitPrice
		}

		details = append(details, models.EventDetail{
			ArticleID: line.ArticleID,
			Qty:       line.Qty,
			UnitPrice: price,
			Subtotal:  price.Mul(decimal.NewFromInt(int64(line.Qty))),
		})
		requested[line.ArticleID] += line.Qty
	}

	deltas := make([]reservation.StockDelta, 0, len(requested))
	for articleID, qty := range requested {
		deltas = append(deltas, reservation.StockDelta{ArticleID: articleID, Qty: qty})
	}
	return details, deltas
}

func aggregateDetails(details []models.EventDetail) map[uuid.UUID]int {
	agg := map[uuid.UUID]int{}
	for _, detail := range details {
		agg[detail.ArticleID] += detail.Qty
	}
	return agg
}

func snapshotPrices(details []models.EventDetail) map[uuid.UUID]decimal.Decimal {
	prices := map[uuid.UUID]decimal.Decimal{}
	for _, detail := range details {
		if _, ok := prices[detail.ArticleID]; !ok {
			prices[detail.ArticleID] = detail.UnitPrice
		}
	}
	return prices
}
