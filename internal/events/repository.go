package event

import (
	"context"
	"time"

	"github.com/avpro-events/avpro-backend/pkg/db/models"
	"github.com/avpro-events/avpro-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for events and their article lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	ReplaceDetails(ctx context.Context, eventID uuid.UUID, details []models.EventDetail) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	FindByCode(ctx context.Context, code string) (*models.Event, error)
	List(ctx context.Context, query ListQuery) ([]models.Event, error)
	FindArticles(ctx context.Context, ids []uuid.UUID) ([]models.Article, error)
}

// ListQuery holds the filter and cursor inputs for event listings.
type ListQuery struct {
	Company  string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Cursor   *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an event repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	for i := range event.Details {
		if event.Details[i].ID == uuid.Nil {
			event.Details[i].ID = uuid.New()
		}
		event.Details[i].EventID = event.ID
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) Update(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).
		Omit("Details").
		Save(event).
		Error
}

// ReplaceDetails swaps the full line set of an event.
func (r *repository) ReplaceDetails(ctx context.Context, eventID uuid.UUID, details []models.EventDetail) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("evento_id = ?", eventID).Delete(&models.EventDetail{}).Error; err != nil {
		return err
	}
	if len(details) == 0 {
		return nil
	}
	for i := range details {
		if details[i].ID == uuid.Nil {
			details[i].ID = uuid.New()
		}
		details[i].EventID = eventID
	}
	return tx.Create(&details).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("evento_id = ?", id).Delete(&models.EventDetail{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Event{}).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Preload("Details").
		Preload("Details.Article").
		First(&event, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, "codigo_evento = ?", code).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Event, error) {
	qb := r.db.WithContext(ctx).Model(&models.Event{})

	if query.Company != "" {
		qb = qb.Where("compania = ?", query.Company)
	}
	if query.DateFrom != nil {
		qb = qb.Where("fecha >= ?", *query.DateFrom)
	}
	if query.DateTo != nil {
		qb = qb.Where("fecha <= ?", *query.DateTo)
	}
	if query.Cursor != nil {
		qb = qb.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			query.Cursor.CreatedAt, query.Cursor.CreatedAt, query.Cursor.ID,
		)
	}

	var rows []models.Event
	err := qb.
		Preload("Details").
		Preload("Details.Article").
		Order("created_at DESC").
		Order("id DESC").
		Limit(query.Limit).
		Find(&rows).
		Error
	return rows, err
}

// FindArticles loads the referenced articles without locking them. Row locks
// are taken later by the reservation engine inside the same transaction.
func (r *repository) FindArticles(ctx context.Context, ids []uuid.UUID) ([]models.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Article
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).
		Error
	return rows, err
}
