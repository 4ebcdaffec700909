package dashboard

import (
	"context"

	"github.com/avpro-events/avpro-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes the read models the dashboard aggregates over.
type Repository interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListActiveArticles(ctx context.Context) ([]models.Article, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a dashboard repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListEvents(ctx context.Context) ([]models.Event, error) {
	var rows []models.Event
	err := r.db.WithContext(ctx).
		Preload("Details").
		Preload("Details.Article").
		Order("fecha ASC").
		Find(&rows).
		Error
	return rows, err
}

func (r *repository) ListActiveArticles(ctx context.Context) ([]models.Article, error) {
	var rows []models.Article
	err := r.db.WithContext(ctx).
		Where("estado = ?", "activo").
		Order("codigo ASC").
		Find(&rows).
		Error
	return rows, err
}
