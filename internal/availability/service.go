// Package availability answers read-only "can I book N units" questions
// without reserving anything.
package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/avpro-events/avpro-backend/pkg/db/models"
	pkgerrors "github.com/avpro-events/avpro-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Result reports whether the requested quantity can be fulfilled right now.
// The answer is advisory: stock may change before a booking commits.
type Result struct {
	ArticleID    uuid.UUID `json:"articulo_id"`
	Code         string    `json:"codigo"`
	Description  string    `json:"descripcion"`
	Requested    int       `json:"cantidad_solicitada"`
	AvailableQty int       `json:"cantidad_disponible"`
	Fulfillable  bool      `json:"disponible"`
}

type articleReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
}

// Service exposes the availability check.
type Service interface {
	Check(ctx context.Context, articleID uuid.UUID, qty int) (*Result, error)
}

type service struct {
	articles articleReader
}

// NewService constructs an availability service over the article store.
func NewService(articles articleReader) (Service, error) {
	if articles == nil {
		return nil, fmt.Errorf("article reader required")
	}
	return &service{articles: articles}, nil
}

// Check compares the requested quantity against the article's free units.
func (s *service) Check(ctx context.Context, articleID uuid.UUID, qty int) (*Result, error) {
	if articleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "articulo_id is required")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cantidad must be greater than zero")
	}

	article, err := s.articles.FindByID(ctx, articleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "articulo not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load article")
	}

	return &Result{
		ArticleID:    article.ID,
		Code:         article.Code,
		Description:  article.Description,
		Requested:    qty,
		AvailableQty: article.AvailableQty,
		Fulfillable:  article.AvailableQty >= qty,
	}, nil
}
