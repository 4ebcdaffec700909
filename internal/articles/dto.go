package article

import (
	"time"

	"github.com/avpro-events/avpro-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ArticleDTO represents the article payload returned to clients. The JSON
// keys mirror the column names the admin UI already binds to.
type ArticleDTO struct {
	ID           uuid.UUID       `json:"id"`
	Code         string          `json:"codigo"`
	Description  string          `json:"descripcion"`
	Type         string          `json:"tipo"`
	UnitValue    decimal.Decimal `json:"valor"`
	TotalQty     int             `json:"cantidad_total"`
	AvailableQty int             `json:"cantidad_disponible"`
	Status       string          `json:"estado"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ArticleListResult is one page of articles plus the cursor for the next.
type ArticleListResult struct {
	Items      []ArticleDTO `json:"items"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

// NewArticleDTO builds a DTO from the persisted model.
func NewArticleDTO(article *models.Article) *ArticleDTO {
	return &ArticleDTO{
		ID:           article.ID,
		Code:         article.Code,
		Description:  article.Description,
		Type:         article.Type.String(),
		UnitValue:    article.UnitValue,
		TotalQty:     article.TotalQty,
		AvailableQty: article.AvailableQty,
		Status:       article.Status.String(),
		CreatedAt:    article.CreatedAt,
		UpdatedAt:    article.UpdatedAt,
	}
}
