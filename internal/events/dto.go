package event

import (
	"time"

	"github.com/avpro-events/avpro-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventDTO represents the event payload returned to clients. The JSON keys
// mirror the column names the admin UI already binds to.
type EventDTO struct {
	ID          uuid.UUID        `json:"id"`
	Code        string           `json:"codigo_evento"`
	Date        time.Time        `json:"fecha"`
	Description string           `json:"descripcion"`
	Venue       string           `json:"salon"`
	Company     string           `json:"compania"`
	NetTotal    decimal.Decimal  `json:"total_neto"`
	Tax         decimal.Decimal  `json:"iva"`
	GrossTotal  decimal.Decimal  `json:"total_general"`
	Details     []EventDetailDTO `json:"detalles"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// EventDetailDTO is one article line on an event. The unit price is the
// snapshot the line was booked with, not the article's current price.
type EventDetailDTO struct {
	ID                 uuid.UUID       `json:"id"`
	ArticleID          uuid.UUID       `json:"articulo_id"`
	ArticleCode        string          `json:"codigo,omitempty"`
	ArticleDescription string          `json:"articulo_descripcion,omitempty"`
	Qty                int             `json:"cantidad"`
	UnitPrice          decimal.Decimal `json:"valor_unitario"`
	Subtotal           decimal.Decimal `json:"subtotal"`
}

// EventListResult is one page of events plus the cursor for the next.
type EventListResult struct {
	Items      []EventDTO `json:"items"`
	NextCursor *string    `json:"next_cursor,omitempty"`
}

// NewEventDTO builds a DTO from the persisted model.
func NewEventDTO(event *models.Event) *EventDTO {
	dto := &EventDTO{
		ID:          event.ID,
		Code:        event.Code,
		Date:        event.Date,
		Description: event.Description,
		Venue:       event.Venue,
		Company:     event.Company,
		NetTotal:    event.NetTotal,
		Tax:         event.Tax,
		GrossTotal:  event.GrossTotal,
		Details:     make([]EventDetailDTO, 0, len(event.Details)),
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
	for _, detail := range event.Details {
		line := EventDetailDTO{
			ID:        detail.ID,
			ArticleID: detail.ArticleID,
			Qty:       detail.Qty,
			UnitPrice: detail.UnitPrice,
			Subtotal:  detail.Subtotal,
		}
		if detail.Article != nil {
			line.ArticleCode = detail.Article.Code
			line.ArticleDescription = detail.Article.Description
		}
		dto.Details = append(dto.Details, line)
	}
	return dto
}
