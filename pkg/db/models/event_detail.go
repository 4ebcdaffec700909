package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventDetail is one article/quantity/price reservation inside an event.
// UnitPrice is a snapshot taken when the line is added; later article price
// changes never rewrite it. Subtotal is always Qty times UnitPrice.
type EventDetail struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID   uuid.UUID       `gorm:"column:evento_id;type:uuid;not null;index"`
	ArticleID uuid.UUID       `gorm:"column:articulo_id;type:uuid;not null;index"`
	Qty       int             `gorm:"column:cantidad;not null"`
	UnitPrice decimal.Decimal `gorm:"column:valor_unitario;type:numeric(12,2);not null"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Article   *Article        `gorm:"foreignKey:ArticleID;references:ID"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the table aligned with the admin UI's schema.
func (EventDetail) TableName() string {
	return "evento_detalles"
}
