package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is a booked engagement. The three totals are always derivable from
// Details; they are stored denormalized for the list and dashboard reads.
type Event struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string          `gorm:"column:codigo_evento;not null;uniqueIndex"`
	Date        time.Time       `gorm:"column:fecha;not null"`
	Description string          `gorm:"column:descripcion;not null"`
	Venue       string          `gorm:"column:salon;not null"`
	Company     string          `gorm:"column:compania;not null"`
	NetTotal    decimal.Decimal `gorm:"column:total_neto;type:numeric(12,2);not null"`
	Tax         decimal.Decimal `gorm:"column:iva;type:numeric(12,2);not null"`
	GrossTotal  decimal.Decimal `gorm:"column:total_general;type:numeric(12,2);not null"`
	Details     []EventDetail   `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the table aligned with the admin UI's schema.
func (Event) TableName() string {
	return "eventos"
}
