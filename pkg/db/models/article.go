package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avpro-events/avpro-backend/pkg/enums"
)

// Article is a rentable inventory item. AvailableQty tracks the units not
// committed to any event; the ledger is the only writer of that column.
type Article struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code         string              `gorm:"column:codigo;not null;uniqueIndex"`
	Description  string              `gorm:"column:descripcion;not null"`
	Type         enums.ArticleType   `gorm:"column:tipo;not null"`
	UnitValue    decimal.Decimal     `gorm:"column:valor;type:numeric(12,2);not null"`
	TotalQty     int                 `gorm:"column:cantidad_total;not null;default:0"`
	AvailableQty int                 `gorm:"column:cantidad_disponible;not null;default:0"`
	Status       enums.ArticleStatus `gorm:"column:estado;not null;default:'activo'"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the table aligned with the admin UI's schema.
func (Article) TableName() string {
	return "articulos"
}
