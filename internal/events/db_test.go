package event

import (
	"testing"

	"github.com/avpro-events/avpro-backend/pkg/db"
	"github.com/avpro-events/avpro-backend/pkg/db/models"
	"github.com/avpro-events/avpro-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:events_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Article{}, &models.Event{}, &models.EventDetail{}); err != nil {
		t.Fatalf("migrate schema: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn), db.NewFromConn(conn), decimal.RequireFromString("0.19"), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func seedArticle(t *testing.T, conn *gorm.DB, code string, value int64, total, available int) *models.Article {
	t.Helper()
	article := &models.Article{
		ID:           uuid.New(),
		Code:         code,
		Description:  "Articulo " + code,
		Type:         enums.ArticleTypeOwn,
		UnitValue:    decimal.NewFromInt(value),
		TotalQty:     total,
		AvailableQty: available,
		Status:       enums.ArticleStatusActive,
	}
	if err := conn.Create(article).Error; err != nil {
		t.Fatalf("seed article %s: %v", code, err)
	}
	return article
}

func articleAvailable(t *testing.T, conn *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var article models.Article
	if err := conn.First(&article, "id = ?", id).Error; err != nil {
		t.Fatalf("load article: %v", err)
	}
	return article.AvailableQty
}
