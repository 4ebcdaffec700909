package article

import (
	"testing"

	"github.com/avpro-events/avpro-backend/pkg/db"
	"github.com/avpro-events/avpro-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:articles_" + uuid.NewString() + "?mode=memory&cache=shared"
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
	svc, err := NewService(NewRepository(conn), db.NewFromConn(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}
