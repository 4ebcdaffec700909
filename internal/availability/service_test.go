package availability

import (
	"context"
	"testing"

	"github.com/avpro-events/avpro-backend/pkg/db/models"
	pkgerrors "github.com/avpro-events/avpro-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubArticleReader struct {
	rows map[uuid.UUID]*models.Article
}

func (s *stubArticleReader) FindByID(_ context.Context, id uuid.UUID) (*models.Article, error) {
	if article, ok := s.rows[id]; ok {
		return article, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func TestCheck(t *testing.T) {
	articleID := uuid.New()
	svc, err := NewService(&stubArticleReader{rows: map[uuid.UUID]*models.Article{
		articleID: {
			ID:           articleID,
			Code:         "PRJ-1",
			Description:  "Proyector",
			TotalQty:     10,
			AvailableQty: 4,
		},
	}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	t.Run("fulfillable", func(t *testing.T) {
		result, err := svc.Check(ctx, articleID, 4)
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if !result.Fulfillable || result.AvailableQty != 4 {
			t.Fatalf("expected fulfillable with 4 available, got %+v", result)
		}
	})

	t.Run("notFulfillable", func(t *testing.T) {
		result, err := svc.Check(ctx, articleID, 5)
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if result.Fulfillable {
			t.Fatalf("expected not fulfillable, got %+v", result)
		}
		if result.Requested != 5 {
			t.Fatalf("expected requested echoed back, got %d", result.Requested)
		}
	})

	t.Run("unknownArticle", func(t *testing.T) {
		_, err := svc.Check(ctx, uuid.New(), 1)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("invalidQuantity", func(t *testing.T) {
		for _, qty := range []int{0, -1} {
			_, err := svc.Check(ctx, articleID, qty)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error for qty %d, got %v", qty, err)
			}
		}
	})
}
