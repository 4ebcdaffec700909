package article

import (
	"context"
	"testing"

	"github.com/avpro-events/avpro-backend/pkg/db"
	"github.com/avpro-events/avpro-backend/pkg/db/models"
	"github.com/avpro-events/avpro-backend/pkg/enums"
	pkgerrors "github.com/avpro-events/avpro-backend/pkg/errors"
	"github.com/avpro-events/avpro-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestCreateArticleStartsFullyAvailable(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Create(ctx, CreateArticleInput{
		Code:        "PROJ-01",
		Description: "Proyector laser 4K",
		Type:        enums.ArticleTypeOwn,
		UnitValue:   decimal.NewFromInt(150),
		TotalQty:    10,
	})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	if dto.AvailableQty != 10 || dto.TotalQty != 10 {
		t.Fatalf("expected full availability, got %+v", dto)
	}
	if dto.Status != "activo" {
		t.Fatalf("expected default estado activo, got %s", dto.Status)
	}
}

func TestCreateArticleValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateArticleInput
	}{
		{
			name:  "missing code",
			input: CreateArticleInput{Description: "x", Type: enums.ArticleTypeOwn},
		},
		{
			name:  "missing description",
			input: CreateArticleInput{Code: "A-1", Type: enums.ArticleTypeOwn},
		},
		{
			name:  "bad type",
			input: CreateArticleInput{Code: "A-1", Description: "x", Type: enums.ArticleType("alquilado")},
		},
		{
			name: "negative quantity",
			input: CreateArticleInput{
				Code: "A-1", Description: "x", Type: enums.ArticleTypeOwn, TotalQty: -1,
			},
		},
		{
			name: "negative value",
			input: CreateArticleInput{
				Code: "A-1", Description: "x", Type: enums.ArticleTypeOwn,
				UnitValue: decimal.NewFromInt(-5),
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateArticleDuplicateCode(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	input := CreateArticleInput{
		Code:        "MIC-01",
		Description: "Microfono inalambrico",
		Type:        enums.ArticleTypeOwn,
		UnitValue:   decimal.NewFromInt(30),
		TotalQty:    4,
	}
	if _, err := svc.Create(ctx, input); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(ctx, input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate codigo, got %v", err)
	}
}

func TestUpdateArticleTotalQtyMovesAvailability(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Create(ctx, CreateArticleInput{
		Code:        "LED-01",
		Description: "Pantalla LED",
		Type:        enums.ArticleTypeSublease,
		UnitValue:   decimal.NewFromInt(200),
		TotalQty:    8,
	})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	// Simulate 5 units committed to events.
	if err := conn.Model(&models.Article{}).
		Where("id = ?", dto.ID).
		Update("cantidad_disponible", 3).Error; err != nil {
		t.Fatalf("seed committed units: %v", err)
	}

	newTotal := 10
	updated, err := svc.Update(ctx, dto.ID, UpdateArticleInput{TotalQty: &newTotal})
	if err != nil {
		t.Fatalf("grow total: %v", err)
	}
	if updated.TotalQty != 10 || updated.AvailableQty != 5 {
		t.Fatalf("expected total=10 available=5, got %+v", updated)
	}

	// Shrinking below the committed 5 units must be rejected.
	tooSmall := 4
	_, err = svc.Update(ctx, dto.ID, UpdateArticleInput{TotalQty: &tooSmall})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error when shrinking below committed units, got %v", err)
	}
}

// txReadSpy counts FindByID calls made through a tx-bound repository.
type txReadSpy struct {
	Repository
	inTx    bool
	txReads *int
}

func (r *txReadSpy) WithTx(tx *gorm.DB) Repository {
	return &txReadSpy{Repository: r.Repository.WithTx(tx), inTx: true, txReads: r.txReads}
}

func (r *txReadSpy) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	if r.inTx {
		*r.txReads++
	}
	return r.Repository.FindByID(ctx, id)
}

func TestUpdateArticleReloadsInsideTransaction(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	var txReads int
	svc, err := NewService(&txReadSpy{Repository: NewRepository(conn), txReads: &txReads}, db.NewFromConn(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	dto, err := svc.Create(ctx, CreateArticleInput{
		Code:        "CAM-01",
		Description: "Camara PTZ",
		Type:        enums.ArticleTypeOwn,
		UnitValue:   decimal.NewFromInt(90),
		TotalQty:    3,
	})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	description := "Camara PTZ 4K"
	if _, err := svc.Update(ctx, dto.ID, UpdateArticleInput{Description: &description}); err != nil {
		t.Fatalf("update article: %v", err)
	}
	// The row must be read inside the write transaction, not before it,
	// so a concurrent write cannot be overwritten with stale fields.
	if txReads == 0 {
		t.Fatalf("expected update to reload the article inside its transaction")
	}
}

func TestDeleteArticleInUse(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Create(ctx, CreateArticleInput{
		Code:        "TRZ-01",
		Description: "Truss de aluminio",
		Type:        enums.ArticleTypeOwn,
		UnitValue:   decimal.NewFromInt(50),
		TotalQty:    6,
	})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	event := &models.Event{
		ID:       uuid.New(),
		Code:     "EVT-001",
		Company:  "Acme",
		NetTotal: decimal.Zero, Tax: decimal.Zero, GrossTotal: decimal.Zero,
	}
	if err := conn.Create(event).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
	detail := &models.EventDetail{
		ID:        uuid.New(),
		EventID:   event.ID,
		ArticleID: dto.ID,
		Qty:       2,
		UnitPrice: decimal.NewFromInt(50),
		Subtotal:  decimal.NewFromInt(100),
	}
	if err := conn.Create(detail).Error; err != nil {
		t.Fatalf("seed detail: %v", err)
	}

	err = svc.Delete(ctx, dto.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInUse {
		t.Fatalf("expected in-use error, got %v", err)
	}

	// After the reference goes away the delete succeeds.
	if err := conn.Delete(detail).Error; err != nil {
		t.Fatalf("remove detail: %v", err)
	}
	if err := svc.Delete(ctx, dto.ID); err != nil {
		t.Fatalf("delete after release: %v", err)
	}

	_, err = svc.Get(ctx, dto.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestGetArticleNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListArticlesPaginatesWithCursor(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, code := range []string{"A-1", "A-2", "A-3"} {
		if _, err := svc.Create(ctx, CreateArticleInput{
			Code:        code,
			Description: "Articulo " + code,
			Type:        enums.ArticleTypeOwn,
			UnitValue:   decimal.NewFromInt(10),
			TotalQty:    1,
		}); err != nil {
			t.Fatalf("create %s: %v", code, err)
		}
	}

	first, err := svc.List(ctx, ListArticlesInput{Pagination: pagination.Params{Limit: 2}})
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(first.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(first.Items))
	}
	if first.NextCursor == nil {
		t.Fatalf("expected next cursor on first page")
	}

	second, err := svc.List(ctx, ListArticlesInput{
		Pagination: pagination.Params{Limit: 2, Cursor: *first.NextCursor},
	})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(second.Items) != 1 {
		t.Fatalf("expected 1 item on second page, got %d", len(second.Items))
	}
	if second.NextCursor != nil {
		t.Fatalf("expected no cursor on final page")
	}

	seen := map[string]bool{}
	for _, item := range append(first.Items, second.Items...) {
		if seen[item.Code] {
			t.Fatalf("duplicate item %s across pages", item.Code)
		}
		seen[item.Code] = true
	}
}

func TestListArticlesStatusFilter(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	inactive := enums.ArticleStatusInactive
	if _, err := svc.Create(ctx, CreateArticleInput{
		Code: "ON-1", Description: "activo", Type: enums.ArticleTypeOwn, TotalQty: 1,
	}); err != nil {
		t.Fatalf("create active: %v", err)
	}
	if _, err := svc.Create(ctx, CreateArticleInput{
		Code: "OFF-1", Description: "inactivo", Type: enums.ArticleTypeOwn, TotalQty: 1,
		Status: &inactive,
	}); err != nil {
		t.Fatalf("create inactive: %v", err)
	}

	active := enums.ArticleStatusActive
	result, err := svc.List(ctx, ListArticlesInput{Status: &active})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Code != "ON-1" {
		t.Fatalf("expected only the active article, got %+v", result.Items)
	}
}
