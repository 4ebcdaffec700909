package article

import (
	"context"
	"strings"

	"github.com/avpro-events/avpro-backend/pkg/db/models"
	"github.com/avpro-events/avpro-backend/pkg/enums"
	"github.com/avpro-events/avpro-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for catalog articles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
	FindByCode(ctx context.Context, code string) (*models.Article, error)
	List(ctx context.Context, query ListQuery) ([]models.Article, error)
	ListAll(ctx context.Context) ([]models.Article, error)
	CountEventRefs(ctx context.Context, articleID uuid.UUID) (int64, error)
}

// ListQuery holds the filter and cursor inputs for article listings.
type ListQuery struct {
	Status *enums.ArticleStatus
	Type   *enums.ArticleType
	Search string
	Limit  int
	Cursor *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an article repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, article *models.Article) error {
	if article.ID == uuid.Nil {
		article.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(article).Error
}

func (r *repository) Update(ctx context.Context, article *models.Article) error {
	return r.db.WithContext(ctx).Save(article).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Article{}).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).First(&article, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).First(&article, "codigo = ?", code).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Article, error) {
	qb := r.db.WithContext(ctx).Model(&models.Article{})

	if query.Status != nil {
		qb = qb.Where("estado = ?", query.Status.String())
	}
	if query.Type != nil {
		qb = qb.Where("tipo = ?", query.Type.String())
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("LOWER(descripcion) LIKE ? OR LOWER(codigo) LIKE ?", pattern, pattern)
	}
	if query.Cursor != nil {
		qb = qb.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			query.Cursor.CreatedAt, query.Cursor.CreatedAt, query.Cursor.ID,
		)
	}

	var rows []models.Article
	err := qb.
		Order("created_at DESC").
		Order("id DESC").
		Limit(query.Limit).
		Find(&rows).
		Error
	return rows, err
}

func (r *repository) ListAll(ctx context.Context) ([]models.Article, error) {
	var rows []models.Article
	err := r.db.WithContext(ctx).
		Order("codigo ASC").
		Find(&rows).
		Error
	return rows, err
}

// CountEventRefs reports how many event lines reference the article.
func (r *repository) CountEventRefs(ctx context.Context, articleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EventDetail{}).
		Where("articulo_id = ?", articleID).
		Count(&count).
		Error
	return count, err
}
