package article

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avpro-events/avpro-backend/pkg/db"
	"github.com/avpro-events/avpro-backend/pkg/db/models"
	"github.com/avpro-events/avpro-backend/pkg/enums"
	pkgerrors "github.com/avpro-events/avpro-backend/pkg/errors"
	"github.com/avpro-events/avpro-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes article catalog management operations.
type Service interface {
	Create(ctx context.Context, input CreateArticleInput) (*ArticleDTO, error)
	Update(ctx context.Context, articleID uuid.UUID, input UpdateArticleInput) (*ArticleDTO, error)
	Delete(ctx context.Context, articleID uuid.UUID) error
	Get(ctx context.Context, articleID uuid.UUID) (*ArticleDTO, error)
	List(ctx context.Context, input ListArticlesInput) (*ArticleListResult, error)
}

// CreateArticleInput holds the validated payload to create an article.
// New articles start with every unit available.
type CreateArticleInput struct {
	Code        string
	Description string
	Type        enums.ArticleType
	UnitValue   decimal.Decimal
	TotalQty    int
	Status      *enums.ArticleStatus
}

// UpdateArticleInput holds optional mutation values for an article.
// Changing TotalQty moves AvailableQty by the same delta so committed
// units stay committed.
type UpdateArticleInput struct {
	Code        *string
	Description *string
	Type        *enums.ArticleType
	UnitValue   *decimal.Decimal
	TotalQty    *int
	Status      *enums.ArticleStatus
}

// ListArticlesInput captures filter and pagination inputs for listings.
type ListArticlesInput struct {
	Status     *enums.ArticleStatus
	Type       *enums.ArticleType
	Search     string
	Pagination pagination.Params
}

type service struct {
	repo     Repository
	dbClient *db.Client
}

// NewService constructs an article service instance.
func NewService(repo Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("article repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// Create inserts a new article with AvailableQty equal to TotalQty.
func (s *service) Create(ctx context.Context, input CreateArticleInput) (*ArticleDTO, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "codigo is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "descripcion is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tipo must be propio or subarriendo")
	}
	if input.TotalQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cantidad_total cannot be negative")
	}
	if input.UnitValue.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valor cannot be negative")
	}

	if err := ensureCodeFree(ctx, s.repo, code); err != nil {
		return nil, err
	}

	status := enums.ArticleStatusActive
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "estado must be activo or inactivo")
		}
		status = *input.Status
	}

	article := &models.Article{
		Code:         code,
		Description:  strings.TrimSpace(input.Description),
		Type:         input.Type,
		UnitValue:    input.UnitValue,
		TotalQty:     input.TotalQty,
		AvailableQty: input.TotalQty,
		Status:       status,
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, article)
	}); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("codigo %q already exists", code))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert article")
	}

	return NewArticleDTO(article), nil
}

// Update applies the provided fields and keeps the stock invariant intact.
// The article is reloaded inside the write transaction so a concurrent
// mutation cannot land between the read and the save.
func (s *service) Update(ctx context.Context, articleID uuid.UUID, input UpdateArticleInput) (*ArticleDTO, error) {
	if articleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "article id is required")
	}

	var article *models.Article
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		var err error
		article, err = findArticle(ctx, txRepo, articleID)
		if err != nil {
			return err
		}

		if input.Code != nil {
			code := strings.TrimSpace(*input.Code)
			if code == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "codigo cannot be empty")
			}
			if code != article.Code {
				if err := ensureCodeFree(ctx, txRepo, code); err != nil {
					return err
				}
			}
			article.Code = code
		}
		if input.Description != nil {
			description := strings.TrimSpace(*input.Description)
			if description == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "descripcion cannot be empty")
			}
			article.Description = description
		}
		if input.Type != nil {
			if !input.Type.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "tipo must be propio or subarriendo")
			}
			article.Type = *input.Type
		}
		if input.UnitValue != nil {
			if input.UnitValue.IsNegative() {
				return pkgerrors.New(pkgerrors.CodeValidation, "valor cannot be negative")
			}
			article.UnitValue = *input.UnitValue
		}
		if input.Status != nil {
			if !input.Status.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "estado must be activo or inactivo")
			}
			article.Status = *input.Status
		}
		if input.TotalQty != nil {
			if *input.TotalQty < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "cantidad_total cannot be negative")
			}
			delta := *input.TotalQty - article.TotalQty
			newAvailable := article.AvailableQty + delta
			if newAvailable < 0 {
				committed := article.TotalQty - article.AvailableQty
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("cantidad_total %d is below the %d units committed to events", *input.TotalQty, committed))
			}
			article.TotalQty = *input.TotalQty
			article.AvailableQty = newAvailable
		}

		return txRepo.Update(ctx, article)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "codigo already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update article")
	}

	return NewArticleDTO(article), nil
}

// Delete removes an article that no event line references.
func (s *service) Delete(ctx context.Context, articleID uuid.UUID) error {
	article, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return err
	}

	refs, err := s.repo.CountEventRefs(ctx, article.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count article references")
	}
	if refs > 0 {
		return pkgerrors.New(pkgerrors.CodeInUse,
			fmt.Sprintf("articulo %q is referenced by %d event line(s)", article.Code, refs))
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, article.ID)
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete article")
	}
	return nil
}

// Get loads a single article by ID.
func (s *service) Get(ctx context.Context, articleID uuid.UUID) (*ArticleDTO, error) {
	article, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return NewArticleDTO(article), nil
}

// List returns one page of articles plus the next cursor when more exist.
func (s *service) List(ctx context.Context, input ListArticlesInput) (*ArticleListResult, error) {
	pageSize := pagination.NormalizeLimit(input.Pagination.Limit)
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, ListQuery{
		Status: input.Status,
		Type:   input.Type,
		Search: input.Search,
		Limit:  pagination.LimitWithBuffer(input.Pagination.Limit),
		Cursor: cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list articles")
	}

	result := &ArticleListResult{Items: make([]ArticleDTO, 0, len(rows))}
	hasMore := len(rows) > pageSize
	if hasMore {
		rows = rows[:pageSize]
	}
	for i := range rows {
		result.Items = append(result.Items, *NewArticleDTO(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &next
	}
	return result, nil
}

// ensureCodeFree rejects codes already taken by another article. The unique
// index stays the backstop for concurrent inserts.
func ensureCodeFree(ctx context.Context, repo Repository, code string) error {
	if _, err := repo.FindByCode(ctx, code); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("codigo %q already exists", code))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check codigo uniqueness")
	}
	return nil
}

func (s *service) loadArticle(ctx context.Context, articleID uuid.UUID) (*models.Article, error) {
	if articleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "article id is required")
	}
	return findArticle(ctx, s.repo, articleID)
}

func findArticle(ctx context.Context, repo Repository, articleID uuid.UUID) (*models.Article, error) {
	article, err := repo.FindByID(ctx, articleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "articulo not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load article")
	}
	return article, nil
}
