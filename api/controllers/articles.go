package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avpro-events/avpro-backend/api/responses"
	"github.com/avpro-events/avpro-backend/api/validators"
	article "github.com/avpro-events/avpro-backend/internal/articles"
	"github.com/avpro-events/avpro-backend/pkg/enums"
	pkgerrors "github.com/avpro-events/avpro-backend/pkg/errors"
	"github.com/avpro-events/avpro-backend/pkg/logger"
	"github.com/avpro-events/avpro-backend/pkg/pagination"
)

type createArticleRequest struct {
	Code        string          `json:"codigo" validate:"required"`
	Description string          `json:"descripcion" validate:"required"`
	Type        string          `json:"tipo" validate:"required"`
	UnitValue   decimal.Decimal `json:"valor"`
	TotalQty    int             `json:"cantidad_total" validate:"min=0"`
	Status      *string         `json:"estado,omitempty"`
}

type updateArticleRequest struct {
	Code        *string          `json:"codigo,omitempty"`
	Description *string          `json:"descripcion,omitempty"`
	Type        *string          `json:"tipo,omitempty"`
	UnitValue   *decimal.Decimal `json:"valor,omitempty"`
	TotalQty    *int             `json:"cantidad_total,omitempty"`
	Status      *string          `json:"estado,omitempty"`
}

// ArticleCreate handles catalog article creation.
func ArticleCreate(svc article.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "article service unavailable"))
			return
		}

		var payload createArticleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ArticleUpdate handles partial article mutations.
func ArticleUpdate(svc article.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "article service unavailable"))
			return
		}

		articleID, err := parseIDParam(r, "articuloId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateArticleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), articleID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// ArticleDelete removes an article that no event references.
func ArticleDelete(svc article.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "article service unavailable"))
			return
		}

		articleID, err := parseIDParam(r, "articuloId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), articleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ArticleGet fetches one article by id.
func ArticleGet(svc article.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "article service unavailable"))
			return
		}

		articleID, err := parseIDParam(r, "articuloId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, err := svc.Get(r.Context(), articleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, found)
	}
}

// ArticleList returns a filtered, cursor-paginated article page.
func ArticleList(svc article.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "article service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := article.ListArticlesInput{
			Search: strings.TrimSpace(r.URL.Query().Get("busqueda")),
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("estado")); raw != "" {
			status, parseErr := enums.ParseArticleStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid estado"))
				return
			}
			input.Status = &status
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("tipo")); raw != "" {
			articleType, parseErr := enums.ParseArticleType(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid tipo"))
				return
			}
			input.Type = &articleType
		}

		page, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

func (r createArticleRequest) toCreateInput() (article.CreateArticleInput, error) {
	articleType, err := enums.ParseArticleType(strings.TrimSpace(r.Type))
	if err != nil {
		return article.CreateArticleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tipo")
	}

	input := article.CreateArticleInput{
		Code:        strings.TrimSpace(r.Code),
		Description: strings.TrimSpace(r.Description),
		Type:        articleType,
		UnitValue:   r.UnitValue,
		TotalQty:    r.TotalQty,
	}

	if r.Status != nil {
		status, err := enums.ParseArticleStatus(strings.TrimSpace(*r.Status))
		if err != nil {
			return article.CreateArticleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid estado")
		}
		input.Status = &status
	}

	return input, nil
}

func (r updateArticleRequest) toUpdateInput() (article.UpdateArticleInput, error) {
	input := article.UpdateArticleInput{
		Code:        r.Code,
		Description: r.Description,
		UnitValue:   r.UnitValue,
		TotalQty:    r.TotalQty,
	}

	if r.Type != nil {
		articleType, err := enums.ParseArticleType(strings.TrimSpace(*r.Type))
		if err != nil {
			return article.UpdateArticleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tipo")
		}
		input.Type = &articleType
	}

	if r.Status != nil {
		status, err := enums.ParseArticleStatus(strings.TrimSpace(*r.Status))
		if err != nil {
			return article.UpdateArticleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid estado")
		}
		input.Status = &status
	}

	return input, nil
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"param": name})
	}
	return id, nil
}
