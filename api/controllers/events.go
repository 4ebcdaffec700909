package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avpro-events/avpro-backend/api/responses"
	"github.com/avpro-events/avpro-backend/api/validators"
	event "github.com/avpro-events/avpro-backend/internal/events"
	pkgerrors "github.com/avpro-events/avpro-backend/pkg/errors"
	"github.com/avpro-events/avpro-backend/pkg/logger"
	"github.com/avpro-events/avpro-backend/pkg/pagination"
)

type eventLineRequest struct {
	ArticleID uuid.UUID        `json:"articulo_id" validate:"required"`
	Qty       int              `json:"cantidad" validate:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"valor_unitario,omitempty"`
}

type createEventRequest struct {
	Code        string             `json:"codigo_evento" validate:"required"`
	Date        string             `json:"fecha" validate:"required"`
	Description string             `json:"descripcion,omitempty"`
	Venue       string             `json:"salon,omitempty"`
	Company     string             `json:"compania,omitempty"`
	Lines       []eventLineRequest `json:"detalles" validate:"required,min=1,dive"`
}

type updateEventRequest struct {
	Code        *string             `json:"codigo_evento,omitempty"`
	Date        *string             `json:"fecha,omitempty"`
	Description *string             `json:"descripcion,omitempty"`
	Venue       *string             `json:"salon,omitempty"`
	Company     *string             `json:"compania,omitempty"`
	Lines       *[]eventLineRequest `json:"detalles,omitempty" validate:"omitempty,min=1,dive"`
}

// EventCreate books an event, debiting availability for every line inside
// one transaction.
func EventCreate(svc event.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event service unavailable"))
			return
		}

		var payload createEventRequest
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

// EventUpdate mutates an event header and, when detalles is present,
// replaces the full line set moving stock by the net delta.
func EventUpdate(svc event.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event service unavailable"))
			return
		}

		eventID, err := parseIDParam(r, "eventoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateEventRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), eventID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// EventDelete cancels an event and releases its committed stock.
func EventDelete(svc event.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event service unavailable"))
			return
		}

		eventID, err := parseIDParam(r, "eventoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), eventID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// EventGet fetches one event with its lines.
func EventGet(svc event.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event service unavailable"))
			return
		}

		eventID, err := parseIDParam(r, "eventoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, err := svc.Get(r.Context(), eventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, found)
	}
}

// EventList returns a filtered, cursor-paginated event page.
func EventList(svc event.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dateFrom, err := validators.ParseQueryDate(r, "desde")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dateTo, err := validators.ParseQueryDate(r, "hasta")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := event.ListEventsInput{
			Company:  strings.TrimSpace(r.URL.Query().Get("compania")),
			DateFrom: dateFrom,
			DateTo:   dateTo,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}

		page, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

func (r createEventRequest) toCreateInput() (event.CreateEventInput, error) {
	date, err := parseEventDate(r.Date)
	if err != nil {
		return event.CreateEventInput{}, err
	}

	return event.CreateEventInput{
		Code:        strings.TrimSpace(r.Code),
		Date:        date,
		Description: strings.TrimSpace(r.Description),
		Venue:       strings.TrimSpace(r.Venue),
		Company:     strings.TrimSpace(r.Company),
		Lines:       toLineInputs(r.Lines),
	}, nil
}

func (r updateEventRequest) toUpdateInput() (event.UpdateEventInput, error) {
	input := event.UpdateEventInput{
		Code:        r.Code,
		Description: r.Description,
		Venue:       r.Venue,
		Company:     r.Company,
	}

	if r.Date != nil {
		date, err := parseEventDate(*r.Date)
		if err != nil {
			return event.UpdateEventInput{}, err
		}
		input.Date = &date
	}

	if r.Lines != nil {
		lines := toLineInputs(*r.Lines)
		input.Lines = &lines
	}

	return input, nil
}

func toLineInputs(lines []eventLineRequest) []event.LineInput {
	out := make([]event.LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, event.LineInput{
			ArticleID: line.ArticleID,
			Qty:       line.Qty,
			UnitPrice: line.UnitPrice,
		})
	}
	return out
}

// parseEventDate accepts both bare dates and full RFC3339 timestamps so the
// admin UI can keep sending either form.
func parseEventDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if value, err := time.Parse("2006-01-02", raw); err == nil {
		return value, nil
	}
	if value, err := time.Parse(time.RFC3339, raw); err == nil {
		return value, nil
	}
	return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "fecha must be YYYY-MM-DD or RFC3339").WithDetails(map[string]any{"field": "fecha"})
}
