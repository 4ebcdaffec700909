package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/avpro-events/avpro-backend/api/responses"
	"github.com/avpro-events/avpro-backend/api/validators"
	"github.com/avpro-events/avpro-backend/internal/availability"
	pkgerrors "github.com/avpro-events/avpro-backend/pkg/errors"
	"github.com/avpro-events/avpro-backend/pkg/logger"
)

// AvailabilityCheck answers whether an article can cover a requested
// quantity right now. The answer is advisory, not a reservation.
func AvailabilityCheck(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "availability service unavailable"))
			return
		}

		rawID := strings.TrimSpace(r.URL.Query().Get("articulo_id"))
		articleID, err := uuid.Parse(rawID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid articulo_id").WithDetails(map[string]any{"field": "articulo_id"}))
			return
		}

		qty, err := validators.ParseQueryInt(r, "cantidad", 1, 1, 1000000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Check(r.Context(), articleID, qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
