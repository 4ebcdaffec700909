package controllers

import (
	"net/http"

	"github.com/avpro-events/avpro-backend/api/responses"
	"github.com/avpro-events/avpro-backend/internal/dashboard"
	pkgerrors "github.com/avpro-events/avpro-backend/pkg/errors"
	"github.com/avpro-events/avpro-backend/pkg/logger"
)

// DashboardSummary returns the aggregated business snapshot.
func DashboardSummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
