package controllers

import (
	"net/http"

	"go.uber.org/multierr"

	"github.com/avpro-events/avpro-backend/api/responses"
	"github.com/avpro-events/avpro-backend/pkg/config"
	"github.com/avpro-events/avpro-backend/pkg/db"
	pkgerrors "github.com/avpro-events/avpro-backend/pkg/errors"
	"github.com/avpro-events/avpro-backend/pkg/logger"
	"github.com/avpro-events/avpro-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AVPro-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when every backing dependency answers
// a ping. Failures are aggregated so one probe shows everything down at once.
func HealthReady(cfg *config.Config, logg *logger.Logger, database db.Pinger, cache redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AVPro-Env", cfg.App.Env)

		var errs error
		checks := map[string]string{}

		if database != nil {
			if err := database.Ping(r.Context()); err != nil {
				errs = multierr.Append(errs, err)
				checks["database"] = "down"
			} else {
				checks["database"] = "up"
			}
		}

		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				errs = multierr.Append(errs, err)
				checks["redis"] = "down"
			} else {
				checks["redis"] = "up"
			}
		}

		if errs != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "readiness check failed").WithDetails(checks))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
