package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/agrilink/agrilink-backend/api/responses"
	"github.com/agrilink/agrilink-backend/pkg/config"
	"github.com/agrilink/agrilink-backend/pkg/db"
	pkgerrors "github.com/agrilink/agrilink-backend/pkg/errors"
	"github.com/agrilink/agrilink-backend/pkg/logger"
)

const readinessTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AgriLink-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AgriLink-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		ready := true

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				checks["database"] = err.Error()
				ready = false
			} else {
				checks["database"] = "ok"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
				ready = false
			} else {
				checks["redis"] = "ok"
			}
		}

		if !ready {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
