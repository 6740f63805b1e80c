package controllers

import (
	"context"
	"net/http"

	"github.com/luismarin/cartbase-backend/api/responses"
	"github.com/luismarin/cartbase-backend/pkg/config"
	pkgerrors "github.com/luismarin/cartbase-backend/pkg/errors"
	"github.com/luismarin/cartbase-backend/pkg/logger"
)

type pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cartbase-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when both backing stores answer a ping.
func HealthReady(cfg *config.Config, db, cache pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cartbase-Env", cfg.App.Env)
		checks := map[string]string{}
		healthy := true

		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				checks["database"] = "unreachable"
				healthy = false
			} else {
				checks["database"] = "ok"
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				checks["redis"] = "unreachable"
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "backing stores unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
