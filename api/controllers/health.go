package controllers

import (
	"context"
	"net/http"

	"github.com/mfigueroa/showroom-backend/api/responses"
	"github.com/mfigueroa/showroom-backend/pkg/config"
	pkgerrors "github.com/mfigueroa/showroom-backend/pkg/errors"
	"github.com/mfigueroa/showroom-backend/pkg/logger"
)

// Pinger is the reachability check each backing dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Showroom-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every backing dependency answers a ping.
func HealthReady(cfg *config.Config, deps map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Showroom-Env", cfg.App.Env)

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				appErr := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency unavailable").
					WithDetails(map[string]string{"dependency": name})
				responses.WriteError(r.Context(), logg, w, appErr)
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
