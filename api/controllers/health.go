package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/ovenly-backend/api/responses"
	"github.com/angelmondragon/ovenly-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/ovenly-backend/pkg/errors"
	"github.com/angelmondragon/ovenly-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/ovenly-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

// Dependencies names the backends checked by the readiness probe. Nil entries
// are skipped.
type Dependencies map[string]pkgredis.Pinger

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ovenly-Env", cfg.App.Env)
		responses.WriteSuccess(w, responses.MsgHealthy, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and reports 503 if any fails.
func HealthReady(cfg *config.Config, deps Dependencies, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ovenly-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		var errs error
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "down"
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			checks[name] = "up"
		}

		if errs != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "readiness check failed").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, responses.MsgHealthy, map[string]any{"status": "ready", "checks": checks})
	}
}
