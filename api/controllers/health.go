package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/xnapps/purchase-tracking/api/responses"
	"github.com/xnapps/purchase-tracking/pkg/config"
	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
	"github.com/xnapps/purchase-tracking/pkg/logger"
)

const (
	envHeader    = "X-XNTrack-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is any dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency. A nil pinger is reported as skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP Pinger, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]string{
			"database": checkPinger(ctx, dbP),
			"redis":    checkPinger(ctx, redisP),
		}
		for _, state := range checks {
			if state == "down" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency check failed").
					WithDetails(map[string]any{"checks": checks}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

func checkPinger(ctx context.Context, p Pinger) string {
	if p == nil {
		return "skipped"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}
