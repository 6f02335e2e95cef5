package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xnapps/purchase-tracking/api/controllers"
	trackingcontrollers "github.com/xnapps/purchase-tracking/api/controllers/tracking"
	"github.com/xnapps/purchase-tracking/api/middleware"
	"github.com/xnapps/purchase-tracking/internal/tracking"
	"github.com/xnapps/purchase-tracking/pkg/config"
	"github.com/xnapps/purchase-tracking/pkg/db"
	"github.com/xnapps/purchase-tracking/pkg/logger"
	"github.com/xnapps/purchase-tracking/pkg/redis"
)

// NewRouter mounts health, metrics and the tracking API. redisClient may be nil, in
// which case idempotency replay and the redis readiness check are disabled.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	trackingService tracking.Service,
	trackingQuery tracking.QueryService,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var (
		redisPinger controllers.Pinger
		store       redis.CreateReplayStore
	)
	if redisClient != nil {
		redisPinger = redisClient
		store = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(store, logg))

		r.Route("/tracking", func(r chi.Router) {
			r.Post("/", trackingcontrollers.Create(trackingService, logg))
			r.Get("/", trackingcontrollers.List(trackingQuery, logg))
			r.Get("/{id}", trackingcontrollers.Get(trackingService, logg))
			r.Put("/{id}", trackingcontrollers.Update(trackingService, logg))
			r.Delete("/{id}", trackingcontrollers.Delete(trackingService, logg))
		})
		r.Get("/source-orders/{id}/tracking", trackingcontrollers.BySourceOrder(trackingQuery, logg))
		r.Get("/counterparties/{code}/open-orders", trackingcontrollers.OpenOrders(trackingQuery, logg))
		r.Get("/line-statuses", trackingcontrollers.LineStatuses(trackingQuery, logg))
	})

	return r
}
