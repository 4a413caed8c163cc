// Package http assembles the gin route tree and the HTTP server around
// the similarity, prediction and case endpoints.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MarkIP-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MarkIP-Intelligence/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies for the
// complete route tree. Nil handlers leave their routes unregistered.
type RouterConfig struct {
	Similarity *handlers.SimilarityHandler
	Prediction *handlers.PredictionHandler
	Cases      *handlers.CaseHandler
	Health     *handlers.HealthHandler

	// Metrics feeds the request counter and latency histogram;
	// MetricsHandler, when set, is mounted at /metrics.
	Metrics        *prometheus.AppMetrics
	MetricsHandler http.Handler

	CORSOrigin string
	Logger     logging.Logger
}

// NewRouter builds the full route tree: global middleware, public probes,
// the metrics endpoint and the versioned API group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(cfg.Logger),
		middleware.Logging(cfg.Logger, cfg.Metrics),
		middleware.CORS(cfg.CORSOrigin),
	)

	if cfg.Health != nil {
		r.GET("/healthz", cfg.Health.Liveness)
		r.GET("/readyz", cfg.Health.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")

	if cfg.Similarity != nil {
		sim := api.Group("/similarity")
		sim.POST("/visual", cfg.Similarity.Visual)
		sim.POST("/aural", cfg.Similarity.Aural)
		sim.POST("/conceptual", cfg.Similarity.Conceptual)
		sim.POST("/marks", cfg.Similarity.Marks)
		sim.POST("/goods-services", cfg.Similarity.GoodsServices)
	}
	if cfg.Prediction != nil {
		api.POST("/predictions/case", cfg.Prediction.PredictCase)
	}
	if cfg.Cases != nil {
		api.GET("/cases/:reference", cfg.Cases.Get)
		api.POST("/cases/ingest", cfg.Cases.Ingest)
	}

	return r
}
