package metrics

import (
	"net/http"

	"github.com/ErlanBelekov/pin-vault/internal/health"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth metrics

	AuthAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vault",
		Name:      "auth_attempts_total",
		Help:      "Authentication attempts, by outcome.",
	}, []string{"outcome"})

	TokensIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vault",
		Name:      "tokens_issued_total",
		Help:      "Bearer tokens issued.",
	})

	TokensEvictedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vault",
		Name:      "tokens_evicted_total",
		Help:      "Tokens removed from the vault, by reason.",
	}, []string{"reason"})

	ActiveTokens = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vault",
		Name:      "tokens",
		Help:      "Tokens currently held, including expired ones not yet observed.",
	})

	// Vault contents

	UsersTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vault",
		Name:      "users",
		Help:      "Users currently provisioned.",
	})

	BookmarkOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vault",
		Name:      "bookmark_operations_total",
		Help:      "Committed bookmark mutations, by operation.",
	}, []string{"op"})

	// Persistence

	SnapshotWriteDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vault",
		Name:      "snapshot_write_duration_seconds",
		Help:      "Time taken to persist the full vault snapshot.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	SnapshotWriteFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vault",
		Name:      "snapshot_write_failures_total",
		Help:      "Snapshot writes that failed; the triggering operation was rejected.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vault",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vault",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		AuthAttemptsTotal,
		TokensIssuedTotal,
		TokensEvictedTotal,
		ActiveTokens,
		UsersTotal,
		BookmarkOpsTotal,
		SnapshotWriteDuration,
		SnapshotWriteFailuresTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus liveness and readiness probes backed by
// checker on a port separate from the public API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, checker.Liveness(c.Request.Context()))
	})
	r.GET("/readyz", func(c *gin.Context) {
		res := checker.Readiness(c.Request.Context())
		status := http.StatusOK
		if res.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, res)
	})
	return &http.Server{Addr: addr, Handler: r}
}
