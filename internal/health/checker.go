package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pinger is satisfied by every snapshot backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckResult represents the health of a single dependency.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResult is the top-level health response.
type HealthResult struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// Checker verifies that the storage backend is reachable.
type Checker struct {
	storage Pinger
	backend string
	logger  *slog.Logger
	gauge   *prometheus.GaugeVec
}

// NewChecker creates a health checker for the named storage backend
// ("file" or "postgres") and registers its Prometheus gauge.
func NewChecker(storage Pinger, backend string, logger *slog.Logger, reg prometheus.Registerer) *Checker {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "vault",
		Name:      "health_check_up",
		Help:      "Whether a dependency is reachable. 1 = up, 0 = down.",
	}, []string{"dependency"})
	reg.MustRegister(gauge)

	return &Checker{
		storage: storage,
		backend: backend,
		logger:  logger.With("component", "health"),
		gauge:   gauge,
	}
}

// Liveness returns a simple "up" response if the process is running.
func (c *Checker) Liveness(_ context.Context) HealthResult {
	return HealthResult{Status: "up"}
}

// Readiness pings the storage backend and reports its status.
func (c *Checker) Readiness(ctx context.Context) HealthResult {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	result := HealthResult{
		Status: "up",
		Checks: make(map[string]CheckResult),
	}

	if err := c.storage.Ping(checkCtx); err != nil {
		c.logger.Warn("storage health check failed", "backend", c.backend, "error", err)
		result.Status = "down"
		result.Checks[c.backend] = CheckResult{Status: "down", Error: err.Error()}
		c.gauge.WithLabelValues(c.backend).Set(0)
	} else {
		result.Checks[c.backend] = CheckResult{Status: "up"}
		c.gauge.WithLabelValues(c.backend).Set(1)
	}

	return result
}
