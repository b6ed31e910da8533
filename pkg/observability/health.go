package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// readinessTimeout bounds a single readiness request across all checks.
const readinessTimeout = 5 * time.Second

// CheckFunc reports whether one dependency is usable.
type CheckFunc func(ctx context.Context) error

// RedisCheck pings the render/document cache.
func RedisCheck(client *redis.Client) CheckFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

type dependency struct {
	name     string
	critical bool
	check    CheckFunc
}

// HealthChecker runs the registered dependency checks concurrently. A
// failing required dependency makes the server unhealthy; a failing
// optional one only degrades it.
type HealthChecker struct {
	version string
	started time.Time
	deps    []dependency
}

// NewHealthChecker returns a checker with no dependencies.
func NewHealthChecker(version string) *HealthChecker {
	return &HealthChecker{version: version, started: time.Now()}
}

// Require registers a dependency the server cannot serve without.
func (h *HealthChecker) Require(name string, check CheckFunc) *HealthChecker {
	h.deps = append(h.deps, dependency{name: name, critical: true, check: check})
	return h
}

// Optional registers a dependency whose loss only degrades the server.
func (h *HealthChecker) Optional(name string, check CheckFunc) *HealthChecker {
	h.deps = append(h.deps, dependency{name: name, check: check})
	return h
}

// HealthStatus is the readiness response body
type HealthStatus struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Version      string                      `json:"version,omitempty"`
	Uptime       string                      `json:"uptime"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus is the outcome of one check
type DependencyStatus struct {
	Status    string  `json:"status"`
	Required  bool    `json:"required"`
	Message   string  `json:"message,omitempty"`
	LatencyMS float64 `json:"latency_ms"`
}

// Check runs every dependency check and folds the results.
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:       StatusHealthy,
		Timestamp:    time.Now(),
		Version:      h.version,
		Uptime:       time.Since(h.started).Round(time.Second).String(),
		Dependencies: make(map[string]DependencyStatus, len(h.deps)),
	}

	var mu sync.Mutex
	var g errgroup.Group
	for _, dep := range h.deps {
		g.Go(func() error {
			result := runCheck(ctx, dep)
			mu.Lock()
			status.Dependencies[dep.name] = result
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	for _, dep := range status.Dependencies {
		if dep.Status != StatusUnhealthy {
			continue
		}
		if dep.Required {
			status.Status = StatusUnhealthy
		} else if status.Status == StatusHealthy {
			status.Status = StatusDegraded
		}
	}
	return status
}

func runCheck(ctx context.Context, dep dependency) DependencyStatus {
	start := time.Now()
	err := dep.check(ctx)
	result := DependencyStatus{
		Status:    StatusHealthy,
		Required:  dep.critical,
		LatencyMS: float64(time.Since(start).Microseconds()) / 1000,
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Message = err.Error()
	}
	return result
}

// Liveness answers 200 while the process is serving requests.
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, map[string]string{
		"status": StatusHealthy,
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// Readiness answers 503 when a required dependency is down.
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := h.Check(ctx)
	code := http.StatusOK
	if status.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeHealth(w, code, status)
}

func writeHealth(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// RegisterHealthRoutes registers /health, /health/live and /health/ready.
func RegisterHealthRoutes(router *mux.Router, checker *HealthChecker) {
	router.HandleFunc("/health", checker.Readiness).Methods(http.MethodGet)
	router.HandleFunc("/health/live", checker.Liveness).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", checker.Readiness).Methods(http.MethodGet)
}
