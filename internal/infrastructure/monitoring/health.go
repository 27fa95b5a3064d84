package monitoring

import (
	"context"
	"sync"
	"time"
)

// CheckFunc probes a single dependency.
type CheckFunc func(ctx context.Context) error

type CheckResult struct {
	Name    string        `json:"name"`
	Healthy bool          `json:"healthy"`
	Error   string        `json:"error,omitempty"`
	Latency time.Duration `json:"latency"`
}

type HealthChecker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{checks: make(map[string]CheckFunc)}
}

func (h *HealthChecker) Register(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Run executes all registered checks and reports overall health.
func (h *HealthChecker) Run(ctx context.Context) (bool, []CheckResult) {
	h.mu.RLock()
	checks := make(map[string]CheckFunc, len(h.checks))
	for name, fn := range h.checks {
		checks[name] = fn
	}
	h.mu.RUnlock()

	healthy := true
	results := make([]CheckResult, 0, len(checks))
	for name, fn := range checks {
		start := time.Now()
		err := fn(ctx)
		result := CheckResult{
			Name:    name,
			Healthy: err == nil,
			Latency: time.Since(start),
		}
		if err != nil {
			result.Error = err.Error()
			healthy = false
		}
		results = append(results, result)
	}
	return healthy, results
}
