package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const healthCheckTimeout = 3 * time.Second

type dependencyHealth struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type healthReport struct {
	Status       string                      `json:"status"`
	CheckedAt    string                      `json:"checked_at"`
	Dependencies map[string]dependencyHealth `json:"dependencies"`
}

// HealthCheck handles GET /health. Storage dependencies are checked in
// parallel under one deadline; any failure turns the report "degraded" and
// the status 503.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		report := healthReport{
			Status:       "healthy",
			CheckedAt:    time.Now().UTC().Format(time.RFC3339),
			Dependencies: make(map[string]dependencyHealth, len(checkers)),
		}

		// Checks report failure in their result, never as a group error, so
		// one dependency going down does not cut the others short.
		var (
			mu sync.Mutex
			g  errgroup.Group
		)
		for _, checker := range checkers {
			g.Go(func() error {
				dep := checkDependency(ctx, checker)

				mu.Lock()
				defer mu.Unlock()
				report.Dependencies[checker.Name()] = dep
				if dep.Status != "healthy" {
					report.Status = "degraded"
				}
				return nil
			})
		}
		_ = g.Wait()

		code := http.StatusOK
		if report.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, report)
	}
}

func checkDependency(ctx context.Context, hc ports.HealthChecker) dependencyHealth {
	start := time.Now()
	err := hc.Ping(ctx)
	dep := dependencyHealth{Status: "healthy", LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		dep.Status = "unhealthy"
		dep.Error = err.Error()
	}
	return dep
}
