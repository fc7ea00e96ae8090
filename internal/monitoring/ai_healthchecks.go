package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_INTERVAL = 15 * time.Second

// HealthChecker is implemented by the OpenAI and Hugging Face clients.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CheckOnce runs a single health check and stores the outcome in healthy.
func CheckOnce(ctx context.Context, name string, checker HealthChecker, healthy *atomic.Bool) bool {
	checkCtx, cancel := context.WithTimeout(ctx, HEALTHCHECK_INTERVAL/2)
	defer cancel()

	err := checker.HealthCheck(checkCtx)
	isHealthy := err == nil
	if previous := healthy.Swap(isHealthy); previous != isHealthy {
		if isHealthy {
			slog.Info("[HealthCheck] Service recovered", slog.String("service", name))
		} else {
			slog.Warn("[HealthCheck] Service is unhealthy",
				slog.String("service", name),
				slog.String("error", err.Error()))
		}
	}
	return isHealthy
}

// MonitorHealth checks the service every interval until ctx is done. The flag
// gates the primary scorer of a FallbackScorer.
func MonitorHealth(ctx context.Context, name string, checker HealthChecker, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_INTERVAL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	CheckOnce(ctx, name, checker, healthy)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CheckOnce(ctx, name, checker, healthy)
		}
	}
}
