package graph

import (
	"context"
	"time"
)

// HealthStatus is the result of one connectivity check
type HealthStatus struct {
	Healthy     bool      `json:"healthy"`
	Message     string    `json:"message"`
	Database    string    `json:"database"`
	MaxPoolSize int       `json:"maxPoolSize"`
	LatencyMs   int64     `json:"latencyMs"`
	CheckedAt   time.Time `json:"checkedAt"`
}

// CheckHealth verifies connectivity and reports how long it took
func (c *Client) CheckHealth(ctx context.Context) HealthStatus {
	start := time.Now()
	err := c.HealthCheck(ctx)

	status := HealthStatus{
		Healthy:     err == nil,
		Message:     "ok",
		Database:    c.database,
		MaxPoolSize: c.poolSize,
		LatencyMs:   time.Since(start).Milliseconds(),
		CheckedAt:   time.Now().UTC(),
	}
	if err != nil {
		status.Message = err.Error()
	}
	return status
}

// WatchHealth runs periodic connectivity checks until ctx is cancelled,
// logging failures so pool exhaustion or an unreachable store shows up
// before requests start failing.
func (c *Client) WatchHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Info("starting store health monitor", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("store health monitor stopped")
			return
		case <-ticker.C:
			if status := c.CheckHealth(ctx); !status.Healthy {
				c.logger.Warn("store health check failed", "error", status.Message)
			} else if status.LatencyMs > 1000 {
				c.logger.Warn("store health check slow", "latency_ms", status.LatencyMs)
			} else {
				c.logger.Debug("store health check passed", "latency_ms", status.LatencyMs)
			}
		}
	}
}

// SharedHealth checks the process-wide client, reporting an unhealthy status
// when the client cannot be created at all.
func SharedHealth(ctx context.Context) HealthStatus {
	c, err := Shared(ctx)
	if err != nil {
		return HealthStatus{
			Healthy:   false,
			Message:   err.Error(),
			CheckedAt: time.Now().UTC(),
		}
	}
	return c.CheckHealth(ctx)
}
