package workers

import (
	"anongram/observability"
	"context"
	"log/slog"
	"time"
)

// HealthRefresh keeps the cached health snapshot warm so the /health handler
// answers from memory instead of probing the process on every request.
type HealthRefresh struct {
	monitor  *observability.Monitor
	log      *slog.Logger
	interval time.Duration
}

func NewHealthRefresh(monitor *observability.Monitor, log *slog.Logger, interval time.Duration) *HealthRefresh {
	return &HealthRefresh{monitor: monitor, log: log, interval: interval}
}

func (w *HealthRefresh) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.monitor.Refresh()
			stats := w.monitor.Latest()
			w.log.Debug("Heartbeat",
				"connections", stats.OpenConnections,
				"goroutines", stats.Goroutines,
				"alloc_mb", stats.AllocMemMb,
				"cpu_percent", stats.CPUPercent)
		}
	}
}
