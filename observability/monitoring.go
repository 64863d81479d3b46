package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthStats aggregates the metrics served by /health.
type HealthStats struct {
	Status          string  `json:"status"`
	Timestamp       string  `json:"timestamp"`
	UptimeSeconds   int64   `json:"uptime_seconds"`
	OpenConnections int     `json:"open_connections"`
	Goroutines      int     `json:"goroutines"`
	AllocMemMb      uint64  `json:"alloc_mem_mb"`
	NumGC           uint32  `json:"num_gc"`
	CPUPercent      float64 `json:"cpu_percent"`
	RSSMb           uint64  `json:"rss_mb"`
}

// Monitor keeps a cached view of process health, refreshed by the monitoring
// worker so the HTTP handler never pays the gopsutil probing cost itself.
type Monitor struct {
	mu          sync.RWMutex
	log         *slog.Logger
	proc        *process.Process
	startedAt   time.Time
	connections func() int
	latest      HealthStats
}

// NewMonitor builds a monitor around the current process. connections reports
// the live registry size at refresh time.
func NewMonitor(log *slog.Logger, connections func() int) (*Monitor, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	m := &Monitor{
		log:         log,
		proc:        proc,
		startedAt:   time.Now().UTC(),
		connections: connections,
	}
	m.Refresh()
	return m, nil
}

// Refresh recomputes the cached stats. CPU or memory probe failures degrade
// to zeroed gauges rather than failing the snapshot: health reporting must
// never take the service down.
func (m *Monitor) Refresh() {
	now := time.Now().UTC()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := HealthStats{
		Status:          "OK",
		Timestamp:       now.Format(time.RFC3339),
		UptimeSeconds:   int64(now.Sub(m.startedAt).Seconds()),
		OpenConnections: m.connections(),
		Goroutines:      runtime.NumGoroutine(),
		AllocMemMb:      memStats.Alloc / 1024 / 1024,
		NumGC:           memStats.NumGC,
	}

	if cpu, err := m.proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	} else {
		m.log.Debug("Failed to read CPU percent", "error", err)
	}
	if memInfo, err := m.proc.MemoryInfo(); err == nil {
		stats.RSSMb = memInfo.RSS / 1024 / 1024
	} else {
		m.log.Debug("Failed to read memory info", "error", err)
	}

	m.mu.Lock()
	m.latest = stats
	m.mu.Unlock()
}

// Latest returns the last refreshed snapshot, with the timestamp and
// connection count brought up to date.
func (m *Monitor) Latest() HealthStats {
	m.mu.RLock()
	stats := m.latest
	m.mu.RUnlock()

	now := time.Now().UTC()
	stats.Timestamp = now.Format(time.RFC3339)
	stats.UptimeSeconds = int64(now.Sub(m.startedAt).Seconds())
	stats.OpenConnections = m.connections()
	return stats
}
