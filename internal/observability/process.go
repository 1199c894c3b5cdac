package observability

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/annel0/voxelnet/internal/logging"
)

// ProcessStats - снимок ресурсов процесса
type ProcessStats struct {
	CPUPercent float64
	RSSBytes   uint64
	Threads    int32
	Goroutines int
	Uptime     time.Duration
}

var (
	cpuGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "voxelnet", Subsystem: "process", Name: "cpu_percent",
		Help: "Загрузка CPU процессом.",
	})
	rssGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "voxelnet", Subsystem: "process", Name: "rss_bytes",
		Help: "Резидентная память процесса.",
	})
	goroutineGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "voxelnet", Subsystem: "process", Name: "goroutines",
		Help: "Количество горутин.",
	})
)

func init() {
	prometheus.MustRegister(cpuGauge, rssGauge, goroutineGauge)
}

// ProcessMonitor периодически снимает статистику процесса через gopsutil
type ProcessMonitor struct {
	proc      *process.Process
	startTime time.Time
	logger    *logging.Logger
}

// NewProcessMonitor создаёт монитор текущего процесса
func NewProcessMonitor(logger *logging.Logger) (*ProcessMonitor, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &ProcessMonitor{proc: proc, startTime: time.Now(), logger: logger}, nil
}

// Snapshot снимает текущую статистику и обновляет метрики
func (m *ProcessMonitor) Snapshot() (ProcessStats, error) {
	stats := ProcessStats{
		Goroutines: runtime.NumGoroutine(),
		Uptime:     time.Since(m.startTime),
	}

	cpu, err := m.proc.CPUPercent()
	if err != nil {
		return stats, fmt.Errorf("cpu: %w", err)
	}
	stats.CPUPercent = cpu

	mem, err := m.proc.MemoryInfo()
	if err != nil {
		return stats, fmt.Errorf("memory: %w", err)
	}
	stats.RSSBytes = mem.RSS

	if threads, err := m.proc.NumThreads(); err == nil {
		stats.Threads = threads
	}

	cpuGauge.Set(stats.CPUPercent)
	rssGauge.Set(float64(stats.RSSBytes))
	goroutineGauge.Set(float64(stats.Goroutines))
	return stats, nil
}

// Run снимает статистику каждые interval до отмены ctx
func (m *ProcessMonitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := m.Snapshot()
			if err != nil {
				m.logger.Warn("Не удалось получить статистику процесса: %v", err)
				continue
			}
			m.logger.Info("Процесс: uptime %s, CPU %.1f%%, RSS %.1f MB, горутин %d",
				FormatUptime(stats.Uptime), stats.CPUPercent, float64(stats.RSSBytes)/1024/1024, stats.Goroutines)
		}
	}
}

// StartProcessMonitor запускает монитор в отдельной горутине
func StartProcessMonitor(ctx context.Context, interval time.Duration, logger *logging.Logger) error {
	m, err := NewProcessMonitor(logger)
	if err != nil {
		return err
	}
	go m.Run(ctx, interval)
	return nil
}

// FormatUptime форматирует время работы: "1д 2ч 3м 4с"
func FormatUptime(uptime time.Duration) string {
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}
