package world

import "github.com/prometheus/client_golang/prometheus"

// Уровни, на которых сервер нашёл чанк
const (
	tierMemory    = "memory"
	tierDisk      = "disk"
	tierGenerator = "generator"
	tierFailed    = "failed"
)

var (
	chunkResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voxelnet",
		Subsystem: "world",
		Name:      "chunk_resolutions_total",
		Help:      "Разрешения чанков по уровню кеша.",
	}, []string{"tier"})

	chunksCached = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "voxelnet",
		Subsystem: "world",
		Name:      "chunks_cached",
		Help:      "Количество чанков в памяти сервера.",
	})
)

func init() {
	prometheus.MustRegister(chunkResolutions, chunksCached)
}
