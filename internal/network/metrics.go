package network

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/voxelnet/internal/protocol"
)

const (
	dirIn  = "in"
	dirOut = "out"
)

// Причины завершения сессии
const (
	reasonOutboundClosed = "outbound_closed"
	reasonPeerClosed     = "peer_closed"
	reasonIOError        = "io_error"
	reasonProtocol       = "protocol_error"
	reasonOwnerGone      = "owner_gone"
	reasonAborted        = "aborted"
)

var (
	packetsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voxelnet",
		Subsystem: "network",
		Name:      "packets_total",
		Help:      "Пакеты по направлению и типу.",
	}, []string{"direction", "type"})

	bytesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voxelnet",
		Subsystem: "network",
		Name:      "bytes_total",
		Help:      "Байты кадров по направлению.",
	}, []string{"direction"})

	activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "voxelnet",
		Subsystem: "network",
		Name:      "active_sessions",
		Help:      "Открытые сессии.",
	})

	dispatchDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "voxelnet",
		Subsystem: "network",
		Name:      "dispatch_dropped_total",
		Help:      "Пакеты для уже отключённых клиентов.",
	})

	sessionTerminations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voxelnet",
		Subsystem: "network",
		Name:      "session_terminations_total",
		Help:      "Завершённые сессии по причине.",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(packetsTotal, bytesTotal, activeSessions, dispatchDropped, sessionTerminations)
}

func observePacket(direction string, t protocol.PacketType, frameBytes int) {
	packetsTotal.WithLabelValues(direction, t.String()).Inc()
	bytesTotal.WithLabelValues(direction).Add(float64(frameBytes))
}
