package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/voxelnet/internal/logging"
)

// MetricsServer отдаёт /metrics для Prometheus
type MetricsServer struct {
	srv      *http.Server
	listener net.Listener
}

// StartMetricsServer запускает HTTP-эндпоинт Prometheus на addr (например ":2112").
// Метод неблокирующий: сервер работает в отдельной горутине.
func StartMetricsServer(addr string) (*MetricsServer, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	m := &MetricsServer{
		srv:      &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		listener: l,
	}
	go func() {
		logging.Info("Prometheus /metrics доступен по адресу %s", l.Addr())
		if err := m.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	return m, nil
}

// Addr возвращает фактический адрес
func (m *MetricsServer) Addr() net.Addr {
	return m.listener.Addr()
}

// Shutdown останавливает HTTP-сервер
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
