package observability

import (
	"context"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxelnet/internal/logging"
)

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5с", FormatUptime(5*time.Second))
	assert.Equal(t, "2м 5с", FormatUptime(2*time.Minute+5*time.Second))
	assert.Equal(t, "1ч 0м 0с", FormatUptime(time.Hour))
	assert.Equal(t, "1д 1ч 0м 0с", FormatUptime(25*time.Hour))
}

func TestProcessSnapshot(t *testing.T) {
	m, err := NewProcessMonitor(logging.NewWriterLogger("test", os.Stderr, logging.ERROR))
	require.NoError(t, err)

	stats, err := m.Snapshot()
	require.NoError(t, err)
	assert.Greater(t, stats.RSSBytes, uint64(0))
	assert.Greater(t, stats.Goroutines, 0)
}

func TestMetricsServer(t *testing.T) {
	m, err := StartMetricsServer("127.0.0.1:0")
	require.NoError(t, err)
	defer m.Shutdown(context.Background())

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + m.Addr().String() + "/metrics")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "voxelnet_process_goroutines")
}

func TestTelemetryDisabled(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), TelemetryOptions{ServiceName: "test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTelemetrySampler(t *testing.T) {
	assert.Contains(t, TelemetryOptions{}.sampler().Description(), "AlwaysOnSampler")
	assert.Contains(t, TelemetryOptions{SampleRatio: 0.25}.sampler().Description(), "TraceIDRatioBased{0.25}")
}
