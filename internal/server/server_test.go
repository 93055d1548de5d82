package server

import (
	"bytes"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/socketroles/socket-programming/internal/config"
	"github.com/socketroles/socket-programming/internal/metrics"
)

// syncBuffer collects console output written by concurrent workers
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry())
}

func newTestEchoConfig(modify func(*config.EchoConfig)) *config.EchoConfig {
	cfg := config.Default().Echo
	if modify != nil {
		modify(&cfg)
	}
	return &cfg
}
