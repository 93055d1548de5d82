package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Protocol label values
const (
	ProtocolTCP = "tcp"
	ProtocolUDP = "udp"
)

// Metrics contains all Prometheus metrics for the echo servers and the UDP client
type Metrics struct {
	// TCP server metrics
	ConnectionsAccepted prometheus.Counter
	ActiveWorkers       prometheus.Gauge
	WorkerFailures      prometheus.Counter

	// UDP server metrics
	DatagramsReceived prometheus.Counter

	// Shared echo metrics
	BytesEchoed  *prometheus.CounterVec
	DecodeErrors *prometheus.CounterVec

	// UDP client metrics
	ClientExchanges prometheus.Counter
}

// NewMetrics creates all metrics and registers them with reg. A nil reg leaves
// the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ConnectionsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "socket_tcp_connections_accepted_total",
			Help: "Total number of TCP connections accepted",
		}),
		ActiveWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "socket_tcp_active_workers",
			Help: "Current number of running TCP echo workers",
		}),
		WorkerFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "socket_tcp_worker_failures_total",
			Help: "Total number of TCP echo workers that ended with an error",
		}),
		DatagramsReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "socket_udp_datagrams_received_total",
			Help: "Total number of UDP datagrams received by the server",
		}),
		BytesEchoed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "socket_bytes_echoed_total",
			Help: "Total number of bytes written back to peers",
		}, []string{"protocol"}),
		DecodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "socket_decode_errors_total",
			Help: "Total number of payloads that were not valid UTF-8",
		}, []string{"protocol"}),
		ClientExchanges: factory.NewCounter(prometheus.CounterOpts{
			Name: "socket_udp_client_exchanges_total",
			Help: "Total number of request/reply exchanges completed by the UDP client",
		}),
	}
}

// RecordConnectionAccepted counts an accepted connection and its new worker
func (m *Metrics) RecordConnectionAccepted() {
	m.ConnectionsAccepted.Inc()
	m.ActiveWorkers.Inc()
}

// RecordWorkerDone marks a worker as finished, counting it as failed when err is set
func (m *Metrics) RecordWorkerDone(err error) {
	m.ActiveWorkers.Dec()
	if err != nil {
		m.WorkerFailures.Inc()
	}
}

// RecordDatagramReceived increments the datagrams received counter
func (m *Metrics) RecordDatagramReceived() {
	m.DatagramsReceived.Inc()
}

// RecordEcho adds n bytes to the echoed bytes of protocol
func (m *Metrics) RecordEcho(protocol string, n int) {
	m.BytesEchoed.WithLabelValues(protocol).Add(float64(n))
}

// RecordDecodeError increments the decode errors counter of protocol
func (m *Metrics) RecordDecodeError(protocol string) {
	m.DecodeErrors.WithLabelValues(protocol).Inc()
}

// RecordClientExchange increments the client exchanges counter
func (m *Metrics) RecordClientExchange() {
	m.ClientExchanges.Inc()
}
