package server

import (
	"bytes"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socketroles/socket-programming/internal/config"
	"github.com/socketroles/socket-programming/internal/metrics"
	"github.com/socketroles/socket-programming/internal/payload"
)

func startUDPServer(t *testing.T, modify func(*config.EchoConfig)) (*UDPServer, *metrics.Metrics, *syncBuffer, <-chan error) {
	t.Helper()

	m := newTestMetrics()
	out := &syncBuffer{}
	s := NewUDPServer(newTestEchoConfig(modify), newTestLogger(), m, out)

	require.NoError(t, s.Listen("127.0.0.1:0"))
	t.Cleanup(func() { s.conn.Close() })

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve() }()

	return s, m, out, errCh
}

func newUDPPeer(t *testing.T) *net.UDPConn {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.SetDeadline(time.Now().Add(ioTimeout)))
	return conn
}

func sendDatagram(t *testing.T, peer *net.UDPConn, s *UDPServer, data []byte) {
	t.Helper()

	_, err := peer.WriteToUDP(data, s.Addr().(*net.UDPAddr))
	require.NoError(t, err)
}

func receiveReply(t *testing.T, peer *net.UDPConn) []byte {
	t.Helper()

	buffer := make([]byte, 2*config.DefaultBufferSize)
	n, _, err := peer.ReadFromUDP(buffer)
	require.NoError(t, err, "Failed to receive reply")
	return buffer[:n]
}

func TestUDPEchoSuperset(t *testing.T) {
	s, m, _, _ := startUDPServer(t, nil)
	peer := newUDPPeer(t)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "scenario payload", data: []byte("hello\n")},
		{name: "single byte", data: []byte("x")},
		{name: "full buffer", data: bytes.Repeat([]byte("z"), config.DefaultBufferSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sendDatagram(t, peer, s, tt.data)

			reply := receiveReply(t, peer)
			require.Len(t, reply, config.DefaultBufferSize)
			assert.Equal(t, tt.data, reply[:len(tt.data)])
		})
	}

	assert.Equal(t, float64(len(tests)), testutil.ToFloat64(m.DatagramsReceived))
	assert.Equal(t, float64(len(tests)*config.DefaultBufferSize),
		testutil.ToFloat64(m.BytesEchoed.WithLabelValues(metrics.ProtocolUDP)))
}

func TestUDPTrimmedReply(t *testing.T) {
	s, _, _, _ := startUDPServer(t, func(c *config.EchoConfig) { c.UDPFullBufferReply = false })
	peer := newUDPPeer(t)

	sendDatagram(t, peer, s, []byte("hello\n"))

	assert.Equal(t, []byte("hello\n"), receiveReply(t, peer))
}

func TestUDPOversizedDatagramIsTruncated(t *testing.T) {
	s, _, _, _ := startUDPServer(t, nil)
	peer := newUDPPeer(t)

	data := bytes.Repeat([]byte("0123456789"), 150)
	sendDatagram(t, peer, s, data)

	reply := receiveReply(t, peer)
	require.Len(t, reply, config.DefaultBufferSize)
	assert.Equal(t, data[:config.DefaultBufferSize], reply)
}

func TestUDPStatelessness(t *testing.T) {
	s, _, _, _ := startUDPServer(t, func(c *config.EchoConfig) { c.UDPFullBufferReply = false })
	first := newUDPPeer(t)
	second := newUDPPeer(t)

	sendDatagram(t, first, s, []byte("first-1"))
	sendDatagram(t, second, s, []byte("second-1"))
	assert.Equal(t, []byte("first-1"), receiveReply(t, first))
	assert.Equal(t, []byte("second-1"), receiveReply(t, second))

	sendDatagram(t, second, s, []byte("second-2"))
	sendDatagram(t, first, s, []byte("first-2"))
	assert.Equal(t, []byte("second-2"), receiveReply(t, second))
	assert.Equal(t, []byte("first-2"), receiveReply(t, first))
}

func TestUDPPrintsPayload(t *testing.T) {
	s, _, out, _ := startUDPServer(t, nil)
	peer := newUDPPeer(t)

	sendDatagram(t, peer, s, []byte("hello\n"))
	receiveReply(t, peer)

	assert.Equal(t, "hello\n", out.String())
}

func TestUDPInvalidUTF8EndsLoop(t *testing.T) {
	logs := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelError}))
	m := newTestMetrics()
	out := &syncBuffer{}
	s := NewUDPServer(newTestEchoConfig(nil), logger, m, out)
	require.NoError(t, s.Listen("127.0.0.1:0"))
	t.Cleanup(func() { s.conn.Close() })

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve() }()

	peer := newUDPPeer(t)

	sendDatagram(t, peer, s, []byte{0xff, 0xfe})

	reply := receiveReply(t, peer)
	assert.Equal(t, []byte{0xff, 0xfe}, reply[:2])

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, payload.ErrDecode)
		assert.Contains(t, err.Error(), peer.LocalAddr().String())
	case <-time.After(ioTimeout):
		t.Fatal("Serve did not return after a decode failure")
	}
	assert.Empty(t, logs.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeErrors.WithLabelValues(metrics.ProtocolUDP)))
	assert.Empty(t, out.String())
}

func TestUDPReceiveError(t *testing.T) {
	s, _, _, errCh := startUDPServer(t, nil)
	require.NoError(t, s.conn.Close())

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrDatagramIO)
		assert.ErrorIs(t, err, net.ErrClosed)
	case <-time.After(ioTimeout):
		t.Fatal("Serve did not return after the socket was closed")
	}
}

func TestUDPListenBindError(t *testing.T) {
	s, _, _, _ := startUDPServer(t, nil)

	tests := []struct {
		name    string
		address string
	}{
		{name: "address in use", address: s.Addr().String()},
		{name: "unresolvable address", address: "not-an-address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := NewUDPServer(newTestEchoConfig(nil), newTestLogger(), newTestMetrics(), io.Discard)

			err := other.ListenAndServe(tt.address)
			require.ErrorIs(t, err, ErrBind)
			assert.Nil(t, other.Addr())
		})
	}
}
