package server

import (
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/socketroles/socket-programming/internal/config"
	"github.com/socketroles/socket-programming/internal/metrics"
	"github.com/socketroles/socket-programming/internal/payload"
)

// UDPServer echoes datagrams back to their source address
type UDPServer struct {
	conn            *net.UDPConn
	logger          *slog.Logger
	metrics         *metrics.Metrics
	out             io.Writer
	bufferSize      int
	fullBufferReply bool
}

// NewUDPServer creates a new UDP echo server. Received payloads are printed to out.
func NewUDPServer(cfg *config.EchoConfig, logger *slog.Logger, m *metrics.Metrics, out io.Writer) *UDPServer {
	return &UDPServer{
		logger:          logger,
		metrics:         m,
		out:             out,
		bufferSize:      cfg.BufferSize,
		fullBufferReply: cfg.UDPFullBufferReply,
	}
}

// ListenAndServe binds address and runs the receive loop. It only returns on error.
func (s *UDPServer) ListenAndServe(address string) error {
	if err := s.Listen(address); err != nil {
		return err
	}
	return s.Serve()
}

// Listen binds the UDP socket
func (s *UDPServer) Listen(address string) error {
	addr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return fmt.Errorf("%w: udp %s: %w", ErrBind, address, err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("%w: udp %s: %w", ErrBind, address, err)
	}

	s.conn = conn

	s.logger.Info("UDP server listening",
		slog.String("address", conn.LocalAddr().String()),
		slog.Int("buffer_size", s.bufferSize),
		slog.Bool("full_buffer_reply", s.fullBufferReply),
	)

	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *UDPServer) Addr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Serve handles one datagram at a time. The source address of each datagram is
// used only to address its reply. Any receive, send or decode failure ends the
// loop and is left to the caller to report.
func (s *UDPServer) Serve() error {
	buffer := make([]byte, s.bufferSize)

	for {
		clear(buffer)

		// Datagrams longer than the buffer are truncated by the kernel.
		n, src, err := s.conn.ReadFromUDP(buffer)
		if err != nil {
			return fmt.Errorf("%w: receive: %w", ErrDatagramIO, err)
		}

		s.metrics.RecordDatagramReceived()
		s.logger.Debug("Handling data from "+src.String(), slog.Int("bytes", n))

		text, decodeErr := payload.Decode(buffer[:n])
		if decodeErr != nil {
			s.metrics.RecordDecodeError(metrics.ProtocolUDP)
		} else {
			fmt.Fprint(s.out, text)
		}

		reply := buffer[:n]
		if s.fullBufferReply {
			reply = buffer
		}

		if _, err := s.conn.WriteToUDP(reply, src); err != nil {
			return fmt.Errorf("%w: send to %s: %w", ErrDatagramIO, src, err)
		}
		s.metrics.RecordEcho(metrics.ProtocolUDP, len(reply))

		if decodeErr != nil {
			return fmt.Errorf("datagram from %s: %w", src, decodeErr)
		}
	}
}
