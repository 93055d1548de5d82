package server

import (
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/google/uuid"

	"github.com/socketroles/socket-programming/internal/config"
	"github.com/socketroles/socket-programming/internal/metrics"
	"github.com/socketroles/socket-programming/internal/payload"
)

// TCPServer accepts connections and echoes everything each peer sends
type TCPServer struct {
	listener   net.Listener
	logger     *slog.Logger
	metrics    *metrics.Metrics
	out        io.Writer
	bufferSize int
}

// NewTCPServer creates a new TCP echo server. Received payloads are printed to out.
func NewTCPServer(cfg *config.EchoConfig, logger *slog.Logger, m *metrics.Metrics, out io.Writer) *TCPServer {
	return &TCPServer{
		logger:     logger,
		metrics:    m,
		out:        out,
		bufferSize: cfg.BufferSize,
	}
}

// ListenAndServe binds address and runs the accept loop. It only returns on error.
func (s *TCPServer) ListenAndServe(address string) error {
	if err := s.Listen(address); err != nil {
		return err
	}
	return s.Serve()
}

// Listen binds the listening socket
func (s *TCPServer) Listen(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("%w: tcp %s: %w", ErrBind, address, err)
	}

	s.listener = listener

	s.logger.Info("TCP server listening", slog.String("address", listener.Addr().String()))

	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *TCPServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until Accept fails; the caller reports that error.
// Every connection is handed to a new goroutine that owns it until it is
// closed. The loop never waits for workers and puts no bound on how many run.
func (s *TCPServer) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAccept, err)
		}

		s.metrics.RecordConnectionAccepted()

		go s.handleConnection(conn)
	}
}

// handleConnection runs the echo worker for conn. Failures stay inside the worker.
func (s *TCPServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	logger := s.logger.With(
		slog.String("conn_id", uuid.NewString()),
		slog.String("peer", conn.RemoteAddr().String()),
	)

	err := s.echo(conn, logger)
	s.metrics.RecordWorkerDone(err)
	if err != nil {
		logger.Error("Connection dropped", slog.String("error", err.Error()))
	}
}

// echo reads from conn and writes every chunk back until the peer closes.
// A chunk that is not valid UTF-8 is still echoed before the worker gives up.
func (s *TCPServer) echo(conn net.Conn, logger *slog.Logger) error {
	logger.Debug("Handling data from " + conn.RemoteAddr().String())

	buffer := make([]byte, s.bufferSize)
	for {
		n, err := conn.Read(buffer)
		if err == io.EOF {
			logger.Debug("Connection closed.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: read: %w", ErrConnectionIO, err)
		}
		if n == 0 {
			continue
		}

		text, decodeErr := payload.Decode(buffer[:n])
		if decodeErr != nil {
			s.metrics.RecordDecodeError(metrics.ProtocolTCP)
		} else {
			fmt.Fprintln(s.out, text)
		}

		if _, err := conn.Write(buffer[:n]); err != nil {
			return fmt.Errorf("%w: write: %w", ErrConnectionIO, err)
		}
		s.metrics.RecordEcho(metrics.ProtocolTCP, n)

		if decodeErr != nil {
			return decodeErr
		}
	}
}
