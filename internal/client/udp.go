package client

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/socketroles/socket-programming/internal/config"
	"github.com/socketroles/socket-programming/internal/metrics"
	"github.com/socketroles/socket-programming/internal/payload"
)

// UDPClient sends lines read from its input to a remote address and prints
// every reply it gets back
type UDPClient struct {
	logger     *slog.Logger
	metrics    *metrics.Metrics
	in         *bufio.Reader
	out        io.Writer
	bufferSize int
}

// NewUDPClient creates a client reading lines from in and printing replies to out
func NewUDPClient(cfg *config.EchoConfig, logger *slog.Logger, m *metrics.Metrics, in io.Reader, out io.Writer) *UDPClient {
	return &UDPClient{
		logger:     logger,
		metrics:    m,
		in:         bufio.NewReader(in),
		out:        out,
		bufferSize: cfg.BufferSize,
	}
}

// Communicate binds an ephemeral local port and then, for each input line,
// sends the line to address and waits for one reply. Replies are not matched
// to requests: the next datagram to arrive is taken as the answer. It returns
// when input ends or any step fails.
func (c *UDPClient) Communicate(address string) error {
	remote, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %w", ErrDatagramIO, address, err)
	}

	// Port 0 lets the OS pick a free port.
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBind, err)
	}
	defer conn.Close()

	c.logger.Debug("UDP client ready",
		slog.String("local", conn.LocalAddr().String()),
		slog.String("remote", remote.String()),
	)

	buffer := make([]byte, c.bufferSize)
	for {
		line, err := c.in.ReadString('\n')
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInput, err)
		}

		if _, err := conn.WriteToUDP([]byte(line), remote); err != nil {
			return fmt.Errorf("%w: send to %s: %w", ErrDatagramIO, remote, err)
		}

		n, src, err := conn.ReadFromUDP(buffer)
		if err != nil {
			return fmt.Errorf("%w: receive: %w", ErrDatagramIO, err)
		}

		c.logger.Debug("Received reply", slog.String("peer", src.String()), slog.Int("bytes", n))

		text, err := payload.Decode(buffer[:n])
		if err != nil {
			return err
		}
		fmt.Fprint(c.out, text)

		c.metrics.RecordClientExchange()
	}
}
