package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/socketroles/socket-programming/internal/client"
	"github.com/socketroles/socket-programming/internal/config"
	"github.com/socketroles/socket-programming/internal/metrics"
	"github.com/socketroles/socket-programming/internal/server"
)

var (
	errProtocol = errors.New("please specify tcp or udp on the 1st argument")
	errRole     = errors.New("please specify server or client on the 2nd argument")
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config path] [tcp|udp] [server|client] [addr:port]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := initLogger(cfg.Logging)
	slog.SetDefault(logger)

	args := flag.Args()
	if len(args) != 3 {
		logger.Error("Please specify [tcp|udp] [server|client] [addr:port].")
		os.Exit(1)
	}

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	if cfg.Metrics.Enabled {
		httpServer := server.NewHTTPServer(cfg.Metrics, logger, prometheus.DefaultGatherer)
		if err := httpServer.Start(); err != nil {
			logger.Error("Failed to start metrics endpoint", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if err := run(args[0], args[1], args[2], cfg, logger, appMetrics, os.Stdin, os.Stdout); err != nil {
		logger.Error(err.Error(),
			slog.String("protocol", args[0]),
			slog.String("role", args[1]),
			slog.String("address", args[2]),
		)
		os.Exit(1)
	}
}

// run dispatches to the selected role. Servers only return on failure.
func run(protocol, role, address string, cfg *config.Config, logger *slog.Logger,
	m *metrics.Metrics, in io.Reader, out io.Writer) error {

	switch protocol {
	case "tcp":
		switch role {
		case "server":
			return server.NewTCPServer(&cfg.Echo, logger, m, out).ListenAndServe(address)
		case "client":
			return client.Connect(address)
		}
	case "udp":
		switch role {
		case "server":
			return server.NewUDPServer(&cfg.Echo, logger, m, out).ListenAndServe(address)
		case "client":
			return client.NewUDPClient(&cfg.Echo, logger, m, in, out).Communicate(address)
		}
	default:
		return errProtocol
	}

	return errRole
}

// initLogger creates the process-wide structured logger from configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Payload text goes to stdout, so logs default to stderr.
	var output *os.File
	switch cfg.Output {
	case "stdout":
		output = os.Stdout
	case "stderr", "":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stderr\n", cfg.Output, err)
			output = os.Stderr
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
