package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"toxedit/internal/core"
	"toxedit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the toxedit HTTP API server",
	Long: `Run the toxedit HTTP API server, exposing edit, batch, history,
and diff endpoints over JSON.`,
	Run: runServe,
}

var (
	serveListen    string
	serveLogLevel  string
	serveLogFormat string
)

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "text", "Log format (text, json)")
}

func runServe(cmd *cobra.Command, args []string) {
	logger := buildLogger(serveLogLevel, serveLogFormat)
	slog.SetDefault(logger)

	c := initContext()
	defer c.Close()

	gen, err := newGenerator(c.Config)
	if err != nil {
		exitError("failed to create generator: %v", err)
	}
	orch := core.New(c.Store, gen, logger, c.Config.GenTimeout())

	addr := c.Config.ListenAddr
	if serveListen != "" {
		addr = serveListen
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(orch, c.Store, nil, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			exitError("server failed: %v", err)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}
}

func buildLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
