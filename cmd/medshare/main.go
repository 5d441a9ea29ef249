// Command medshare serves the medicine-sharing API over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medshare/internal/adapters/httpapi"
	"medshare/internal/config"
	"medshare/internal/core"
	"medshare/internal/logging"
	"medshare/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args, os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env-file", ".env", "dotenv file loaded before reading the environment")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: stderr})

	adapter, err := core.OpenAdapter(ctx, cfg.Storage)
	if err != nil {
		logger.Error("open storage failed", "driver", cfg.Storage.Driver, "error", err)
		return 1
	}
	if c, ok := adapter.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	m := metrics.New()
	svc := core.NewService(adapter, core.WithLogger(logger), core.WithMetrics(m))
	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: httpapi.NewRouter(svc, httpapi.Options{
			Logger:         logger,
			Metrics:        m,
			CORSOrigins:    cfg.HTTP.CORSOrigins,
			RateLimitRPS:   cfg.HTTP.RateLimitRPS,
			RateLimitBurst: cfg.HTTP.RateLimitBurst,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return serve(ctx, srv, logger, svc.Driver())
}

func serve(ctx context.Context, srv *http.Server, logger *logging.Logger, driver string) int {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "driver", driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		return 1
	}
	logger.Info("server stopped")
	return 0
}
