package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	carvalue "github.com/goliatone/go-carvalue"
	"github.com/goliatone/go-carvalue/internal/server"
	"github.com/goliatone/go-carvalue/internal/telemetry"
	"github.com/goliatone/go-carvalue/pkg/openapi"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the input form and POST /predict over HTTP",
		Long: `Starts the HTTP server. The model artifact is loaded eagerly; when it is
missing the server still starts and every prediction reports the missing
file until it appears. Send SIGHUP to reload the artifact.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				root.cfg.Addr = addr
			}
			return runServe(cmd.Context(), root)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (CARVALUE_ADDR)")
	return cmd
}

func newHandler(ctx context.Context, root *rootOptions) (http.Handler, *app, error) {
	a, err := root.build(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := a.loader.Load(ctx); err != nil {
		root.logger.Warn("starting without a model", "path", a.loader.Path(), "error", err)
	}

	srv := server.New(a.orch,
		server.WithLogger(root.logger),
		server.WithModelStatus(a.loader),
		server.WithRuntimeFS(carvalue.RuntimeAssetsFS()),
		server.WithMaxBodyBytes(root.cfg.MaxBodyBytes),
		server.WithOpenAPIOptions(openapi.WithInfo("carvalue", version)),
	)
	return srv.Handler(), a, nil
}

func runServe(ctx context.Context, root *rootOptions) error {
	cfg := root.cfg
	logger := root.logger

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Settings{
		Endpoint: cfg.OTelEndpoint,
		Enabled:  cfg.OTelEnabled,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	handler, a, err := newHandler(ctx, root)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if _, err := a.loader.Reload(ctx); err != nil {
					logger.Error("model reload failed", "path", a.loader.Path(), "error", err)
				}
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "model", cfg.ModelPath)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
