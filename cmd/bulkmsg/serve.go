package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bingotables/bulkmsg/internal/monitor"
	"github.com/bingotables/bulkmsg/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll campaign progress and serve the dashboard, health and metrics",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(os.Stdout, false)
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	pollCfg := monitor.DefaultConfig()
	pollCfg.Interval = a.cfg.Monitor.PollInterval
	poller := monitor.NewPoller(a.client, a.gate, pollCfg, logger)
	poller.Start(ctx)
	defer poller.Stop()

	srv := server.New(&a.cfg.Server, poller, a.gate, a.metrics, version, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		logger.Info("shutting down...")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
