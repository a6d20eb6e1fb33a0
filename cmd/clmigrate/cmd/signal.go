package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dbsmedya/clmigrate/internal/logger"
)

// signalContext returns a context that is cancelled on SIGTERM or SIGINT.
// The record in progress is finished before the run stops.
func signalContext(parent context.Context, log *logger.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Warnw("received shutdown signal - finishing current record...", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
