package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// runServer serves on listener and runs each background task until the
// server fails or a signal arrives. On a signal the tasks are stopped and
// in-flight submits, which may still be waiting on the provider, get up to
// drainTimeout to finish. Tasks have returned by the time runServer does.
func runServer(
	server *http.Server,
	listener net.Listener,
	signals <-chan os.Signal,
	drainTimeout time.Duration,
	logger *zap.Logger,
	background ...func(context.Context),
) error {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for _, task := range background {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task(ctx)
		}()
	}
	defer func() {
		cancel()
		wg.Wait()
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-signals:
		logger.Info("draining try-on requests",
			zap.String("signal", sig.String()),
			zap.Duration("timeout", drainTimeout),
		)
		cancel()

		drainCtx, stop := context.WithTimeout(context.Background(), drainTimeout)
		defer stop()
		if err := server.Shutdown(drainCtx); err != nil {
			return fmt.Errorf("in-flight requests not drained: %w", err)
		}
		if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
