// Package server runs the process's long-lived components and shuts them
// down together on a signal or the first failure.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component.
type Service interface {
	// Start runs the service and blocks until Stop is called or it fails.
	Start() error
	// Stop makes a running Start return. It must be safe to call after
	// Start failed.
	Stop()
}

// Lifecycle starts services in registration order and stops them in
// reverse order.
type Lifecycle struct {
	logger   *zap.Logger
	mu       sync.Mutex
	services []named
}

type named struct {
	name string
	svc  Service
}

// NewLifecycle creates an empty Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers svc under name.
//
// Precondition: Run must not have been called yet.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	l.services = append(l.services, named{name: name, svc: svc})
	l.mu.Unlock()
}

// Run starts every service and blocks until SIGINT, SIGTERM, ctx
// cancellation, or the first service failure.
//
// Postcondition: every service has been stopped and every Start has
// returned. The error is the first service failure, or nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	l.mu.Lock()
	services := append([]named(nil), l.services...)
	l.mu.Unlock()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed := make(chan error, len(services))
	var wg sync.WaitGroup
	for _, ns := range services {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.logger.Info("service starting", zap.String("service", ns.name))
			if err := ns.svc.Start(); err != nil {
				l.logger.Error("service failed", zap.String("service", ns.name), zap.Error(err))
				failed <- fmt.Errorf("service %s: %w", ns.name, err)
			}
		}()
	}

	var runErr error
	select {
	case <-sigCtx.Done():
		l.logger.Info("shutting down", zap.NamedError("cause", context.Cause(sigCtx)))
	case runErr = <-failed:
		l.logger.Info("shutting down after failure")
	}

	for i := len(services) - 1; i >= 0; i-- {
		begin := time.Now()
		services[i].svc.Stop()
		l.logger.Info("service stopped",
			zap.String("service", services[i].name),
			zap.Duration("elapsed", time.Since(begin)),
		)
	}
	wg.Wait()
	return runErr
}
