package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically logs out sessions that stopped polling. It satisfies
// server.Service.
type Sweeper struct {
	registry *Registry
	interval time.Duration
	timeout  time.Duration
	logout   func(*Player)
	logger   *zap.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewSweeper builds a sweeper that calls logout for every session idle longer
// than timeout, checking every interval.
//
// Precondition: interval and timeout must be > 0; logout and logger must be non-nil.
func NewSweeper(reg *Registry, interval, timeout time.Duration, logout func(*Player), logger *zap.Logger) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		registry: reg,
		interval: interval,
		timeout:  timeout,
		logout:   logout,
		logger:   logger,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start blocks until Stop is called.
func (s *Sweeper) Start() error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Stop ends Start.
func (s *Sweeper) Stop() {
	s.once.Do(s.cancel)
}

// Sweep logs out every expired session once and returns how many it removed.
func (s *Sweeper) Sweep() int {
	expired := s.registry.Expired(s.now(), s.timeout)
	for _, p := range expired {
		s.logger.Info("session timed out",
			zap.String("player", p.Name),
			zap.Int32("id", p.ID),
			zap.Duration("idle", s.now().Sub(p.LastSeen())),
		)
		s.logout(p)
	}
	return len(expired)
}
