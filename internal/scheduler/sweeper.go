package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/vidmark/internal/logger"
)

// SweepTarget applies the auto-delete policy to all stored bookmarks and
// returns how many were removed.
type SweepTarget interface {
	Sweep(ctx context.Context) int
}

// Sweeper periodically removes finished video bookmarks.
type Sweeper struct {
	target   SweepTarget
	logger   logger.Logger
	interval time.Duration
	trigger  chan struct{}
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewSweeper creates a sweeper. An interval <= 0 disables the ticker; the
// sweeper then only runs when triggered.
func NewSweeper(target SweepTarget, log logger.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		target:   target,
		logger:   log,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start sweeps once, then keeps sweeping in the background until Stop is
// called or ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	s.Sweep(ctx)

	go func() {
		defer close(s.done)

		var tick <-chan time.Time
		if s.interval > 0 {
			ticker := time.NewTicker(s.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				s.Sweep(ctx)
			case <-s.trigger:
				s.logger.Info("manual sweep triggered")
				s.Sweep(ctx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Trigger requests a sweep without waiting for it. Requests made while one
// is already pending are merged.
func (s *Sweeper) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Stop ends the background loop and waits for it. It must follow Start.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.done
}

// Sweep runs one pass and returns how many bookmarks were removed.
func (s *Sweeper) Sweep(ctx context.Context) int {
	removed := s.target.Sweep(ctx)
	if removed > 0 {
		s.logger.Info("swept finished video bookmarks",
			logger.Int("removed", removed))
	} else {
		s.logger.Debug("no finished video bookmarks to sweep")
	}
	return removed
}
