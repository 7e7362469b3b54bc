// Package worker runs the background loops: the outbox dispatcher and the
// freshness sweeper.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// loop runs tick every interval until Stop. It is embedded by the workers
// so fx lifecycle hooks can start and stop them uniformly.
type loop struct {
	name     string
	interval time.Duration
	tick     func(ctx context.Context) error

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (l *loop) Start(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.run(ctx, l.done)
	return nil
}

func (l *loop) Stop(ctx context.Context) error {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	slog.Info("worker starting", "worker", l.name, "interval", l.interval)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopping", "worker", l.name)
			return
		case <-ticker.C:
			if err := l.tick(ctx); err != nil && ctx.Err() == nil {
				// Per-item backoff keeps a failing tick from hot-looping.
				slog.Error("worker tick failed", "worker", l.name, "error", err.Error())
			}
		}
	}
}
