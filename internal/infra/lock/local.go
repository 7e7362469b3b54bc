package lock

import (
	"context"
	"sync"
	"time"

	"affiliate-notify/internal/usecase/shared"
)

// LocalLocker serializes work inside one process. The ttl is ignored:
// holders always release, and there is no other process to protect from.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot)}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string, _ time.Duration) (shared.Lock, error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return &localLock{owner: l, key: key, slot: s}, nil
	case <-ctx.Done():
		l.unref(key, s)
		return nil, ErrLockHeld
	}
}

func (l *LocalLocker) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

type localLock struct {
	owner *LocalLocker
	key   string
	slot  *slot
	once  sync.Once
}

func (l *localLock) Release(context.Context) error {
	l.once.Do(func() {
		<-l.slot.ch
		l.owner.unref(l.key, l.slot)
	})
	return nil
}
