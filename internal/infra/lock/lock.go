// Package lock implements shared.Locker over Redis for multi-replica
// deployments and in process for a single instance.
package lock

import (
	"errors"
	"time"
)

// ErrLockHeld is returned when the lock could not be taken before the
// caller's context ended or the wait budget ran out.
var ErrLockHeld = errors.New("lock is held by another worker")

const (
	pollMin = 10 * time.Millisecond
	pollMax = 200 * time.Millisecond
)
