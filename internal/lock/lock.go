// Package lock serializes work per key, e.g. every cart mutation of one user.
package lock

import (
	"context"
	"errors"
	"fmt"
)

// ErrTimeout is returned when a lock could not be acquired before the
// context ended.
var ErrTimeout = errors.New("lock: acquire timed out")

// Locker hands out exclusive per-key locks. The returned unlock func must be
// called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// CartKey is the lock key guarding a user's cart.
func CartKey(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}
