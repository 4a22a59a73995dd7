package payments

import (
	"context"
	"fmt"
	"time"
)

const checkoutLockTTL = 30 * time.Second

// Locker grants short-lived exclusive leases. ok is false when another holder
// owns key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

type nopLocker struct{}

func (nopLocker) Acquire(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}

func checkoutLockKey(bookingID uint) string {
	return fmt.Sprintf("checkout:booking:%d", bookingID)
}
