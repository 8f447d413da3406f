package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// reserveAttempt counts one attempt and starts the window on the first one.
// Running it as a script keeps the check and the increment in one step, so
// concurrent logins cannot both pass on the last free slot.
var reserveAttempt = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// LoginThrottle counts login attempts per key in a fixed window.
// Key format: login_fail:<key>
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

// NewLoginThrottle allows up to maxAttempts attempts per window. A successful
// login calls Reset, so in practice only failures accumulate.
func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, maxAttempts: int64(maxAttempts), window: window}
}

// Allow reserves an attempt for key and reports whether it is within the
// limit. The window starts at the first attempt.
func (t *LoginThrottle) Allow(ctx context.Context, key string) (bool, error) {
	n, err := reserveAttempt.Run(ctx, t.client, []string{t.key(key)}, t.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n <= t.maxAttempts, nil
}

// Reset clears the attempt count for key.
func (t *LoginThrottle) Reset(ctx context.Context, key string) error {
	if err := t.client.Del(ctx, t.key(key)).Err(); err != nil {
		return fmt.Errorf("throttle reset: %w", err)
	}
	return nil
}

func (t *LoginThrottle) key(key string) string {
	return "login_fail:" + key
}
