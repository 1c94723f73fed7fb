// internal/notify/lock.go
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// lockTTL bounds how long a crashed run can hold the lock.
const lockTTL = 15 * time.Minute

// RunLock serializes match runs per week with a Redis SET NX key, so two
// concurrent invocations cannot double-place the same user.
type RunLock struct {
	Client *redis.Client
}

// Acquire takes the week's lock. The release func only deletes the key if
// this invocation still owns it.
func (l *RunLock) Acquire(ctx context.Context, week time.Time) (func(), bool, error) {
	key := fmt.Sprintf("matchrun:lock:%s", week.Format("2006-01-02"))
	token := uuid.New().String()

	ok, err := l.Client.SetNX(ctx, key, token, lockTTL).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to take run lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// Compare-and-delete so an expired lock reclaimed by another run is
		// not removed from under it.
		script := redis.NewScript(`
			if redis.call("get", KEYS[1]) == ARGV[1] then
				return redis.call("del", KEYS[1])
			end
			return 0
		`)
		_ = script.Run(context.Background(), l.Client, []string{key}, token).Err()
	}
	return release, true, nil
}
