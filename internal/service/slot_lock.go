package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired signals that another request currently holds the
// lock for the same slot.
var ErrLockNotAcquired = errors.New("slot lock not acquired")

// SlotLocker serializes the check-then-book critical section per
// (doctor, date, time) slot so two concurrent bookings of the same
// slot cannot both pass the availability check.
type SlotLocker interface {
	WithSlotLock(ctx context.Context, doctorID int64, date, tm string, fn func(ctx context.Context) error) error
}

func slotKey(doctorID int64, date, tm string) string {
	return fmt.Sprintf("lock:slot:%d:%s:%s", doctorID, date, tm)
}

// redisSlotLocker holds a per-slot Redis key for the duration of the
// critical section. The value is a random fencing token so a lock can
// only be released by its owner, and the TTL bounds how long a crashed
// holder can block the slot.
type redisSlotLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSlotLocker returns a locker backed by SetNX on a per-slot key.
func NewRedisSlotLocker(client *redis.Client, ttl time.Duration) SlotLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &redisSlotLocker{client: client, ttl: ttl}
}

func (l *redisSlotLocker) WithSlotLock(ctx context.Context, doctorID int64, date, tm string, fn func(ctx context.Context) error) error {
	key := slotKey(doctorID, date, tm)
	fence := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, fence, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire slot lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}
	defer func() { _ = l.release(ctx, key, fence) }()

	lockCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()
	return fn(lockCtx)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisSlotLocker) release(ctx context.Context, key, fence string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, fence).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release slot lock: %w", err)
	}
	return nil
}

// mutexSlotLocker is the single-process fallback used when Redis is
// unavailable. It serializes bookings per slot key with ordinary
// mutexes; correct for one replica, which matches the deployment that
// runs without Redis.
type mutexSlotLocker struct {
	mu    sync.Mutex
	slots map[string]*sync.Mutex
}

// NewMutexSlotLocker returns an in-process SlotLocker.
func NewMutexSlotLocker() SlotLocker {
	return &mutexSlotLocker{slots: make(map[string]*sync.Mutex)}
}

func (l *mutexSlotLocker) WithSlotLock(ctx context.Context, doctorID int64, date, tm string, fn func(ctx context.Context) error) error {
	key := slotKey(doctorID, date, tm)
	l.mu.Lock()
	m, ok := l.slots[key]
	if !ok {
		m = &sync.Mutex{}
		l.slots[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}
