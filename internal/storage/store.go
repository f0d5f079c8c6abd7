package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("key not found")

// Store is the key-value contract the ledger is built on. A ttl of zero
// means the entry never expires.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Increment atomically adds one to the counter at key and (re)arms its
	// expiry, returning the new value.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Delete(ctx context.Context, keys ...string) error
	// Push appends value to the list at key, keeping at most the newest
	// limit items.
	Push(ctx context.Context, key string, value []byte, limit int, ttl time.Duration) error
	Range(ctx context.Context, key string) ([][]byte, error)
	Close() error
}

// Entry is a live key with its remaining lifetime, used for snapshots.
type Entry struct {
	Key   string `json:"k"`
	Value []byte `json:"v"`
	TTL   uint32 `json:"t,omitempty"`
}

// Snapshotter is implemented by stores that keep their data in process
// memory and need dumping across restarts.
type Snapshotter interface {
	Dump() ([]Entry, error)
	Restore(entries []Entry) error
}

type unwrapper interface {
	Unwrap() Store
}

// AsSnapshotter walks through wrapping stores and returns the innermost
// Snapshotter, if any.
func AsSnapshotter(s Store) (Snapshotter, bool) {
	for s != nil {
		if sn, ok := s.(Snapshotter); ok {
			return sn, true
		}
		u, ok := s.(unwrapper)
		if !ok {
			return nil, false
		}
		s = u.Unwrap()
	}
	return nil, false
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func NewSystemClock() Clock {
	return SystemClock{}
}

func ttlSeconds(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	secs := int((ttl + time.Second - 1) / time.Second)
	return max(secs, 1)
}
