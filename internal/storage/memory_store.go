package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"unsafe"

	"github.com/coocood/freecache"
	json "github.com/goccy/go-json"
)

const (
	minCacheSizeMB = 1
	// freecache stores an entry only when key and value fit in a quarter of
	// one of its 256 segments, minus the entry header.
	entryHeaderSize = 24
)

// MemoryStore keeps the ledger in a freecache instance. Expiry follows the
// injected clock so tests can move time forward.
type MemoryStore struct {
	cache     *freecache.Cache
	maxKeyVal int
}

// MaxEntrySize is the largest key plus value freecache accepts in a cache
// of sizeMB megabytes.
func MaxEntrySize(sizeMB int) int {
	sizeMB = max(sizeMB, minCacheSizeMB)
	return sizeMB*1024 - entryHeaderSize
}

type clockTimer struct {
	clock Clock
}

func (t clockTimer) Now() uint32 {
	return uint32(t.clock.Now().Unix())
}

func NewMemoryStore(sizeMB int, clock Clock) *MemoryStore {
	if clock == nil {
		clock = SystemClock{}
	}
	sizeMB = max(sizeMB, minCacheSizeMB)
	return &MemoryStore{
		cache:     freecache.NewCacheCustomTimer(sizeMB*1024*1024, clockTimer{clock: clock}),
		maxKeyVal: MaxEntrySize(sizeMB),
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// freecache copies keys internally, so the result is never written to.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	val, err := m.cache.Get(unsafeStringToBytes(key))
	if err == freecache.ErrNotFound {
		return nil, ErrNotFound
	}
	return val, err
}

func (m *MemoryStore) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.cache.Set(unsafeStringToBytes(key), value, ttlSeconds(ttl))
}

func (m *MemoryStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var (
		next     int64
		parseErr error
	)
	expire := ttlSeconds(ttl)
	_, _, err := m.cache.Update(unsafeStringToBytes(key), func(value []byte, found bool) ([]byte, bool, int) {
		next = 0
		if found {
			cur, err := strconv.ParseInt(string(value), 10, 64)
			if err != nil {
				parseErr = fmt.Errorf("counter %s holds %q: %w", key, value, err)
				return nil, false, 0
			}
			next = cur
		}
		next++
		return strconv.AppendInt(nil, next, 10), true, expire
	})
	if err != nil {
		return 0, err
	}
	if parseErr != nil {
		return 0, parseErr
	}
	return next, nil
}

func (m *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, k := range keys {
		m.cache.Del(unsafeStringToBytes(k))
	}
	return nil
}

func (m *MemoryStore) Push(ctx context.Context, key string, value []byte, limit int, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var decodeErr error
	expire := ttlSeconds(ttl)
	_, _, err := m.cache.Update(unsafeStringToBytes(key), func(current []byte, found bool) ([]byte, bool, int) {
		var items []json.RawMessage
		if found {
			if err := json.Unmarshal(current, &items); err != nil {
				decodeErr = fmt.Errorf("list %s: %w", key, err)
				return nil, false, 0
			}
		}
		items = append(items, json.RawMessage(value))
		if limit > 0 && len(items) > limit {
			items = items[len(items)-limit:]
		}
		items = m.fitList(len(key), items)
		encoded, err := json.Marshal(items)
		if err != nil {
			decodeErr = err
			return nil, false, 0
		}
		return encoded, true, expire
	})
	if err != nil {
		return err
	}
	return decodeErr
}

// fitList drops the oldest items until the encoded list fits in a single
// freecache entry. The newest item is always kept.
func (m *MemoryStore) fitList(keyLen int, items []json.RawMessage) []json.RawMessage {
	size := keyLen + 2 + len(items) - 1
	for _, it := range items {
		size += len(it)
	}
	for len(items) > 1 && size > m.maxKeyVal {
		size -= len(items[0]) + 1
		items = items[1:]
	}
	return items
}

func (m *MemoryStore) Range(ctx context.Context, key string) ([][]byte, error) {
	raw, err := m.Get(ctx, key)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("list %s: %w", key, err)
	}
	out := make([][]byte, len(items))
	for i, it := range items {
		out[i] = []byte(it)
	}
	return out, nil
}

func (m *MemoryStore) Close() error {
	m.cache.Clear()
	return nil
}

func (m *MemoryStore) EntryCount() int64 {
	return m.cache.EntryCount()
}

func (m *MemoryStore) Dump() ([]Entry, error) {
	entries := make([]Entry, 0, m.cache.EntryCount())
	it := m.cache.NewIterator()
	for e := it.Next(); e != nil; e = it.Next() {
		ttl, err := m.cache.TTL(e.Key)
		if err != nil {
			// expired between iteration and lookup
			continue
		}
		entries = append(entries, Entry{
			Key:   string(e.Key),
			Value: append([]byte(nil), e.Value...),
			TTL:   ttl,
		})
	}
	return entries, nil
}

func (m *MemoryStore) Restore(entries []Entry) error {
	for _, e := range entries {
		if err := m.cache.Set([]byte(e.Key), e.Value, int(e.TTL)); err != nil {
			return fmt.Errorf("restore %s: %w", e.Key, err)
		}
	}
	return nil
}
