package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"rld/internal/storage"
	"rld/internal/testutil"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var snapStart = time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

func seededStore(t *testing.T, clock *testutil.FakeClock) *storage.MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := storage.NewMemoryStore(4, clock)
	require.NoError(t, s.SetWithExpiry(ctx, "rld:w1:blacklist", []byte(`{"reason":"x"}`), 0))
	require.NoError(t, s.SetWithExpiry(ctx, "rld:w1:ratelimit", []byte(`{"level":1}`), time.Hour))
	_, err := s.Increment(ctx, "rld:w1:violations", 7*24*time.Hour)
	require.NoError(t, err)
	return s
}

func TestFileManager_NotSupportedForRemoteStores(t *testing.T) {
	fm := NewFileManager(&testutil.MockCompressor{}, testutil.NewFailingStore(nil), testutil.NewFakeClock(snapStart), &testutil.MockLogger{})
	assert.False(t, fm.Supported())

	_, err := fm.SaveToFile(filepath.Join(t.TempDir(), "x.dat"))
	assert.True(t, errors.Is(err, ErrNotSnapshottable))
	_, err = fm.LoadFromFile(filepath.Join(t.TempDir(), "x.dat"))
	assert.True(t, errors.Is(err, ErrNotSnapshottable))
}

func TestFileManager_SaveToFile_AtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.dat")
	clock := testutil.NewFakeClock(snapStart)
	fm := NewFileManager(&testutil.MockCompressor{}, seededStore(t, clock), clock, &testutil.MockLogger{})

	n, err := fm.SaveToFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = os.Stat(path)
	assert.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var snap file
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, fileVersion, snap.Version)
	assert.True(t, snap.SavedAt.Equal(snapStart))
	assert.Len(t, snap.Entries, 3)
}

func TestFileManager_LoadFromFile_FileNotExist(t *testing.T) {
	clock := testutil.NewFakeClock(snapStart)
	fm := NewFileManager(&testutil.MockCompressor{}, storage.NewMemoryStore(1, clock), clock, &testutil.MockLogger{})
	n, err := fm.LoadFromFile("/nonexistent/path/file.dat")
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestFileManager_LoadFromFile_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.dat")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0644))

	clock := testutil.NewFakeClock(snapStart)
	fm := NewFileManager(&testutil.MockCompressor{}, storage.NewMemoryStore(1, clock), clock, &testutil.MockLogger{})
	_, err := fm.LoadFromFile(path)
	assert.Error(t, err)
}

func TestFileManager_LoadFromFile_UnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v9.dat")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":9,"entries":[]}`), 0644))

	clock := testutil.NewFakeClock(snapStart)
	fm := NewFileManager(&testutil.MockCompressor{}, storage.NewMemoryStore(1, clock), clock, &testutil.MockLogger{})
	_, err := fm.LoadFromFile(path)
	assert.ErrorContains(t, err, "unsupported snapshot version 9")
}

func TestFileManager_CompressError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "err.dat")
	comp := &testutil.MockCompressor{
		CompressFn: func(b []byte) ([]byte, error) {
			return nil, errors.New("compress failed")
		},
	}
	clock := testutil.NewFakeClock(snapStart)
	fm := NewFileManager(comp, seededStore(t, clock), clock, &testutil.MockLogger{})

	_, err := fm.SaveToFile(path)
	assert.ErrorContains(t, err, "compress failed")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileManager_DecompressError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dec.dat")
	require.NoError(t, os.WriteFile(path, []byte("some data"), 0644))

	comp := &testutil.MockCompressor{
		DecompressFn: func(b []byte) ([]byte, error) {
			return nil, errors.New("decompress failed")
		},
	}
	clock := testutil.NewFakeClock(snapStart)
	fm := NewFileManager(comp, storage.NewMemoryStore(1, clock), clock, &testutil.MockLogger{})

	_, err := fm.LoadFromFile(path)
	assert.ErrorContains(t, err, "decompress failed")
}

func TestFileManager_Roundtrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "roundtrip.dat")
	comp, err := NewZstdCompressor()
	require.NoError(t, err)
	defer comp.Close()

	clock := testutil.NewFakeClock(snapStart)
	fm := NewFileManager(comp, seededStore(t, clock), clock, &testutil.MockLogger{})
	_, err = fm.SaveToFile(path)
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	restored := storage.NewMemoryStore(4, clock)
	fm2 := NewFileManager(comp, restored, clock, &testutil.MockLogger{})
	n, err := fm2.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	v, err := restored.Get(ctx, "rld:w1:violations")
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))

	v, err = restored.Get(ctx, "rld:w1:blacklist")
	require.NoError(t, err)
	assert.JSONEq(t, `{"reason":"x"}`, string(v))

	clock.Advance(30 * time.Minute)
	_, err = restored.Get(ctx, "rld:w1:ratelimit")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "remaining ttl was shortened by downtime")

	clock.Advance(365 * 24 * time.Hour)
	_, err = restored.Get(ctx, "rld:w1:blacklist")
	assert.NoError(t, err, "entries without ttl never expire")
}

func TestFileManager_DropsEntriesExpiredWhileStopped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.dat")
	clock := testutil.NewFakeClock(snapStart)
	logger := &testutil.MockLogger{}
	fm := NewFileManager(&testutil.MockCompressor{}, seededStore(t, clock), clock, logger)
	_, err := fm.SaveToFile(path)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	restored := storage.NewMemoryStore(4, clock)
	n, err := NewFileManager(&testutil.MockCompressor{}, restored, clock, logger).LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(2), restored.EntryCount())
	assert.Equal(t, 1, logger.Count("info"))
}
