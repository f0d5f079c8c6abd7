package snapshot

import (
	"errors"
	"fmt"
	"os"
	"rld/internal/providers"
	"rld/internal/snapshot/interfaces"
	"rld/internal/storage"
	"time"

	json "github.com/goccy/go-json"
)

const fileVersion = 1

var ErrNotSnapshottable = errors.New("store keeps no local state to snapshot")

// file is the on-disk layout. Entry TTLs are relative to SavedAt.
type file struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"savedAt"`
	Entries []storage.Entry `json:"entries"`
}

type FileManager struct {
	snapshotter storage.Snapshotter
	compressor  interfaces.CompressorInterface
	clock       storage.Clock
	logger      providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, store storage.Store, clock storage.Clock, logger providers.Logger) *FileManager {
	sn, _ := storage.AsSnapshotter(store)
	return &FileManager{
		snapshotter: sn,
		compressor:  compressor,
		clock:       clock,
		logger:      logger,
	}
}

// Supported reports whether the underlying store can be snapshotted.
func (f *FileManager) Supported() bool {
	return f.snapshotter != nil
}

// SaveToFile writes every live entry to fileName and returns how many were
// written.
func (f *FileManager) SaveToFile(fileName string) (int, error) {
	if f.snapshotter == nil {
		return 0, ErrNotSnapshottable
	}
	entries, err := f.snapshotter.Dump()
	if err != nil {
		return 0, err
	}

	jsonData, err := json.Marshal(file{Version: fileVersion, SavedAt: f.clock.Now().UTC(), Entries: entries})
	if err != nil {
		return 0, err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return 0, err
	}

	tmpFile := fileName + ".tmp"
	fh, err := os.Create(tmpFile)
	if err != nil {
		return 0, err
	}

	if _, err = fh.Write(data); err != nil {
		fh.Close()
		os.Remove(tmpFile)
		return 0, err
	}

	if err = fh.Sync(); err != nil {
		fh.Close()
		os.Remove(tmpFile)
		return 0, err
	}

	if err = fh.Close(); err != nil {
		os.Remove(tmpFile)
		return 0, err
	}

	if err = os.Rename(tmpFile, fileName); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile restores the entries saved in fileName, shortening each TTL
// by the time elapsed since the save. Entries that ran out while the
// process was down are dropped. A missing file is not an error.
func (f *FileManager) LoadFromFile(fileName string) (int, error) {
	if f.snapshotter == nil {
		return 0, ErrNotSnapshottable
	}
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return 0, err
	}

	var snap file
	if err := json.Unmarshal(decompressedData, &snap); err != nil {
		return 0, err
	}
	if snap.Version != fileVersion {
		return 0, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	elapsed := max(int64(f.clock.Now().Sub(snap.SavedAt)/time.Second), 0)
	live := snap.Entries[:0]
	for _, e := range snap.Entries {
		if e.TTL > 0 {
			left := int64(e.TTL) - elapsed
			if left <= 0 {
				continue
			}
			e.TTL = uint32(left)
		}
		live = append(live, e)
	}
	if dropped := len(snap.Entries) - len(live); dropped > 0 {
		f.logger.Infof(providers.TypeApp, "Skipped %d snapshot entries that expired while stopped", dropped)
	}

	if err := f.snapshotter.Restore(live); err != nil {
		return 0, err
	}
	return len(live), nil
}
