// Package store persists engine-operational settings (last-used Hash/
// Threads, UCI tunable overrides, bench node-count baselines) across UCI
// process restarts. Repurposed from the teacher's internal/storage package,
// which persisted UI preferences and game statistics in the same badger/v4
// key-value store; this package keeps the badger dependency and swaps the
// JSON-blob schema for a flat int settings map plus a bench-baseline record.
package store

import (
	"encoding/binary"
	"encoding/json"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefixSetting = "setting:"
const keyBenchBaseline = "bench:baseline"

// EngineSettings wraps a badger database (or an in-memory fallback) holding
// named integer settings.
type EngineSettings struct {
	db  *badger.DB
	mem map[string]int
}

// Open opens (creating if necessary) a badger database at path. An empty
// path opens an in-memory-only store, used by tests and by Open's own
// fallback when the on-disk store can't be created.
func Open(path string) (*EngineSettings, error) {
	if path == "" {
		return NewMemorySettings(), nil
	}

	opts := badger.DefaultOptions(filepath.Clean(path))
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &EngineSettings{db: db}, nil
}

// NewMemorySettings returns a store backed by a plain map, for tests and as
// a degraded fallback when the on-disk database is unavailable.
func NewMemorySettings() *EngineSettings {
	return &EngineSettings{mem: make(map[string]int)}
}

// Close releases the underlying database, if any.
func (s *EngineSettings) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Int returns a stored integer setting and whether it was present.
func (s *EngineSettings) Int(name string) (int, bool) {
	if s.mem != nil {
		v, ok := s.mem[name]
		return v, ok
	}

	var value int
	found := false
	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefixSetting + name))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return nil
			}
			value = int(int64(binary.LittleEndian.Uint64(val)))
			found = true
			return nil
		})
	})
	return value, found
}

// IntOr returns the stored setting or def if absent.
func (s *EngineSettings) IntOr(name string, def int) int {
	if v, ok := s.Int(name); ok {
		return v
	}
	return def
}

// SetInt persists an integer setting.
func (s *EngineSettings) SetInt(name string, value int) {
	if s.mem != nil {
		s.mem[name] = value
		return
	}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(int64(value)))
	_ = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefixSetting+name), buf)
	})
}

// BenchBaseline is the recorded node count from a fixed-depth bench run,
// used to flag accidental search-behavior regressions between builds
// (spec's test-tooling ambient concern: a bench command exists precisely
// so this baseline can be compared against).
type BenchBaseline struct {
	Depth int    `json:"depth"`
	Nodes uint64 `json:"nodes"`
	Build string `json:"build"`
}

// SaveBenchBaseline records the most recent bench result.
func (s *EngineSettings) SaveBenchBaseline(b BenchBaseline) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	if s.mem != nil {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyBenchBaseline), data)
	})
}

// LoadBenchBaseline returns the previously recorded bench result, if any.
func (s *EngineSettings) LoadBenchBaseline() (BenchBaseline, bool) {
	var b BenchBaseline
	if s.mem != nil {
		return b, false
	}
	found := false
	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyBenchBaseline))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &b); err != nil {
				return err
			}
			found = true
			return nil
		})
	})
	return b, found
}
