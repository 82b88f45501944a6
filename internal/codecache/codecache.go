// Package codecache keeps a bloom-filter prescreen of known coupon codes so
// the API can reject garbage codes without a database round trip. The filter
// is persisted as a gzip-compressed snapshot on disk and survives restarts.
package codecache

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
)

const (
	defaultCapacity = 120_000_000
	defaultFPR      = 0.001
)

// Cache is a concurrency-safe bloom prescreen over the coupon code set.
//
// Because bloom membership is probabilistic, Contains can rarely report true
// for an unknown code; the authoritative coupon lookup still runs behind it.
// A false answer is always definitive. When no snapshot has been loaded the
// cache fails open: every code passes through to the database.
type Cache struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
	path   string
	loaded bool
	dirty  bool
}

// New creates a cache persisting its snapshot at path. Call Load before use.
func New(path string) *Cache {
	return &Cache{
		filter: bloom.NewWithEstimates(defaultCapacity, defaultFPR),
		path:   path,
	}
}

// Load reads the snapshot from disk. A missing snapshot is not an error: the
// cache stays in fail-open mode until codes are added or ingest runs.
func (c *Cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "open snapshot")
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrap(err, "gzip reader")
	}
	defer func() { _ = gz.Close() }()

	filter := &bloom.BloomFilter{}
	if _, err := filter.ReadFrom(gz); err != nil {
		return errors.Wrap(err, "read filter")
	}

	c.filter = filter
	c.loaded = true
	return nil
}

// Contains reports whether the code may be a known coupon code. Fails open
// when no snapshot was ever loaded and nothing has been added.
func (c *Cache) Contains(code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded && !c.dirty {
		return true
	}
	return c.filter.TestString(code)
}

// Add records a newly created coupon code and marks the snapshot dirty.
func (c *Cache) Add(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.filter.AddString(code)
	c.dirty = true
}

// FlushIfDirty writes the snapshot to disk when codes were added since the
// last flush. The write goes through a temp file and rename so a crash mid
// flush never corrupts the previous snapshot.
func (c *Cache) FlushIfDirty() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return errors.Wrap(err, "create snapshot dir")
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), "codecache-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	gz := pgzip.NewWriter(tmp)
	if _, err := c.filter.WriteTo(gz); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write filter")
	}
	if err := gz.Close(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "close gzip writer")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp snapshot")
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return errors.Wrap(err, "replace snapshot")
	}

	c.dirty = false
	c.loaded = true
	return nil
}

// Close flushes any pending snapshot.
func (c *Cache) Close() error {
	return c.FlushIfDirty()
}
