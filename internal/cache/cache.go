package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"songrank/internal/model"
)

// Entry is a cached chart with the time it was scraped.
type Entry struct {
	Date      string           `json:"date"`
	Rows      []model.ChartRow `json:"rows"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// Cache keeps extracted chart rows on disk, one file per chart date.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
	mu  sync.RWMutex
}

// New creates a disk cache under cacheDir.
func New(cacheDir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, err
	}
	return &Cache{
		dir: cacheDir,
		ttl: ttl,
		now: time.Now,
	}, nil
}

// Get returns the rows cached for date if present and not expired.
func (c *Cache) Get(date model.TargetDate) ([]model.ChartRow, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.filePath(date))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if c.now().Sub(entry.FetchedAt) > c.ttl {
		return nil, false
	}

	return entry.Rows, true
}

// Set stores rows for date.
func (c *Cache) Set(date model.TargetDate, rows []model.ChartRow) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := Entry{
		Date:      date.String(),
		Rows:      rows,
		FetchedAt: c.now(),
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.filePath(date), data, 0644)
}

// Invalidate removes the entry for date.
func (c *Cache) Invalidate(date model.TargetDate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.filePath(date)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *Cache) filePath(date model.TargetDate) string {
	// Overrides are unvalidated, so keep only filesystem-safe characters.
	safeName := ""
	for _, r := range date.String() {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			safeName += string(r)
		} else {
			safeName += "_"
		}
	}
	return filepath.Join(c.dir, "newrelease-"+safeName+".json")
}
