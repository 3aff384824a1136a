// Package parsecache memoizes diagram analyses keyed by a SHA-256
// content hash, persisted across builds as a single versioned JSON
// document. The cache only ever affects speed: a cold cache and a warm
// cache produce identical validation results for identical input.
package parsecache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/models"
)

// Version is the on-disk document format version. Any mismatch discards
// the whole cache and rebuilds from scratch.
const Version = "raido-cache/1"

// Entry is one memoized analysis.
type Entry struct {
	ContentHash   string                `json:"contentHash"`
	Timestamp     int64                 `json:"timestamp"`
	DiagramType   models.DiagramType    `json:"diagramType"`
	Nodes         []string              `json:"nodes"`
	Relationships []models.Relationship `json:"relationships"`
	FilePath      string                `json:"filePath"`
}

type document struct {
	Version     string           `json:"version"`
	LastUpdated int64            `json:"lastUpdated"`
	Entries     map[string]Entry `json:"entries"`
}

// Cache is a concurrent-safe parse cache. An empty path keeps the cache
// purely in-memory (used by tests and one-off runs).
type Cache struct {
	path string

	mu  sync.Mutex
	doc document
}

// Open loads the cache document at path. An unreadable file, corrupt
// JSON, or a version mismatch is not an error: the cache silently
// starts empty and will be rewritten on the next Save.
func Open(path string) *Cache {
	c := &Cache{
		path: path,
		doc: document{
			Version: Version,
			Entries: make(map[string]Entry),
		},
	}
	if path == "" {
		return c
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil || doc.Version != Version || doc.Entries == nil {
		return c
	}
	c.doc = doc
	return c
}

// Get returns the memoized analysis for content, annotated FromCache,
// or ok=false on a miss.
func (c *Cache) Get(content []byte) (models.Analysis, bool) {
	hash := checksum.Sum(content)

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.doc.Entries[hash]
	if !ok {
		return models.Analysis{}, false
	}
	nodes := e.Nodes
	if nodes == nil {
		nodes = []string{}
	}
	return models.Analysis{
		Type:          e.DiagramType,
		Nodes:         nodes,
		Relationships: e.Relationships,
		FromCache:     true,
	}, true
}

// Put stores the analysis for content. A changed hash always creates a
// fresh entry; an existing entry for the same hash is left as is, so
// entries are immutable once written.
func (c *Cache) Put(content []byte, filePath string, a models.Analysis) {
	hash := checksum.Sum(content)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.doc.Entries[hash]; ok {
		return
	}
	c.doc.Entries[hash] = Entry{
		ContentHash:   hash,
		Timestamp:     time.Now().UnixMilli(),
		DiagramType:   a.Type,
		Nodes:         a.Nodes,
		Relationships: a.Relationships,
		FilePath:      filePath,
	}
}

// Len returns the number of memoized entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.doc.Entries)
}

// Save persists the cache document atomically: tmp file, fsync, rename.
// A nil-path cache saves nothing.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	c.doc.LastUpdated = time.Now().UnixMilli()
	data, err := json.MarshalIndent(c.doc, "", "  ")
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("parsecache: marshal: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("parsecache: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".raido-cache-*")
	if err != nil {
		return fmt.Errorf("parsecache: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("parsecache: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("parsecache: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("parsecache: close temp: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("parsecache: rename: %w", err)
	}
	success = true
	return nil
}
