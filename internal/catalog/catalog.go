// Package catalog manages the named-template lifecycle backing the
// rendering engine's by-id template lookup. Templates live as files in a
// backing directory; add and remove are idempotent from the caller's
// perspective.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	gerrors "git.home.luguber.info/inful/rendergate/internal/errors"
)

// templateExtensions are the document formats the catalog recognizes when
// listing. Hidden entries and anything else are excluded.
var templateExtensions = []string{
	".odt", ".ods", ".odp", ".docx", ".xlsx", ".pptx", ".txt", ".html", ".xml", ".md",
}

// Info describes one cataloged template.
type Info struct {
	ID        string    `json:"templateId"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Catalog is a directory-backed template registry with an in-memory index.
// The index is refreshed by a fsnotify watcher when the backing directory
// changes out-of-band; List falls back to a directory scan when the index
// is cold.
type Catalog struct {
	dir string

	mu    sync.RWMutex
	index map[string]Info
}

// New creates a catalog over the given directory, creating it if needed.
func New(dir string) (*Catalog, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, gerrors.StorageUnavailable(dir, err)
	}
	c := &Catalog{dir: dir}
	if err := c.Refresh(); err != nil {
		return nil, err
	}
	return c, nil
}

// Dir returns the backing directory.
func (c *Catalog) Dir() string {
	return c.dir
}

// Add registers a template under id, replacing any existing one. Adding a
// duplicate id succeeds; the content is simply replaced.
func (c *Catalog) Add(id string, content []byte) error {
	if err := validateID(id); err != nil {
		return err
	}

	path := filepath.Join(c.dir, id)
	if err := os.WriteFile(path, content, 0600); err != nil {
		return gerrors.StorageUnavailable(c.dir, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return gerrors.StorageUnavailable(c.dir, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.index[id]; ok {
		c.index[id] = Info{ID: id, Filename: id, Size: info.Size(), CreatedAt: existing.CreatedAt, UpdatedAt: info.ModTime()}
	} else {
		c.index[id] = Info{ID: id, Filename: id, Size: info.Size(), CreatedAt: info.ModTime(), UpdatedAt: info.ModTime()}
	}
	return nil
}

// Remove deregisters a template. Removing a nonexistent id succeeds.
func (c *Catalog) Remove(id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(c.dir, id)); err != nil && !os.IsNotExist(err) {
		return gerrors.StorageUnavailable(c.dir, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.index, id)
	return nil
}

// Get returns a template's content by id.
func (c *Catalog) Get(id string) ([]byte, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	// #nosec G304 - id is validated against traversal above
	data, err := os.ReadFile(filepath.Join(c.dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, gerrors.InvalidRequest("fileId", "template not found")
		}
		return nil, gerrors.StorageUnavailable(c.dir, err)
	}
	return data, nil
}

// List enumerates currently known templates, sorted by id.
func (c *Catalog) List() ([]Info, error) {
	c.mu.RLock()
	cold := c.index == nil
	c.mu.RUnlock()

	if cold {
		if err := c.Refresh(); err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Info, 0, len(c.index))
	for _, info := range c.index {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Refresh rebuilds the in-memory index from the backing directory.
func (c *Catalog) Refresh() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return gerrors.StorageUnavailable(c.dir, err)
	}

	index := make(map[string]Info)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !isTemplateFile(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		index[name] = Info{
			ID:        name,
			Filename:  name,
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
			UpdatedAt: info.ModTime(),
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Preserve creation times the index already learned; a rescan only
	// knows modification times.
	for id, fresh := range index {
		if existing, ok := c.index[id]; ok && existing.CreatedAt.Before(fresh.CreatedAt) {
			fresh.CreatedAt = existing.CreatedAt
			index[id] = fresh
		}
	}
	c.index = index
	return nil
}

func isTemplateFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range templateExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func validateID(id string) error {
	if id == "" {
		return gerrors.InvalidRequest("fileId", "fileId is required")
	}
	if strings.Contains(id, "/") || strings.Contains(id, `\`) || strings.Contains(id, "..") {
		return gerrors.InvalidRequest("fileId", fmt.Sprintf("invalid fileId %q", id))
	}
	return nil
}
