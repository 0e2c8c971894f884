// Package registry implements the content-addressable symbol cache.
//
// The registry maps a file path (relative to the scan root) to the SHA-256
// of the file's bytes and the symbols last extracted from it. A scan loads
// it once, mutates it in memory and saves it once at the end.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/phobologic/ccb/internal/model"
)

// DefaultPath is the registry location relative to the scan root.
const DefaultPath = ".code-index/registry.json"

// ErrCorrupt reports persisted data that could not be decoded.
var ErrCorrupt = errors.New("registry data corrupt")

// Registry is the in-memory cache. It is not safe for concurrent use.
type Registry struct {
	fs    afero.Fs
	path  string
	files map[string]model.FileEntry
}

// document is the persisted form.
type document struct {
	Files map[string]model.FileEntry `json:"files"`
}

// New returns an empty registry persisted at path.
func New(fs afero.Fs, path string) *Registry {
	return &Registry{fs: fs, path: path, files: make(map[string]model.FileEntry)}
}

// Load reads the registry at path. A missing file yields an empty registry.
// Unreadable or corrupt data also yields a usable empty registry, together
// with an error wrapping ErrCorrupt that callers should log and otherwise
// ignore.
func Load(fs afero.Fs, path string) (*Registry, error) {
	r := New(fs, path)

	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return r, fmt.Errorf("%w: reading %s: %v", ErrCorrupt, path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return r, fmt.Errorf("%w: decoding %s: %v", ErrCorrupt, path, err)
	}
	for p, entry := range doc.Files {
		if entry.Symbols == nil {
			entry.Symbols = []model.Symbol{}
		}
		r.files[p] = entry
	}
	return r, nil
}

// HashContent returns the hex-encoded SHA-256 digest of content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Path returns where the registry is persisted.
func (r *Registry) Path() string {
	return r.path
}

// Lookup returns a copy of the cached symbols for path if its stored hash
// equals hash.
func (r *Registry) Lookup(path, hash string) ([]model.Symbol, bool) {
	entry, ok := r.files[path]
	if !ok || entry.Hash != hash {
		return nil, false
	}
	return model.CloneSymbols(entry.Symbols), true
}

// Store records symbols for path under hash, replacing any previous entry.
func (r *Registry) Store(path, hash string, symbols []model.Symbol) {
	syms := model.CloneSymbols(symbols)
	if syms == nil {
		syms = []model.Symbol{}
	}
	r.files[path] = model.FileEntry{Hash: hash, Symbols: syms}
}

// Entry returns the raw entry for path.
func (r *Registry) Entry(path string) (model.FileEntry, bool) {
	entry, ok := r.files[path]
	return entry, ok
}

// Len returns the number of cached files.
func (r *Registry) Len() int {
	return len(r.files)
}

// Paths returns the cached paths in sorted order.
func (r *Registry) Paths() []string {
	paths := make([]string, 0, len(r.files))
	for p := range r.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Prune drops entries whose path is not in keep and returns the removed
// paths in sorted order.
func (r *Registry) Prune(keep map[string]struct{}) []string {
	var removed []string
	for _, p := range r.Paths() {
		if _, ok := keep[p]; !ok {
			delete(r.files, p)
			removed = append(removed, p)
		}
	}
	return removed
}

// Save writes the registry atomically: the JSON is written to a temporary
// file next to the target and renamed over it.
func (r *Registry) Save() error {
	data, err := json.MarshalIndent(document{Files: r.files}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(r.path)
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(r.fs, dir, ".registry-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("closing registry: %w", err)
	}
	if err := r.fs.Rename(tmpName, r.path); err != nil {
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", r.path, err)
	}
	return nil
}
