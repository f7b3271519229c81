// Package index implements the persistent component index: the on-disk
// registry mapping component identifiers to tracked records. The index is
// loaded once per invocation, mutated in memory, and persisted exactly once
// at the end of a successful run.
package index

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"trackd/internal/errors"
	"trackd/internal/id"
	"trackd/internal/log"
	"trackd/pkg/types"
)

// DistDirName is the build-output directory kept inside an imported
// component's root. Files under it are generated artifacts, never source.
const DistDirName = "dist"

// Record is one tracked component: its origin, the original root directory
// (when the component was added from a single directory), the main file, and
// the tracked file entries. Imported records keep file paths relative to
// their own RootDir; authored records keep them relative to the tracking
// root.
type Record struct {
	Origin   types.Origin      `yaml:"origin"`
	RootDir  string            `yaml:"rootDir,omitempty"`
	MainFile string            `yaml:"mainFile,omitempty"`
	Files    []types.FileEntry `yaml:"files"`
}

// FullPathOf returns the tracking-root-relative path of a stored entry.
func (r *Record) FullPathOf(entry types.FileEntry) string {
	if r.Origin == types.Imported && r.RootDir != "" {
		return path.Join(r.RootDir, entry.RelativePath)
	}
	return entry.RelativePath
}

// indexFile is the on-disk YAML shape.
type indexFile struct {
	Version    int                `yaml:"version"`
	Components map[string]*Record `yaml:"components"`
}

// Index is the in-memory representation of the persistent index. One add
// invocation owns it exclusively; the mutex guards the watch command's
// re-add loop, which shares an index across debounced events.
type Index struct {
	path       string
	components map[string]*Record
	mu         sync.RWMutex
}

// Load reads the index from the given file. A missing file yields an empty
// index; any other read or parse failure is an error.
func Load(path string) (*Index, error) {
	idx := &Index{
		path:       path,
		components: make(map[string]*Record),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, errors.NewError("failed to read index file", errors.IndexLoadFailed, err)
	}

	var file indexFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewError("failed to parse index file", errors.IndexLoadFailed, err)
	}
	if file.Components != nil {
		idx.components = file.Components
	}

	log.Debug("loaded index from %s (%d components)", path, len(idx.components))
	return idx, nil
}

// Persist writes the index to its file, creating parent directories as
// needed. Called exactly once, at the very end of a successful operation.
func (i *Index) Persist() error {
	i.mu.RLock()
	defer i.mu.RUnlock()

	file := indexFile{
		Version:    1,
		Components: i.components,
	}
	data, err := yaml.Marshal(&file)
	if err != nil {
		return errors.NewError("failed to marshal index", errors.IndexSaveFailed, err)
	}

	if err := os.MkdirAll(filepath.Dir(i.path), 0755); err != nil {
		return errors.NewError("failed to create index directory", errors.IndexSaveFailed, err)
	}
	if err := os.WriteFile(i.path, data, 0644); err != nil {
		return errors.NewError("failed to write index file", errors.IndexSaveFailed, err)
	}

	log.Debug("persisted index to %s (%d components)", i.path, len(i.components))
	return nil
}

// Path returns the index file location.
func (i *Index) Path() string {
	return i.path
}

// Len returns the number of tracked components.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.components)
}

// Lookup finds the record tracked under the given identifier. With exact
// set, only a full identifier match (including qualification) is returned.
// Otherwise the lookup is lenient: a record matching by namespace and name
// alone is returned, so a previously-scoped identifier is found even when
// the query lacks scope. Returns the stored identifier string, which may be
// richer than the query.
func (i *Index) Lookup(cid id.ComponentID, exact bool) (string, *Record, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.lookupLocked(cid, exact)
}

func (i *Index) lookupLocked(cid id.ComponentID, exact bool) (string, *Record, bool) {
	if rec, ok := i.components[cid.String()]; ok {
		return cid.String(), rec, true
	}
	if exact {
		return "", nil, false
	}
	// Lenient pass over stable-ordered keys so repeated lookups agree.
	keys := make([]string, 0, len(i.components))
	for key := range i.components {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		stored, err := id.Parse(key)
		if err != nil {
			continue
		}
		if stored.SameBase(cid) {
			return key, i.components[key], true
		}
	}
	return "", nil, false
}

// OwnerOfPath returns the identifier currently tracking the given
// tracking-root-relative path, if any.
func (i *Index) OwnerOfPath(relPath string) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	keys := make([]string, 0, len(i.components))
	for key := range i.components {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		rec := i.components[key]
		for _, f := range rec.Files {
			if rec.FullPathOf(f) == relPath {
				return key, true
			}
		}
	}
	return "", false
}

// Get returns the record stored under the exact identifier string.
func (i *Index) Get(idStr string) (*Record, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	rec, ok := i.components[idStr]
	return rec, ok
}

// Upsert inserts or updates the record for the given identifier and returns
// the materialized record as stored. An existing record matched leniently
// keeps its richer stored identifier. With override set, the new file set
// replaces the stored one outright; otherwise the sets are merged by
// relative path with the new entries winning.
func (i *Index) Upsert(cid id.ComponentID, files []types.FileEntry, mainFile, rootDir string, origin types.Origin, override bool) (string, *Record, error) {
	if !origin.Valid() {
		return "", nil, fmt.Errorf("invalid component origin: %q", origin)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	key, existing, found := i.lookupLocked(cid, false)
	if !found {
		key = cid.String()
		rec := &Record{
			Origin:   origin,
			RootDir:  rootDir,
			MainFile: mainFile,
			Files:    append([]types.FileEntry(nil), files...),
		}
		i.components[key] = rec
		return key, rec, nil
	}

	if override {
		existing.Files = append([]types.FileEntry(nil), files...)
	} else {
		merged := types.NewFileSet()
		for _, f := range existing.Files {
			merged.Add(f)
		}
		for _, f := range files {
			merged.Replace(f)
		}
		existing.Files = merged.Entries()
	}
	if mainFile != "" {
		existing.MainFile = mainFile
	}
	if rootDir != "" {
		existing.RootDir = rootDir
	}
	existing.Origin = origin
	return key, existing, nil
}

// RecordsOfOrigin returns the tracked records with the given origin, keyed
// by stored identifier string.
func (i *Index) RecordsOfOrigin(origin types.Origin) map[string]*Record {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := make(map[string]*Record)
	for key, rec := range i.components {
		if rec.Origin == origin {
			out[key] = rec
		}
	}
	return out
}

// DistDirs returns the build-output directories of all imported components,
// tracking-root relative. Used both to extend the ignore filter and to drop
// generated artifacts during reconciliation.
func (i *Index) DistDirs() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var dirs []string
	for _, rec := range i.components {
		if rec.Origin == types.Imported && rec.RootDir != "" {
			dirs = append(dirs, path.Join(rec.RootDir, DistDirName))
		}
	}
	sort.Strings(dirs)
	return dirs
}

// All returns the tracked records keyed by identifier string. The returned
// map is a copy; the records are shared.
func (i *Index) All() map[string]*Record {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := make(map[string]*Record, len(i.components))
	for key, rec := range i.components {
		out[key] = rec
	}
	return out
}
