package types

import (
	"path"
	"sort"
	"strings"
)

// FileEntry represents one tracked file inside a component. Identity is
// RelativePath: two entries with the same path are the same file regardless
// of the other fields.
type FileEntry struct {
	RelativePath string `yaml:"relativePath" json:"relativePath"`
	IsTest       bool   `yaml:"test" json:"isTest"`
	Name         string `yaml:"name" json:"name"`
}

// NewFileEntry builds an entry from a forward-slash relative path.
func NewFileEntry(relPath string, isTest bool) FileEntry {
	return FileEntry{
		RelativePath: relPath,
		IsTest:       isTest,
		Name:         path.Base(relPath),
	}
}

// FileSet is an insertion-ordered set of FileEntry unique by RelativePath.
type FileSet struct {
	order   []string
	entries map[string]FileEntry
}

// NewFileSet creates an empty file set.
func NewFileSet() *FileSet {
	return &FileSet{entries: make(map[string]FileEntry)}
}

// Add inserts an entry. An entry already present wins over a later duplicate.
// Returns true if the entry was inserted.
func (s *FileSet) Add(entry FileEntry) bool {
	if _, ok := s.entries[entry.RelativePath]; ok {
		return false
	}
	s.entries[entry.RelativePath] = entry
	s.order = append(s.order, entry.RelativePath)
	return true
}

// Replace inserts an entry, overwriting any entry with the same path while
// keeping its original position.
func (s *FileSet) Replace(entry FileEntry) {
	if _, ok := s.entries[entry.RelativePath]; !ok {
		s.order = append(s.order, entry.RelativePath)
	}
	s.entries[entry.RelativePath] = entry
}

// Remove deletes the entry with the given path, if present.
func (s *FileSet) Remove(relPath string) {
	if _, ok := s.entries[relPath]; !ok {
		return
	}
	delete(s.entries, relPath)
	for i, p := range s.order {
		if p == relPath {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Contains reports whether a path is in the set.
func (s *FileSet) Contains(relPath string) bool {
	_, ok := s.entries[relPath]
	return ok
}

// Get returns the entry for a path.
func (s *FileSet) Get(relPath string) (FileEntry, bool) {
	e, ok := s.entries[relPath]
	return e, ok
}

// Len returns the number of entries.
func (s *FileSet) Len() int {
	return len(s.order)
}

// Entries returns the entries in insertion order.
func (s *FileSet) Entries() []FileEntry {
	out := make([]FileEntry, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, s.entries[p])
	}
	return out
}

// Paths returns the relative paths in insertion order.
func (s *FileSet) Paths() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Clear drops all entries.
func (s *FileSet) Clear() {
	s.order = nil
	s.entries = make(map[string]FileEntry)
}

// AddedComponent is the per-component confirmation returned by an add
// operation: the identifier string and the file list as stored in the index.
type AddedComponent struct {
	ID    string      `json:"id"`
	Files []FileEntry `json:"files"`
}

// Warnings maps a conflicting owner identifier to the file paths that were
// dropped from an add because that owner already tracks them. Accumulated
// during the operation and returned to the caller, never persisted.
type Warnings map[string][]string

// Append records a dropped path under the owning identifier.
func (w Warnings) Append(ownerID, relPath string) {
	w[ownerID] = append(w[ownerID], relPath)
}

// Merge folds another warning map into this one.
func (w Warnings) Merge(other Warnings) {
	for id, paths := range other {
		w[id] = append(w[id], paths...)
	}
}

// Empty reports whether no warnings were recorded.
func (w Warnings) Empty() bool {
	return len(w) == 0
}

// String renders the warnings in a stable, human-readable form.
func (w Warnings) String() string {
	if len(w) == 0 {
		return ""
	}
	ids := make([]string, 0, len(w))
	for id := range w {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(id)
		sb.WriteString(": ")
		sb.WriteString(strings.Join(w[id], ", "))
		sb.WriteString("\n")
	}
	return sb.String()
}
