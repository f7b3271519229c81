package add

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"trackd/internal/errors"
	"trackd/internal/id"
	"trackd/internal/log"
	"trackd/pkg/types"
)

// component is one path group's resolution result before aggregation and
// reconciliation.
type component struct {
	id       id.ComponentID
	files    *types.FileSet
	mainFile string
	rootDir  string
	origPath string // the input path that produced this group
	// derived namespace/name, pending identifier promotion against the index
	namespace string
	name      string
	// ignored holds paths dropped by the ignore filter, for diagnostics
	ignored []string
}

// resolvePath resolves one validated input path into a candidate component:
// member files, merged test files, main file, and the derived identifier
// segments. The persistent index is deliberately not consulted here so path
// groups can resolve concurrently; identifier promotion happens after the
// join.
func (e *Engine) resolvePath(p inputPath, req *Request, soleInput bool) (*component, error) {
	comp := &component{
		files:    types.NewFileSet(),
		origPath: p.rel,
	}

	if p.isDir {
		kept, ignored, err := e.enumerateDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate %s: %w", p.rel, err)
		}
		comp.ignored = ignored
		if len(kept) == 0 {
			msg := "directory contains no files"
			if len(ignored) > 0 {
				msg = fmt.Sprintf("directory contains no trackable files (%d ignored)", len(ignored))
			}
			return nil, errors.NewPathsError(msg, []string{p.rel}, errors.EmptyDirectory, nil)
		}
		for _, rel := range kept {
			comp.files.Add(types.NewFileEntry(rel, false))
		}

		leaf := path.Base(p.rel)
		comp.name = leaf
		if req.Namespace != "" {
			comp.namespace = req.Namespace
		} else if parent := path.Base(path.Dir(p.rel)); parent != "." && parent != "/" {
			comp.namespace = parent
		}
		if soleInput {
			comp.rootDir = p.rel
		}
	} else {
		if e.ignore.Match(p.rel) {
			// The sole candidate was filtered out. The caller decides
			// between NoFiles and test-absorption by another group.
			comp.ignored = append(comp.ignored, p.rel)
			return comp, nil
		}
		comp.files.Add(types.NewFileEntry(p.rel, false))

		base := path.Base(p.rel)
		comp.name = strings.TrimSuffix(base, path.Ext(base))
		if req.Namespace != "" {
			comp.namespace = req.Namespace
		} else if parent := path.Base(path.Dir(p.rel)); parent != "." && parent != "/" {
			comp.namespace = parent
		}
	}

	if err := e.mergeTestFiles(comp, req.TestPatterns); err != nil {
		return nil, err
	}
	if err := e.resolveMainFile(comp, req.MainFile); err != nil {
		return nil, err
	}

	log.Debug("resolved %s: %d files, main=%q", p.rel, comp.files.Len(), comp.mainFile)
	return comp, nil
}

// mergeTestFiles unions DSL-matched test files into the component's file
// set. A file already present wins over a DSL-derived duplicate.
func (e *Engine) mergeTestFiles(comp *component, patterns []string) error {
	if len(patterns) == 0 || comp.files.Len() == 0 {
		return nil
	}
	tests, err := e.resolvePatterns(comp.files.Paths(), patterns)
	if err != nil {
		return err
	}
	for _, rel := range tests {
		comp.files.Add(types.NewFileEntry(rel, true))
	}
	return nil
}

// resolveMainFile resolves the component's designated entry file.
//
// A placeholder-bearing pattern is substituted against every file already in
// the set: the first substitution naming a file in the set is adopted; a
// substitution naming an on-disk file not yet in the set is appended and
// adopted when nothing was adopted before. Later matches never override an
// adopted main file but still run for their side-effect appends.
//
// A literal pattern is resolved relative to the tracking root and returned
// whether or not the file currently exists: a main file may be declared
// ahead of its creation.
func (e *Engine) resolveMainFile(comp *component, pattern string) error {
	if pattern == "" {
		return nil
	}

	if !HasPlaceholders(pattern) {
		rel, err := e.relToRoot(pattern)
		if err != nil {
			return err
		}
		comp.mainFile = rel
		return nil
	}

	for _, f := range comp.files.Paths() {
		candidate := Substitute(pattern, f)
		if comp.files.Contains(candidate) {
			if comp.mainFile == "" {
				comp.mainFile = candidate
			}
			continue
		}
		abs := filepath.Join(e.root, filepath.FromSlash(candidate))
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			comp.files.Add(types.NewFileEntry(candidate, false))
			if comp.mainFile == "" {
				comp.mainFile = candidate
			}
		}
	}
	return nil
}

// promoteID finalizes a group's identifier against the index snapshot. An
// explicit id fixes every group. Otherwise the derived namespace/name is
// checked leniently against the index: an existing record's richer
// identifier is adopted, unless that record is a nested dependency, which a
// direct add must never absorb.
func (e *Engine) promoteID(comp *component, explicit *id.ComponentID) error {
	if explicit != nil {
		comp.id = *explicit
		return nil
	}

	derived := id.DeriveValid(comp.namespace, comp.name)
	if derived.IsEmpty() {
		return errors.NewIDError("could not derive an identifier", comp.origPath, errors.InvalidID, nil)
	}

	if key, rec, found := e.idx.Lookup(derived, false); found {
		if rec.Origin == types.Nested {
			return errors.NewIDError(
				"derived id is reserved by a transitive dependency",
				derived.String(), errors.NamespaceCollision, nil,
			).WithConflicting(key)
		}
		stored, err := id.Parse(key)
		if err == nil {
			comp.id = stored
			return nil
		}
	}
	comp.id = derived
	return nil
}
