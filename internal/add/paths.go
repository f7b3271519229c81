package add

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	"trackd/internal/errors"
	"trackd/internal/log"
)

// inputPath is one validated user-supplied path.
type inputPath struct {
	abs   string
	rel   string // tracking-root relative, forward-slash form
	isDir bool
}

// relToRoot normalizes a user-supplied path to tracking-root-relative,
// forward-slash form. Relative inputs are taken as relative to the root.
func (e *Engine) relToRoot(p string) (string, error) {
	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(e.root, abs)
	}
	rel, err := filepath.Rel(e.root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// expandPaths resolves glob-bearing inputs into concrete paths by walking
// the tracking tree. Non-glob inputs pass through unchanged. A pattern that
// matches nothing is kept so validation can report it as missing.
func (e *Engine) expandPaths(inputs []string) ([]string, error) {
	var out []string
	for _, in := range inputs {
		if !hasGlobMeta(in) {
			out = append(out, in)
			continue
		}

		rel, err := e.relToRoot(in)
		if err != nil {
			return nil, err
		}
		g, err := glob.Compile(rel, '/')
		if err != nil {
			return nil, errors.NewPathsError("invalid path pattern", []string{in}, errors.PathsNotExist, err)
		}

		tree, err := e.walkTree()
		if err != nil {
			return nil, err
		}
		var matches []string
		for _, candidate := range tree {
			if g.Match(candidate) {
				matches = append(matches, candidate)
			}
		}
		if len(matches) == 0 {
			out = append(out, in) // reported by validatePaths
			continue
		}
		sort.Strings(matches)
		log.Debug("pattern %q expanded to %d paths", in, len(matches))
		out = append(out, matches...)
	}
	return out, nil
}

// validatePaths confirms every path exists on disk and classifies each as
// file or directory. All missing paths are collected and reported together,
// not just the first.
func (e *Engine) validatePaths(paths []string) ([]inputPath, error) {
	var (
		validated []inputPath
		missing   []string
	)
	for _, p := range paths {
		rel, err := e.relToRoot(p)
		if err != nil {
			missing = append(missing, p)
			continue
		}
		abs := filepath.Join(e.root, filepath.FromSlash(rel))
		info, err := os.Stat(abs)
		if err != nil {
			missing = append(missing, p)
			continue
		}
		validated = append(validated, inputPath{abs: abs, rel: rel, isDir: info.IsDir()})
	}
	if len(missing) > 0 {
		return nil, errors.NewPathsError("paths not found on disk", missing, errors.PathsNotExist, nil)
	}
	return validated, nil
}

// walkTree enumerates every non-directory file under the tracking root that
// survives the ignore filter, caching the result for the invocation. Used
// by glob expansion and DSL pattern matching.
func (e *Engine) walkTree() ([]string, error) {
	e.treeOnce.Do(func() {
		var files []string
		e.treeErr = filepath.WalkDir(e.root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(e.root, p)
			if relErr != nil {
				return relErr
			}
			rel = filepath.ToSlash(rel)
			if rel == "." {
				return nil
			}
			if d.IsDir() {
				if e.ignore.Match(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if !e.ignore.Match(rel) {
				files = append(files, rel)
			}
			return nil
		})
		e.tree = files
	})
	return e.tree, e.treeErr
}

// enumerateDir lists every non-directory file under one directory,
// returning kept and ignored tracking-root-relative paths.
func (e *Engine) enumerateDir(dir inputPath) (kept, ignored []string, err error) {
	err = filepath.WalkDir(dir.abs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, relErr := filepath.Rel(e.root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != dir.rel && e.ignore.Match(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if e.ignore.Match(rel) {
			ignored = append(ignored, rel)
		} else {
			kept = append(kept, rel)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(kept)
	return kept, ignored, nil
}
