package add

import (
	"github.com/gobwas/glob"

	"trackd/internal/log"
)

// ignoreFilter is the single exclusion predicate applied to every file
// enumeration: the configured base ignore list plus, when no custom dist
// directory is configured, the build-output directories of all imported
// components already tracked in the index.
type ignoreFilter struct {
	globs []glob.Glob
	// distDirs are matched by prefix, not glob, so generated trees are
	// excluded wholesale.
	distDirs []string
}

// newIgnoreFilter compiles the combined exclusion predicate for this
// invocation.
func (e *Engine) newIgnoreFilter() *ignoreFilter {
	f := &ignoreFilter{}

	patterns := append([]string{}, e.cfg.Ignore.Patterns...)
	// The index file itself is never trackable.
	patterns = append(patterns, e.cfg.IndexFile)

	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			log.Warn("skipping invalid ignore pattern %q: %v", p, err)
			continue
		}
		f.globs = append(f.globs, g)
	}

	if e.cfg.DistDir != "" {
		f.distDirs = []string{toSlash(e.cfg.DistDir)}
	} else {
		f.distDirs = e.idx.DistDirs()
	}

	return f
}

// Match reports whether a tracking-root-relative path is excluded.
func (f *ignoreFilter) Match(relPath string) bool {
	for _, g := range f.globs {
		if g.Match(relPath) {
			return true
		}
	}
	return underAny(relPath, f.distDirs)
}

// underAny reports whether relPath equals or lives under any of the given
// directories.
func underAny(relPath string, dirs []string) bool {
	for _, dir := range dirs {
		if relPath == dir {
			return true
		}
		if dir != "" && len(relPath) > len(dir) && relPath[:len(dir)] == dir && relPath[len(dir)] == '/' {
			return true
		}
	}
	return false
}

// isArtifact reports whether a path is a recognized build-output artifact
// under the tracking root. Such files must never be tracked as source.
func (e *Engine) isArtifact(relPath string) bool {
	if e.cfg.DistDir != "" {
		return underAny(relPath, []string{toSlash(e.cfg.DistDir)})
	}
	return underAny(relPath, e.idx.DistDirs())
}
