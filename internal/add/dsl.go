package add

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"trackd/internal/log"
)

// DSL placeholders substituted per source file when resolving companion
// patterns. This set is the full public contract:
//
//	{PARENT}    parent directory of the file, tracking-root relative
//	{FILE_NAME} base name without extension
//	{NAME}      base name including extension
//	{EXT}       extension without the leading dot
const (
	placeholderParent   = "{PARENT}"
	placeholderFileName = "{FILE_NAME}"
	placeholderName     = "{NAME}"
	placeholderExt      = "{EXT}"
)

// HasPlaceholders reports whether a pattern contains DSL placeholders.
func HasPlaceholders(pattern string) bool {
	return strings.Contains(pattern, placeholderParent) ||
		strings.Contains(pattern, placeholderFileName) ||
		strings.Contains(pattern, placeholderName) ||
		strings.Contains(pattern, placeholderExt)
}

// Substitute resolves the placeholders of a pattern against one concrete
// file path (tracking-root relative, forward-slash form). The substitution
// is pure; no filesystem access happens here.
func Substitute(pattern, relFile string) string {
	parent := path.Dir(relFile)
	if parent == "." {
		parent = ""
	}
	name := path.Base(relFile)
	ext := strings.TrimPrefix(path.Ext(relFile), ".")
	fileName := strings.TrimSuffix(name, path.Ext(relFile))

	out := pattern
	out = strings.ReplaceAll(out, placeholderParent, parent)
	out = strings.ReplaceAll(out, placeholderFileName, fileName)
	out = strings.ReplaceAll(out, placeholderName, name)
	out = strings.ReplaceAll(out, placeholderExt, ext)
	// A leading {PARENT} at the tracking root leaves an empty segment behind.
	out = strings.TrimPrefix(out, "/")
	return path.Clean(out)
}

// hasGlobMeta reports whether a string contains glob metacharacters.
func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// resolvePatterns expands a list of patterns (literal paths or
// placeholder-bearing DSL strings) against a list of concrete files and
// returns the deduplicated set of existing files they match, tracking-root
// relative in forward-slash form. This single primitive serves test-file
// discovery, main-file candidates, and exclude resolution.
func (e *Engine) resolvePatterns(files []string, patterns []string) ([]string, error) {
	matched := make(map[string]struct{})

	for _, pattern := range patterns {
		candidates := []string{pattern}
		if HasPlaceholders(pattern) {
			candidates = candidates[:0]
			for _, f := range files {
				candidates = append(candidates, Substitute(pattern, f))
			}
		}

		for _, candidate := range candidates {
			if hasGlobMeta(candidate) {
				g, err := glob.Compile(candidate, '/')
				if err != nil {
					log.Warn("skipping invalid pattern %q: %v", candidate, err)
					continue
				}
				tree, err := e.walkTree()
				if err != nil {
					return nil, err
				}
				for _, rel := range tree {
					if g.Match(rel) {
						matched[rel] = struct{}{}
					}
				}
				continue
			}

			rel := toSlash(path.Clean(candidate))
			info, err := os.Stat(filepath.Join(e.root, filepath.FromSlash(rel)))
			if err == nil && !info.IsDir() {
				matched[rel] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(matched))
	for rel := range matched {
		out = append(out, rel)
	}
	sort.Strings(out)
	return out, nil
}

func toSlash(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), "//", "/")
}
