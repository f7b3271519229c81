package add

import (
	"trackd/internal/errors"
	"trackd/internal/id"
	"trackd/internal/log"
)

// aggregate decides whether the resolved path groups form one component or
// many and produces the final candidate components.
//
// With more than one group and no explicit identifier, each group remains
// its own component; two groups collapsing to the same identifier is an
// ambiguity error. Otherwise all groups merge under the single identifier:
// file sets are unioned by relative path with the first entry per path
// winning, and main file and root dir are taken from the first group.
func (e *Engine) aggregate(groups []*component, explicit *id.ComponentID) ([]*component, error) {
	var (
		live    []*component
		ignored []string
	)
	for _, g := range groups {
		ignored = append(ignored, g.ignored...)
		if g.files.Len() > 0 {
			live = append(live, g)
		}
	}
	if len(live) == 0 {
		msg := "no files to track"
		if len(ignored) > 0 {
			msg = "no files to track: all matches were ignored"
		}
		return nil, errors.NewPathsError(msg, ignored, errors.NoFiles, nil)
	}

	if explicit == nil && len(live) > 1 {
		live = absorbCoveredGroups(live)

		seen := make(map[string]string) // id -> originating path
		for _, g := range live {
			key := g.id.String()
			if prev, dup := seen[key]; dup {
				return nil, errors.NewIDError(
					"two paths resolve to the same component id",
					key, errors.DuplicateIDs, nil,
				).WithConflicting(prev + ", " + g.origPath)
			}
			seen[key] = g.origPath
		}
		return live, nil
	}

	// Single-component mode: collapse every group under one identifier.
	merged := &component{
		id:       live[0].id,
		files:    live[0].files,
		mainFile: live[0].mainFile,
		rootDir:  live[0].rootDir,
		origPath: live[0].origPath,
	}
	if explicit != nil {
		merged.id = *explicit
	}
	// Main file and root dir come from the first group only; later groups
	// contribute nothing but their files.
	for _, g := range live[1:] {
		for _, entry := range g.files.Entries() {
			merged.files.Add(entry) // first value per path wins across groups
		}
	}
	log.Debug("aggregated %d groups into %s (%d files)", len(live), merged.id.String(), merged.files.Len())
	return []*component{merged}, nil
}

// absorbCoveredGroups drops any group whose entire file set is already
// present in the other groups, typically a file supplied on the command
// line that another group picked up as its test file.
func absorbCoveredGroups(groups []*component) []*component {
	out := make([]*component, 0, len(groups))
	for i, g := range groups {
		covered := true
		for _, p := range g.files.Paths() {
			foundElsewhere := false
			for j, other := range groups {
				if i == j {
					continue
				}
				if other.files.Contains(p) {
					foundElsewhere = true
					break
				}
			}
			if !foundElsewhere {
				covered = false
				break
			}
		}
		if covered {
			log.Debug("group %s absorbed by other groups", g.origPath)
			continue
		}
		out = append(out, g)
	}
	if len(out) == 0 {
		// Mutually covering groups; keep the first rather than none.
		return groups[:1]
	}
	return out
}

// applyExcludes strips user-excluded files from the candidate components.
// Excluding a component's main file drops its entire file set; otherwise
// only the individually matched files are removed. Components left empty
// are discarded.
func (e *Engine) applyExcludes(comps []*component, patterns []string) ([]*component, error) {
	if len(patterns) == 0 {
		return comps, nil
	}

	var union []string
	for _, c := range comps {
		union = append(union, c.files.Paths()...)
	}
	matched, err := e.resolvePatterns(union, patterns)
	if err != nil {
		return nil, err
	}
	excluded := make(map[string]struct{}, len(matched))
	for _, p := range matched {
		excluded[p] = struct{}{}
	}

	var out []*component
	for _, c := range comps {
		if c.mainFile != "" {
			if _, drop := excluded[c.mainFile]; drop {
				log.Debug("main file %s excluded, dropping component %s", c.mainFile, c.id.String())
				c.files.Clear()
				continue
			}
		}
		for p := range excluded {
			c.files.Remove(p)
		}
		if c.files.Len() > 0 {
			out = append(out, c)
		}
	}
	return out, nil
}
