package add

import (
	"strings"

	"trackd/internal/errors"
	"trackd/internal/id"
	"trackd/internal/index"
	"trackd/internal/log"
	"trackd/pkg/types"
)

// fileDecision is the outcome of the per-file reconciliation table.
type fileDecision int

const (
	keepNew fileDecision = iota
	keepStored
	dropArtifact
	dropConflict
	failMissingID
	failWrongID
)

// fileFacts are the inputs to the reconciliation decision: whether the file
// is a build artifact, who currently owns its path, the owner's origin, and
// whether the owner matches the component being added.
type fileFacts struct {
	artifact       bool
	owned          bool
	ownerImported  bool
	targetImported bool
	idMatch        bool // owner identifier matches this component's
	explicitID     bool // the invocation supplied an explicit identifier
	storedEntry    bool // the existing record already tracks this file
}

// decide is the reconciliation decision table. Kept as a single exhaustive
// match so every combination of facts has one visible outcome.
func decide(f fileFacts) fileDecision {
	switch {
	case f.artifact:
		return dropArtifact
	case f.ownerImported || f.targetImported:
		switch {
		case !f.explicitID:
			return failMissingID
		case f.owned && !f.idMatch:
			return failWrongID
		case f.storedEntry:
			return keepStored
		default:
			return keepNew
		}
	case f.owned && !f.idMatch:
		return dropConflict
	default:
		return keepNew
	}
}

// reconcile merges one resolved component into the persistent index. Files
// already owned by a different non-imported component are dropped with a
// warning instead of failing the operation; identifier contract violations
// for imported-origin components are fatal. A component left empty after
// filtering is skipped silently. Returns the materialized record stored in
// the index, or nil when skipped.
func (e *Engine) reconcile(comp *component, explicit *id.ComponentID, override bool, warnings types.Warnings) (*types.AddedComponent, error) {
	storedKey, existing, found := e.idx.Lookup(comp.id, false)

	// A nested dependency record is never a direct add target, whether the
	// identifier was derived or supplied explicitly.
	if found && existing.Origin == types.Nested {
		return nil, errors.NewIDError(
			"id is reserved by a transitive dependency",
			comp.id.String(), errors.NamespaceCollision, nil,
		).WithConflicting(storedKey)
	}

	kept := types.NewFileSet()
	for _, entry := range comp.files.Entries() {
		facts := fileFacts{
			artifact:   e.isArtifact(entry.RelativePath),
			explicitID: explicit != nil,
		}
		facts.targetImported = found && existing.Origin == types.Imported

		ownerKey, owned := e.idx.OwnerOfPath(entry.RelativePath)
		var ownerRec *index.Record
		if owned {
			facts.owned = true
			ownerRec, _ = e.idx.Get(ownerKey)
			facts.ownerImported = ownerRec != nil && ownerRec.Origin == types.Imported
			if ownerID, err := id.Parse(ownerKey); err == nil {
				facts.idMatch = ownerID.SameBase(comp.id)
			}
		}

		var storedEntry types.FileEntry
		if found {
			if se, ok := storedFileFor(existing, entry.RelativePath); ok {
				facts.storedEntry = true
				storedEntry = se
			}
		}

		switch decide(facts) {
		case dropArtifact:
			log.Debug("dropping generated artifact %s", entry.RelativePath)

		case failMissingID:
			return nil, errors.NewIDError(
				"adding files of an imported component requires an explicit id",
				comp.id.String(), errors.MissingComponentIDForImported, nil,
			)

		case failWrongID:
			return nil, errors.NewIDError(
				"supplied id contradicts the tracked imported identity",
				comp.id.String(), errors.IncorrectIDForImported, nil,
			).WithConflicting(ownerKey)

		case keepStored:
			// Preserve the pre-existing entry verbatim, re-anchored to the
			// record's own root, so metadata already stored there survives.
			kept.Add(storedEntry)

		case dropConflict:
			warnings.Append(ownerKey, entry.RelativePath)
			log.Warn("%s already belongs to %s, excluding it from %s",
				entry.RelativePath, ownerKey, comp.id.String())

		case keepNew:
			// Entries joining an imported record are re-anchored to the
			// record's own root, like the entries already stored there.
			if facts.targetImported {
				entry = reanchor(entry, existing.RootDir)
			}
			kept.Add(entry)
		}
	}

	if kept.Len() == 0 {
		log.Debug("component %s has no files left after reconciliation, skipping", comp.id.String())
		return nil, nil
	}

	origin := types.Authored
	mainFile := comp.mainFile
	if found && existing.Origin == types.Imported {
		// Origin is immutable for imported records; the add only extends
		// the tracked file set.
		origin = types.Imported
		mainFile = reanchorPath(mainFile, existing.RootDir)
	}

	key, rec, err := e.idx.Upsert(comp.id, kept.Entries(), mainFile, comp.rootDir, origin, override)
	if err != nil {
		return nil, err
	}

	return &types.AddedComponent{
		ID:    key,
		Files: append([]types.FileEntry(nil), rec.Files...),
	}, nil
}

// reanchor rewrites a tracking-root-relative entry to be relative to an
// imported record's own root.
func reanchor(entry types.FileEntry, rootDir string) types.FileEntry {
	entry.RelativePath = reanchorPath(entry.RelativePath, rootDir)
	return entry
}

func reanchorPath(relPath, rootDir string) string {
	if rootDir != "" && strings.HasPrefix(relPath, rootDir+"/") {
		return strings.TrimPrefix(relPath, rootDir+"/")
	}
	return relPath
}

// storedFileFor finds the entry an existing record already tracks for the
// given tracking-root-relative path, comparing against the record's own
// root.
func storedFileFor(rec *index.Record, relPath string) (types.FileEntry, bool) {
	relToRec := relPath
	if rec.RootDir != "" && strings.HasPrefix(relPath, rec.RootDir+"/") {
		relToRec = strings.TrimPrefix(relPath, rec.RootDir+"/")
	}
	for _, f := range rec.Files {
		if f.RelativePath == relToRec || rec.FullPathOf(f) == relPath {
			return f, true
		}
	}
	return types.FileEntry{}, false
}
