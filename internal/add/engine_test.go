package add_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackd/internal/add"
	"trackd/internal/config"
	"trackd/internal/errors"
	"trackd/internal/id"
	"trackd/internal/index"
	"trackd/pkg/testutils"
	"trackd/pkg/types"
)

func newTestEngine(t *testing.T) (*config.Config, *index.Index, *add.Engine) {
	t.Helper()
	root := t.TempDir()
	cfg := config.NewTestConfig(root)
	idx, err := index.Load(cfg.IndexPath())
	require.NoError(t, err)
	engine, err := add.New(cfg, idx)
	require.NoError(t, err)
	return cfg, idx, engine
}

func mustID(t *testing.T, s string) id.ComponentID {
	t.Helper()
	cid, err := id.Parse(s)
	require.NoError(t, err)
	return cid
}

func filePaths(files []types.FileEntry) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelativePath)
	}
	return out
}

func TestAddDirectoryDerivesID(t *testing.T) {
	cfg, idx, engine := newTestEngine(t)
	testutils.CreateFiles(t, cfg.Root, "foo/bar/a.js", "foo/bar/b.js")

	result, err := engine.Add(add.Request{Paths: []string{"foo/bar"}})
	require.NoError(t, err)
	require.Len(t, result.Components, 1)
	assert.True(t, result.Warnings.Empty())

	comp := result.Components[0]
	assert.Equal(t, "foo/bar", comp.ID)
	assert.ElementsMatch(t, []string{"foo/bar/a.js", "foo/bar/b.js"}, filePaths(comp.Files))

	// The sole directory input records the original layout root.
	rec, ok := idx.Get("foo/bar")
	require.True(t, ok)
	assert.Equal(t, "foo/bar", rec.RootDir)
	assert.Equal(t, types.Authored, rec.Origin)

	t.Run("re-adding is idempotent", func(t *testing.T) {
		again, err := engine.Add(add.Request{Paths: []string{"foo/bar"}})
		require.NoError(t, err)
		require.Len(t, again.Components, 1)
		assert.Equal(t, comp.ID, again.Components[0].ID)
		assert.ElementsMatch(t, filePaths(comp.Files), filePaths(again.Components[0].Files))
		assert.Equal(t, 1, idx.Len())
	})
}

func TestAddSingleUntrackedFile(t *testing.T) {
	cfg, _, engine := newTestEngine(t)
	testutils.CreateFiles(t, cfg.Root, "src/foo.js")

	result, err := engine.Add(add.Request{Paths: []string{"src/foo.js"}})
	require.NoError(t, err)
	require.Len(t, result.Components, 1)
	assert.True(t, result.Warnings.Empty())

	comp := result.Components[0]
	assert.Equal(t, "src/foo", comp.ID)
	require.Len(t, comp.Files, 1)
	assert.Equal(t, "src/foo.js", comp.Files[0].RelativePath)
	assert.False(t, comp.Files[0].IsTest)
}

func TestSiblingDirectories(t *testing.T) {
	t.Run("without id each directory is its own component", func(t *testing.T) {
		cfg, _, engine := newTestEngine(t)
		testutils.CreateFiles(t, cfg.Root, "foo/bar/x.js", "foo/baz/y.js")

		result, err := engine.Add(add.Request{Paths: []string{"foo/bar", "foo/baz"}})
		require.NoError(t, err)
		require.Len(t, result.Components, 2)
		ids := []string{result.Components[0].ID, result.Components[1].ID}
		assert.ElementsMatch(t, []string{"foo/bar", "foo/baz"}, ids)
	})

	t.Run("with id the file sets union into one component", func(t *testing.T) {
		cfg, _, engine := newTestEngine(t)
		testutils.CreateFiles(t, cfg.Root, "foo/bar/x.js", "foo/baz/y.js")

		result, err := engine.Add(add.Request{Paths: []string{"foo/bar", "foo/baz"}, ID: "my/comp"})
		require.NoError(t, err)
		require.Len(t, result.Components, 1)
		assert.Equal(t, "my/comp", result.Components[0].ID)
		assert.ElementsMatch(t, []string{"foo/bar/x.js", "foo/baz/y.js"}, filePaths(result.Components[0].Files))
	})
}

func TestDuplicateIDs(t *testing.T) {
	cfg, _, engine := newTestEngine(t)
	testutils.CreateFiles(t, cfg.Root, "a/foo/bar/f.js", "b/foo/bar/g.js")

	_, err := engine.Add(add.Request{Paths: []string{"a/foo/bar", "b/foo/bar"}})
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateIDs(err))
}

func TestTestPatternMergesCompanionFiles(t *testing.T) {
	cfg, _, engine := newTestEngine(t)
	testutils.CreateFiles(t, cfg.Root, "comp-a/index.js", "comp-a/index.test.js")

	result, err := engine.Add(add.Request{
		Paths:        []string{"comp-a/index.js", "comp-a/index.test.js"},
		TestPatterns: []string{"{PARENT}/{FILE_NAME}.test.js"},
	})
	require.NoError(t, err)
	require.Len(t, result.Components, 1, "the test file input should be absorbed, not form its own component")

	comp := result.Components[0]
	assert.Equal(t, "comp-a/index", comp.ID)
	require.Len(t, comp.Files, 2)

	byPath := make(map[string]types.FileEntry)
	for _, f := range comp.Files {
		byPath[f.RelativePath] = f
	}
	assert.False(t, byPath["comp-a/index.js"].IsTest)
	assert.True(t, byPath["comp-a/index.test.js"].IsTest)
}

func TestImportedComponentIDContract(t *testing.T) {
	seed := func(t *testing.T) (*config.Config, *index.Index, *add.Engine) {
		cfg, idx, engine := newTestEngine(t)
		testutils.CreateFiles(t, cfg.Root, "components/button/index.js")
		_, _, err := idx.Upsert(mustID(t, "acme/ui/button@1.0.0"),
			[]types.FileEntry{types.NewFileEntry("index.js", false)},
			"", "components/button", types.Imported, false)
		require.NoError(t, err)
		return cfg, idx, engine
	}

	t.Run("without id fails", func(t *testing.T) {
		_, _, engine := seed(t)
		_, err := engine.Add(add.Request{Paths: []string{"components/button/index.js"}})
		require.Error(t, err)
		assert.True(t, errors.IsMissingComponentIDForImported(err))
	})

	t.Run("with wrong id fails", func(t *testing.T) {
		_, _, engine := seed(t)
		_, err := engine.Add(add.Request{
			Paths: []string{"components/button/index.js"},
			ID:    "other/thing",
		})
		require.Error(t, err)
		assert.True(t, errors.IsIncorrectIDForImported(err))
	})

	t.Run("with correct id succeeds and preserves the stored path", func(t *testing.T) {
		_, idx, engine := seed(t)
		result, err := engine.Add(add.Request{
			Paths: []string{"components/button/index.js"},
			ID:    "ui/button",
		})
		require.NoError(t, err)
		require.Len(t, result.Components, 1)

		comp := result.Components[0]
		assert.Equal(t, "acme/ui/button@1.0.0", comp.ID, "the stored richer identifier is kept")
		require.Len(t, comp.Files, 1)
		assert.Equal(t, "index.js", comp.Files[0].RelativePath, "the pre-existing entry is kept verbatim")

		rec, ok := idx.Get("acme/ui/button@1.0.0")
		require.True(t, ok)
		assert.Equal(t, types.Imported, rec.Origin)
	})

	t.Run("new files are re-anchored to the imported root", func(t *testing.T) {
		cfg, idx, engine := seed(t)
		testutils.CreateFiles(t, cfg.Root, "components/button/new.js")

		result, err := engine.Add(add.Request{
			Paths: []string{"components/button/new.js"},
			ID:    "ui/button",
		})
		require.NoError(t, err)
		require.Len(t, result.Components, 1)

		// The stored entry is relative to the record's own root, like the
		// entries already there.
		rec, ok := idx.Get("acme/ui/button@1.0.0")
		require.True(t, ok)
		assert.ElementsMatch(t, []string{"index.js", "new.js"}, filePaths(rec.Files))

		// Ownership resolves through the record root, so an id-less re-add
		// of the same path still hits the imported-id contract.
		owner, found := idx.OwnerOfPath("components/button/new.js")
		require.True(t, found)
		assert.Equal(t, "acme/ui/button@1.0.0", owner)

		_, err = engine.Add(add.Request{Paths: []string{"components/button/new.js"}})
		require.Error(t, err)
		assert.True(t, errors.IsMissingComponentIDForImported(err))
		assert.Equal(t, 1, idx.Len())
	})
}

func TestExcludePatterns(t *testing.T) {
	t.Run("excluding the main file drops the whole component", func(t *testing.T) {
		cfg, idx, engine := newTestEngine(t)
		testutils.CreateFiles(t, cfg.Root, "comp-c/index.js", "comp-c/util.js")

		result, err := engine.Add(add.Request{
			Paths:           []string{"comp-c"},
			MainFile:        "{PARENT}/index.js",
			ExcludePatterns: []string{"comp-c/index.js"},
		})
		require.NoError(t, err)
		assert.Empty(t, result.Components)
		assert.Equal(t, 0, idx.Len())
	})

	t.Run("excluding a non-main file drops only that file", func(t *testing.T) {
		cfg, _, engine := newTestEngine(t)
		testutils.CreateFiles(t, cfg.Root, "comp-c/index.js", "comp-c/util.js")

		result, err := engine.Add(add.Request{
			Paths:           []string{"comp-c"},
			MainFile:        "{PARENT}/index.js",
			ExcludePatterns: []string{"comp-c/util.js"},
		})
		require.NoError(t, err)
		require.Len(t, result.Components, 1)
		assert.Equal(t, []string{"comp-c/index.js"}, filePaths(result.Components[0].Files))
	})
}

func TestConflictBecomesWarning(t *testing.T) {
	cfg, idx, engine := newTestEngine(t)
	testutils.CreateFiles(t, cfg.Root, "src/shared.js", "src/new.js")

	_, _, err := idx.Upsert(mustID(t, "lib/shared"),
		[]types.FileEntry{types.NewFileEntry("src/shared.js", false)},
		"", "", types.Authored, false)
	require.NoError(t, err)

	result, err := engine.Add(add.Request{Paths: []string{"src"}})
	require.NoError(t, err, "a non-imported ownership conflict must not fail the operation")
	require.Len(t, result.Components, 1)
	assert.Equal(t, []string{"src/new.js"}, filePaths(result.Components[0].Files))

	require.Contains(t, result.Warnings, "lib/shared")
	assert.Equal(t, []string{"src/shared.js"}, result.Warnings["lib/shared"])

	// Ownership stays unique: the conflicting path still belongs to its
	// original component.
	owner, found := idx.OwnerOfPath("src/shared.js")
	require.True(t, found)
	assert.Equal(t, "lib/shared", owner)
	owner, found = idx.OwnerOfPath("src/new.js")
	require.True(t, found)
	assert.Equal(t, "src", owner)
}

func TestMissingPathsReportedTogether(t *testing.T) {
	_, _, engine := newTestEngine(t)

	_, err := engine.Add(add.Request{Paths: []string{"nope", "also/nope"}})
	require.Error(t, err)
	require.True(t, errors.IsPathsNotExist(err))

	var pathsErr *errors.PathsError
	require.True(t, errors.As(err, &pathsErr))
	assert.ElementsMatch(t, []string{"nope", "also/nope"}, pathsErr.Paths())
}

func TestNoFilesWhenEverythingIgnored(t *testing.T) {
	t.Run("nested ignored file", func(t *testing.T) {
		cfg, _, engine := newTestEngine(t)
		testutils.CreateFiles(t, cfg.Root, "logs/app.log")

		_, err := engine.Add(add.Request{Paths: []string{"logs/app.log"}})
		require.Error(t, err)
		assert.True(t, errors.IsNoFiles(err))
	})

	t.Run("root-level ignored file", func(t *testing.T) {
		cfg, _, engine := newTestEngine(t)
		testutils.CreateFiles(t, cfg.Root, "app.log")

		_, err := engine.Add(add.Request{Paths: []string{"app.log"}})
		require.Error(t, err)
		assert.True(t, errors.IsNoFiles(err))
	})

	t.Run("root-level dependency tree", func(t *testing.T) {
		cfg, _, engine := newTestEngine(t)
		testutils.CreateFiles(t, cfg.Root, "node_modules/dep/x.js")

		_, err := engine.Add(add.Request{Paths: []string{"node_modules"}})
		require.Error(t, err)
		assert.True(t, errors.IsEmptyDirectory(err))
	})
}

func TestEmptyDirectory(t *testing.T) {
	t.Run("directory with no files", func(t *testing.T) {
		cfg, _, engine := newTestEngine(t)
		require.NoError(t, os.MkdirAll(filepath.Join(cfg.Root, "empty"), 0755))

		_, err := engine.Add(add.Request{Paths: []string{"empty"}})
		require.Error(t, err)
		assert.True(t, errors.IsEmptyDirectory(err))
	})

	t.Run("directory with only ignored files", func(t *testing.T) {
		cfg, _, engine := newTestEngine(t)
		testutils.CreateFiles(t, cfg.Root, "stuff/.DS_Store")

		_, err := engine.Add(add.Request{Paths: []string{"stuff"}})
		require.Error(t, err)
		assert.True(t, errors.IsEmptyDirectory(err))
	})
}

func TestNestedIDReservationCollision(t *testing.T) {
	seed := func(t *testing.T) (*config.Config, *index.Index, *add.Engine) {
		cfg, idx, engine := newTestEngine(t)
		testutils.CreateFiles(t, cfg.Root, "ui/button/index.js")
		_, _, err := idx.Upsert(mustID(t, "ui/button"),
			[]types.FileEntry{types.NewFileEntry("vendor/dep/x.js", false)},
			"", "", types.Nested, false)
		require.NoError(t, err)
		return cfg, idx, engine
	}

	t.Run("derived id", func(t *testing.T) {
		_, _, engine := seed(t)
		_, err := engine.Add(add.Request{Paths: []string{"ui/button"}})
		require.Error(t, err)
		assert.True(t, errors.IsNamespaceCollision(err))
	})

	t.Run("explicit id", func(t *testing.T) {
		_, idx, engine := seed(t)
		_, err := engine.Add(add.Request{Paths: []string{"ui/button"}, ID: "ui/button"})
		require.Error(t, err)
		assert.True(t, errors.IsNamespaceCollision(err))

		// The nested record is untouched: origin intact, no files merged in.
		rec, ok := idx.Get("ui/button")
		require.True(t, ok)
		assert.Equal(t, types.Nested, rec.Origin)
		assert.Equal(t, []string{"vendor/dep/x.js"}, filePaths(rec.Files))
	})
}

func TestGlobInputExpansion(t *testing.T) {
	cfg, _, engine := newTestEngine(t)
	testutils.CreateFiles(t, cfg.Root, "src/a.js", "src/b.js")

	result, err := engine.Add(add.Request{Paths: []string{"src/*.js"}})
	require.NoError(t, err)
	require.Len(t, result.Components, 2)
	ids := []string{result.Components[0].ID, result.Components[1].ID}
	assert.ElementsMatch(t, []string{"src/a", "src/b"}, ids)
}

func TestMainFileComesFromFirstGroup(t *testing.T) {
	cfg, idx, engine := newTestEngine(t)
	testutils.CreateFiles(t, cfg.Root, "foo/bar/x.js", "foo/baz/index.js")

	// Only the second path resolves the pattern; the first group still
	// decides the merged main file, so none is recorded.
	_, err := engine.Add(add.Request{
		Paths:    []string{"foo/bar", "foo/baz"},
		ID:       "my/comp",
		MainFile: "{PARENT}/index.js",
	})
	require.NoError(t, err)

	rec, ok := idx.Get("my/comp")
	require.True(t, ok)
	assert.Empty(t, rec.MainFile)
}

func TestMainFileLiteralMayNotExistYet(t *testing.T) {
	cfg, idx, engine := newTestEngine(t)
	testutils.CreateFiles(t, cfg.Root, "comp-d/a.js")

	_, err := engine.Add(add.Request{
		Paths:    []string{"comp-d"},
		MainFile: "comp-d/future.js",
	})
	require.NoError(t, err)

	rec, ok := idx.Get("comp-d")
	require.True(t, ok)
	assert.Equal(t, "comp-d/future.js", rec.MainFile)
}

func TestOverrideReplacesFileSet(t *testing.T) {
	cfg, idx, engine := newTestEngine(t)
	testutils.CreateFiles(t, cfg.Root, "comp/a.js", "comp/b.js")

	_, err := engine.Add(add.Request{Paths: []string{"comp"}, ID: "my/comp"})
	require.NoError(t, err)

	t.Run("merge keeps previously tracked files", func(t *testing.T) {
		result, err := engine.Add(add.Request{Paths: []string{"comp/a.js"}, ID: "my/comp"})
		require.NoError(t, err)
		require.Len(t, result.Components, 1)
		assert.ElementsMatch(t, []string{"comp/a.js", "comp/b.js"}, filePaths(result.Components[0].Files))
	})

	t.Run("override replaces the file set outright", func(t *testing.T) {
		result, err := engine.Add(add.Request{Paths: []string{"comp/a.js"}, ID: "my/comp", Override: true})
		require.NoError(t, err)
		require.Len(t, result.Components, 1)
		assert.Equal(t, []string{"comp/a.js"}, filePaths(result.Components[0].Files))

		rec, ok := idx.Get("my/comp")
		require.True(t, ok)
		assert.Equal(t, []string{"comp/a.js"}, filePaths(rec.Files))
	})
}

func TestNamespaceOverride(t *testing.T) {
	cfg, _, engine := newTestEngine(t)
	testutils.CreateFiles(t, cfg.Root, "foo/bar/a.js")

	result, err := engine.Add(add.Request{Paths: []string{"foo/bar"}, Namespace: "custom"})
	require.NoError(t, err)
	require.Len(t, result.Components, 1)
	assert.Equal(t, "custom/bar", result.Components[0].ID)
}

func TestDerivedIDAdoptsExistingQualifiedForm(t *testing.T) {
	cfg, idx, engine := newTestEngine(t)
	testutils.CreateFiles(t, cfg.Root, "foo/bar/a.js")

	// A previous add stored the component under a scoped identifier.
	_, _, err := idx.Upsert(mustID(t, "acme/foo/bar"),
		[]types.FileEntry{types.NewFileEntry("foo/bar/a.js", false)},
		"", "foo/bar", types.Authored, false)
	require.NoError(t, err)

	result, err := engine.Add(add.Request{Paths: []string{"foo/bar"}})
	require.NoError(t, err)
	require.Len(t, result.Components, 1)
	assert.Equal(t, "acme/foo/bar", result.Components[0].ID)
	assert.Equal(t, 1, idx.Len(), "no duplicate record under the unqualified id")
}
