package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackd/internal/errors"
)

func TestPathsError(t *testing.T) {
	err := errors.NewPathsError("paths not found on disk", []string{"a", "b"}, errors.PathsNotExist, nil)

	assert.True(t, errors.IsPathsNotExist(err))
	assert.False(t, errors.IsNoFiles(err))
	assert.Equal(t, []string{"a", "b"}, err.Paths())
	assert.Contains(t, err.Error(), "a, b")
}

func TestIDError(t *testing.T) {
	err := errors.NewIDError("two paths resolve to the same component id", "ui/button", errors.DuplicateIDs, nil).
		WithConflicting("foo/bar")

	assert.True(t, errors.IsDuplicateIDs(err))
	assert.Equal(t, "ui/button", err.ID())
	assert.Equal(t, "foo/bar", err.Conflicting())
	assert.Contains(t, err.Error(), "ui/button")
	assert.Contains(t, err.Error(), "foo/bar")
}

func TestKindPredicatesDistinguishKinds(t *testing.T) {
	missing := errors.NewIDError("needs id", "x", errors.MissingComponentIDForImported, nil)
	incorrect := errors.NewIDError("wrong id", "x", errors.IncorrectIDForImported, nil)

	assert.True(t, errors.IsMissingComponentIDForImported(missing))
	assert.False(t, errors.IsIncorrectIDForImported(missing))
	assert.True(t, errors.IsIncorrectIDForImported(incorrect))
	assert.False(t, errors.IsMissingComponentIDForImported(incorrect))
}

func TestWrapping(t *testing.T) {
	cause := errors.New("cause")
	wrapped := errors.Wrapf(cause, "context %d", 1)
	require.Error(t, wrapped)

	assert.Contains(t, wrapped.Error(), "context 1")
	assert.Equal(t, cause, errors.Unwrap(wrapped))
	assert.Nil(t, errors.Wrap(nil, "nothing"))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := errors.NewPathsError("empty", []string{"dir"}, errors.EmptyDirectory, nil)
	outer := fmt.Errorf("while adding: %w", inner)

	assert.True(t, errors.IsEmptyDirectory(outer))
	assert.Equal(t, errors.EmptyDirectory, errors.KindOf(outer))
}
