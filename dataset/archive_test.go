package dataset

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	a := newTestArchive(t, t.TempDir())
	addPair(t, a, "0")
	addPair(t, a, "1")
	assert.NoError(t, a.Validate())

	addPair(t, a, "3")
	assert.ErrorIs(t, a.Validate(), ErrArchiveCorrupt)
}

func TestValidate_MissingPair(t *testing.T) {
	a := newTestArchive(t, t.TempDir())
	addPair(t, a, "0")
	addImage(t, a, "1")

	err := a.Validate()
	require.ErrorIs(t, err, ErrMissingPair)

	var pe *PairError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "1", pe.Stem)
	assert.Equal(t, filepath.Join(a.Labels, "1.xml"), pe.Missing)
}

func TestValidate_LabelWithoutImage(t *testing.T) {
	a := newTestArchive(t, t.TempDir())
	addPair(t, a, "0")
	addLabel(t, a, "1")

	var pe *PairError
	require.True(t, errors.As(a.Validate(), &pe))
	assert.Equal(t, filepath.Join(a.Images, "1.png"), pe.Missing)
}

func TestScan_NotFound(t *testing.T) {
	root := t.TempDir()
	a := New(filepath.Join(root, "nope"), filepath.Join(root, "labels"))
	_, err := a.Scan()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScan_IgnoresOtherFiles(t *testing.T) {
	a := newTestArchive(t, t.TempDir())
	addPair(t, a, "0")
	require.NoError(t, a.Ensure())
	writeFile(t, filepath.Join(a.Images, "notes.txt"), "x")
	writeFile(t, filepath.Join(a.Images, "0.jpg"), "x")

	l, err := a.Scan()
	require.NoError(t, err)
	assert.Len(t, l.Images, 1)
	assert.Len(t, l.Labels, 1)
}

func TestParseID(t *testing.T) {
	for stem, want := range map[string]int{"0": 0, "12": 12, "007": 7} {
		id, ok := parseID(stem)
		assert.True(t, ok, stem)
		assert.Equal(t, want, id)
	}
	for _, stem := range []string{"", "-1", "+3", "a1", "1.5", "screenshot"} {
		_, ok := parseID(stem)
		assert.False(t, ok, stem)
	}
}
