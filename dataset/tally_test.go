package dataset

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cubiaa/tft-labeler/annotation"
)

func loadVocab(t *testing.T, content string) *annotation.Vocabulary {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labels.csv")
	writeFile(t, path, content)
	v, err := annotation.LoadVocabulary(path)
	require.NoError(t, err)
	return v
}

func TestTally(t *testing.T) {
	archive := newTestArchive(t, t.TempDir())
	addPair(t, archive, "0", "A", "A", "B")
	addPair(t, archive, "1", "A", "A")
	vocab := loadVocab(t, "Alpha, A\nBravo, B\nCharlie, C\n")

	report, err := Tally(archive, vocab)
	require.NoError(t, err)

	want := []ClassCount{
		{Name: "A", Count: 4, Known: true},
		{Name: "B", Count: 1, Known: true},
		{Name: "C", Count: 0, Known: true},
	}
	if diff := cmp.Diff(want, report.Counts); diff != "" {
		t.Errorf("Counts mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 5, report.TotalObjects)
	assert.Equal(t, 2, report.TotalImages)
	assert.InDelta(t, 2.5, report.Average, 1e-9)
	assert.InDelta(t, 0.7071, report.StdDev, 1e-3)
	assert.Equal(t, []string{"C", "B", "A"}, names(report.Least))
	assert.Len(t, report.Rare, 3)
	assert.InDelta(t, 100.0, report.RarePercent, 1e-9)
}

func TestTally_UnknownNamesCounted(t *testing.T) {
	archive := newTestArchive(t, t.TempDir())
	addPair(t, archive, "0", "Z", "A", "Z")
	vocab := loadVocab(t, "Alpha, A\n")

	report, err := Tally(archive, vocab)
	require.NoError(t, err)
	assert.Equal(t, []ClassCount{
		{Name: "A", Count: 1, Known: true},
		{Name: "Z", Count: 2},
	}, report.Counts)
}

func TestTally_LeastKeepsVocabularyOrderOnTies(t *testing.T) {
	archive := newTestArchive(t, t.TempDir())
	addPair(t, archive, "0")
	content := ""
	for _, c := range []string{"K", "J", "I", "H", "G", "F", "E", "D", "C", "B", "A"} {
		content += "unit " + c + ", " + c + "\n"
	}
	report, err := Tally(archive, loadVocab(t, content))
	require.NoError(t, err)
	assert.Equal(t, []string{"K", "J", "I", "H", "G", "F", "E", "D", "C", "B"}, names(report.Least))
}

func TestTally_RarePercent(t *testing.T) {
	archive := newTestArchive(t, t.TempDir())
	objects := make([]string, RareThreshold)
	for i := range objects {
		objects[i] = "A"
	}
	addPair(t, archive, "0", objects...)
	report, err := Tally(archive, loadVocab(t, "Alpha, A\nBravo, B\nCharlie, C\nDelta, D\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "D"}, names(report.Rare))
	assert.InDelta(t, 75.0, report.RarePercent, 1e-9)
	assert.Zero(t, report.StdDev)
}

func TestTally_EmptyArchive(t *testing.T) {
	archive := newTestArchive(t, t.TempDir())
	report, err := Tally(archive, nil)
	require.NoError(t, err)
	assert.Zero(t, report.TotalImages)
	assert.Zero(t, report.Average)
}

func TestTally_MissingImage(t *testing.T) {
	archive := newTestArchive(t, t.TempDir())
	addPair(t, archive, "0", "A")
	addLabel(t, archive, "1", "A")

	_, err := Tally(archive, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTally_MissingLabelsDir(t *testing.T) {
	dir := t.TempDir()
	_, err := Tally(New(filepath.Join(dir, "images"), filepath.Join(dir, "labels")), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func names(counts []ClassCount) []string {
	out := make([]string, 0, len(counts))
	for _, c := range counts {
		out = append(out, c.Name)
	}
	return out
}
