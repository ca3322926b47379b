package journal

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cubiaa/tft-labeler/annotation"
	"github.com/Cubiaa/tft-labeler/dataset"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "db", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	// 固定递增的时钟，保证排序稳定
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	j.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return j
}

func TestOpen_Migrates(t *testing.T) {
	j := openTestJournal(t)
	version, dirty, err := j.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	id, err := j.BeginBatch(dataset.BatchCommit, "a", "b", nil)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	b, err := j.Get(id)
	require.NoError(t, err)
	assert.Equal(t, dataset.BatchCommit, b.Kind)
}

func TestBatchLifecycle(t *testing.T) {
	j := openTestJournal(t)
	moves := []dataset.Move{
		{From: "labels/a.xml", To: "clean_data/labels/0.xml"},
		{From: "screenshots/a.png", To: "clean_data/images/0.png"},
	}

	id, err := j.BeginBatch(dataset.BatchCommit, "labels", "clean_data/labels", moves)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	b, err := j.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, b.Status)
	assert.Equal(t, 2, b.Total)
	assert.Zero(t, b.Moved)
	assert.False(t, b.Finished())

	require.NoError(t, j.MarkMoved(id, 0))

	entries, err := j.Moves(id)
	require.NoError(t, err)
	want := []MoveEntry{
		{Seq: 0, From: "labels/a.xml", To: "clean_data/labels/0.xml", Moved: true},
		{Seq: 1, From: "screenshots/a.png", To: "clean_data/images/0.png"},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("Moves mismatch (-want +got):\n%s", diff)
	}

	incomplete, err := j.Incomplete()
	require.NoError(t, err)
	require.Len(t, incomplete, 1)
	assert.Equal(t, id, incomplete[0].ID)
	assert.Equal(t, 1, incomplete[0].Moved)

	require.NoError(t, j.MarkMoved(id, 1))
	require.NoError(t, j.FinishBatch(id, dataset.StatusDone))

	incomplete, err = j.Incomplete()
	require.NoError(t, err)
	assert.Empty(t, incomplete)

	b, err = j.Get(id)
	require.NoError(t, err)
	assert.True(t, b.Finished())
	assert.Equal(t, 2, b.Moved)
}

func TestFailedBatchIsIncomplete(t *testing.T) {
	j := openTestJournal(t)
	id, err := j.BeginBatch(dataset.BatchRepair, "l", "l", []dataset.Move{{From: "5.png", To: "2.png"}})
	require.NoError(t, err)
	require.NoError(t, j.FinishBatch(id, dataset.StatusFailed))

	incomplete, err := j.Incomplete()
	require.NoError(t, err)
	require.Len(t, incomplete, 1)
	assert.Equal(t, dataset.StatusFailed, incomplete[0].Status)
}

func TestRecent(t *testing.T) {
	j := openTestJournal(t)
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := j.BeginBatch(dataset.BatchCommit, "s", "t", nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	recent, err := j.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)

	all, err := j.Recent(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUnknownBatch(t *testing.T) {
	j := openTestJournal(t)
	assert.ErrorIs(t, j.MarkMoved("nope", 0), ErrUnknownBatch)
	assert.ErrorIs(t, j.FinishBatch("nope", dataset.StatusDone), ErrUnknownBatch)
	_, err := j.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownBatch)
}

func TestJournalRecordsCommit(t *testing.T) {
	j := openTestJournal(t)
	root := t.TempDir()
	staging := dataset.New(filepath.Join(root, "screenshots"), filepath.Join(root, "labels"))
	archive := dataset.New(filepath.Join(root, "clean_data", "images"), filepath.Join(root, "clean_data", "labels"))
	require.NoError(t, staging.Ensure())

	for _, stem := range []string{"a", "b"} {
		img := staging.ImagePathFor(stem)
		require.NoError(t, writeBytes(img, "png"))
		r := annotation.NewRecord(img, 1920, 1080, 3, nil)
		require.NoError(t, annotation.WriteFile(filepath.Join(staging.Labels, stem+".xml"), r))
	}

	report, err := dataset.Commit(staging, archive, dataset.CommitOptions{
		Confirm:  func(*dataset.Plan) (bool, error) { return true, nil },
		Out:      &bytes.Buffer{},
		Recorder: j,
	})
	require.NoError(t, err)

	b, err := j.Get(report.BatchID)
	require.NoError(t, err)
	assert.Equal(t, dataset.StatusDone, b.Status)
	assert.Equal(t, 4, b.Total)
	assert.Equal(t, 4, b.Moved)
}
