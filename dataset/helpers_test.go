package dataset

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Cubiaa/tft-labeler/annotation"
)

// newTestArchive 在临时目录下创建 images/labels 两个目录
func newTestArchive(t *testing.T, root string) Archive {
	t.Helper()
	a := New(filepath.Join(root, "images"), filepath.Join(root, "labels"))
	require.NoError(t, a.Ensure())
	return a
}

// addPair 写入一张假图片和一个指向它的标注；图片内容用主干名区分
func addPair(t *testing.T, a Archive, stem string, objects ...string) {
	t.Helper()
	addImage(t, a, stem)
	addLabel(t, a, stem, objects...)
}

func addImage(t *testing.T, a Archive, stem string) {
	t.Helper()
	path := a.ImagePathFor(stem)
	require.NoError(t, os.WriteFile(path, []byte("image-"+stem), 0644))
}

func addLabel(t *testing.T, a Archive, stem string, objects ...string) {
	t.Helper()
	var objs []annotation.Object
	for i, name := range objects {
		objs = append(objs, annotation.NewObject(name, annotation.Box{XMin: i, YMin: i, XMax: i + 10, YMax: i + 10}))
	}
	r := annotation.NewRecord(a.ImagePathFor(stem), 1920, 1080, 3, objs)
	require.NoError(t, annotation.WriteFile(filepath.Join(a.Labels, stem+LabelExt), r))
}

func stems(t *testing.T, dir, ext string) []string {
	t.Helper()
	files, err := listFiles(dir, ext)
	require.NoError(t, err)
	var out []string
	for _, f := range files {
		out = append(out, f.Stem)
	}
	sort.Strings(out)
	return out
}

// snapshot 读取目录下所有文件内容
func snapshot(t *testing.T, dirs ...string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			out[filepath.Join(dir, e.Name())] = string(data)
		}
	}
	return out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func accept(*Plan) (bool, error) { return true, nil }

func reject(*Plan) (bool, error) { return false, nil }

// fakeRecorder 记录日志调用
type fakeRecorder struct {
	kind     string
	moves    []Move
	moved    []int
	statuses []string
}

func (f *fakeRecorder) BeginBatch(kind, source, target string, moves []Move) (string, error) {
	f.kind = kind
	f.moves = moves
	return "batch-1", nil
}

func (f *fakeRecorder) MarkMoved(batchID string, seq int) error {
	f.moved = append(f.moved, seq)
	return nil
}

func (f *fakeRecorder) FinishBatch(batchID, status string) error {
	f.statuses = append(f.statuses, status)
	return nil
}
