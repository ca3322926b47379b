package main

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cubiaa/tft-labeler/annotation"
	"github.com/Cubiaa/tft-labeler/config"
	"github.com/Cubiaa/tft-labeler/dataset"
)

// run 在 root 下执行一条命令，返回输出
func run(t *testing.T, root, stdin string, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{config.EnvRoot, config.EnvConfig, config.EnvLibraryPath, config.EnvUseGPU, config.EnvWindowTitle} {
		t.Setenv(key, "")
	}
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--root", root}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func stage(t *testing.T, s dataset.Archive, stem string, units ...string) {
	t.Helper()
	require.NoError(t, s.Ensure())
	img := s.ImagePathFor(stem)
	require.NoError(t, os.WriteFile(img, []byte("png-"+stem), 0644))
	var objs []annotation.Object
	for _, u := range units {
		objs = append(objs, annotation.NewObject(u, annotation.Box{XMin: 1, YMin: 1, XMax: 9, YMax: 9}))
	}
	rec := annotation.NewRecord(img, 1920, 1080, 3, objs)
	require.NoError(t, annotation.WriteFile(filepath.Join(s.Labels, stem+dataset.LabelExt), rec))
}

func writeVocabulary(t *testing.T, root string) {
	t.Helper()
	path := filepath.Join(root, "models", "set6_labels.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("Ahri, AHR\nZed, ZED\n"), 0644))
}

func TestInit(t *testing.T) {
	root := t.TempDir()
	out, err := run(t, root, "", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "已创建配置文件")
	assert.FileExists(t, filepath.Join(root, config.DefaultConfigName))
	assert.DirExists(t, filepath.Join(root, "screenshots"))
	assert.DirExists(t, filepath.Join(root, "clean_data", "labels"))

	_, err = run(t, root, "", "init")
	assert.Error(t, err)
	_, err = run(t, root, "", "init", "--force")
	assert.NoError(t, err)
}

func TestCommitThenHistory(t *testing.T) {
	root := t.TempDir()
	staging := dataset.New(filepath.Join(root, "screenshots"), filepath.Join(root, "labels"))
	stage(t, staging, "a", "AHR")
	stage(t, staging, "b", "ZED")

	out, err := run(t, root, "y\n", "commit")
	require.NoError(t, err)
	assert.Contains(t, out, "已提交 2 对文件（编号 0-1）")

	archive := dataset.New(filepath.Join(root, "clean_data", "images"), filepath.Join(root, "clean_data", "labels"))
	require.NoError(t, archive.Validate())
	assert.FileExists(t, archive.LabelPath(1))

	out, err = run(t, root, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "commit")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "4/4")
}

func TestCommitDeclined(t *testing.T) {
	root := t.TempDir()
	staging := dataset.New(filepath.Join(root, "screenshots"), filepath.Join(root, "labels"))
	stage(t, staging, "a", "AHR")

	out, err := run(t, root, "n\n", "commit", "--no-journal")
	require.NoError(t, err)
	assert.Contains(t, out, "文件未移动")
	assert.FileExists(t, staging.ImagePathFor("a"))
	assert.NoFileExists(t, filepath.Join(root, "clean_data", "journal.db"))
}

func TestRepair(t *testing.T) {
	root := t.TempDir()
	archive := dataset.New(filepath.Join(root, "clean_data", "images"), filepath.Join(root, "clean_data", "labels"))
	stage(t, archive, "0", "AHR")
	stage(t, archive, "3", "ZED")

	out, err := run(t, root, "", "repair")
	require.NoError(t, err)
	assert.Contains(t, out, "重新编号 1 对")
	require.NoError(t, archive.Validate())
}

func TestTally(t *testing.T) {
	root := t.TempDir()
	writeVocabulary(t, root)
	archive := dataset.New(filepath.Join(root, "clean_data", "images"), filepath.Join(root, "clean_data", "labels"))
	stage(t, archive, "0", "AHR", "AHR")
	stage(t, archive, "1", "ZED")

	out, err := run(t, root, "", "tally", "-v", "--html", "tally.html")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "AHR: 2\nZED: 1\n"))
	assert.Contains(t, out, "Total units: 3")
	assert.Contains(t, out, "Total images: 2")
	assert.FileExists(t, filepath.Join(root, "tally.html"))
}

func TestTally_MissingVocabulary(t *testing.T) {
	root := t.TempDir()
	_, err := run(t, root, "", "tally")
	assert.ErrorIs(t, err, annotation.ErrNotFound)
}

func TestAutolabel_MissingModel(t *testing.T) {
	root := t.TempDir()
	writeVocabulary(t, root)
	_, err := run(t, root, "", "autolabel")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestHistory_UnknownBatch(t *testing.T) {
	_, err := run(t, t.TempDir(), "", "history", "nope")
	assert.Error(t, err)
}

func TestPick(t *testing.T) {
	assert.Equal(t, "b", pick("", "b", "c"))
	assert.Equal(t, "", pick("", ""))
}

func TestDetect_MissingModel(t *testing.T) {
	root := t.TempDir()
	writeVocabulary(t, root)
	_, err := run(t, root, "", "detect", "0.png")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
