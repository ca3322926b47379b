package annotation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVocab(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "set6_labels.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadVocabulary(t *testing.T) {
	path := writeVocab(t, "Ahri, AHR\nBlitzcrank,BLI\n  Caitlyn ,  CAI  \n")

	v, err := LoadVocabulary(path)
	require.NoError(t, err)

	assert.Equal(t, 3, v.Len())
	assert.Equal(t, []string{"Ahri", "Blitzcrank", "Caitlyn"}, v.Names())
	assert.Equal(t, []string{"AHR", "BLI", "CAI"}, v.Codes())

	code, ok := v.Code("Caitlyn")
	assert.True(t, ok)
	assert.Equal(t, "CAI", code)
	assert.Equal(t, 1, v.Index("BLI"))
	assert.Equal(t, -1, v.Index("ZZZ"))
}

func TestLoadVocabulary_EntryPerLine(t *testing.T) {
	lines := []string{"A, a", "B, b", "C, c", "D, d", "E, e"}
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}

	v, err := LoadVocabulary(writeVocab(t, content))
	require.NoError(t, err)
	assert.Equal(t, len(lines), v.Len())
}

func TestLoadVocabulary_SkipsBlankLines(t *testing.T) {
	v, err := LoadVocabulary(writeVocab(t, "A, a\n\n   \nB, b"))
	require.NoError(t, err)
	assert.Equal(t, 2, v.Len())
}

func TestLoadVocabulary_ParseErrors(t *testing.T) {
	cases := map[string]string{
		"one column":   "Ahri\n",
		"three column": "Ahri, AHR, extra\n",
		"empty field":  "Ahri, \n",
		"duplicate":    "Ahri, AHR\nAhri, AH2\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadVocabulary(writeVocab(t, content))
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestLoadVocabulary_NotFound(t *testing.T) {
	_, err := LoadVocabulary(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVocabulary_AccessorsReturnCopies(t *testing.T) {
	v, err := LoadVocabulary(writeVocab(t, "A, a\nB, b\n"))
	require.NoError(t, err)

	codes := v.Codes()
	codes[0] = "changed"
	assert.Equal(t, "a", v.Codes()[0])
}
