package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/lookatdata-cli/internal/utils"
)

func TestSafeWriteFile_CreatesDirs(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a", "b", "out.md")
	require.NoError(t, utils.SafeWriteFile(p, []byte("hello")))
	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(b))
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.csv", "a.csv", "c.xlsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
	files, err := utils.ExpandInputs([]string{
		filepath.Join(dir, "*.csv"),
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "c.xlsx"),
		filepath.Join(dir, "missing.csv"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.csv"),
		filepath.Join(dir, "c.xlsx"),
	}, files)
}

func TestUniqueOutputPath(t *testing.T) {
	dir := t.TempDir()
	first := utils.UniqueOutputPath(dir, "sales", "report.md")
	assert.Equal(t, filepath.Join(dir, "sales.report.md"), first)
	require.NoError(t, os.WriteFile(first, nil, 0o644))

	second := utils.UniqueOutputPath(dir, "sales", "report.md")
	assert.Equal(t, filepath.Join(dir, "sales__2.report.md"), second)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "q1-sales", utils.Slug(" Q1 Sales! "))
	assert.Equal(t, "", utils.Slug("???"))
}
