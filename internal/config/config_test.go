package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/KaramelBytes/lookatdata-cli/internal/dataset"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), c)
}

func TestLoad_FileAndEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("top_n: 9\nformat: json\ndecimal_separator: comma\nlog:\n  level: debug\n"), 0o644))
	t.Setenv("LOOKATDATA_TOP_CATEGORIES", "3")
	t.Setenv("LOOKATDATA_LOG_FORMAT", "json")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9, c.TopN)
	assert.Equal(t, 3, c.TopCategories)
	assert.Equal(t, "json", c.Format)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, dataset.NumberFormat{DecimalSeparator: ','}, c.NumberFormat())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5, c.TopN)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("delimiter: \"#\"\n"), 0o644))
	_, err := Load(p)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(p, []byte("top_n: -1\n"), 0o644))
	_, err = Load(p)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(p, []byte("top_n: [\n"), 0o644))
	_, err = Load(p)
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "config.yaml")
	c := Defaults()
	c.TopN = 12
	c.Delimiter = "tab"
	require.NoError(t, Save(c, p))

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 12, got.TopN)
	assert.Equal(t, '\t', got.DelimiterRune())
}

func TestParseSeparators(t *testing.T) {
	r, err := ParseDelimiter(";")
	require.NoError(t, err)
	assert.Equal(t, ';', r)
	_, err = ParseDelimiter("x")
	assert.Error(t, err)

	r, err = ParseThousands("space")
	require.NoError(t, err)
	assert.Equal(t, ' ', r)
	r, err = ParseDecimal("")
	require.NoError(t, err)
	assert.Zero(t, r)
	_, err = ParseDecimal("?")
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	defer zap.ReplaceGlobals(zap.NewNop())

	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.True(t, zap.L().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, InitLogger(LogConfig{Format: "json"}))
	assert.False(t, zap.L().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, zap.L().Core().Enabled(zapcore.WarnLevel))

	assert.Error(t, InitLogger(LogConfig{Level: "loud"}))
}
