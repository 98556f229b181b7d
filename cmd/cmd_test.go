package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/lookatdata-cli/internal/analysis"
	"github.com/KaramelBytes/lookatdata-cli/internal/classify"
	"github.com/KaramelBytes/lookatdata-cli/internal/source"
)

// resetFlags puts every flag of c and its children back to its default so
// that state does not leak between invocations of the shared rootCmd.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	base := []string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}
	rootCmd.SetArgs(append(base, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	require.NoError(t, err, out)
	return out
}

// salesCSV has one clearly unusual row: position 5 holds the only "north"
// region and an amount ten times larger than the rest.
func salesCSV() string {
	var b strings.Builder
	b.WriteString("id,region,amount\n")
	for i := 0; i < 10; i++ {
		region, amount := "east", 100+i
		switch i {
		case 2, 6:
			region = "west"
		case 5:
			region, amount = "north", 1050
		}
		fmt.Fprintf(&b, "%d,%s,%d\n", i+1, region, amount)
	}
	return b.String()
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestDescribe_Markdown(t *testing.T) {
	home := isolate(t)
	p := writeFile(t, filepath.Join(home, "sales.csv"), salesCSV())

	out := mustRun(t, "describe", p)
	assert.Contains(t, out, "[DATASET SUMMARY]")
	assert.Contains(t, out, "[CATEGORICAL VARIABLES]")
	assert.Contains(t, out, "region")
	assert.Contains(t, out, "north")
}

func TestDescribe_JSONToFile(t *testing.T) {
	home := isolate(t)
	p := writeFile(t, filepath.Join(home, "sales.csv"), salesCSV())
	dest := filepath.Join(home, "out", "sales.json")

	out := mustRun(t, "describe", p, "-f", "json", "-o", dest, "-n", "2")
	assert.Contains(t, out, "Wrote report to")

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	var rep analysis.Report
	require.NoError(t, json.Unmarshal(b, &rep))
	assert.Equal(t, 10, rep.Rows)
	require.NotNil(t, rep.Unusual)
	require.Len(t, rep.Unusual.Rows, 2)
	assert.Equal(t, 5, rep.Unusual.Rows[0].Index)
}

func TestDescribe_Errors(t *testing.T) {
	home := isolate(t)
	_, err := runCmd(t, "describe", filepath.Join(home, "nope.csv"))
	assert.Error(t, err)

	p := writeFile(t, filepath.Join(home, "notes.txt"), "hello")
	_, err = runCmd(t, "describe", p)
	assert.ErrorIs(t, err, source.ErrUnsupported)

	p = writeFile(t, filepath.Join(home, "sales.csv"), salesCSV())
	_, err = runCmd(t, "describe", p, "-f", "html")
	assert.Error(t, err)
	_, err = runCmd(t, "describe", p, "--delimiter", "#")
	assert.Error(t, err)
}

func TestDescribeBatch_OutputDirCollisions(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, "d1", "metrics.csv"), salesCSV())
	writeFile(t, filepath.Join(home, "d2", "metrics.csv"), salesCSV())
	writeFile(t, filepath.Join(home, "d2", "readme.txt"), "skip me")
	outDir := filepath.Join(home, "reports")

	out := mustRun(t, "describe-batch", filepath.Join(home, "d*", "*"), "--output-dir", outDir, "-f", "text")
	assert.Contains(t, out, "[1/3] Processing metrics.csv")
	assert.Contains(t, out, "Skipping readme.txt")

	for _, name := range []string{"metrics.report.txt", "metrics__2.report.txt"} {
		b, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.Contains(t, string(b), "Rows with high percentile values")
	}
}

func TestDescribeBatch_KeepGoing(t *testing.T) {
	home := isolate(t)
	good := writeFile(t, filepath.Join(home, "a.csv"), salesCSV())
	bad := writeFile(t, filepath.Join(home, "b.csv"), "")

	_, err := runCmd(t, "describe-batch", good, bad, "--quiet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.csv")

	out, err := runCmd(t, "describe-batch", good, bad, "--keep-going")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, out, "[DATASET SUMMARY]")

	_, err = runCmd(t, "describe-batch", filepath.Join(home, "none*.csv"))
	assert.Error(t, err)
}

func TestClassify_JSON(t *testing.T) {
	home := isolate(t)
	p := writeFile(t, filepath.Join(home, "sales.csv"), salesCSV())

	out := mustRun(t, "classify", p, "-f", "json")
	var res classification
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Columns, 3)
	assert.Equal(t, "id", res.Columns[0].Name)
	assert.Contains(t, res.Columns[0].Tags, classify.TagIDSuffixed)
	assert.Equal(t, []string{"region"}, res.Classes["categoricals"])
	assert.Equal(t, []string{"amount"}, res.Classes["numerics"])
}

func TestClassify_Text(t *testing.T) {
	home := isolate(t)
	p := writeFile(t, filepath.Join(home, "sales.csv"), salesCSV())

	out := mustRun(t, "classify", p)
	assert.Contains(t, out, "COLUMN")
	assert.Contains(t, out, "categorical")
}

func TestUnusual(t *testing.T) {
	home := isolate(t)
	p := writeFile(t, filepath.Join(home, "sales.csv"), salesCSV())

	out := mustRun(t, "unusual", p, "-n", "3", "-f", "text")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ROW"))
	assert.True(t, strings.HasPrefix(lines[1], "5 "), lines[1])
	assert.Contains(t, lines[1], "north")

	out = mustRun(t, "unusual", p, "-n", "1", "-f", "json")
	var res analysis.UnusualRows
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"id", "region", "amount"}, res.Columns)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "north", res.Rows[0].Cells[1])
}

func TestQuery_SQLite(t *testing.T) {
	home := isolate(t)
	dsn := filepath.Join(home, "shop.db")
	db, err := source.Open(context.Background(), "sqlite", dsn)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE orders (id INTEGER, region TEXT, amount REAL)`)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		region, amount := "east", float64(100+i)
		if i == 5 {
			region, amount = "north", 1050
		}
		_, err = db.Exec(`INSERT INTO orders VALUES (?, ?, ?)`, i+1, region, amount)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	out := mustRun(t, "query", "--dsn", dsn, "--name", "orders", "-f", "json", "SELECT * FROM orders")
	var rep analysis.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "orders", rep.Name)
	assert.Equal(t, 10, rep.Rows)
	require.Len(t, rep.Continuous, 1)
	assert.Equal(t, "amount", rep.Continuous[0].Name)

	t.Setenv("LOOKATDATA_DSN", dsn)
	out = mustRun(t, "query", "SELECT region FROM orders")
	assert.Contains(t, out, "[CATEGORICAL VARIABLES]")

	t.Setenv("LOOKATDATA_DSN", "")
	_, err = runCmd(t, "query", "SELECT 1")
	assert.Error(t, err)
	_, err = runCmd(t, "query", "--driver", "oracle", "--dsn", dsn, "SELECT 1")
	assert.ErrorIs(t, err, source.ErrUnsupported)
}

func TestConfig_InitSetShow(t *testing.T) {
	home := isolate(t)
	p := filepath.Join(home, "conf", "config.yaml")

	out := mustRun(t, "--config", p, "config", "init")
	assert.Contains(t, out, "Wrote default config")
	_, err := runCmd(t, "--config", p, "config", "init")
	assert.Error(t, err)
	mustRun(t, "--config", p, "config", "init", "--force")

	mustRun(t, "--config", p, "config", "set", "top_n", "9")
	mustRun(t, "--config", p, "config", "set", "delimiter", ";")
	out = mustRun(t, "--config", p, "config", "show")
	assert.Contains(t, out, "top_n: 9")
	assert.Contains(t, out, `delimiter: ";"`)

	for _, args := range [][]string{
		{"unknown_key", "1"},
		{"top_n", "many"},
		{"top_n", "-3"},
		{"format", "html"},
		{"log.format", "xml"},
	} {
		_, err := runCmd(t, append([]string{"--config", p, "config", "set"}, args...)...)
		assert.Error(t, err, args)
	}
	out = mustRun(t, "--config", p, "config", "show")
	assert.Contains(t, out, "top_n: 9")
}
