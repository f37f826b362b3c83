package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panbanda/ucr/internal/manifest"
	"github.com/panbanda/ucr/internal/output"
	"github.com/panbanda/ucr/internal/testutil"
	"github.com/panbanda/ucr/pkg/analyzer/unused"
	"github.com/panbanda/ucr/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

var bloated = "class program\n" +
	"  sub main()\n" +
	"    x = 1\n" +
	"  end sub\n" +
	"  sub orphan()\n" +
	strings.Repeat("    y = 1234567890\n", 40) +
	"  end sub\n" +
	"end class\n"

// run executes the app in a fresh working directory and returns what was
// written to the app writer.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(dir)

	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ErrWriter = &buf
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"ucr", "--no-color"}, args...))
	return buf.String(), err
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v), string(data))
}

func TestAppCommands(t *testing.T) {
	app := newApp()
	names := map[string]bool{}
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, want := range []string{"check", "batch", "watch", "dialects", "config", "init", "cache", "mcp"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "Program.vb"), testutil.Program)
	testutil.WriteFile(t, filepath.Join(dir, "Bloated.vb"), bloated)

	t.Run("pass as json", func(t *testing.T) {
		_, err := run(t, dir, "--no-cache", "-f", "json", "-o", "out.json",
			"check", "--class", "Program", "--method", "Main", "Program.vb")
		require.NoError(t, err)

		var a unused.Analysis
		readJSON(t, filepath.Join(dir, "out.json"), &a)
		assert.Equal(t, unused.VerdictPass, a.Verdict)
		assert.Equal(t, "program", a.EntryClass)
		assert.Empty(t, a.Entities)
	})

	t.Run("flagged with fail-on-flag", func(t *testing.T) {
		_, err := run(t, dir, "--no-cache", "-o", "out.txt",
			"check", "--class", "program", "--method", "main", "--fail-on-flag", "Bloated.vb")
		require.Error(t, err)

		var exitErr cli.ExitCoder
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, exitFlagged, exitErr.ExitCode())

		data, readErr := os.ReadFile(filepath.Join(dir, "out.txt"))
		require.NoError(t, readErr)
		assert.Contains(t, string(data), "Verdict:   FLAGGED")
	})

	t.Run("flagged without fail-on-flag", func(t *testing.T) {
		_, err := run(t, dir, "--no-cache", "-o", "out.txt",
			"check", "--class", "program", "--method", "main", "Bloated.vb")
		assert.NoError(t, err)
	})

	t.Run("debug markdown", func(t *testing.T) {
		_, err := run(t, dir, "--no-cache", "-f", "markdown", "-o", "out.md",
			"check", "--class", "program", "--method", "main", "--debug", "Program.vb")
		require.NoError(t, err)

		data, readErr := os.ReadFile(filepath.Join(dir, "out.md"))
		require.NoError(t, readErr)
		assert.Contains(t, string(data), "## Entities")
		assert.Contains(t, string(data), "orphan")
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := run(t, dir, "check", "--class", "a", "--method", "b")
		assert.Error(t, err)
	})

	t.Run("missing entry flags", func(t *testing.T) {
		_, err := run(t, dir, "check", "Program.vb")
		assert.Error(t, err)
	})
}

func TestCheckCommandAtRevision(t *testing.T) {
	repo := testutil.InitRepo(t)
	testutil.Commit(t, repo, "bloated", map[string]string{"Program.vb": bloated})
	testutil.Commit(t, repo, "trimmed", map[string]string{"Program.vb": testutil.Program})

	_, err := run(t, repo, "--no-cache", "-f", "json", "-o", filepath.Join(t.TempDir(), "unused.json"),
		"check", "--class", "program", "--method", "main", "--rev", "HEAD~1", "--fail-on-flag", "Program.vb")

	var exitErr cli.ExitCoder
	require.True(t, errors.As(err, &exitErr), "expected the older revision to be flagged, got %v", err)
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, map[string]string{
		"alice/Program.vb": testutil.Program,
		"bob/Program.vb":   bloated,
		"submissions.yaml": "defaults:\n  class: program\n  method: main\nsubmissions:\n  - path: alice/Program.vb\n  - path: bob/Program.vb\n",
	})

	t.Run("manifest", func(t *testing.T) {
		_, err := run(t, dir, "--no-cache", "-f", "json", "-o", "batch.json", "batch", "submissions.yaml")
		require.NoError(t, err)

		var data output.BatchData
		readJSON(t, filepath.Join(dir, "batch.json"), &data)
		require.Len(t, data.Results, 2)
		assert.Equal(t, filepath.Join("alice", "Program.vb"), data.Results[0].Path)
		assert.Equal(t, 1, data.Summary.Flagged)
		assert.Empty(t, data.Failures)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := run(t, dir, "--no-cache", "-f", "json", "-o", "dir.json",
			"batch", "--dir", ".", "--class", "program", "--method", "main", "--fail-on-flag")

		var exitErr cli.ExitCoder
		require.True(t, errors.As(err, &exitErr))

		var data output.BatchData
		readJSON(t, filepath.Join(dir, "dir.json"), &data)
		assert.Equal(t, 2, data.Summary.Count)
	})

	t.Run("emit manifest", func(t *testing.T) {
		_, err := run(t, dir, "batch", "--dir", "alice", "--class", "program", "--method", "main", "--emit-manifest", "listed.yaml")
		require.NoError(t, err)

		items, err := manifest.Load(filepath.Join(dir, "listed.yaml"))
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "program", items[0].Class)
	})

	t.Run("directory needs entry point", func(t *testing.T) {
		_, err := run(t, dir, "batch", "--dir", ".")
		assert.Error(t, err)
	})

	t.Run("no arguments", func(t *testing.T) {
		_, err := run(t, dir, "batch")
		assert.Error(t, err)
	})
}

func TestDialectsCommand(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "-f", "json", "-o", "dialects.json", "dialects")
	require.NoError(t, err)

	var dialects []struct {
		Name       string   `json:"name"`
		Extensions []string `json:"extensions"`
	}
	readJSON(t, filepath.Join(dir, "dialects.json"), &dialects)
	require.Len(t, dialects, 1)
	assert.Equal(t, "vb", dialects[0].Name)
	assert.Contains(t, dialects[0].Extensions, ".vb")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "init")
	require.NoError(t, err)

	path := filepath.Join(dir, "ucr.toml")
	require.NoError(t, config.ValidateFile(path), "generated config must pass the schema")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Thresholds, cfg.Thresholds)

	_, err = run(t, dir, "init")
	assert.Error(t, err, "existing file needs --force")

	_, err = run(t, dir, "init", "--force")
	assert.NoError(t, err)

	_, err = run(t, dir, "init", filepath.Join(".ucr", "ucr.toml"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ".ucr", "ucr.toml"))
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "ucr.toml"), "[thresholds]\ncode_limit = 120\n")
	testutil.WriteFile(t, filepath.Join(dir, "bad.toml"), "[thresholds]\ncode_limit = \"many\"\n")

	out, err := run(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# Configuration from: ucr.toml")
	assert.Contains(t, out, "code_limit = 120")

	_, err = run(t, dir, "config", "validate")
	assert.NoError(t, err)

	_, err = run(t, dir, "-c", "bad.toml", "config", "validate")
	assert.Error(t, err)

	out, err = run(t, t.TempDir(), "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# Default configuration")
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "Program.vb"), testutil.Program)

	_, err := run(t, dir, "-o", "out.txt", "check", "--class", "program", "--method", "main", "Program.vb")
	require.NoError(t, err)

	out, err := run(t, dir, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:    1")

	_, err = run(t, dir, "cache", "clear")
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(dir, ".ucr", "cache"))
}

func TestMCPManifest(t *testing.T) {
	out, err := run(t, t.TempDir(), "mcp", "--manifest")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "io.github.panbanda/ucr"`)
}
