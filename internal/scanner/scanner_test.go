package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/panbanda/ucr/pkg/config"
	"github.com/panbanda/ucr/pkg/dialect"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file %s: %v", name, err)
		}
	}
}

func relPaths(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatalf("Rel: %v", err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func TestNew(t *testing.T) {
	s := New(nil, nil)
	if s == nil {
		t.Fatal("New(nil, nil) returned nil")
	}
	if s.config == nil || s.dialects == nil {
		t.Error("New should fill in default config and dialects")
	}

	cfg := config.DefaultConfig()
	s = New(cfg, nil)
	if s.config != cfg {
		t.Error("scanner.config should be the provided config")
	}
}

func TestScanDir(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"Program.vb":          "class program\nend class\n",
		"Legacy/Module1.bas":  "class module1\nend class\n",
		"Legacy/notes.txt":    "not source\n",
		"web/app.js":          "console.log(1)\n",
		"Nested/Deep/Util.vb": "class util\nend class\n",
	})

	s := New(nil, nil)
	result, err := s.ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	got := relPaths(t, tmpDir, result)
	want := []string{"Legacy/Module1.bas", "Nested/Deep/Util.vb", "Program.vb"}
	if len(got) != len(want) {
		t.Fatalf("ScanDir() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ScanDir()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScanDirCustomDialect(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"Sheet1.cls": "class sheet1\nend class\n",
		"Program.vb": "class program\nend class\n",
	})

	reg := dialect.NewRegistry()
	custom := dialect.VisualBasic()
	custom.Name = "vba"
	custom.Extensions = []string{"cls"}
	if err := reg.Register(custom); err != nil {
		t.Fatalf("Register: %v", err)
	}

	result, err := New(nil, reg).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if got := relPaths(t, tmpDir, result); len(got) != 2 {
		t.Errorf("ScanDir() = %v, want both .cls and .vb files", got)
	}
}

func TestScanDirExcludesDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"bin/Debug/Gen.vb":      "class gen\nend class\n",
		"obj/Temp.vb":           "class temp\nend class\n",
		"node_modules/pkg/x.vb": "class x\nend class\n",
		"Program.vb":            "class program\nend class\n",
	})

	result, err := New(nil, nil).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if len(result) != 1 {
		t.Errorf("ScanDir() found %d files, want 1 (excluded dirs should be skipped)", len(result))
		for _, f := range result {
			t.Logf("  Found: %s", f)
		}
	}
}

func TestScanDirExcludesPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"Form1.vb":                   "class form1\nend class\n",
		"Form1.Designer.vb":          "class form1\nend class\n",
		"My Project/AssemblyInfo.vb": "imports system\n",
	})

	result, err := New(nil, nil).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	got := relPaths(t, tmpDir, result)
	if len(got) != 1 || got[0] != "Form1.vb" {
		t.Errorf("ScanDir() = %v, want [Form1.vb]", got)
	}
}

func TestScanDirGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	writeFiles(t, tmpDir, map[string]string{
		".gitignore":        "generated/\nScratch.vb\n",
		"generated/Auto.vb": "class auto\nend class\n",
		"Scratch.vb":        "class scratch\nend class\n",
		"Program.vb":        "class program\nend class\n",
	})

	t.Run("enabled", func(t *testing.T) {
		result, err := New(nil, nil).ScanDir(tmpDir)
		if err != nil {
			t.Fatalf("ScanDir() error: %v", err)
		}
		got := relPaths(t, tmpDir, result)
		if len(got) != 1 || got[0] != "Program.vb" {
			t.Errorf("ScanDir() = %v, want [Program.vb]", got)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Exclude.Gitignore = false
		result, err := New(cfg, nil).ScanDir(tmpDir)
		if err != nil {
			t.Fatalf("ScanDir() error: %v", err)
		}
		if len(result) != 3 {
			t.Errorf("ScanDir() = %v, want 3 files", relPaths(t, tmpDir, result))
		}
	})
}

func TestScanDirSkipsEscapingSymlinks(t *testing.T) {
	outside := t.TempDir()
	writeFiles(t, outside, map[string]string{"Secret.vb": "class secret\nend class\n"})

	root := t.TempDir()
	writeFiles(t, root, map[string]string{"Program.vb": "class program\nend class\n"})
	if err := os.Symlink(filepath.Join(outside, "Secret.vb"), filepath.Join(root, "Link.vb")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	result, err := New(nil, nil).ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	got := relPaths(t, root, result)
	if len(got) != 1 || got[0] != "Program.vb" {
		t.Errorf("ScanDir() = %v, want [Program.vb]", got)
	}
}

func TestScanDirMissingRoot(t *testing.T) {
	_, err := New(nil, nil).ScanDir(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("ScanDir() should fail for a missing root")
	}
}

func TestSupported(t *testing.T) {
	s := New(nil, nil)
	tests := []struct {
		path string
		want bool
	}{
		{"Program.vb", true},
		{"PROGRAM.VB", true},
		{"Module.bas", true},
		{"main.go", false},
		{"README", false},
	}
	for _, tt := range tests {
		if got := s.Supported(tt.path); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIsWithinRoot(t *testing.T) {
	tests := []struct {
		path string
		root string
		want bool
	}{
		{"/repo/src/a.vb", "/repo", true},
		{"/repo", "/repo", true},
		{"/repo2/a.vb", "/repo", false},
		{"/other/a.vb", "/repo", false},
	}
	for _, tt := range tests {
		if got := isWithinRoot(tt.path, tt.root); got != tt.want {
			t.Errorf("isWithinRoot(%q, %q) = %v, want %v", tt.path, tt.root, got, tt.want)
		}
	}
}

func TestFilterBySize(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"Small.vb": "class a\nend class\n",
		"Large.vb": string(make([]byte, 4096)),
	})
	files := []string{
		filepath.Join(tmpDir, "Small.vb"),
		filepath.Join(tmpDir, "Large.vb"),
		filepath.Join(tmpDir, "Missing.vb"),
	}

	filtered, skipped := FilterBySize(files, 1024)
	if len(filtered) != 1 || skipped != 2 {
		t.Errorf("FilterBySize() = %v, %d; want 1 file and 2 skipped", filtered, skipped)
	}

	unchanged, skipped := FilterBySize(files, 0)
	if len(unchanged) != 3 || skipped != 0 {
		t.Errorf("FilterBySize(0) should leave the list unchanged")
	}
}
