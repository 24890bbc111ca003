package walker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func relative(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestFindSources_SortedPythonOnly(t *testing.T) {
	root := writeFiles(t,
		"b.py",
		"a.py",
		"notes.txt",
		"sub/c.py",
	)
	w, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}

	files, err := w.FindSources(root)
	if err != nil {
		t.Fatal(err)
	}
	got := relative(t, root, files)
	want := "a.py b.py sub/c.py"
	if strings.Join(got, " ") != want {
		t.Errorf("files = %v, want %v", got, want)
	}
}

func TestFindSources_IgnoredDirectories(t *testing.T) {
	root := writeFiles(t,
		"main.py",
		"venv/lib/junk.py",
		"build/out.py",
	)
	w, err := New([]string{"venv", "build"})
	if err != nil {
		t.Fatal(err)
	}

	files, err := w.FindSources(root)
	if err != nil {
		t.Fatal(err)
	}
	got := relative(t, root, files)
	if strings.Join(got, " ") != "main.py" {
		t.Errorf("files = %v, want [main.py]", got)
	}
}

func TestFindSources_GlobPatterns(t *testing.T) {
	root := writeFiles(t,
		"main.py",
		"main_test.py",
		"scratch.py",
	)
	w, err := New([]string{"*_test.py", "scratch.py"})
	if err != nil {
		t.Fatal(err)
	}

	files, err := w.FindSources(root)
	if err != nil {
		t.Fatal(err)
	}
	got := relative(t, root, files)
	if strings.Join(got, " ") != "main.py" {
		t.Errorf("files = %v, want [main.py]", got)
	}
}

func TestFindSources_EditorLeftovers(t *testing.T) {
	root := writeFiles(t,
		"real.py",
		".#real.py",
	)
	w, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}

	files, err := w.FindSources(root)
	if err != nil {
		t.Fatal(err)
	}
	got := relative(t, root, files)
	if strings.Join(got, " ") != "real.py" {
		t.Errorf("files = %v, want [real.py]", got)
	}
}

func TestFindSources_SingleFileRoot(t *testing.T) {
	root := writeFiles(t, "only.py")
	w, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}

	files, err := w.FindSources(filepath.Join(root, "only.py"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("files = %v, want one entry", files)
	}
}

func TestNew_BadPattern(t *testing.T) {
	if _, err := New([]string{"[unclosed"}); err == nil {
		t.Error("expected an error for a malformed pattern")
	}
}
