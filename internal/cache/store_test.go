package cache

import (
	"path/filepath"
	"strings"
	"testing"

	"importgraph/internal/graph"
	"importgraph/internal/parser"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "graph.importcache"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	g := graph.New()

	a := graph.NewModule("pkg.a", "pkg/a.py")
	a.AddImport("pkg.b")
	a.AddImport("os")
	a.ImportedNames = []parser.ImportRecord{
		{Name: "os", Filename: "pkg/a.py", Line: 1},
		{Name: "pkg.b", Filename: "pkg/a.py", Line: 2},
	}
	a.UnusedNames = []parser.ImportRecord{
		{Name: "os", Filename: "pkg/a.py", Line: 1},
	}
	g.Add(a)

	b := graph.NewModule("pkg.b", "pkg/b.py")
	g.Add(b)

	store := openStore(t)
	if err := store.Save(g); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Len() != 2 {
		t.Fatalf("len = %d, want 2", loaded.Len())
	}
	la, ok := loaded.Get("pkg.a")
	if !ok {
		t.Fatal("pkg.a missing")
	}
	if la.Filename != "pkg/a.py" {
		t.Errorf("filename = %q", la.Filename)
	}
	if strings.Join(la.SortedImports(), " ") != "os pkg.b" {
		t.Errorf("imports = %v", la.SortedImports())
	}
	if len(la.ImportedNames) != 2 || la.ImportedNames[0].Name != "os" {
		t.Errorf("imported names = %v", la.ImportedNames)
	}
	if len(la.UnusedNames) != 1 || la.UnusedNames[0].Line != 1 {
		t.Errorf("unused names = %v", la.UnusedNames)
	}
}

func TestSave_ReplacesPreviousContents(t *testing.T) {
	store := openStore(t)

	g1 := graph.New()
	g1.Add(graph.NewModule("old", "old.py"))
	if err := store.Save(g1); err != nil {
		t.Fatal(err)
	}

	g2 := graph.New()
	g2.Add(graph.NewModule("new", "new.py"))
	if err := store.Save(g2); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Contains("old") {
		t.Error("old module should be gone")
	}
	if !loaded.Contains("new") {
		t.Error("new module should be present")
	}
}

func TestOpen_RejectsDirectory(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("expected an error for a directory path")
	}
}

func TestOpen_RejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Error("expected an error for an empty path")
	}
}

func TestLoad_EmptyCache(t *testing.T) {
	store := openStore(t)
	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != 0 {
		t.Errorf("len = %d, want 0", loaded.Len())
	}
}
