package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"importgraph/internal/graph"
	"importgraph/internal/parser"
)

func sampleGraph() *graph.ModuleGraph {
	g := graph.New()

	a := graph.NewModule("pkg.a", "pkg/a.py")
	a.AddImport("pkg.b")
	a.AddImport("os")
	a.ImportedNames = []parser.ImportRecord{
		{Name: "os", Filename: "pkg/a.py", Line: 1},
		{Name: "pkg.b", Filename: "pkg/a.py", Line: 2},
	}
	g.Add(a)

	b := graph.NewModule("pkg.b", "pkg/b.py")
	g.Add(b)

	return g
}

func TestWriteImports(t *testing.T) {
	var buf strings.Builder
	if err := WriteImports(&buf, sampleGraph(), true); err != nil {
		t.Fatal(err)
	}
	want := "pkg.a:\n  os\n  pkg.b\npkg.b:\n  \n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestWriteImports_NoExternal(t *testing.T) {
	var buf strings.Builder
	if err := WriteImports(&buf, sampleGraph(), false); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "os") {
		t.Errorf("external dep leaked into output: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "pkg.b") {
		t.Errorf("internal dep missing: %q", buf.String())
	}
}

func TestWriteImportedNames(t *testing.T) {
	var buf strings.Builder
	if err := WriteImportedNames(&buf, sampleGraph()); err != nil {
		t.Fatal(err)
	}
	want := "pkg.a:\n  os\n  pkg.b\npkg.b:\n  \n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestWriteUnused(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a.py")
	content := "import os\nimport sys  # needed for re-export\n"
	if err := os.WriteFile(src, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	g := graph.New()
	mod := graph.NewModule("a", src)
	mod.UnusedNames = []parser.ImportRecord{
		{Name: "os", Filename: src, Line: 1},
		{Name: "sys", Filename: src, Line: 2},
	}
	g.Add(mod)

	var buf strings.Builder
	if err := WriteUnused(&buf, g, false); err != nil {
		t.Fatal(err)
	}
	want := src + ":1: os not used\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := WriteUnused(&buf, g, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "sys not used") {
		t.Errorf("all mode should include commented lines: %q", buf.String())
	}
}

func TestWriteDot(t *testing.T) {
	var buf strings.Builder
	if err := WriteDot(&buf, sampleGraph(), []string{"rankdir=LR"}, true); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"digraph ModuleDependencies {",
		"  rankdir=LR\n",
		"  node[shape=box];",
		`mod0[label="pkg.a"];`,
		`mod1[label="pkg.b"];`,
		"  node[style=dotted];",
		`extmod0[label="os"];`,
		"  mod0 -> extmod0;",
		"  mod0 -> mod1;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteDot_NoExternal(t *testing.T) {
	var buf strings.Builder
	if err := WriteDot(&buf, sampleGraph(), nil, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "extmod") {
		t.Errorf("external nodes present: %s", out)
	}
	if strings.Contains(out, "-> extmod0") || strings.Contains(out, `label="os"`) {
		t.Errorf("external edges present: %s", out)
	}
}

func TestQuoteEscapesLabels(t *testing.T) {
	g := graph.New()
	mod := graph.NewModule("a", "")
	mod.Label = "a\nb"
	g.Add(mod)

	var buf strings.Builder
	if err := WriteDot(&buf, g, nil, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `label="a\nb"`) {
		t.Errorf("newline not escaped: %s", buf.String())
	}
}

func TestWriteTSV(t *testing.T) {
	var buf strings.Builder
	if err := WriteTSV(&buf, sampleGraph()); err != nil {
		t.Fatal(err)
	}
	want := "From\tTo\npkg.a\tos\npkg.a\tpkg.b\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
