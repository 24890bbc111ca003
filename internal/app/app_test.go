package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"importgraph/internal/config"
	"importgraph/internal/shared/diag"
)

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"apple.py":        "import banana\n\nbanana.flavor\n",
		"banana.py":       "import os\nimport sys\n\nos.getcwd()\n",
		"pkg/__init__.py": "",
		"pkg/leaf.py":     "from . import sibling\n\nsibling.x\n",
		"pkg/sibling.py":  "",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newAnalyzer(t *testing.T, root string, opts Options) *Analyzer {
	t.Helper()
	cfg := config.Default()
	cfg.SearchPath = []string{root}
	analyzer, err := New(cfg, opts, diag.NewWarner(os.Stderr))
	require.NoError(t, err)
	return analyzer
}

func TestParsePathname_BuildsGraph(t *testing.T) {
	root := writeProject(t)
	analyzer := newAnalyzer(t, root, Options{TrackUnused: true})

	require.NoError(t, analyzer.ParsePathname(context.Background(), root))
	g := analyzer.Graph()

	assert.Equal(t, 5, g.Len())

	apple, ok := g.Get("apple")
	require.True(t, ok)
	assert.Equal(t, []string{"banana"}, apple.SortedImports())

	banana, ok := g.Get("banana")
	require.True(t, ok)
	assert.Equal(t, []string{"os", "sys"}, banana.SortedImports())
	require.Len(t, banana.UnusedNames, 1)
	assert.Equal(t, "sys", banana.UnusedNames[0].Name)

	leaf, ok := g.Get("pkg.leaf")
	require.True(t, ok)
	assert.Equal(t, []string{"pkg.sibling"}, leaf.SortedImports())
	assert.Empty(t, leaf.UnusedNames)
}

func TestParsePathname_SingleFile(t *testing.T) {
	root := writeProject(t)
	analyzer := newAnalyzer(t, root, Options{})

	require.NoError(t, analyzer.ParsePathname(context.Background(), filepath.Join(root, "apple.py")))
	assert.Equal(t, 1, analyzer.Graph().Len())
	assert.True(t, analyzer.Graph().Contains("apple"))
}

func TestIgnoreStdlib(t *testing.T) {
	root := writeProject(t)
	analyzer := newAnalyzer(t, root, Options{TrackUnused: true, IgnoreStdlib: true})

	require.NoError(t, analyzer.ParsePathname(context.Background(), root))

	banana, ok := analyzer.Graph().Get("banana")
	require.True(t, ok)
	assert.Empty(t, banana.ImportedNames)

	var unused []string
	for _, rec := range banana.UnusedNames {
		unused = append(unused, rec.Name)
	}
	assert.Equal(t, []string{"sys"}, unused)
}

func TestCacheRoundTrip(t *testing.T) {
	root := writeProject(t)
	analyzer := newAnalyzer(t, root, Options{TrackUnused: true})
	require.NoError(t, analyzer.ParsePathname(context.Background(), root))

	cachePath := filepath.Join(t.TempDir(), "graph"+CacheSuffix)
	require.NoError(t, analyzer.SaveCache(cachePath))

	restored := newAnalyzer(t, root, Options{})
	require.NoError(t, restored.ParsePathname(context.Background(), cachePath))

	g := restored.Graph()
	assert.Equal(t, 5, g.Len())
	apple, ok := g.Get("apple")
	require.True(t, ok)
	assert.Equal(t, []string{"banana"}, apple.SortedImports())
}

func TestSyntaxErrorIsSkippedNotFatal(t *testing.T) {
	root := writeProject(t)
	bad := filepath.Join(root, "broken.py")
	require.NoError(t, os.WriteFile(bad, []byte("import (((\n"), 0o644))

	var buf bytes.Buffer
	cfg := config.Default()
	cfg.SearchPath = []string{root}
	analyzer, err := New(cfg, Options{}, diag.NewWarner(&buf))
	require.NoError(t, err)
	require.NoError(t, analyzer.ParsePathname(context.Background(), root))

	assert.False(t, analyzer.Graph().Contains("broken"))
	assert.True(t, analyzer.Graph().Contains("apple"))
	assert.Contains(t, buf.String(), "broken.py: syntax error")
}

func TestReanalyze_ReplacesModule(t *testing.T) {
	root := writeProject(t)
	analyzer := newAnalyzer(t, root, Options{})
	require.NoError(t, analyzer.ParsePathname(context.Background(), root))

	applePath := filepath.Join(root, "apple.py")
	require.NoError(t, os.WriteFile(applePath, []byte("import pkg.leaf\n"), 0o644))
	analyzer.Reanalyze([]string{applePath})

	apple, ok := analyzer.Graph().Get("apple")
	require.True(t, ok)
	assert.Equal(t, []string{"pkg.leaf"}, apple.SortedImports())
}
