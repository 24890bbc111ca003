package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"importgraph/internal/graph"
)

// WriteImports renders the per-module dependency report. With
// includeExternal false, targets outside the analyzed set are omitted.
func WriteImports(w io.Writer, g *graph.ModuleGraph, includeExternal bool) error {
	for _, mod := range g.List() {
		targets := mod.SortedImports()
		if !includeExternal {
			internal := targets[:0]
			for _, t := range targets {
				if g.Contains(t) {
					internal = append(internal, t)
				}
			}
			targets = internal
		}
		if _, err := fmt.Fprintf(w, "%s:\n", mod.Label); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  %s\n", strings.Join(targets, "\n  ")); err != nil {
			return err
		}
	}
	return nil
}

// WriteImportedNames renders every imported name per module.
func WriteImportedNames(w io.Writer, g *graph.ModuleGraph) error {
	for _, mod := range g.List() {
		if _, err := fmt.Fprintf(w, "%s:\n", mod.Name); err != nil {
			return err
		}
		names := make([]string, 0, len(mod.ImportedNames))
		for _, rec := range mod.ImportedNames {
			names = append(names, rec.Name)
		}
		if _, err := fmt.Fprintf(w, "  %s\n", strings.Join(names, "\n  ")); err != nil {
			return err
		}
	}
	return nil
}

// WriteUnused renders the unused-import report as file:line: name triples
// sorted by line. Unless all is set, a line carrying a comment is assumed to
// explain the import and is skipped.
func WriteUnused(w io.Writer, g *graph.ModuleGraph, all bool) error {
	lines := newLineCache()
	for _, mod := range g.List() {
		for _, rec := range mod.UnusedNames {
			if !all && strings.Contains(lines.at(mod.Filename, rec.Line), "#") {
				continue
			}
			if _, err := fmt.Fprintf(w, "%s:%d: %s not used\n", mod.Filename, rec.Line, rec.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// lineCache lazily loads source lines for the comment check.
type lineCache struct {
	files map[string][]string
}

func newLineCache() *lineCache {
	return &lineCache{files: make(map[string][]string)}
}

func (c *lineCache) at(filename string, line int) string {
	lines, ok := c.files[filename]
	if !ok {
		content, err := os.ReadFile(filename)
		if err != nil {
			content = nil
		}
		lines = strings.Split(string(content), "\n")
		c.files[filename] = lines
	}
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}
