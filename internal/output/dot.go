package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"importgraph/internal/graph"
)

// WriteDot renders the graph in graphviz dot format. Extra attribute lines
// (e.g. "rankdir=TB") are emitted verbatim into the graph header. With
// includeExternal false, targets outside the analyzed set are omitted.
func WriteDot(w io.Writer, g *graph.ModuleGraph, attributes []string, includeExternal bool) error {
	var buf strings.Builder

	buf.WriteString("digraph ModuleDependencies {\n")
	for _, attr := range attributes {
		buf.WriteString("  " + attr + "\n")
	}
	buf.WriteString("  node[shape=box];\n")

	nodeIDs := make(map[string]string)
	allTargets := make(map[string]bool)
	for n, mod := range g.List() {
		id := fmt.Sprintf("mod%d", n)
		nodeIDs[mod.Name] = id
		buf.WriteString(fmt.Sprintf("  %s[label=\"%s\"];\n", id, quote(mod.Label)))
		for target := range mod.Imports {
			allTargets[target] = true
		}
	}

	buf.WriteString("  node[style=dotted];\n")
	if includeExternal {
		var external []string
		for target := range allTargets {
			if !g.Contains(target) {
				external = append(external, target)
			}
		}
		sort.Strings(external)
		for n, name := range external {
			id := fmt.Sprintf("extmod%d", n)
			nodeIDs[name] = id
			buf.WriteString(fmt.Sprintf("  %s[label=\"%s\"];\n", id, quote(name)))
		}
	}

	for _, mod := range g.List() {
		for _, target := range mod.SortedImports() {
			if id, ok := nodeIDs[target]; ok {
				buf.WriteString(fmt.Sprintf("  %s -> %s;\n", nodeIDs[mod.Name], id))
			}
		}
	}

	buf.WriteString("}\n")

	_, err := io.WriteString(w, buf.String())
	return err
}

// quote escapes a label for graphviz.
func quote(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return strings.ReplaceAll(s, "\n", "\\n")
}
