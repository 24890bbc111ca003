package output

import (
	"fmt"
	"io"

	"importgraph/internal/graph"
)

// WriteTSV renders the dependency edge list as tab-separated values.
func WriteTSV(w io.Writer, g *graph.ModuleGraph) error {
	if _, err := fmt.Fprintln(w, "From\tTo"); err != nil {
		return err
	}
	for _, mod := range g.List() {
		for _, target := range mod.SortedImports() {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", mod.Name, target); err != nil {
				return err
			}
		}
	}
	return nil
}
