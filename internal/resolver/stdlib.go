package resolver

import (
	_ "embed"
	"os"
	"strings"
)

//go:embed stdlib/python.txt
var pythonStdlibData string

// Table is the set of module names that are importable without a file on
// disk: the standard library plus compiled-in builtins. It is an explicit,
// versioned snapshot rather than runtime introspection, and can be replaced
// per run.
type Table map[string]bool

// DefaultTable returns the embedded standard-library snapshot.
func DefaultTable() Table {
	return parseTable(pythonStdlibData)
}

// LoadTable reads a replacement table from a file, one module name per line.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseTable(string(data)), nil
}

func parseTable(data string) Table {
	table := make(Table)
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		table[line] = true
	}
	return table
}

// Contains reports whether name (or its top-level package for dotted names)
// is in the table.
func (t Table) Contains(name string) bool {
	if t[name] {
		return true
	}
	if i := strings.Index(name, "."); i >= 0 {
		return t[name[:i]]
	}
	return false
}
