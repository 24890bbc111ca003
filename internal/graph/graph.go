package graph

import (
	"sort"

	"importgraph/internal/parser"
	"importgraph/internal/shared/observability"
)

// Module is one node in the dependency graph: a source file, or a package or
// collapsed cycle after a transform. Imports holds canonical dependency ids;
// a module never depends on itself.
type Module struct {
	Name     string
	Label    string
	Filename string
	Imports  map[string]bool

	// Members lists the modules merged into this node by cycle collapsing.
	// Empty for ordinary modules.
	Members []string

	ImportedNames []parser.ImportRecord
	UnusedNames   []parser.ImportRecord
}

func NewModule(name, filename string) *Module {
	return &Module{
		Name:     name,
		Label:    name,
		Filename: filename,
		Imports:  make(map[string]bool),
	}
}

// AddImport records a dependency edge, dropping self-loops.
func (m *Module) AddImport(target string) {
	if target != m.Name {
		m.Imports[target] = true
	}
}

// SortedImports returns the dependency ids in lexicographic order.
func (m *Module) SortedImports() []string {
	targets := make([]string, 0, len(m.Imports))
	for t := range m.Imports {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// ModuleGraph maps canonical module ids to nodes. A dependency target is
// either a key in the same graph or names something external. Transforms
// build a new graph and never mutate their input.
type ModuleGraph struct {
	modules map[string]*Module
}

func New() *ModuleGraph {
	return &ModuleGraph{modules: make(map[string]*Module)}
}

func (g *ModuleGraph) Add(m *Module) {
	g.modules[m.Name] = m
	g.updateMetrics()
}

func (g *ModuleGraph) Get(name string) (*Module, bool) {
	m, ok := g.modules[name]
	return m, ok
}

// Contains reports whether name is part of the analyzed set; a dependency on
// a missing key is external.
func (g *ModuleGraph) Contains(name string) bool {
	_, ok := g.modules[name]
	return ok
}

func (g *ModuleGraph) Len() int {
	return len(g.modules)
}

// List returns all modules in alphabetical id order.
func (g *ModuleGraph) List() []*Module {
	names := make([]string, 0, len(g.modules))
	for name := range g.modules {
		names = append(names, name)
	}
	sort.Strings(names)

	modules := make([]*Module, 0, len(names))
	for _, name := range names {
		modules = append(modules, g.modules[name])
	}
	return modules
}

func (g *ModuleGraph) updateMetrics() {
	observability.GraphNodes.Set(float64(len(g.modules)))
	edges := 0
	for _, m := range g.modules {
		edges += len(m.Imports)
	}
	observability.GraphEdges.Set(float64(edges))
}
