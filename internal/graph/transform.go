package graph

import (
	"path/filepath"
	"sort"
	"strings"
)

// DefaultTestPackages are the segment names folded away by CollapseTests.
var DefaultTestPackages = []string{"tests", "ftests"}

// PackageNamer resolves the package owning a dotted module name, truncated
// to the topmost level segments when level is positive.
type PackageNamer interface {
	PackageOf(dottedName string, level int) string
}

// PackageGraph groups modules by owning package. With externalsOnly set,
// modules inside the analyzed set keep their own names and only external
// dependencies are collapsed to packages.
func (g *ModuleGraph) PackageGraph(namer PackageNamer, level int, externalsOnly bool) *ModuleGraph {
	out := New()
	for _, mod := range g.List() {
		pkgName := g.maybePackageOf(namer, mod.Name, level, externalsOnly)
		node, ok := out.Get(pkgName)
		if !ok {
			node = NewModule(pkgName, filepath.Dir(mod.Filename))
			out.Add(node)
		}
		for dep := range mod.Imports {
			node.AddImport(g.maybePackageOf(namer, dep, level, externalsOnly))
		}
	}
	return out
}

func (g *ModuleGraph) maybePackageOf(namer PackageNamer, name string, level int, externalsOnly bool) string {
	if externalsOnly && g.Contains(name) {
		return name
	}
	return namer.PackageOf(name, level)
}

// CollapseTests truncates dotted ids at the first segment matching a test
// package name, merging same-named results. Meant for package graphs.
func (g *ModuleGraph) CollapseTests(pkgNames []string) *ModuleGraph {
	if len(pkgNames) == 0 {
		pkgNames = DefaultTestPackages
	}
	out := New()
	for _, mod := range g.List() {
		name := removeTestPackage(mod.Name, pkgNames)
		node, ok := out.Get(name)
		if !ok {
			node = NewModule(name, mod.Filename)
			out.Add(node)
		}
		for dep := range mod.Imports {
			node.AddImport(removeTestPackage(dep, pkgNames))
		}
	}
	return out
}

// removeTestPackage keeps the segments before the first test-package name.
// An id that would truncate to nothing is left intact.
func removeTestPackage(dottedName string, pkgNames []string) string {
	var kept []string
	for _, segment := range strings.Split(dottedName, ".") {
		stop := false
		for _, pkg := range pkgNames {
			if segment == pkg {
				stop = true
				break
			}
		}
		if stop {
			break
		}
		kept = append(kept, segment)
	}
	if len(kept) == 0 {
		return dottedName
	}
	return strings.Join(kept, ".")
}

// RemovePrefixes strips the first matching leading prefix from every node id
// and edge target. Names that collapse to nothing are dropped, along with
// their edges.
func (g *ModuleGraph) RemovePrefixes(prefixes []string) *ModuleGraph {
	out := New()
	for _, mod := range g.List() {
		name := stripPrefix(mod.Name, prefixes)
		if name == "" {
			continue
		}
		node, ok := out.Get(name)
		if !ok {
			node = NewModule(name, mod.Filename)
			out.Add(node)
		}
		for dep := range mod.Imports {
			if stripped := stripPrefix(dep, prefixes); stripped != "" {
				node.AddImport(stripped)
			}
		}
	}
	return out
}

func stripPrefix(name string, prefixes []string) string {
	for _, prefix := range prefixes {
		if name == prefix {
			return ""
		}
		if strings.HasPrefix(name, prefix+".") {
			return name[len(prefix)+1:]
		}
	}
	return name
}

// CollapseCycles condenses every strongly-connected component of the
// internal subgraph to a single node; edges leaving the analyzed set are
// ignored when computing components. The component id is its
// lexicographically smallest member and its label lists all members.
func (g *ModuleGraph) CollapseCycles() *ModuleGraph {
	names := make([]string, 0, g.Len())
	imports := make(map[string][]string, g.Len())
	for _, mod := range g.List() {
		names = append(names, mod.Name)
		var internal []string
		for dep := range mod.Imports {
			if g.Contains(dep) {
				internal = append(internal, dep)
			}
		}
		sort.Strings(internal)
		imports[mod.Name] = internal
	}

	// Pass 1: post-order numbering of the internal subgraph.
	visited := make(map[string]bool, len(names))
	order := make([]string, 0, len(names))
	var visit1 func(string)
	visit1 = func(u string) {
		visited[u] = true
		for _, v := range imports[u] {
			if !visited[v] {
				visit1(v)
			}
		}
		order = append(order, u)
	}
	for _, u := range names {
		if !visited[u] {
			visit1(u)
		}
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	// Pass 2: traverse the transposed graph in reverse post-order; every
	// traversal root yields one component.
	transposed := make(map[string][]string, len(names))
	for _, u := range names {
		for _, v := range imports[u] {
			transposed[v] = append(transposed[v], u)
		}
	}

	componentOf := make(map[string]string, len(names))
	var componentIDs []string
	members := make(map[string][]string)

	visited = make(map[string]bool, len(names))
	var component []string
	var visit2 func(string)
	visit2 = func(u string) {
		visited[u] = true
		component = append(component, u)
		for _, v := range transposed[u] {
			if !visited[v] {
				visit2(v)
			}
		}
	}
	for _, u := range order {
		if visited[u] {
			continue
		}
		component = nil
		visit2(u)
		sort.Strings(component)
		id := component[0]
		componentIDs = append(componentIDs, id)
		members[id] = component
		for _, name := range component {
			componentOf[name] = id
		}
	}

	// Condense: a component's dependencies are the union of its members'
	// cross-component dependencies, translated to component ids.
	out := New()
	for _, id := range componentIDs {
		node := NewModule(id, "")
		node.Members = members[id]
		node.Label = strings.Join(members[id], "\n")
		for _, member := range members[id] {
			for _, dep := range imports[member] {
				node.AddImport(componentOf[dep])
			}
		}
		out.Add(node)
	}
	return out
}
