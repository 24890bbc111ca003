package parser

import (
	"fmt"
	"sort"
	"strings"
)

// scopeFrame is one lexical namespace: the module, a function body, or a
// docstring-example region. Children never look up siblings, only parents.
type scopeFrame struct {
	parent  *scopeFrame
	name    string
	imports map[string]ImportRecord
	unused  map[string]ImportRecord
}

func newScopeFrame(parent *scopeFrame, name string) *scopeFrame {
	return &scopeFrame{
		parent:  parent,
		name:    name,
		imports: make(map[string]ImportRecord),
		unused:  make(map[string]ImportRecord),
	}
}

func (s *scopeFrame) haveImport(name string) bool {
	if _, ok := s.imports[name]; ok {
		return true
	}
	if s.parent != nil {
		return s.parent.haveImport(name)
	}
	return false
}

func (s *scopeFrame) whereImported(name string) (ImportRecord, bool) {
	if rec, ok := s.imports[name]; ok {
		return rec, true
	}
	if s.parent != nil {
		return s.parent.whereImported(name)
	}
	return ImportRecord{}, false
}

func (s *scopeFrame) addImport(name string, rec ImportRecord) {
	s.imports[name] = rec
	s.unused[name] = rec
}

// useName marks name used here and in every ancestor scope: an outer import
// may be used by inner code.
func (s *scopeFrame) useName(name string) {
	delete(s.unused, name)
	if s.parent != nil {
		s.parent.useName(name)
	}
}

// tracker owns the active scope stack and accumulates the file-wide unused
// list as scopes are left.
type tracker struct {
	filename string
	lines    []string

	topLevel *scopeFrame
	scope    *scopeFrame
	stack    []*scopeFrame

	unused []ImportRecord

	warnDuplicates bool
	verbose        bool
	warner         Diagnostics
}

func newTracker(filename string, lines []string, opts Options) *tracker {
	top := newScopeFrame(nil, filename)
	return &tracker{
		filename:       filename,
		lines:          lines,
		topLevel:       top,
		scope:          top,
		warnDuplicates: opts.WarnDuplicates,
		verbose:        opts.Verbose,
		warner:         opts.Warner,
	}
}

func (t *tracker) pushScope(parent *scopeFrame, name string) {
	t.stack = append(t.stack, t.scope)
	t.scope = newScopeFrame(parent, name)
}

func (t *tracker) leaveScope() {
	t.flush(t.scope)
	t.scope = t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
}

// finish flushes the top-level scope and orders the unused list by line.
// Scope pushes and leaves are always balanced, so the stack is empty here.
func (t *tracker) finish() {
	t.flush(t.scope)
	sort.SliceStable(t.unused, func(i, j int) bool {
		if t.unused[i].Line != t.unused[j].Line {
			return t.unused[i].Line < t.unused[j].Line
		}
		return t.unused[i].Name < t.unused[j].Name
	})
}

func (t *tracker) flush(s *scopeFrame) {
	for _, rec := range s.unused {
		t.unused = append(t.unused, rec)
	}
}

// bindImport binds an imported name in the current scope. A wildcard never
// binds. In duplicate mode a rebinding on an uncommented line is reported
// instead of rebound; a commented line is assumed an intentional re-export.
func (t *tracker) bindImport(name, alias string, level, line int) {
	bound := alias
	if bound == "" {
		bound = name
	}
	if bound == "*" {
		return
	}

	if t.warnDuplicates && t.scope.haveImport(bound) {
		src := ""
		if line-1 >= 0 && line-1 < len(t.lines) {
			src = t.lines[line-1]
		}
		if !strings.Contains(src, "#") {
			key := fmt.Sprintf("dup:%s:%d:%s", t.filename, line, bound)
			t.warn(key, "%s:%d: %s imported again", t.filename, line, bound)
			if t.verbose {
				if prev, ok := t.scope.whereImported(bound); ok {
					t.warn(key+":prev", "%s:%d:   (location of previous import)",
						t.filename, prev.Line)
				}
			}
		}
		return
	}

	t.scope.addImport(bound, ImportRecord{
		Name:     bound,
		Filename: t.filename,
		Line:     line,
		Level:    level,
	})
}

func (t *tracker) useName(name string) {
	t.scope.useName(name)
}

func (t *tracker) warn(key, format string, args ...any) {
	if t.warner != nil {
		t.warner.Warn(key, format, args...)
	}
}
