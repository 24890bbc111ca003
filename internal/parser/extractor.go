package parser

import (
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractor walks one parse tree and collects ImportRecords. Dispatch is a
// closed switch on node kinds; anything unhandled falls through to generic
// recursive descent.
type extractor struct {
	parser   *Parser
	filename string
	source   []byte
	lines    []string

	maxDepth   int
	lineOffset int

	records []ImportRecord
	tracker *tracker
	warner  Diagnostics
	nameRx  map[string]*regexp.Regexp
}

func newExtractor(p *Parser, filename string, source []byte, opts Options) *extractor {
	lines := strings.Split(string(source), "\n")
	e := &extractor{
		parser:   p,
		filename: filename,
		source:   source,
		lines:    lines,
		maxDepth: opts.MaxDepth,
		warner:   opts.Warner,
	}
	if opts.TrackUnused {
		e.tracker = newTracker(filename, lines, opts)
	}
	return e
}

func (e *extractor) walk(node *sitter.Node, depth int) {
	switch node.Kind() {
	case "import_statement":
		e.handleImport(node)
	case "import_from_statement":
		e.handleFromImport(node)
	case "module":
		if doc := docstringNode(node); doc != nil {
			e.handleDocstring(doc, depth)
		}
		e.walkChildren(node, depth)
	case "function_definition":
		e.handleFunction(node, depth)
	case "class_definition":
		e.handleClass(node, depth)
	case "attribute":
		e.handleAttribute(node, depth)
	case "identifier":
		if e.tracker != nil {
			e.tracker.useName(e.text(node))
		}
	case "keyword_argument":
		// The argument name is not a reference; only the value is.
		if v := node.ChildByFieldName("value"); v != nil {
			e.descend(v, depth)
		}
	case "parameters", "lambda_parameters":
		e.walkParameters(node, depth)
	case "string":
		// Only f-string interpolations contain references.
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child.Kind() == "interpolation" {
				e.descend(child, depth)
			}
		}
	case "global_statement", "nonlocal_statement":
		// Declarations, not references.
	default:
		e.walkChildren(node, depth)
	}
}

func (e *extractor) walkChildren(node *sitter.Node, depth int) {
	if e.maxDepth > 0 && depth >= e.maxDepth {
		return
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		e.walk(node.NamedChild(i), depth+1)
	}
}

// descend visits a single child subtree under the same depth budget as
// walkChildren.
func (e *extractor) descend(node *sitter.Node, depth int) {
	if e.maxDepth > 0 && depth >= e.maxDepth {
		return
	}
	e.walk(node, depth+1)
}

// handleImport covers `import a, b.c, d as e`: one record per dotted name,
// named as written.
func (e *extractor) handleImport(node *sitter.Node) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "dotted_name", "identifier":
			name := e.text(child)
			e.processImport(name, "", name, 0, node)
		case "aliased_import":
			var name, alias string
			if n := child.ChildByFieldName("name"); n != nil {
				name = e.text(n)
			}
			if a := child.ChildByFieldName("alias"); a != nil {
				alias = e.text(a)
			}
			if name != "" {
				e.processImport(name, alias, name, 0, node)
			}
		}
	}
}

// handleFromImport covers `from q.w.e import x, y as foo, *`: each item
// becomes module.item; leading dots of a relative import become the level.
// The __future__ pseudo-module is ignored entirely.
func (e *extractor) handleFromImport(node *sitter.Node) {
	module := ""
	level := 0
	if mn := node.ChildByFieldName("module_name"); mn != nil {
		if mn.Kind() == "relative_import" {
			text := e.text(mn)
			trimmed := strings.TrimLeft(text, ".")
			level = len(text) - len(trimmed)
			module = trimmed
		} else {
			module = e.text(mn)
		}
	}
	if module == "__future__" {
		return
	}

	foundImport := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "import" {
			foundImport = true
			continue
		}
		if !foundImport {
			continue
		}
		switch child.Kind() {
		case "wildcard_import":
			e.processImport("*", "", joinModule(module, "*"), level, node)
		case "dotted_name", "identifier":
			name := e.text(child)
			e.processImport(name, "", joinModule(module, name), level, node)
		case "aliased_import":
			var name, alias string
			if n := child.ChildByFieldName("name"); n != nil {
				name = e.text(n)
			}
			if a := child.ChildByFieldName("alias"); a != nil {
				alias = e.text(a)
			}
			if name != "" {
				e.processImport(name, alias, joinModule(module, name), level, node)
			}
		}
	}
}

// processImport records one imported name. The statement may span several
// lines, so the recorded line is advanced to the one actually mentioning the
// name. The tracker binds under the raw statement line.
func (e *extractor) processImport(name, alias, fullName string, level int, stmt *sitter.Node) {
	stmtLine := e.lineOffset + int(stmt.StartPosition().Row) + 1
	e.records = append(e.records, ImportRecord{
		Name:     fullName,
		Alias:    alias,
		Filename: e.filename,
		Line:     e.adjustLine(stmtLine, name),
		Level:    level,
	})
	if e.tracker != nil {
		e.tracker.bindImport(name, alias, level, stmtLine)
	}
}

// adjustLine scans forward from line until a source line contains name as a
// whole word (wildcards match the * token), stopping at end of file.
func (e *extractor) adjustLine(line int, name string) int {
	if name == "*" {
		for line <= len(e.lines) && !strings.Contains(e.lines[line-1], "*") {
			line++
		}
		return line
	}
	rx, ok := e.nameRx[name]
	if !ok {
		rx = regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
		if e.nameRx == nil {
			e.nameRx = make(map[string]*regexp.Regexp)
		}
		e.nameRx[name] = rx
	}
	for line <= len(e.lines) && !rx.MatchString(e.lines[line-1]) {
		line++
	}
	return line
}

func (e *extractor) handleFunction(node *sitter.Node, depth int) {
	if e.tracker != nil {
		name := ""
		if n := node.ChildByFieldName("name"); n != nil {
			name = e.text(n)
		}
		e.tracker.pushScope(e.tracker.scope, "function "+name)
		defer e.tracker.leaveScope()
	}
	if body := node.ChildByFieldName("body"); body != nil {
		if doc := docstringNode(body); doc != nil {
			e.handleDocstring(doc, depth)
		}
	}
	e.walkDefinitionChildren(node, depth)
}

func (e *extractor) handleClass(node *sitter.Node, depth int) {
	// Class bodies share the enclosing scope; only functions open a new one.
	if body := node.ChildByFieldName("body"); body != nil {
		if doc := docstringNode(body); doc != nil {
			e.handleDocstring(doc, depth)
		}
	}
	e.walkDefinitionChildren(node, depth)
}

// walkDefinitionChildren descends into a def/class skipping the defined name
// itself, which is a binding rather than a reference.
func (e *extractor) walkDefinitionChildren(node *sitter.Node, depth int) {
	if e.maxDepth > 0 && depth >= e.maxDepth {
		return
	}
	name := node.ChildByFieldName("name")
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if name != nil && child.StartByte() == name.StartByte() {
			continue
		}
		e.walk(child, depth+1)
	}
}

// walkParameters skips parameter names (bindings) but visits annotations and
// default values, which do reference names.
func (e *extractor) walkParameters(node *sitter.Node, depth int) {
	if e.maxDepth > 0 && depth >= e.maxDepth {
		return
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "identifier", "list_splat_pattern", "dictionary_splat_pattern":
		case "typed_parameter":
			if t := child.ChildByFieldName("type"); t != nil {
				e.walk(t, depth+1)
			}
		case "default_parameter", "typed_default_parameter":
			if t := child.ChildByFieldName("type"); t != nil {
				e.walk(t, depth+1)
			}
			if v := child.ChildByFieldName("value"); v != nil {
				e.walk(v, depth+1)
			}
		default:
			e.walk(child, depth+1)
		}
	}
}

// handleAttribute marks every prefix of a chain a.b.c used, in increasing
// length, so `import pkg` is satisfied by `pkg.sub.func()`.
func (e *extractor) handleAttribute(node *sitter.Node, depth int) {
	if e.tracker != nil {
		var parts []string
		cur := node
		for cur != nil && cur.Kind() == "attribute" {
			if attr := cur.ChildByFieldName("attribute"); attr != nil {
				parts = append(parts, e.text(attr))
			}
			cur = cur.ChildByFieldName("object")
		}
		if cur != nil && cur.Kind() == "identifier" {
			parts = append(parts, e.text(cur))
			name := ""
			for i := len(parts) - 1; i >= 0; i-- {
				if name == "" {
					name = parts[i]
				} else {
					name = name + "." + parts[i]
				}
				e.tracker.useName(name)
			}
		}
	}
	if obj := node.ChildByFieldName("object"); obj != nil {
		e.descend(obj, depth)
	}
}

func (e *extractor) text(node *sitter.Node) string {
	return string(e.source[node.StartByte():node.EndByte()])
}

func (e *extractor) warn(key, format string, args ...any) {
	if e.warner != nil {
		e.warner.Warn(key, format, args...)
	}
}

func joinModule(module, name string) string {
	if module == "" {
		return name
	}
	return module + "." + name
}

// docstringNode returns the string node of a module or block's leading
// docstring, if any.
func docstringNode(body *sitter.Node) *sitter.Node {
	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		if child.Kind() == "comment" {
			continue
		}
		if child.Kind() == "expression_statement" && child.NamedChildCount() > 0 {
			if s := child.NamedChild(0); s.Kind() == "string" {
				return s
			}
		}
		return nil
	}
	return nil
}

// handleDocstring scans a docstring for interactive-transcript blocks and
// walks each block with the same extractor, offsetting line numbers so
// reported locations point into the real source file. A block that fails to
// parse is reported and skipped; the rest of the file is unaffected.
func (e *extractor) handleDocstring(str *sitter.Node, depth int) {
	var contentStart, contentEnd uint
	for i := uint(0); i < str.ChildCount(); i++ {
		child := str.Child(i)
		switch child.Kind() {
		case "string_start":
			contentStart = child.EndByte()
		case "string_end":
			contentEnd = child.StartByte()
		}
	}
	if contentEnd <= contentStart {
		return
	}
	content := string(e.source[contentStart:contentEnd])
	row0 := int(str.StartPosition().Row)

	examples := parseExamples(content)
	if len(examples) == 0 {
		return
	}

	if e.tracker != nil {
		e.tracker.pushScope(e.tracker.topLevel, "docstring")
		defer e.tracker.leaveScope()
	}

	for _, ex := range examples {
		tree := e.parser.parse([]byte(ex.Source))
		if tree == nil {
			continue
		}
		if tree.RootNode().HasError() {
			line := row0 + ex.Line + 1
			e.warn(
				fmt.Sprintf("doctest:%s:%d", e.filename, line),
				"%s:%d: syntax error in doctest", e.filename, line,
			)
			tree.Close()
			continue
		}
		// The snippet tree's byte offsets index ex.Source, not the file, so
		// swap the text buffer for the walk. e.lines stays the full file so
		// adjusted line numbers land on real source lines.
		savedSource, savedOffset := e.source, e.lineOffset
		e.source = []byte(ex.Source)
		e.lineOffset += row0 + ex.Line
		e.walk(tree.RootNode(), depth)
		e.source, e.lineOffset = savedSource, savedOffset
		tree.Close()
	}
}
