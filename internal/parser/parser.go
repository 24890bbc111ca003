package parser

import (
	"errors"
	"fmt"
	"os"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"importgraph/internal/shared/observability"
)

// ErrSyntax marks a file whose parse tree contains syntax errors. Callers
// skip the file and continue; nothing in the analysis pass is fatal.
var ErrSyntax = errors.New("syntax error")

// Parser parses Python sources with tree-sitter and runs the import
// extractor over the resulting tree.
type Parser struct {
	language *sitter.Language
}

// Options controls a single extraction pass over one file.
type Options struct {
	// TrackUnused enables the scope tracker that decides which imports are
	// never referenced.
	TrackUnused bool

	// WarnDuplicates reports a name that is imported again in the same scope.
	WarnDuplicates bool

	// Verbose adds the previous binding's location to duplicate reports.
	Verbose bool

	// MaxDepth bounds the recursive descent into the syntax tree. Zero means
	// no limit.
	MaxDepth int

	// Warner receives doctest and duplicate-import diagnostics. Optional.
	Warner Diagnostics
}

// Diagnostics is the sink for extractor warnings, de-duplicated by key.
type Diagnostics interface {
	Warn(key, format string, args ...any)
}

func NewParser() *Parser {
	return &Parser{
		language: sitter.NewLanguage(tree_sitter_python.Language()),
	}
}

// ParseFile reads and parses one file, returning its import records and, when
// tracking is enabled, the imports that were never used (sorted by line).
func (p *Parser) ParseFile(path string, opts Options) ([]ImportRecord, []ImportRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return p.ParseSource(path, content, opts)
}

// ParseSource is ParseFile over in-memory content.
func (p *Parser) ParseSource(path string, content []byte, opts Options) ([]ImportRecord, []ImportRecord, error) {
	start := time.Now()
	defer func() {
		observability.ParsingDuration.Observe(time.Since(start).Seconds())
	}()

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.language)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, nil, fmt.Errorf("%s: parse failed", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, nil, fmt.Errorf("%s: %w", path, ErrSyntax)
	}

	ext := newExtractor(p, path, content, opts)
	ext.walk(root, 0)

	if ext.tracker == nil {
		return ext.records, nil, nil
	}
	ext.tracker.finish()
	return ext.records, ext.tracker.unused, nil
}

// parse runs the grammar over a standalone snippet (doctest blocks). The
// returned tree must be closed by the caller.
func (p *Parser) parse(content []byte) *sitter.Tree {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.language)
	return parser.Parse(content, nil)
}
