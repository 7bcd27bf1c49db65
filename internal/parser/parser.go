// Package parser turns Java source files into translation units backed by
// tree-sitter syntax trees.
package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/olehluchkiv/javadeps/internal/loader"
)

var (
	// ErrSyntax indicates the file is not syntactically valid Java.
	ErrSyntax = errors.New("syntax error")

	// ErrFileTooLarge indicates the file exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidContent indicates the file is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid UTF-8 content")
)

// DefaultMaxFileSize is the default per-file size limit (10MB).
const DefaultMaxFileSize = 10 * 1024 * 1024

// Failure records a file that was excluded from the analysis.
type Failure struct {
	Path string
	Line int // first offending line, 0 when not positional
	Err  error
}

func (f Failure) Error() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", f.Path, f.Line, f.Err)
	}
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Parser parses Java sources. A Parser is safe for concurrent use: each
// Parse call uses its own tree-sitter parser.
type Parser struct {
	maxFileSize int
	logger      *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxFileSize sets the per-file size limit in bytes.
func WithMaxFileSize(size int) Option {
	return func(p *Parser) {
		p.maxFileSize = size
	}
}

// New creates a Parser.
func New(logger *slog.Logger, opts ...Option) *Parser {
	p := &Parser{
		maxFileSize: DefaultMaxFileSize,
		logger:      logger.With("component", "parser"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse converts one file into a translation unit. The caller owns the
// returned unit and must Close it.
func (p *Parser) Parse(ctx context.Context, file loader.File) (*Unit, error) {
	if len(file.Content) > p.maxFileSize {
		return nil, Failure{Path: file.Rel, Err: ErrFileTooLarge}
	}
	if !utf8.Valid(file.Content) {
		return nil, Failure{Path: file.Rel, Err: ErrInvalidContent}
	}

	ts := sitter.NewParser()
	defer ts.Close()
	ts.SetLanguage(java.GetLanguage())

	tree, err := ts.ParseCtx(ctx, nil, file.Content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse %s: %w", file.Rel, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		line := firstErrorLine(root)
		tree.Close()
		return nil, Failure{Path: file.Rel, Line: line, Err: ErrSyntax}
	}

	u := &Unit{
		Path: file.Rel,
		src:  file.Content,
		tree: tree,
	}
	u.readHeader()
	return u, nil
}

// ParseAll parses every file in order. Files that fail are reported as
// failures and left out; parsing continues with the next file. Only context
// cancellation stops the loop early.
func (p *Parser) ParseAll(ctx context.Context, files []loader.File) ([]*Unit, []Failure) {
	units := make([]*Unit, 0, len(files))
	var failures []Failure

	for _, f := range files {
		if ctx.Err() != nil {
			failures = append(failures, Failure{Path: f.Rel, Err: ctx.Err()})
			continue
		}
		u, err := p.Parse(ctx, f)
		if err != nil {
			var fail Failure
			if !errors.As(err, &fail) {
				fail = Failure{Path: f.Rel, Err: err}
			}
			p.logger.Warn("skipping unparsable file", "file", f.Rel, "line", fail.Line, "error", fail.Err)
			failures = append(failures, fail)
			continue
		}
		p.logger.Debug("parsed file", "file", f.Rel, "package", u.Package, "imports", len(u.Imports))
		units = append(units, u)
	}

	p.logger.Info("parsing complete", "parsed", len(units), "failed", len(failures))
	return units, failures
}

// firstErrorLine returns the 1-based line of the first ERROR or MISSING node
// in document order.
func firstErrorLine(n *sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return int(n.StartPoint().Row) + 1
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if line := firstErrorLine(child); line > 0 {
			return line
		}
	}
	return int(n.StartPoint().Row) + 1
}
