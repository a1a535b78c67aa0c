// Package parser extracts symbols, imports, and per-symbol cyclomatic
// complexity from one file's source (component B/D). It is polymorphic
// over language: each back end supplies the capability set described in
// spec §4.B over a shared tree-sitter foundation.
package parser

import "github.com/codegraph-dev/codegraph/pkg/graph"

// Symbol is one parsed definition: a function, class, interface, type
// alias, variable, or enum.
type Symbol struct {
	Type          graph.NodeType
	Name          string
	Documentation string
	ReturnType    string
	Extends       []string
	Parameters    []string
	LineStart     int
	LineEnd       int
	MemberCount   int
	Complexity    int
	HasComplexity bool
	Exported      bool
	IsAsync       bool
}

// ImportSpec is one raw import statement as written in source, before
// resolution (component C consumes these).
type ImportSpec struct {
	// Specifier is the textual module/path specifier as written.
	Specifier string
	// Symbols is the list of imported names, `X as Y` aliases recorded by
	// their left-hand (alias) name per spec §4.C.
	Symbols []string
	Line    int
	Dynamic bool
}

// CallEdge is an intra-file or cross-symbol call reference discovered
// during parsing; used to populate `calls` edges.
type CallEdge struct {
	FromSymbol string
	ToName     string
	Line       int
}

// FileResult is everything one backend extracts from a single file.
type FileResult struct {
	Symbols []Symbol
	Imports []ImportSpec
	Calls   []CallEdge
}

// LanguageBackend is the capability set a language plugs into the parser
// registry: extractSymbols, extractImports, extractCalls, and
// computeComplexity per spec §4.B, bundled as a single Parse call since
// all four passes share one tree-sitter AST.
type LanguageBackend interface {
	// Language returns the language tag this backend registers under.
	Language() string
	// Parse extracts symbols, imports, and calls from source. It returns
	// (nil, err) only when no syntax tree can be built; the caller then
	// emits a ParseError and still produces a zero-symbol file node.
	// Source with syntax errors still yields a tree, so it returns
	// whatever symbols are recognized and no error.
	Parse(source []byte) (*FileResult, error)
}
