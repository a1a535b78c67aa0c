// Package graph defines the typed knowledge-graph data model: nodes,
// edges, and the metadata block produced by a scan.
package graph

import "time"

// NodeType discriminates the kind of entity a Node represents.
type NodeType string

// Node type constants.
const (
	NodeFile      NodeType = "file"
	NodeFunction  NodeType = "function"
	NodeClass     NodeType = "class"
	NodeInterface NodeType = "interface"
	NodeTypeAlias NodeType = "type"
	NodeVariable  NodeType = "variable"
	NodeEnum      NodeType = "enum"
)

// EdgeType discriminates the kind of relation an Edge represents.
type EdgeType string

// Edge type constants.
const (
	EdgeImports EdgeType = "imports"
	EdgeCalls   EdgeType = "calls"
	EdgeExtends EdgeType = "extends"
	EdgeContains EdgeType = "contains"
	EdgeDefines EdgeType = "defines"
)

// Node is a single entity in the knowledge graph: a file, or a symbol
// defined within one.
type Node struct {
	LastModified      time.Time `json:"lastModified,omitempty"`
	ID                 string    `json:"id"`
	Type               NodeType  `json:"type"`
	Name               string    `json:"name"`
	FilePath           string    `json:"filePath"`
	Documentation      string    `json:"documentation,omitempty"`
	ReturnType         string    `json:"returnType,omitempty"`
	Language           string    `json:"language,omitempty"`
	Extends            []string  `json:"extends,omitempty"`
	Parameters         []string  `json:"parameters,omitempty"`
	Contributors       []string  `json:"contributors,omitempty"`
	LineStart          int       `json:"lineStart"`
	LineEnd            int       `json:"lineEnd"`
	Complexity         int       `json:"complexity,omitempty"`
	HasComplexity      bool      `json:"hasComplexity,omitempty"`
	MemberCount        int       `json:"memberCount,omitempty"`
	LineCount          int       `json:"lineCount,omitempty"`
	ImportCount        int       `json:"importCount,omitempty"`
	ExportCount        int       `json:"exportCount,omitempty"`
	ModificationCount  int       `json:"modificationCount,omitempty"`
	Exported           bool      `json:"exported"`
	IsAsync            bool      `json:"isAsync,omitempty"`
}

// ImportMetadata carries the symbol-level detail of an imports edge.
type ImportMetadata struct {
	// Symbols lists the imported names. For an `X as Y` alias, the
	// original name (the alias's left side) is recorded.
	Symbols   []string `json:"symbols,omitempty"`
	IsDynamic bool     `json:"isDynamic,omitempty"`
}

// Edge is a directed relation between two nodes.
type Edge struct {
	Metadata *ImportMetadata `json:"metadata,omitempty"`
	Source   string          `json:"source"`
	Target   string          `json:"target"`
	Type     EdgeType        `json:"type"`
}

// Metadata summarizes a scan run.
type Metadata struct {
	ScannedAt      time.Time     `json:"scannedAt"`
	RootDir        string        `json:"rootDir"`
	SchemaVersion  int           `json:"schemaVersion"`
	FileCount      int           `json:"fileCount"`
	TotalLines     int           `json:"totalLines"`
	NodeCount      int           `json:"nodeCount"`
	EdgeCount      int           `json:"edgeCount"`
	ScanDuration   time.Duration `json:"scanDuration"`
	LanguageCounts map[string]int `json:"languageCounts,omitempty"`
}

// ScanError records a non-fatal per-file failure observed during a scan.
type ScanError struct {
	FilePath string `json:"filePath"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

// Graph is the canonical in-memory representation of a scanned codebase.
// Once assembled it is treated as immutable: callers borrow read-only
// references and may execute concurrent queries against it.
type Graph struct {
	Metadata Metadata    `json:"metadata"`
	Nodes    []Node      `json:"nodes"`
	Edges    []Edge      `json:"edges"`
	Errors   []ScanError `json:"errors,omitempty"`
}
