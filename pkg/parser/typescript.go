package parser

import (
	forestts "github.com/alexaandru/go-sitter-forest/typescript"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/codegraph-dev/codegraph/pkg/graph"
)

// TypeScriptBackend extracts symbols, imports, and complexity from
// TypeScript source. It shares the JavaScript visitor logic for
// functions, classes, and imports, and additionally recognizes
// interface and type-alias declarations.
type TypeScriptBackend struct {
	pool *parserPool
}

// NewTypeScriptBackend constructs a TypeScript language backend.
func NewTypeScriptBackend() *TypeScriptBackend {
	lang := sitter.NewLanguage(forestts.GetLanguage())
	return &TypeScriptBackend{pool: newParserPool(lang)}
}

// Language implements LanguageBackend.
func (b *TypeScriptBackend) Language() string { return "typescript" }

// Parse implements LanguageBackend.
func (b *TypeScriptBackend) Parse(source []byte) (*FileResult, error) {
	tree, err := b.pool.parseTree(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	result := &FileResult{}

	root := tree.RootNode()
	count := int(root.NamedChildCount())

	for i := 0; i < count; i++ {
		visitTSTopLevel(root.NamedChild(i), source, result, false)
	}

	return result, nil
}

func visitTSTopLevel(n sitter.Node, source []byte, result *FileResult, exported bool) {
	switch n.Type() {
	case "export_statement":
		inner := n.NamedChild(0)
		if !inner.IsNull() {
			visitTSTopLevel(inner, source, result, true)
		}
	case "function_declaration", "generator_function_declaration":
		result.Symbols = append(result.Symbols, jsFunctionSymbol(n, source, exported))
	case "class_declaration":
		jsVisitClass(n, source, result, exported)
	case "lexical_declaration", "variable_declaration":
		jsVisitVariableDeclaration(n, source, result, exported)
	case "import_statement":
		jsVisitImport(n, source, result)
	case "interface_declaration":
		tsVisitInterface(n, source, result, exported)
	case "type_alias_declaration":
		tsVisitTypeAlias(n, source, result, exported)
	}
}

func tsVisitInterface(n sitter.Node, source []byte, result *FileResult, exported bool) {
	name := fieldText(n, "name", source)
	start, end := lineRange(n)

	var extends []string
	if heritage := n.ChildByFieldName("extends"); !heritage.IsNull() {
		extends = append(extends, nodeText(heritage, source))
	}

	body := n.ChildByFieldName("body")

	members := 0
	if !body.IsNull() {
		members = int(body.NamedChildCount())
	}

	result.Symbols = append(result.Symbols, Symbol{
		Type:          graph.NodeInterface,
		Name:          name,
		LineStart:     start,
		LineEnd:       end,
		Exported:      exported,
		Extends:       extends,
		MemberCount:   members,
		Documentation: precedingDocComment(n, jsCommentKinds, source),
	})
}

func tsVisitTypeAlias(n sitter.Node, source []byte, result *FileResult, exported bool) {
	name := fieldText(n, "name", source)
	start, end := lineRange(n)

	result.Symbols = append(result.Symbols, Symbol{
		Type:          graph.NodeTypeAlias,
		Name:          name,
		LineStart:     start,
		LineEnd:       end,
		Exported:      exported,
		Documentation: precedingDocComment(n, jsCommentKinds, source),
	})
}
