package parser

import (
	"strings"

	forestjs "github.com/alexaandru/go-sitter-forest/javascript"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/codegraph-dev/codegraph/pkg/graph"
)

var jsBranchKinds = map[string]bool{
	"if_statement":       true,
	"for_statement":      true,
	"for_in_statement":   true,
	"while_statement":    true,
	"do_statement":       true,
	"switch_case":        true,
	"catch_clause":       true,
	"ternary_expression": true,
}

var jsLogicalOps = map[string]bool{"binary_expression": true}

var jsCommentKinds = map[string]bool{"comment": true}

// JavaScriptBackend extracts symbols, imports, and complexity from
// JavaScript/JSX source using the tree-sitter-javascript grammar.
type JavaScriptBackend struct {
	pool *parserPool
	lang string
}

// NewJavaScriptBackend constructs a JavaScript language backend.
func NewJavaScriptBackend() *JavaScriptBackend {
	lang := sitter.NewLanguage(forestjs.GetLanguage())
	return &JavaScriptBackend{pool: newParserPool(lang), lang: "javascript"}
}

// Language implements LanguageBackend.
func (b *JavaScriptBackend) Language() string { return b.lang }

// Parse implements LanguageBackend.
func (b *JavaScriptBackend) Parse(source []byte) (*FileResult, error) {
	tree, err := b.pool.parseTree(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	result := &FileResult{}

	root := tree.RootNode()
	count := int(root.NamedChildCount())

	for i := 0; i < count; i++ {
		visitJSTopLevel(root.NamedChild(i), source, result, false)
	}

	return result, nil
}

func visitJSTopLevel(n sitter.Node, source []byte, result *FileResult, exported bool) {
	switch n.Type() {
	case "export_statement":
		inner := n.NamedChild(0)
		if !inner.IsNull() {
			visitJSTopLevel(inner, source, result, true)
		}
	case "function_declaration", "generator_function_declaration":
		result.Symbols = append(result.Symbols, jsFunctionSymbol(n, source, exported))
	case "class_declaration":
		jsVisitClass(n, source, result, exported)
	case "lexical_declaration", "variable_declaration":
		jsVisitVariableDeclaration(n, source, result, exported)
	case "import_statement":
		jsVisitImport(n, source, result)
	}
}

func jsFunctionSymbol(n sitter.Node, source []byte, exported bool) Symbol {
	name := fieldText(n, "name", source)
	start, end := lineRange(n)

	sym := Symbol{
		Type:          graph.NodeFunction,
		Name:          name,
		LineStart:     start,
		LineEnd:       end,
		Exported:      exported,
		IsAsync:       jsHasAsyncKeyword(n),
		Documentation: precedingDocComment(n, jsCommentKinds, source),
		Parameters:    jsParamNames(n, source),
		HasComplexity: true,
	}

	if body := n.ChildByFieldName("body"); !body.IsNull() {
		sym.Complexity = 1 + countBranches(body, jsBranchKinds, jsLogicalOps, source)
	} else {
		sym.Complexity = 1
	}

	return sym
}

func jsParamNames(n sitter.Node, source []byte) []string {
	params := n.ChildByFieldName("parameters")
	if params.IsNull() {
		return nil
	}

	var names []string

	count := int(params.NamedChildCount())
	for i := 0; i < count; i++ {
		names = append(names, nodeText(params.NamedChild(i), source))
	}

	return names
}

func jsHasAsyncKeyword(n sitter.Node) bool {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if n.Child(i).Type() == "async" {
			return true
		}
	}

	return false
}

func jsVisitClass(n sitter.Node, source []byte, result *FileResult, exported bool) {
	name := fieldText(n, "name", source)
	start, end := lineRange(n)

	var extends []string
	if heritage := n.ChildByFieldName("superclass"); !heritage.IsNull() {
		extends = append(extends, nodeText(heritage, source))
	}

	body := n.ChildByFieldName("body")

	members := 0
	if !body.IsNull() {
		members = int(body.NamedChildCount())
	}

	result.Symbols = append(result.Symbols, Symbol{
		Type:          graph.NodeClass,
		Name:          name,
		LineStart:     start,
		LineEnd:       end,
		Exported:      exported,
		Extends:       extends,
		MemberCount:   members,
		Documentation: precedingDocComment(n, jsCommentKinds, source),
	})

	if body.IsNull() {
		return
	}

	memberCount := int(body.NamedChildCount())
	for i := 0; i < memberCount; i++ {
		member := body.NamedChild(i)
		if member.Type() != "method_definition" {
			continue
		}

		result.Symbols = append(result.Symbols, jsFunctionSymbol(member, source, exported))
	}
}

func jsVisitVariableDeclaration(n sitter.Node, source []byte, result *FileResult, exported bool) {
	count := int(n.NamedChildCount())

	for i := 0; i < count; i++ {
		decl := n.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}

		name := fieldText(decl, "name", source)
		start, end := lineRange(decl)

		result.Symbols = append(result.Symbols, Symbol{
			Type:      graph.NodeVariable,
			Name:      name,
			LineStart: start,
			LineEnd:   end,
			Exported:  exported,
		})
	}
}

func jsVisitImport(n sitter.Node, source []byte, result *FileResult) {
	src := fieldText(n, "source", source)
	line, _ := lineRange(n)

	imp := ImportSpec{Specifier: trimQuotes(src), Line: line}

	clause := n.NamedChild(0)
	if !clause.IsNull() && clause.Type() != "string" {
		jsCollectImportNames(clause, source, &imp)
	}

	result.Imports = append(result.Imports, imp)
}

func jsCollectImportNames(n sitter.Node, source []byte, imp *ImportSpec) {
	switch n.Type() {
	case "identifier":
		imp.Symbols = append(imp.Symbols, nodeText(n, source))
	case "namespace_import":
		imp.Symbols = append(imp.Symbols, nodeText(n, source))
	case "named_imports":
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			spec := n.NamedChild(i)
			if spec.Type() != "import_specifier" {
				continue
			}

			alias := fieldText(spec, "alias", source)
			original := fieldText(spec, "name", source)

			name := original
			if alias != "" {
				name = alias
			}

			imp.Symbols = append(imp.Symbols, strings.TrimSpace(name))
		}
	case "import_clause":
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			jsCollectImportNames(n.NamedChild(i), source, imp)
		}
	}
}
