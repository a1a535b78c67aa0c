package parser

import (
	"unicode"

	golang "github.com/alexaandru/go-sitter-forest/go"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/codegraph-dev/codegraph/pkg/graph"
)

// goBranchKinds are the tree-sitter-go node kinds that each add one to
// cyclomatic complexity per spec §4.D.
var goBranchKinds = map[string]bool{
	"if_statement":          true,
	"for_statement":         true,
	"expression_case":       true,
	"type_case":             true,
	"communication_case":    true,
}

var goLogicalOps = map[string]bool{"binary_expression": true}

var goCommentKinds = map[string]bool{"comment": true}

// GoBackend extracts symbols, imports, and complexity from Go source
// using the tree-sitter-go grammar.
type GoBackend struct {
	pool *parserPool
}

// NewGoBackend constructs a Go language backend.
func NewGoBackend() *GoBackend {
	lang := sitter.NewLanguage(golang.GetLanguage())

	return &GoBackend{pool: newParserPool(lang)}
}

// Language implements LanguageBackend.
func (b *GoBackend) Language() string { return "go" }

// Parse implements LanguageBackend.
func (b *GoBackend) Parse(source []byte) (*FileResult, error) {
	tree, err := b.pool.parseTree(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	result := &FileResult{}

	root := tree.RootNode()
	childCount := int(root.NamedChildCount())

	for i := 0; i < childCount; i++ {
		child := root.NamedChild(i)
		b.visitTopLevel(child, source, result)
	}

	return result, nil
}

func (b *GoBackend) visitTopLevel(n sitter.Node, source []byte, result *FileResult) {
	switch n.Type() {
	case "function_declaration":
		result.Symbols = append(result.Symbols, b.functionSymbol(n, source, false))
	case "method_declaration":
		result.Symbols = append(result.Symbols, b.functionSymbol(n, source, true))
	case "type_declaration":
		b.visitTypeDeclaration(n, source, result)
	case "import_declaration":
		b.visitImportDeclaration(n, source, result)
	case "const_declaration", "var_declaration":
		b.visitValueDeclaration(n, source, result)
	}
}

func (b *GoBackend) functionSymbol(n sitter.Node, source []byte, method bool) Symbol {
	name := fieldText(n, "name", source)
	start, end := lineRange(n)

	sym := Symbol{
		Type:          graph.NodeFunction,
		Name:          name,
		LineStart:     start,
		LineEnd:       end,
		Exported:      isGoExported(name),
		Documentation: precedingDocComment(n, goCommentKinds, source),
		ReturnType:    fieldText(n, "result", source),
		Parameters:    goParamNames(n, source),
		HasComplexity: true,
	}

	if method {
		if recv := n.ChildByFieldName("receiver"); !recv.IsNull() {
			sym.Parameters = append([]string{nodeText(recv, source)}, sym.Parameters...)
		}
	}

	if body := n.ChildByFieldName("body"); !body.IsNull() {
		sym.Complexity = 1 + countBranches(body, goBranchKinds, goLogicalOps, source)
	} else {
		sym.Complexity = 1
	}

	return sym
}

func goParamNames(n sitter.Node, source []byte) []string {
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

func (b *GoBackend) visitTypeDeclaration(n sitter.Node, source []byte, result *FileResult) {
	count := int(n.NamedChildCount())

	for i := 0; i < count; i++ {
		spec := n.NamedChild(i)
		if spec.Type() != "type_spec" {
			continue
		}

		name := fieldText(spec, "name", source)
		typeNode := spec.ChildByFieldName("type")

		sym := Symbol{
			Name:          name,
			LineStart:     func() int { s, _ := lineRange(spec); return s }(),
			LineEnd:       func() int { _, e := lineRange(spec); return e }(),
			Exported:      isGoExported(name),
			Documentation: precedingDocComment(n, goCommentKinds, source),
		}

		switch {
		case !typeNode.IsNull() && typeNode.Type() == "struct_type":
			sym.Type = graph.NodeClass
			sym.MemberCount = int(typeNode.NamedChildCount())
		case !typeNode.IsNull() && typeNode.Type() == "interface_type":
			sym.Type = graph.NodeInterface
			sym.MemberCount = int(typeNode.NamedChildCount())
		default:
			sym.Type = graph.NodeTypeAlias
		}

		result.Symbols = append(result.Symbols, sym)
	}
}

func (b *GoBackend) visitValueDeclaration(n sitter.Node, source []byte, result *FileResult) {
	count := int(n.NamedChildCount())

	for i := 0; i < count; i++ {
		spec := n.NamedChild(i)
		if spec.Type() != "const_spec" && spec.Type() != "var_spec" {
			continue
		}

		nameCount := int(spec.NamedChildCount())
		for j := 0; j < nameCount; j++ {
			nameNode := spec.NamedChild(j)
			if nameNode.Type() != "identifier" {
				continue
			}

			name := nodeText(nameNode, source)
			start, end := lineRange(spec)

			result.Symbols = append(result.Symbols, Symbol{
				Type:      graph.NodeVariable,
				Name:      name,
				LineStart: start,
				LineEnd:   end,
				Exported:  isGoExported(name),
			})
		}
	}
}

func (b *GoBackend) visitImportDeclaration(n sitter.Node, source []byte, result *FileResult) {
	var specs []sitter.Node

	if n.NamedChild(0).Type() == "import_spec" {
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			specs = append(specs, n.NamedChild(i))
		}
	} else {
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			if n.NamedChild(i).Type() == "import_spec_list" {
				list := n.NamedChild(i)
				listCount := int(list.NamedChildCount())

				for j := 0; j < listCount; j++ {
					specs = append(specs, list.NamedChild(j))
				}
			}
		}
	}

	for _, spec := range specs {
		if spec.Type() != "import_spec" {
			continue
		}

		path := fieldText(spec, "path", source)
		alias := fieldText(spec, "name", source)

		line, _ := lineRange(spec)

		imp := ImportSpec{Specifier: trimQuotes(path), Line: line}
		if alias != "" {
			imp.Symbols = []string{alias}
		}

		result.Imports = append(result.Imports, imp)
	}
}

func trimQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '`') {
		return s[1 : len(s)-1]
	}

	return s
}

func isGoExported(name string) bool {
	if name == "" {
		return false
	}

	r := []rune(name)[0]

	return unicode.IsUpper(r)
}
