package parser

import (
	forestpy "github.com/alexaandru/go-sitter-forest/python"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/codegraph-dev/codegraph/pkg/graph"
)

var pyBranchKinds = map[string]bool{
	"if_statement":    true,
	"for_statement":   true,
	"while_statement": true,
	"except_clause":   true,
	"conditional_expression": true,
}

var pyLogicalOps = map[string]bool{"boolean_operator": true}

var pyCommentKinds = map[string]bool{"comment": true}

// PythonBackend extracts symbols, imports, and complexity from Python
// source using the tree-sitter-python grammar. Python has no export
// keyword; a top-level name is treated as exported unless it starts
// with an underscore, matching the convention the language itself uses.
type PythonBackend struct {
	pool *parserPool
}

// NewPythonBackend constructs a Python language backend.
func NewPythonBackend() *PythonBackend {
	lang := sitter.NewLanguage(forestpy.GetLanguage())
	return &PythonBackend{pool: newParserPool(lang)}
}

// Language implements LanguageBackend.
func (b *PythonBackend) Language() string { return "python" }

// Parse implements LanguageBackend.
func (b *PythonBackend) Parse(source []byte) (*FileResult, error) {
	tree, err := b.pool.parseTree(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	result := &FileResult{}

	root := tree.RootNode()
	count := int(root.NamedChildCount())

	for i := 0; i < count; i++ {
		pyVisitTopLevel(root.NamedChild(i), source, result)
	}

	return result, nil
}

func pyVisitTopLevel(n sitter.Node, source []byte, result *FileResult) {
	switch n.Type() {
	case "decorated_definition":
		if def := n.ChildByFieldName("definition"); !def.IsNull() {
			pyVisitTopLevel(def, source, result)
		}
	case "function_definition":
		result.Symbols = append(result.Symbols, pyFunctionSymbol(n, source))
	case "class_definition":
		pyVisitClass(n, source, result)
	case "import_statement", "import_from_statement":
		pyVisitImport(n, source, result)
	}
}

func pyFunctionSymbol(n sitter.Node, source []byte) Symbol {
	name := fieldText(n, "name", source)
	start, end := lineRange(n)

	sym := Symbol{
		Type:          graph.NodeFunction,
		Name:          name,
		LineStart:     start,
		LineEnd:       end,
		Exported:      pyIsExported(name),
		IsAsync:       pyHasAsyncKeyword(n),
		Documentation: pyDocstring(n, source),
		ReturnType:    fieldText(n, "return_type", source),
		Parameters:    pyParamNames(n, source),
		HasComplexity: true,
	}

	if body := n.ChildByFieldName("body"); !body.IsNull() {
		sym.Complexity = 1 + countBranches(body, pyBranchKinds, pyLogicalOps, source)
	} else {
		sym.Complexity = 1
	}

	return sym
}

func pyParamNames(n sitter.Node, source []byte) []string {
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

func pyHasAsyncKeyword(n sitter.Node) bool {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if n.Child(i).Type() == "async" {
			return true
		}
	}

	return false
}

// pyDocstring returns a function/class's docstring — the string-literal
// expression statement that is the first statement of its body — per
// Python convention, rather than a preceding-comment block.
func pyDocstring(n sitter.Node, source []byte) string {
	body := n.ChildByFieldName("body")
	if body.IsNull() || body.NamedChildCount() == 0 {
		return ""
	}

	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}

	expr := first.NamedChild(0)
	if expr.Type() != "string" {
		return ""
	}

	return nodeText(expr, source)
}

func pyVisitClass(n sitter.Node, source []byte, result *FileResult) {
	name := fieldText(n, "name", source)
	start, end := lineRange(n)

	var extends []string
	if bases := n.ChildByFieldName("superclasses"); !bases.IsNull() {
		count := int(bases.NamedChildCount())
		for i := 0; i < count; i++ {
			extends = append(extends, nodeText(bases.NamedChild(i), source))
		}
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
		Exported:      pyIsExported(name),
		Extends:       extends,
		MemberCount:   members,
		Documentation: pyDocstring(n, source),
	})

	if body.IsNull() {
		return
	}

	memberCount := int(body.NamedChildCount())
	for i := 0; i < memberCount; i++ {
		member := body.NamedChild(i)
		if member.Type() == "decorated_definition" {
			if def := member.ChildByFieldName("definition"); !def.IsNull() {
				member = def
			}
		}

		if member.Type() != "function_definition" {
			continue
		}

		result.Symbols = append(result.Symbols, pyFunctionSymbol(member, source))
	}
}

func pyVisitImport(n sitter.Node, source []byte, result *FileResult) {
	line, _ := lineRange(n)

	if n.Type() == "import_statement" {
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			child := n.NamedChild(i)

			imp := ImportSpec{Line: line}

			switch child.Type() {
			case "aliased_import":
				imp.Specifier = fieldText(child, "name", source)
				if alias := fieldText(child, "alias", source); alias != "" {
					imp.Symbols = []string{alias}
				}
			default:
				imp.Specifier = nodeText(child, source)
			}

			result.Imports = append(result.Imports, imp)
		}

		return
	}

	// import_from_statement: "from X import a, b as c"
	module := fieldText(n, "module_name", source)

	imp := ImportSpec{Specifier: module, Line: line}

	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)

		switch child.Type() {
		case "dotted_name":
			if nodeText(child, source) == module {
				continue
			}

			imp.Symbols = append(imp.Symbols, nodeText(child, source))
		case "aliased_import":
			if alias := fieldText(child, "alias", source); alias != "" {
				imp.Symbols = append(imp.Symbols, alias)
			}
		case "wildcard_import":
			imp.Symbols = append(imp.Symbols, "*")
		}
	}

	result.Imports = append(result.Imports, imp)
}

func pyIsExported(name string) bool {
	if name == "" {
		return false
	}

	return name[0] != '_'
}
