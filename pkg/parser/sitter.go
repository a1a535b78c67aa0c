package parser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// errNoRootNode mirrors the teacher's DSL parser sentinel for an empty tree.
var errNoRootNode = errors.New("parser: no root node")

// parserPool pools sitter.Parser instances per language; constructing a
// parser and binding a grammar is comparatively expensive, and one file's
// parse is a single sequential pass so pooling is safe across the worker
// pool described in §5.
type parserPool struct {
	pool sync.Pool
}

func newParserPool(lang *sitter.Language) *parserPool {
	return &parserPool{
		pool: sync.Pool{
			New: func() any {
				p := sitter.NewParser()
				p.SetLanguage(lang)

				return p
			},
		},
	}
}

// parseTree parses source and returns the resulting tree. Callers must
// call tree.Close() when done.
func (pp *parserPool) parseTree(source []byte) (*sitter.Tree, error) {
	p, ok := pp.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, fmt.Errorf("parser: pool returned unexpected type")
	}

	defer pp.pool.Put(p)

	tree, err := p.ParseString(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parser: parse failed: %w", err)
	}

	root := tree.RootNode()
	if root.IsNull() {
		tree.Close()
		return nil, errNoRootNode
	}

	return tree, nil
}

// lineRange converts a tree-sitter node's 0-indexed point range to
// the 1-indexed [start, end] line range the knowledge graph stores.
func lineRange(n sitter.Node) (int, int) {
	start := n.StartPoint()
	end := n.EndPoint()

	return int(start.Row) + 1, int(end.Row) + 1
}

// nodeText returns the source text spanned by n.
func nodeText(n sitter.Node, source []byte) string {
	return n.Content(source)
}

// fieldText returns the text of n's named field, or "" if absent.
func fieldText(n sitter.Node, field string, source []byte) string {
	f := n.ChildByFieldName(field)
	if f.IsNull() {
		return ""
	}

	return nodeText(f, source)
}

// precedingDocComment walks n's preceding siblings (under parent) and
// concatenates any contiguous block of comment nodes immediately above
// n, in source order. Returns "" when none is found.
func precedingDocComment(n sitter.Node, commentKinds map[string]bool, source []byte) string {
	parent := n.Parent()
	if parent.IsNull() {
		return ""
	}

	childCount := int(parent.ChildCount())

	selfIdx := -1

	for i := 0; i < childCount; i++ {
		c := parent.Child(i)
		if c.Equal(n) {
			selfIdx = i
			break
		}
	}

	if selfIdx <= 0 {
		return ""
	}

	var lines []string

	lastRow := -1

	for i := selfIdx - 1; i >= 0; i-- {
		c := parent.Child(i)
		if !commentKinds[c.Type()] {
			if c.IsNamed() {
				break
			}

			continue
		}

		row := int(c.EndPoint().Row)
		if lastRow != -1 && lastRow-row > 1 {
			break
		}

		lines = append([]string{nodeText(c, source)}, lines...)
		lastRow = int(c.StartPoint().Row)
	}

	if len(lines) == 0 {
		return ""
	}

	joined := lines[0]
	for _, l := range lines[1:] {
		joined += "\n" + l
	}

	return joined
}

// countBranches walks the subtree rooted at n and counts occurrences of
// branchKinds (conditional/case/loop/catch/ternary node kinds) plus
// short-circuit boolean operators matched by logicalOps, implementing
// the "1 + one increment per branching construct" rule of spec §4.D.
func countBranches(n sitter.Node, branchKinds map[string]bool, logicalOps map[string]bool, source []byte) int {
	count := 0

	var walk func(sitter.Node)

	walk = func(cur sitter.Node) {
		kind := cur.Type()

		if branchKinds[kind] {
			count++
		}

		if logicalOps[kind] {
			op := fieldText(cur, "operator", source)
			if op == "&&" || op == "||" || op == "and" || op == "or" {
				count++
			}
		}

		childCount := int(cur.NamedChildCount())
		for i := 0; i < childCount; i++ {
			walk(cur.NamedChild(i))
		}
	}

	walk(n)

	return count
}
