package semantic

import (
	"regexp"
	"strings"
)

var (
	nonAlnumRE     = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	acronymBoundRE = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	camelBoundRE   = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// stopWords is a small domain stop-list dropped from every tokenized
// chunk; it mixes ordinary English stop words with tokens so common in
// source code that they carry no discriminating signal.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "is": true, "it": true, "for": true, "on": true,
	"with": true, "this": true, "that": true, "as": true, "by": true, "at": true,
	"be": true, "are": true, "was": true, "were": true,
	"func": true, "var": true, "const": true, "type": true, "struct": true,
	"return": true, "if": true, "else": true, "nil": true, "err": true,
}

// tokenize splits text on non-alphanumeric boundaries, camelCase and
// snake_case, lowercases the result, and drops stop words and tokens
// shorter than two characters.
func tokenize(text string) []string {
	var tokens []string

	for _, word := range nonAlnumRE.Split(text, -1) {
		for _, part := range splitCase(word) {
			part = strings.ToLower(part)

			if len(part) < 2 || stopWords[part] {
				continue
			}

			tokens = append(tokens, part)
		}
	}

	return tokens
}

// splitCase breaks camelCase and PascalCase (including runs of
// acronyms like "HTTPServer") into its component words; snake_case
// arrives pre-split by tokenize's non-alphanumeric pass.
func splitCase(word string) []string {
	word = acronymBoundRE.ReplaceAllString(word, "$1 $2")
	word = camelBoundRE.ReplaceAllString(word, "$1 $2")

	return strings.Fields(word)
}
