package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codegraph-dev/codegraph/pkg/parser"
)

func TestResolver_RelativeResolution(t *testing.T) {
	r := NewResolver([]string{"src/util.ts", "src/main.ts"}, nil)

	res := r.Resolve("src/main.ts", parser.ImportSpec{Specifier: "./util"})

	assert.False(t, res.External)
	assert.Equal(t, "src/util.ts", res.TargetPath)
}

func TestResolver_RelativeIndexResolution(t *testing.T) {
	r := NewResolver([]string{"src/lib/index.ts", "src/main.ts"}, nil)

	res := r.Resolve("src/main.ts", parser.ImportSpec{Specifier: "./lib"})

	assert.False(t, res.External)
	assert.Equal(t, "src/lib/index.ts", res.TargetPath)
}

func TestResolver_AliasResolution(t *testing.T) {
	r := NewResolver([]string{"src/components/button.tsx"}, map[string]string{"@": "src"})

	res := r.Resolve("src/app.tsx", parser.ImportSpec{Specifier: "@/components/button"})

	assert.False(t, res.External)
	assert.Equal(t, "src/components/button.tsx", res.TargetPath)
}

func TestResolver_ExternalFallback(t *testing.T) {
	r := NewResolver([]string{"src/main.ts"}, nil)

	res := r.Resolve("src/main.ts", parser.ImportSpec{Specifier: "react"})

	assert.True(t, res.External)
	assert.Empty(t, res.TargetPath)
}

func TestResolver_PreservesAliasSymbols(t *testing.T) {
	r := NewResolver([]string{"src/util.ts", "src/main.ts"}, nil)

	res := r.Resolve("src/main.ts", parser.ImportSpec{
		Specifier: "./util",
		Symbols:   []string{"renamed"},
	})

	assert.Equal(t, []string{"renamed"}, res.Symbols)
}
