package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()

	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestWalk_ClassifiesAndSkipsIgnored(t *testing.T) {
	root := t.TempDir()

	writeFile(t, root, "main.go", "package main\n\nfunc main() {}\n")
	writeFile(t, root, "vendor/dep.go", "package dep\n")
	writeFile(t, root, "README.md", "# hi\n")

	result, err := Walk(root, Options{})
	require.NoError(t, err)

	assert.Empty(t, result.Errors)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "main.go", result.Files[0].RelativePath)
	assert.Equal(t, "go", result.Files[0].Language)
	assert.Equal(t, 3, result.Files[0].LineCount)
}

func TestWalk_SkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()

	big := make([]byte, 64)
	for i := range big {
		big[i] = 'a'
	}

	writeFile(t, root, "big.py", string(big))

	result, err := Walk(root, Options{MaxFileSize: 8})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
}

func TestWalk_UnreadableRootIsIoError(t *testing.T) {
	_, err := Walk(filepath.Join(t.TempDir(), "does-not-exist"), Options{})
	require.Error(t, err)
}

func TestLanguageFor(t *testing.T) {
	lang, ok := LanguageFor("a/b/c.tsx")
	assert.True(t, ok)
	assert.Equal(t, "typescript", lang)

	_, ok = LanguageFor("a/b/c.rs")
	assert.False(t, ok)
}
