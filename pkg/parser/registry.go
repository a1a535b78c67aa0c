package parser

import (
	"fmt"
	"sync"

	"github.com/codegraph-dev/codegraph/pkg/cgerrors"
)

// Registry maps a language tag to its LanguageBackend, mirroring the
// teacher's languageFuncs lookup table in pkg/uast/languages.go.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]LanguageBackend
}

// NewRegistry builds a Registry with the given backends pre-registered.
func NewRegistry(backends ...LanguageBackend) *Registry {
	r := &Registry{backends: make(map[string]LanguageBackend, len(backends))}

	for _, b := range backends {
		r.Register(b)
	}

	return r
}

// Register adds or replaces the backend for its language.
func (r *Registry) Register(b LanguageBackend) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backends[b.Language()] = b
}

// Backend returns the backend registered for language, if any.
func (r *Registry) Backend(language string) (LanguageBackend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.backends[language]

	return b, ok
}

// Languages returns the set of registered language tags.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.backends))
	for lang := range r.backends {
		out = append(out, lang)
	}

	return out
}

// Parse dispatches to the backend registered for language. An
// unrecognized language returns cgerrors.ErrInvalidInput.
func (r *Registry) Parse(language string, source []byte) (*FileResult, error) {
	b, ok := r.Backend(language)
	if !ok {
		return nil, fmt.Errorf("%w: no parser backend for language %q", cgerrors.ErrInvalidInput, language)
	}

	return b.Parse(source)
}

// Default returns a Registry with the Go, JavaScript (including JSX),
// TypeScript (.ts and .tsx files), and
// Python backends registered — the subset of the teacher's full grammar
// forest this implementation wires end to end (see DESIGN.md).
func Default() *Registry {
	return NewRegistry(
		NewGoBackend(),
		NewJavaScriptBackend(),
		NewTypeScriptBackend(),
		NewPythonBackend(),
	)
}
