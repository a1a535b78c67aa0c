// Package imports resolves the raw import specifiers produced by the
// symbol parser (component B) into `imports` edges pointing at a file
// node, per spec §4.C.
package imports

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/codegraph-dev/codegraph/pkg/parser"
)

// defaultExtensions is the extension search list applied to an
// extensionless relative specifier, tried in order.
var defaultExtensions = []string{"", ".ts", ".tsx", ".js", ".jsx", ".py", ".go"}

// indexNames are tried, per candidate directory, after the bare
// extension search fails — mirroring Node/TS module resolution.
var indexNames = []string{"index.ts", "index.tsx", "index.js", "index.jsx", "__init__.py"}

// Resolution is one resolved (or externally-marked) import.
type Resolution struct {
	Specifier  string
	TargetPath string // relative path of the resolved file node; "" if external
	Symbols    []string
	Line       int
	External   bool
}

// Resolver maps import specifiers to file paths already known to the
// graph under construction.
type Resolver struct {
	// filesByPath indexes every discovered file by its normalized
	// (slash-separated, root-relative) path for O(1) lookup.
	filesByPath map[string]bool
	// roots are package-root aliases, e.g. {"@": "src", "~": "."},
	// applied in resolution step 2.
	roots map[string]string
}

// NewResolver builds a Resolver over the given set of root-relative
// file paths and package-root aliases.
func NewResolver(filePaths []string, roots map[string]string) *Resolver {
	r := &Resolver{
		filesByPath: make(map[string]bool, len(filePaths)),
		roots:       roots,
	}

	for _, p := range filePaths {
		r.filesByPath[normalize(p)] = true
	}

	return r
}

// Resolve resolves one import specifier seen in fromFile (its
// root-relative path) to a target file path, applying relative-path
// resolution, then package-root alias resolution, then falling back to
// an external marker.
func (r *Resolver) Resolve(fromFile string, spec parser.ImportSpec) Resolution {
	res := Resolution{Specifier: spec.Specifier, Symbols: spec.Symbols, Line: spec.Line}

	if isRelative(spec.Specifier) {
		if target, ok := r.resolveRelative(fromFile, spec.Specifier); ok {
			res.TargetPath = target
			return res
		}
	} else if target, ok := r.resolveAliased(spec.Specifier); ok {
		res.TargetPath = target
		return res
	}

	res.External = true

	return res
}

func isRelative(spec string) bool {
	return strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/")
}

func (r *Resolver) resolveRelative(fromFile, spec string) (string, bool) {
	dir := path.Dir(normalize(fromFile))
	joined := path.Join(dir, spec)

	return r.searchCandidates(joined)
}

func (r *Resolver) resolveAliased(spec string) (string, bool) {
	for alias, target := range r.roots {
		if spec == alias {
			if target, ok := r.searchCandidates(normalize(target)); ok {
				return target, ok
			}

			continue
		}

		if strings.HasPrefix(spec, alias+"/") {
			rest := strings.TrimPrefix(spec, alias+"/")
			joined := path.Join(target, rest)

			if resolved, ok := r.searchCandidates(normalize(joined)); ok {
				return resolved, true
			}
		}
	}

	// Bare package-root specifier with no alias configured: try it
	// as a project-relative path directly (e.g. "src/util").
	return r.searchCandidates(normalize(spec))
}

func (r *Resolver) searchCandidates(base string) (string, bool) {
	if base == "" {
		return "", false
	}

	for _, ext := range defaultExtensions {
		candidate := base + ext
		if r.filesByPath[candidate] {
			return candidate, true
		}
	}

	for _, idx := range indexNames {
		candidate := path.Join(base, idx)
		if r.filesByPath[candidate] {
			return candidate, true
		}
	}

	return "", false
}

func normalize(p string) string {
	return filepath.ToSlash(path.Clean(p))
}
