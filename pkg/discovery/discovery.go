// Package discovery walks a source tree, honors ignore rules and size
// caps, and classifies each surviving file by language (component A).
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/codegraph-dev/codegraph/pkg/cgerrors"
	"github.com/codegraph-dev/codegraph/pkg/textutil"
)

// DefaultMaxFileSize caps individual source files considered for parsing.
// Generated bundles and vendored blobs routinely exceed this and are
// skipped rather than slowing the parse pool.
const DefaultMaxFileSize = 2 << 20 // 2 MiB

// defaultIgnoreDirs are conventional VCS and dependency directories never
// worth walking into.
var defaultIgnoreDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	".codegraph":   true,
	".venv":        true,
	"__pycache__":  true,
	".tox":         true,
	"target":       true,
}

// extensionLanguages maps a file extension to its language tag. Only
// languages with a registered parser backend are listed; Walk skips
// every other file, so it counts toward neither file nor line totals.
var extensionLanguages = map[string]string{
	".go":  "go",
	".js":  "javascript",
	".jsx": "javascript",
	".mjs": "javascript",
	".cjs": "javascript",
	".ts":  "typescript",
	".tsx": "typescript",
	".py":  "python",
}

// File describes one discovered source file.
type File struct {
	AbsolutePath string
	RelativePath string
	Language     string
	LineCount    int
	Size         int64
}

// Options configures a Walk.
type Options struct {
	// IgnoreDirs adds additional directory basenames to skip, merged with
	// the conventional defaults.
	IgnoreDirs map[string]bool
	// MaxFileSize is the byte cap per file; 0 uses DefaultMaxFileSize.
	MaxFileSize int64
}

// Result is the outcome of a Walk: discovered files plus any per-file
// read failures, which are non-fatal and excluded from Files.
type Result struct {
	Files  []File
	Errors []FileError
}

// FileError records a file the walker could not read.
type FileError struct {
	Path string
	Err  error
}

// Walk enumerates candidate source files under root. An unreadable root
// returns a wrapped cgerrors.ErrIo; individual unreadable files are
// recorded in Result.Errors instead of failing the walk.
func Walk(root string, opts Options) (*Result, error) {
	ignore := defaultIgnoreDirs
	if len(opts.IgnoreDirs) > 0 {
		ignore = make(map[string]bool, len(defaultIgnoreDirs)+len(opts.IgnoreDirs))

		for k, v := range defaultIgnoreDirs {
			ignore[k] = v
		}

		for k, v := range opts.IgnoreDirs {
			ignore[k] = v
		}
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	result := &Result{}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}

			result.Errors = append(result.Errors, FileError{Path: path, Err: err})

			return nil
		}

		if d.IsDir() {
			if path != root && ignore[d.Name()] {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			result.Errors = append(result.Errors, FileError{Path: path, Err: infoErr})
			return nil
		}

		if info.Size() > maxSize {
			return nil
		}

		lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			result.Errors = append(result.Errors, FileError{Path: path, Err: readErr})
			return nil
		}

		if textutil.IsBinary(data) {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		result.Files = append(result.Files, File{
			AbsolutePath: path,
			RelativePath: filepath.ToSlash(rel),
			Language:     lang,
			LineCount:    textutil.CountLines(data),
			Size:         info.Size(),
		})

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("%w: walk %s: %v", cgerrors.ErrIo, root, walkErr)
	}

	return result, nil
}

// LanguageFor returns the language tag for a given file extension, and
// whether the extension is recognized.
func LanguageFor(path string) (string, bool) {
	lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}
