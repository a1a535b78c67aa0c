// Package assembler merges the outputs of file discovery, symbol
// parsing, import resolution, and git history (components A–E) into a
// single Graph under the invariants of §3 (component F).
package assembler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/codegraph-dev/codegraph/pkg/discovery"
	"github.com/codegraph-dev/codegraph/pkg/graph"
	"github.com/codegraph-dev/codegraph/pkg/imports"
	"github.com/codegraph-dev/codegraph/pkg/parser"
	"github.com/codegraph-dev/codegraph/pkg/vcs"
)

// Options configures an assembly run.
type Options struct {
	RootDir     string
	IgnoreDirs  map[string]bool
	MaxFileSize int64
	// Roots carries package-root aliases for import resolution
	// (e.g. {"@": "src"}).
	Roots map[string]string
	// Workers bounds the file-parsing worker pool; 0 uses runtime.NumCPU.
	Workers int
	// SkipGit disables the git history pass entirely (e.g. for a
	// non-repository root), distinct from a git invocation failing.
	SkipGit bool
}

// fileParse is one discovered file's parse outcome.
type fileParse struct {
	file   discovery.File
	result *parser.FileResult
	err    error
}

// Assemble runs the full A→F pipeline over opts.RootDir and returns a
// canonicalized, invariant-checked Graph.
func Assemble(ctx context.Context, registry *parser.Registry, opts Options) (*graph.Graph, error) {
	started := time.Now()

	disco, err := discovery.Walk(opts.RootDir, discovery.Options{
		IgnoreDirs:  opts.IgnoreDirs,
		MaxFileSize: opts.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}

	parses := parseFiles(ctx, registry, disco.Files, opts.Workers)

	filePaths := make([]string, 0, len(disco.Files))
	for _, f := range disco.Files {
		filePaths = append(filePaths, f.RelativePath)
	}

	resolver := imports.NewResolver(filePaths, opts.Roots)

	g := &graph.Graph{}

	for _, fe := range disco.Errors {
		g.Errors = append(g.Errors, graph.ScanError{FilePath: fe.Path, Kind: "io", Message: fe.Err.Error()})
	}

	languageCounts := make(map[string]int)

	totalLines := 0

	for _, fp := range parses {
		totalLines += fp.file.LineCount
		if fp.file.Language != "" {
			languageCounts[fp.file.Language]++
		}

		fileID := "file:" + fp.file.RelativePath

		fileNode := graph.Node{
			ID:        fileID,
			Type:      graph.NodeFile,
			Name:      filepath.Base(fp.file.RelativePath),
			FilePath:  fp.file.RelativePath,
			Language:  fp.file.Language,
			LineStart: 1,
			LineEnd:   max(1, fp.file.LineCount),
			LineCount: fp.file.LineCount,
		}

		if fp.err != nil {
			g.Errors = append(g.Errors, graph.ScanError{
				FilePath: fp.file.RelativePath,
				Kind:     "parse",
				Message:  fp.err.Error(),
			})
			g.Nodes = append(g.Nodes, fileNode)

			continue
		}

		var maxComplexity int

		hasComplexity := false

		for _, sym := range fp.result.Symbols {
			symNode := symbolNode(fp.file.RelativePath, sym)
			g.Nodes = append(g.Nodes, symNode)

			g.Edges = append(g.Edges, graph.Edge{
				Source: fileID,
				Target: symNode.ID,
				Type:   graph.EdgeDefines,
			})

			for _, ext := range sym.Extends {
				g.Edges = append(g.Edges, graph.Edge{
					Source: symNode.ID,
					Target: "symbol:" + ext,
					Type:   graph.EdgeExtends,
				})
			}

			if sym.HasComplexity {
				hasComplexity = true
				if sym.Complexity > maxComplexity {
					maxComplexity = sym.Complexity
				}
			}
		}

		fileNode.MemberCount = len(fp.result.Symbols)
		fileNode.HasComplexity = hasComplexity
		fileNode.Complexity = maxComplexity
		fileNode.ImportCount = len(fp.result.Imports)

		g.Nodes = append(g.Nodes, fileNode)

		for _, spec := range fp.result.Imports {
			res := resolver.Resolve(fp.file.RelativePath, spec)
			if res.External {
				continue
			}

			g.Edges = append(g.Edges, graph.Edge{
				Source: fileID,
				Target: "file:" + res.TargetPath,
				Type:   graph.EdgeImports,
				Metadata: &graph.ImportMetadata{
					Symbols: res.Symbols,
				},
			})
		}
	}

	if !opts.SkipGit {
		applyGitHistory(g, opts.RootDir, filePaths)
	}

	g.Metadata = graph.Metadata{
		ScannedAt:      started,
		RootDir:        opts.RootDir,
		SchemaVersion:  1,
		FileCount:      len(disco.Files),
		TotalLines:     totalLines,
		NodeCount:      len(g.Nodes),
		EdgeCount:      len(g.Edges),
		ScanDuration:   time.Since(started),
		LanguageCounts: languageCounts,
	}

	graph.Canonicalize(g)

	if err := graph.Validate(g); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	return g, nil
}

// parseFiles runs the symbol parser over every discovered file using a
// bounded worker pool (component B/D running across §5's concurrency
// model); parse failures are carried on the per-file result rather
// than aborting the run.
func parseFiles(ctx context.Context, registry *parser.Registry, files []discovery.File, workers int) []fileParse {
	results := make([]fileParse, len(files))

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p := pool.New().WithContext(ctx).WithMaxGoroutines(workers)

	for i, f := range files {
		i, f := i, f

		p.Go(func(ctx context.Context) error {
			if f.Language == "" {
				results[i] = fileParse{file: f}
				return nil
			}

			source, err := readSource(f.AbsolutePath)
			if err != nil {
				results[i] = fileParse{file: f, err: err}
				return nil
			}

			parsed, parseErr := registry.Parse(f.Language, source)
			results[i] = fileParse{file: f, result: parsed, err: parseErr}

			return nil
		})
	}

	_ = p.Wait()

	return results
}

func applyGitHistory(g *graph.Graph, root string, filePaths []string) {
	sourceFiles := make(map[string]bool, len(filePaths))
	for _, p := range filePaths {
		sourceFiles[p] = true
	}

	hist, err := vcs.Analyze(root, sourceFiles)
	if err != nil {
		g.Errors = append(g.Errors, graph.ScanError{Kind: "git", Message: err.Error()})
		return
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Type != graph.NodeFile {
			continue
		}

		fh, ok := hist.Files[n.FilePath]
		if !ok {
			continue
		}

		n.LastModified = fh.LastModified
		n.ModificationCount = fh.ModificationCount
		n.Contributors = fh.Contributors
	}
}

func symbolNode(filePath string, sym parser.Symbol) graph.Node {
	id := fmt.Sprintf("symbol:%s#%s:%d", filePath, sym.Name, sym.LineStart)

	return graph.Node{
		ID:            id,
		Type:          sym.Type,
		Name:          sym.Name,
		FilePath:      filePath,
		Documentation: sym.Documentation,
		ReturnType:    sym.ReturnType,
		Extends:       sym.Extends,
		Parameters:    sym.Parameters,
		LineStart:     sym.LineStart,
		LineEnd:       sym.LineEnd,
		MemberCount:   sym.MemberCount,
		Complexity:    sym.Complexity,
		HasComplexity: sym.HasComplexity,
		Exported:      sym.Exported,
		IsAsync:       sym.IsAsync,
	}
}

func readSource(path string) ([]byte, error) {
	return os.ReadFile(path)
}
