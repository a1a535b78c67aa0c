// Package store persists the assembled knowledge graph and its
// snapshot history to a well-known cache directory under the scanned
// project (component G). Writes are atomic (temp file + rename) and
// guarded by an advisory file lock so concurrent writers cannot
// interleave; readers take no lock and see only whole, renamed files.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/codegraph-dev/codegraph/pkg/cgerrors"
	"github.com/codegraph-dev/codegraph/pkg/graph"
	"github.com/codegraph-dev/codegraph/pkg/persist"
)

const (
	cacheDirName    = ".codegraph"
	graphBasename   = "graph"
	metaBasename    = "meta"
	errorsBasename  = "errors"
	snapshotLogName = "snapshots.jsonl"
	lockFileName    = ".lock"
)

// Store manages on-disk persistence of one project's graph.
type Store struct {
	cacheDir string
	codec    *persist.JSONCodec
}

// Open returns a Store rooted at rootDir/.codegraph, creating the
// directory if absent.
func Open(rootDir string) (*Store, error) {
	dir := filepath.Join(rootDir, cacheDirName)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create cache dir: %v", cgerrors.ErrIo, err)
	}

	return &Store{cacheDir: dir, codec: persist.NewJSONCodec()}, nil
}

// Save atomically writes g's nodes/edges, its metadata header, and its
// last-scan per-file errors to disk, then appends a snapshot record.
func (s *Store) Save(g *graph.Graph) error {
	if err := s.writeAtomic(graphBasename+s.codec.Extension(), g); err != nil {
		return err
	}

	if err := s.writeAtomic(metaBasename+s.codec.Extension(), &g.Metadata); err != nil {
		return err
	}

	if err := s.writeAtomic(errorsBasename+s.codec.Extension(), &g.Errors); err != nil {
		return err
	}

	return s.appendSnapshot(g)
}

// LoadErrors returns just the last scan's per-file errors, without
// deserializing the full graph — the fast path a `status`/`scan
// --quiet` summary uses to report error counts.
func (s *Store) LoadErrors() ([]graph.ScanError, bool, error) {
	path := filepath.Join(s.cacheDir, errorsBasename+s.codec.Extension())

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("%w: open errors: %v", cgerrors.ErrIo, err)
	}
	defer f.Close()

	var errs []graph.ScanError
	if err := s.codec.Decode(f, &errs); err != nil {
		return nil, false, fmt.Errorf("%w: decode errors: %v", cgerrors.ErrIo, err)
	}

	return errs, true, nil
}

// Load returns the persisted graph, or (nil, false, nil) when absent.
func (s *Store) Load() (*graph.Graph, bool, error) {
	path := filepath.Join(s.cacheDir, graphBasename+s.codec.Extension())

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("%w: open graph: %v", cgerrors.ErrIo, err)
	}
	defer f.Close()

	var g graph.Graph
	if err := s.codec.Decode(f, &g); err != nil {
		return nil, false, fmt.Errorf("%w: decode graph: %v", cgerrors.ErrIo, err)
	}

	return &g, true, nil
}

// LoadMetadata returns just the metadata header, without deserializing
// the full node/edge set — the fast path status/health commands use.
func (s *Store) LoadMetadata() (*graph.Metadata, bool, error) {
	path := filepath.Join(s.cacheDir, metaBasename+s.codec.Extension())

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("%w: open metadata: %v", cgerrors.ErrIo, err)
	}
	defer f.Close()

	var meta graph.Metadata
	if err := s.codec.Decode(f, &meta); err != nil {
		return nil, false, fmt.Errorf("%w: decode metadata: %v", cgerrors.ErrIo, err)
	}

	return &meta, true, nil
}

// IsStale reports whether any path in sourceFiles has an mtime newer
// than the persisted metadata's ScannedAt. A missing graph is stale.
func (s *Store) IsStale(sourceFiles []string) (bool, error) {
	meta, ok, err := s.LoadMetadata()
	if err != nil {
		return false, err
	}

	if !ok {
		return true, nil
	}

	for _, path := range sourceFiles {
		info, statErr := os.Stat(path)
		if statErr != nil {
			continue
		}

		if info.ModTime().After(meta.ScannedAt) {
			return true, nil
		}
	}

	return false, nil
}

// Delete removes the cached graph and its metadata header; the
// snapshot log is preserved per §4.G.
func (s *Store) Delete() error {
	names := []string{
		graphBasename + s.codec.Extension(),
		metaBasename + s.codec.Extension(),
		errorsBasename + s.codec.Extension(),
	}

	for _, name := range names {
		path := filepath.Join(s.cacheDir, name)

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: remove %s: %v", cgerrors.ErrIo, name, err)
		}
	}

	return nil
}

// writeAtomic writes state to name under an exclusive lock, via a
// temp file in the same directory followed by a rename, so a reader
// never observes a partially written file.
func (s *Store) writeAtomic(name string, state any) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	target := filepath.Join(s.cacheDir, name)

	tmp, err := os.CreateTemp(s.cacheDir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", cgerrors.ErrIo, err)
	}

	tmpPath := tmp.Name()

	if encErr := s.codec.Encode(tmp, state); encErr != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("%w: encode %s: %v", cgerrors.ErrIo, name, encErr)
	}

	if syncErr := tmp.Sync(); syncErr != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("%w: sync %s: %v", cgerrors.ErrIo, name, syncErr)
	}

	if closeErr := tmp.Close(); closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close temp file: %v", cgerrors.ErrIo, closeErr)
	}

	if renameErr := os.Rename(tmpPath, target); renameErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename into place: %v", cgerrors.ErrIo, renameErr)
	}

	return nil
}

// lock acquires an exclusive advisory lock on the
// store's lock file, blocking until it is free, and returns a release
// function.
func (s *Store) lock() (func(), error) {
	path := filepath.Join(s.cacheDir, lockFileName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open lock file: %v", cgerrors.ErrIo, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: acquire lock: %v", cgerrors.ErrIo, err)
	}

	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}

