// Package vcs reads commit history from a working tree's git repository
// (component E). Failure to open or read the repository is non-fatal to
// the caller: git-derived fields are simply omitted from the graph.
package vcs

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/codegraph-dev/codegraph/pkg/cgerrors"
)

// FileHistory is what the git analyzer computes for one tracked source file.
type FileHistory struct {
	LastModified      time.Time
	ModificationCount int
	// Contributors is ordered by descending commit count, ties broken by
	// name, matching the deterministic ordering §5 requires of any list
	// the graph or its derived analytics expose.
	Contributors []string
}

// DeletionEvent records a source file's removal from the tree.
type DeletionEvent struct {
	Path       string
	Date       time.Time
	LastAuthor string
	// Tombstone is the file's content immediately before deletion, kept
	// for impact analysis of code that no longer exists. Empty when the
	// blob could not be read back (e.g. it was itself a submodule).
	Tombstone string
}

// CommitFileSet is one commit's touched source files, consumed by the
// change-coupling engine (component I).
type CommitFileSet struct {
	Hash      string
	Author    string
	Timestamp time.Time
	Files     []string
}

// Result is everything the git analyzer extracts in one pass.
type Result struct {
	Files     map[string]FileHistory
	Deletions []DeletionEvent
	Commits   []CommitFileSet
}

// contributorCount accumulates per-file, per-author commit counts while
// walking history before the final ordered Contributors slice is built.
type contributorCount struct {
	first time.Time
	count int
}

// Analyze walks every commit reachable from HEAD in the repository
// rooted at repoRoot, diffing each against its first parent, and computes per-file history for every path in sourceFiles
// (root-relative, slash-separated). A repository that cannot be opened
// or read returns a wrapped cgerrors.ErrGitUnavailable; callers treat
// this as "no git data available" rather than aborting the scan.
func Analyze(repoRoot string, sourceFiles map[string]bool) (*Result, error) {
	repo, err := git.PlainOpenWithOptions(repoRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: open repository: %v", cgerrors.ErrGitUnavailable, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("%w: resolve HEAD: %v", cgerrors.ErrGitUnavailable, err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("%w: walk log: %v", cgerrors.ErrGitUnavailable, err)
	}
	defer iter.Close()

	lastModified := make(map[string]time.Time)
	modCount := make(map[string]int)
	contributors := make(map[string]map[string]*contributorCount)
	deletedAt := make(map[string]DeletionEvent)

	var commits []CommitFileSet

	walkErr := iter.ForEach(func(c *object.Commit) error {
		changes, changeErr := commitChanges(c)
		if changeErr != nil {
			// A single unreadable commit (e.g. a corrupt pack entry)
			// should not sink the whole history read.
			return nil
		}

		var touched []string

		for _, ch := range changes {
			path := ch.to
			if path == "" {
				path = ch.from
			}

			if !sourceFiles[path] {
				continue
			}

			touched = append(touched, path)

			if ch.to == "" {
				deletedAt[path] = DeletionEvent{
					Path:       path,
					Date:       c.Author.When,
					LastAuthor: c.Author.Name,
					Tombstone:  ch.deletedContent,
				}

				continue
			}

			if t, ok := lastModified[path]; !ok || c.Author.When.After(t) {
				lastModified[path] = c.Author.When
			}

			modCount[path]++

			if contributors[path] == nil {
				contributors[path] = make(map[string]*contributorCount)
			}

			cc, ok := contributors[path][c.Author.Name]
			if !ok {
				cc = &contributorCount{first: c.Author.When}
				contributors[path][c.Author.Name] = cc
			}

			cc.count++
			if c.Author.When.Before(cc.first) {
				cc.first = c.Author.When
			}
		}

		if len(touched) > 0 {
			sort.Strings(touched)
			commits = append(commits, CommitFileSet{
				Hash:      c.Hash.String(),
				Author:    c.Author.Name,
				Timestamp: c.Author.When,
				Files:     touched,
			})
		}

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("%w: iterate commits: %v", cgerrors.ErrGitUnavailable, walkErr)
	}

	files := make(map[string]FileHistory, len(modCount))

	for path, count := range modCount {
		files[path] = FileHistory{
			LastModified:      lastModified[path],
			ModificationCount: count,
			Contributors:      orderContributors(contributors[path]),
		}
	}

	deletions := make([]DeletionEvent, 0, len(deletedAt))
	for _, d := range deletedAt {
		deletions = append(deletions, d)
	}

	sort.Slice(deletions, func(i, j int) bool { return deletions[i].Path < deletions[j].Path })

	return &Result{Files: files, Deletions: deletions, Commits: commits}, nil
}

func orderContributors(m map[string]*contributorCount) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		a, b := m[names[i]], m[names[j]]
		if a.count != b.count {
			return a.count > b.count
		}

		return names[i] < names[j]
	})

	return names
}

type fileChange struct {
	from           string
	to             string
	deletedContent string
}

// commitChanges diffs c against its first parent (or against an empty
// tree for the root commit), returning the set of file-level changes.
func commitChanges(c *object.Commit) ([]fileChange, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	var parentTree *object.Tree

	if c.NumParents() > 0 {
		parent, parentErr := c.Parent(0)
		if parentErr != nil {
			return nil, parentErr
		}

		parentTree, err = parent.Tree()
		if err != nil {
			return nil, err
		}
	}

	var changes object.Changes

	if parentTree != nil {
		changes, err = parentTree.Diff(tree)
	} else {
		changes, err = (&object.Tree{}).Diff(tree)
	}

	if err != nil {
		return nil, err
	}

	out := make([]fileChange, 0, len(changes))

	for _, ch := range changes {
		fc := fileChange{from: ch.From.Name, to: ch.To.Name}

		if fc.to == "" && parentTree != nil {
			if blob, blobErr := parentTree.File(fc.from); blobErr == nil {
				if content, contentErr := blob.Contents(); contentErr == nil {
					fc.deletedContent = content
				}
			}
		}

		out = append(out, fc)
	}

	return out, nil
}

// Normalize converts an OS path into the slash-separated, root-relative
// form sourceFiles and the returned history maps are keyed by.
func Normalize(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	return filepath.ToSlash(rel)
}
