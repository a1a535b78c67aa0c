// Package commands implements codegraph's CLI subcommands: scan,
// status, clean, index, and the family of analytical queries that
// consume the persisted graph through pkg/query's Registry.
package commands

import (
	"fmt"
	"path/filepath"

	"github.com/codegraph-dev/codegraph/pkg/config"
	"github.com/codegraph-dev/codegraph/pkg/query"
	"github.com/codegraph-dev/codegraph/pkg/store"
)

// Exit codes per spec.md §6: 0 success, 1 policy-fail, 2 user error, 3
// no graph.
const (
	ExitOK         = 0
	ExitPolicyFail = 1
	ExitUserError  = 2
	ExitNoGraph    = 3
)

// GlobalFlags carries the persistent flags every subcommand reads,
// set up once on the root command.
type GlobalFlags struct {
	Root       string
	ConfigPath string
	JSON       bool
	Quiet      bool
	NoColor    bool
	ExitCode   bool
}

// resolveRoot returns an absolute form of fl.Root, defaulting to the
// current directory.
func (fl GlobalFlags) resolveRoot() (string, error) {
	root := fl.Root
	if root == "" {
		root = "."
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root %q: %w", root, err)
	}

	return abs, nil
}

// loadConfig loads layered configuration and resolves the project
// root: an explicit --root flag wins, otherwise scan.root from the
// environment, file, or defaults is used, so precedence matches
// spec.md's "flags override environment, environment overrides file".
func (fl GlobalFlags) loadConfig() (*config.Config, string, error) {
	cfg, err := config.LoadConfig(fl.ConfigPath)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}

	if fl.Root == "" {
		fl.Root = cfg.Scan.Root
	}

	root, err := fl.resolveRoot()
	if err != nil {
		return nil, "", err
	}

	cfg.Scan.Root = root

	return cfg, root, nil
}

// openSource opens the store at root and builds a query.Source over
// it, ready for Registry dispatch.
func openSource(root string) (query.Source, error) {
	st, err := store.Open(root)
	if err != nil {
		return query.Source{}, err
	}

	return query.Source{Store: st, RootDir: root}, nil
}

// newRegistry builds a Registry with every pkg/query operation
// registered against src.
func newRegistry(src query.Source) *query.Registry {
	reg := query.NewRegistry()
	query.RegisterAll(reg, src)

	return reg
}
