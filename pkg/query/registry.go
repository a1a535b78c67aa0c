package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/codegraph-dev/codegraph/pkg/cgerrors"
)

// DefaultDeadline is the per-call wall-clock budget applied when a
// caller doesn't specify one, matching spec.md's "default 30s" for
// queries invoked through the external-protocol adapter.
const DefaultDeadline = 30 * time.Second

// Handler executes one registered operation. args is whatever typed
// input struct the operation expects; callers (CLI flag parsing, MCP
// schema validation) are responsible for producing it before Call.
type Handler func(ctx context.Context, args any) (Record, error)

// Operation is one entry in the registry the terminal adapter
// dispatches through; the MCP adapter calls the same handler functions
// directly rather than through the registry.
type Operation struct {
	Name        string
	Description string
	Handler     Handler
}

// Registry is the set of operations §6's command surface dispatches
// through by name.
type Registry struct {
	ops map[string]Operation
}

// NewRegistry returns an empty registry ready for Register calls.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Operation)}
}

// Register adds or replaces an operation by name.
func (r *Registry) Register(op Operation) {
	r.ops[op.Name] = op
}

// Lookup returns the named operation, if registered.
func (r *Registry) Lookup(name string) (Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Names returns every registered operation name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for n := range r.ops {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// Call dispatches to the named operation under a deadline (DefaultDeadline
// when deadline <= 0). A handler that doesn't return before the deadline
// elapses yields a Timeout error rather than blocking the caller
// indefinitely, per spec.md's cancellation model; an unknown operation
// name yields InvalidInput. Both of these fail the call outright rather
// than degrading into a found=false record, matching the exceptions
// spec.md's propagation policy carves out.
func (r *Registry) Call(ctx context.Context, name string, args any, deadline time.Duration) (Record, error) {
	op, ok := r.Lookup(name)
	if !ok {
		return Record{}, cgerrors.New(cgerrors.KindInvalidInput, fmt.Sprintf("unknown operation %q", name))
	}

	if deadline <= 0 {
		deadline = DefaultDeadline
	}

	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	type outcome struct {
		rec Record
		err error
	}

	done := make(chan outcome, 1)

	go func() {
		rec, err := op.Handler(ctx, args)
		done <- outcome{rec, err}
	}()

	select {
	case o := <-done:
		return o.rec, o.err
	case <-ctx.Done():
		return Record{}, cgerrors.New(cgerrors.KindTimeout, fmt.Sprintf("operation %q exceeded %s deadline", name, deadline))
	}
}
