package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraph-dev/codegraph/pkg/cgerrors"
)

func TestRegistry_CallDispatchesToHandler(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Operation{
		Name: "echo",
		Handler: func(_ context.Context, args any) (Record, error) {
			return Ok(args, "echoed"), nil
		},
	})

	rec, err := reg.Call(context.Background(), "echo", "hello", time.Second)

	require.NoError(t, err)
	assert.True(t, rec.Found)
	assert.Equal(t, "hello", rec.Data)
}

func TestRegistry_CallUnknownOperationIsInvalidInput(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Call(context.Background(), "missing", nil, time.Second)

	require.Error(t, err)

	var cgErr *cgerrors.Error
	require.ErrorAs(t, err, &cgErr)
	assert.Equal(t, cgerrors.KindInvalidInput, cgErr.Kind)
}

func TestRegistry_CallTimesOutSlowHandler(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Operation{
		Name: "slow",
		Handler: func(_ context.Context, _ any) (Record, error) {
			time.Sleep(50 * time.Millisecond)
			return Ok(nil, "too late"), nil
		},
	})

	_, err := reg.Call(context.Background(), "slow", nil, 5*time.Millisecond)

	require.Error(t, err)

	var cgErr *cgerrors.Error
	require.ErrorAs(t, err, &cgErr)
	assert.Equal(t, cgerrors.KindTimeout, cgErr.Kind)
}

func TestRegistry_NamesSorted(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Operation{Name: "zeta"})
	reg.Register(Operation{Name: "alpha"})

	assert.Equal(t, []string{"alpha", "zeta"}, reg.Names())
}
