package cgerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesSentinel(t *testing.T) {
	err := New(KindNotFound, "file not found")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestError_WithHintChains(t *testing.T) {
	err := New(KindInvalidInput, "bad path").WithHint("use an absolute path")
	assert.Equal(t, "use an absolute path", err.Hint)
	assert.Equal(t, "InvalidInput: bad path", err.Error())
}

func TestError_UnwrapUnknownKind(t *testing.T) {
	err := &Error{Kind: "Bogus", Message: "x"}
	assert.Nil(t, errors.Unwrap(err))
}
