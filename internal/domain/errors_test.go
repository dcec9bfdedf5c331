package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpError_Unwrap(t *testing.T) {
	err := NewOpError("submit", "target-1", ErrCountOverflow)
	assert.ErrorIs(t, err, ErrCountOverflow)

	var opErr *OpError
	assert.True(t, errors.As(err, &opErr))
	assert.Equal(t, "submit", opErr.Op)
	assert.Equal(t, TargetID("target-1"), opErr.Target)
}

func TestOpError_Error(t *testing.T) {
	withTarget := NewOpError("reset", "target-1", ErrNotAuthorized)
	assert.Contains(t, withTarget.Error(), "reset")
	assert.Contains(t, withTarget.Error(), "target-1")

	withoutTarget := NewOpError("set_policy", "", ErrNotAuthorized)
	assert.Contains(t, withoutTarget.Error(), "set_policy")
	assert.NotContains(t, withoutTarget.Error(), "target=")
}
