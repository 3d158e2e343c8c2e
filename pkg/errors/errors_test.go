package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrEmptyCart, ""))
	got := FromError(wrapped)
	assert.Equal(t, ErrEmptyCart.Code, got.Code)
	assert.Equal(t, http.StatusBadRequest, got.Status)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, "internal server error: boom", got.Error())
}

func TestCloneOverridesMessage(t *testing.T) {
	clone := Clone(ErrUpstream, "Failed to remove from cart: not found")
	assert.Equal(t, "Failed to remove from cart: not found", clone.Message)
	assert.Equal(t, "remote service request failed", ErrUpstream.Message)
	assert.True(t, errors.Is(Wrap(ErrCacheMiss, "X", 1, "y"), ErrCacheMiss))
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("load cart: %w", Clone(ErrNotFound, "course not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrUpstream))
	assert.False(t, errors.Is(errors.New("plain"), ErrNotFound))
}
