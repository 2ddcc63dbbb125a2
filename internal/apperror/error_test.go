package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsFindsWrappedError(t *testing.T) {
	inner := NotFound("65a1b2c3d4e5f60718293a4b")
	wrapped := fmt.Errorf("get item: %w", inner)

	got, ok := As(wrapped)

	assert.True(t, ok)
	assert.Same(t, inner, got)
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindConflict))
}

func TestAsPlainError(t *testing.T) {
	_, ok := As(errors.New("boom"))
	assert.False(t, ok)
	assert.False(t, IsKind(nil, KindStore))
}

func TestStoreUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Store("list items", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "list items: connection refused", err.Error())
}

func TestBadRequestCarriesStatus(t *testing.T) {
	err := BadRequest("Invalid request body")

	assert.Equal(t, KindOther, err.Kind)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "Invalid request body", err.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "InvalidInput", KindInvalidInput.String())
	assert.Equal(t, "Store", KindStore.String())
	assert.Equal(t, "Other", Kind(99).String())
}
