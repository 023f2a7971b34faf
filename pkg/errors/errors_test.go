package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorError(t *testing.T) {
	err := New("TEST", "something failed", http.StatusTeapot)
	require.Equal(t, "something failed", err.Error())

	wrapped := err.WithInternal(errors.New("db down"))
	require.Equal(t, "something failed: db down", wrapped.Error())
	require.ErrorIs(t, wrapped, wrapped)
}

func TestWithInternalDoesNotMutateOriginal(t *testing.T) {
	base := New("TEST", "base", http.StatusBadRequest)
	wrapped := base.WithInternal(errors.New("inner"))

	require.Nil(t, base.Internal)
	require.NotNil(t, wrapped.Internal)
	require.Equal(t, base.Code, wrapped.Code)
}

func TestFromError(t *testing.T) {
	require.Nil(t, FromError(nil))

	appErr := FromError(ErrNotFound)
	require.Same(t, ErrNotFound, appErr)

	generic := FromError(errors.New("boom"))
	require.Equal(t, ErrInternalServer.Code, generic.Code)
	require.EqualError(t, generic.Internal, "boom")
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("inner")
	wrapped := Wrap(inner, "outer")
	require.ErrorIs(t, wrapped, inner)
}
