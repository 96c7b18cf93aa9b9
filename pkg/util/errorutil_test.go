package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToDomainError_PassesThrough(t *testing.T) {
	err := NewEmailTaken()
	de := ToDomainError(err)
	require.Equal(t, CodeEmailTaken, de.Code)
	require.Equal(t, http.StatusConflict, de.HTTPStatus)
}

func TestToDomainError_WrapsUnknown(t *testing.T) {
	de := ToDomainError(errors.New("boom"))
	require.Equal(t, CodeInternal, de.Code)
	require.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
}

func TestToDomainError_UnwrapsWrapped(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", NewForbidden("nope"))
	de := ToDomainError(wrapped)
	require.Equal(t, CodeForbidden, de.Code)
}

func TestToDomainError_NoRows(t *testing.T) {
	de := ToDomainError(sql.ErrNoRows)
	require.Equal(t, CodeNotFound, de.Code)
}

func TestCodeOf(t *testing.T) {
	require.Equal(t, CodeInvalidCredentials, CodeOf(NewInvalidCredentials()))
	require.Equal(t, CodeExpiredOrRevoked, CodeOf(NewExpiredOrRevoked()))
	require.Equal(t, CodeInternal, CodeOf(errors.New("anything")))
}

func TestFailureStatusClasses(t *testing.T) {
	// Inactive account is a 400-class failure, not a 401: the credentials
	// were valid but the account is gated.
	require.Equal(t, http.StatusBadRequest, ToDomainError(NewInactiveAccount()).HTTPStatus)
	require.Equal(t, http.StatusUnauthorized, ToDomainError(NewInvalidCredentials()).HTTPStatus)
	require.Equal(t, http.StatusUnauthorized, ToDomainError(NewInvalidToken()).HTTPStatus)
	require.Equal(t, http.StatusUnauthorized, ToDomainError(NewExpiredOrRevoked()).HTTPStatus)
	require.Equal(t, http.StatusForbidden, ToDomainError(NewForbidden("no")).HTTPStatus)
}
