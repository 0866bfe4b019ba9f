package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/clipsum/backend/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.Validation, http.StatusBadRequest},
		{apperr.Authentication, http.StatusUnauthorized},
		{apperr.Authorization, http.StatusForbidden},
		{apperr.NotFound, http.StatusNotFound},
		{apperr.Conflict, http.StatusConflict},
		{apperr.Upstream, http.StatusBadGateway},
		{apperr.Internal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.kind.HTTPStatus(), tc.kind.String())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperr.Wrap(cause, apperr.Upstream, "EMAIL_DISPATCH_FAILED", "Failed to send OTP email")

	assert.ErrorIs(t, err, cause)
	assert.True(t, apperr.IsKind(err, apperr.Upstream))
	assert.False(t, apperr.IsKind(err, apperr.NotFound))
}

func TestFrom(t *testing.T) {
	known := apperr.New(apperr.Conflict, "EMAIL_ALREADY_REGISTERED", "Email is already registered")
	got := apperr.From(fmt.Errorf("register: %w", known))
	assert.Equal(t, apperr.Conflict, got.Kind)
	assert.Equal(t, "EMAIL_ALREADY_REGISTERED", got.Code)

	// Arbitrary errors collapse to an opaque internal error
	got = apperr.From(errors.New("pq: deadlock detected"))
	assert.Equal(t, apperr.Internal, got.Kind)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", got.Code)
}

func TestWithDetails(t *testing.T) {
	err := apperr.New(apperr.Validation, "VALIDATION_ERROR", "Validation failed").
		WithDetails(map[string]string{"email": "Email is required"})

	require.NotNil(t, err.Details)
	assert.Equal(t, "Email is required", err.Details["email"])
}
