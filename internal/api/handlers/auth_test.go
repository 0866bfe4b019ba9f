package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/clipsum/backend/internal/api/dto"
	"github.com/clipsum/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterEndpoint(t *testing.T) {
	a := setupAPI(t)

	req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Email:     "signup@example.com",
		Password:  "Str0ng!Pass",
		FirstName: "Sign",
		LastName:  "Up",
	})
	rr, env := a.do(t, req)

	testutil.AssertStatus(t, rr, http.StatusCreated)
	assert.True(t, env.Success)
	assert.Contains(t, env.Message, "Registration successful")
	require.Len(t, a.Mailer.Sent, 1)
}

func TestRegisterEndpoint_ValidationErrors(t *testing.T) {
	a := setupAPI(t)

	req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Email:    "not-an-email",
		Password: "weak",
	})
	rr, env := a.do(t, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "email")
	assert.Contains(t, env.Error.Details, "password")
}

func TestRegisterEndpoint_DuplicateVerifiedEmail(t *testing.T) {
	a := setupAPI(t)

	req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Email:    a.User.Email,
		Password: "Str0ng!Pass",
	})
	rr, env := a.do(t, req)

	testutil.AssertStatus(t, rr, http.StatusConflict)
	assert.Equal(t, "EMAIL_ALREADY_REGISTERED", env.Error.Code)
}

func TestLoginEndpoint(t *testing.T) {
	a := setupAPI(t)

	req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{
		Email:    a.User.Email,
		Password: testutil.TestPassword,
	})
	rr, env := a.do(t, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, a.User.Email, resp.User.Email)
}

func TestLoginEndpoint_BadCredentials(t *testing.T) {
	a := setupAPI(t)

	req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{
		Email:    a.User.Email,
		Password: "Wr0ng!Pass",
	})
	rr, env := a.do(t, req)

	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

// Full signup path: register, fail to log in while unverified, verify with
// the mailed code, then log in.
func TestSignupFlow(t *testing.T) {
	a := setupAPI(t)

	req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Email:    "flow@example.com",
		Password: "Str0ng!Pass",
	})
	rr, _ := a.do(t, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)

	req = testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{
		Email:    "flow@example.com",
		Password: "Str0ng!Pass",
	})
	rr, env := a.do(t, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	assert.Equal(t, "EMAIL_NOT_VERIFIED", env.Error.Code)

	req = testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/verify-email", dto.VerifyEmailRequest{
		Email: "flow@example.com",
		OTP:   a.Mailer.LastCode(t),
	})
	rr, env = a.do(t, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var verified dto.UserDTO
	require.NoError(t, json.Unmarshal(env.Data, &verified))
	assert.True(t, verified.IsVerified)

	req = testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{
		Email:    "flow@example.com",
		Password: "Str0ng!Pass",
	})
	rr, env = a.do(t, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestVerifyEmailEndpoint_BadCode(t *testing.T) {
	a := setupAPI(t)

	req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/verify-email", dto.VerifyEmailRequest{
		Email: a.User.Email,
		OTP:   "000000",
	})
	rr, env := a.do(t, req)

	testutil.AssertStatus(t, rr, http.StatusNotFound)
	assert.Equal(t, "OTP_INVALID", env.Error.Code)
}

func TestPasswordResetEndpoints(t *testing.T) {
	a := setupAPI(t)

	req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/request-password-reset",
		dto.RequestPasswordResetRequest{Email: a.User.Email})
	rr, _ := a.do(t, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	req = testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/reset-password", dto.ResetPasswordRequest{
		Email:       a.User.Email,
		OTP:         a.Mailer.LastCode(t),
		NewPassword: "N3w!Password",
	})
	rr, _ = a.do(t, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	req = testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{
		Email:    a.User.Email,
		Password: "N3w!Password",
	})
	rr, _ = a.do(t, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestChangePasswordEndpoint(t *testing.T) {
	a := setupAPI(t)

	req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/auth/change-password", dto.ChangePasswordRequest{
		CurrentPassword: testutil.TestPassword,
		NewPassword:     "N3w!Password",
	}, a.Token)
	rr, _ := a.do(t, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	// Old password is dead
	req = testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{
		Email:    a.User.Email,
		Password: testutil.TestPassword,
	})
	rr, env := a.do(t, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

func TestChangePasswordEndpoint_RequiresAuth(t *testing.T) {
	a := setupAPI(t)

	req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/change-password", dto.ChangePasswordRequest{
		CurrentPassword: testutil.TestPassword,
		NewPassword:     "N3w!Password",
	})
	rr, env := a.do(t, req)

	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)
}
