package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(
	t *testing.T,
	router http.Handler,
	method, target, token string,
	body interface{},
) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// registerUser registers a user through the API and returns the auth
// response.
func registerUser(t *testing.T, env *testEnv, email, password string) AuthResponse {
	t.Helper()

	rec := doJSON(t, env.router, http.MethodPost, "/register", "", RegisterRequest{
		Email:    email,
		Password: password,
	})
	require.Equal(t, http.StatusOK, rec.Code, "register failed: %s", rec.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.Positive(t, resp.UserID)
	return resp
}

func TestRegister(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	resp := registerUser(t, env, "alice@example.com", "pw123456")

	// The returned token authenticates as the new user.
	claims, err := env.tokens.Verify(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)

	// The stored credential is a hash, never the raw password.
	user, err := env.store.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123456", user.HashedPassword)
	assert.NoError(t, env.hasher.Compare(user.HashedPassword, "pw123456"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	registerUser(t, env, "alice@example.com", "pw123456")

	rec := doJSON(t, env.router, http.MethodPost, "/register", "", RegisterRequest{
		Email:    "alice@example.com",
		Password: "different-pw",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User already exists", decodeError(t, rec).Error)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	tests := []struct {
		name       string
		body       RegisterRequest
		wantFields []string
	}{
		{
			name:       "invalid email",
			body:       RegisterRequest{Email: "not-an-email", Password: "pw123456"},
			wantFields: []string{"email"},
		},
		{
			name:       "short password",
			body:       RegisterRequest{Email: "bob@example.com", Password: "pw"},
			wantFields: []string{"password"},
		},
		{
			name:       "both invalid are enumerated together",
			body:       RegisterRequest{Email: "not-an-email", Password: "pw"},
			wantFields: []string{"email", "password"},
		},
		{
			name:       "missing everything",
			body:       RegisterRequest{},
			wantFields: []string{"email", "password"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := doJSON(t, env.router, http.MethodPost, "/register", "", tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, "Validation failed", resp.Error)

			got := make([]string, 0, len(resp.Fields))
			for _, f := range resp.Fields {
				got = append(got, f.Field)
				assert.NotEmpty(t, f.Message)
			}
			assert.ElementsMatch(t, tc.wantFields, got)
		})
	}
}

func TestRegisterMalformedBody(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	for _, body := range []string{"", "{", `{"email": 5}`} {
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid JSON", decodeError(t, rec).Error)
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	registered := registerUser(t, env, "alice@example.com", "pw123456")

	rec := doJSON(t, env.router, http.MethodPost, "/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "pw123456",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, registered.UserID, resp.UserID)

	claims, err := env.tokens.Verify(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, claims.UserID)
}

func TestLoginInvalidCredentials(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	registerUser(t, env, "alice@example.com", "pw123456")

	tests := []struct {
		name string
		body LoginRequest
	}{
		{
			name: "wrong password",
			body: LoginRequest{Email: "alice@example.com", Password: "wrong-pw"},
		},
		{
			name: "unknown email",
			body: LoginRequest{Email: "nobody@example.com", Password: "pw123456"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := doJSON(t, env.router, http.MethodPost, "/login", "", tc.body)

			// Unknown email and wrong password are indistinguishable.
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Invalid credentials", decodeError(t, rec).Error)
		})
	}
}
