package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTokenValidator struct {
	valid map[string]string
}

func (v *testTokenValidator) ValidateToken(tokenString string) (PrincipalGetter, error) {
	subject, ok := v.valid[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return testClaims(subject), nil
}

type testClaims string

func (c testClaims) Principal() string {
	return string(c)
}

func newValidator() *testTokenValidator {
	return &testTokenValidator{valid: map[string]string{"good-token": "ops@store"}}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	var principal string
	handler := AuthMiddleware(newValidator())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		principal, err = GetPrincipal(r)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))

	for _, header := range []string{"Bearer good-token", "bearer good-token", "BEARER   good-token"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, header)
		assert.Equal(t, "ops@store", principal)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic good-token"},
		{name: "no token", header: "Bearer"},
		{name: "extra parts", header: "Bearer good-token extra"},
		{name: "unknown token", header: "Bearer bad-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := AuthMiddleware(newValidator())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, called)
			assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestGetPrincipal_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetPrincipal(req)
	assert.Error(t, err)

	req = req.WithContext(context.WithValue(req.Context(), PrincipalKey(), "svc"))
	principal, err := GetPrincipal(req)
	require.NoError(t, err)
	assert.Equal(t, "svc", principal)
}
