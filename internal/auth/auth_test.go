package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newManager(t *testing.T) *AuthManager {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	am, err := NewAuthManager("dev:" + string(hash))
	require.NoError(t, err)
	return am
}

func TestNewAuthManagerRejectsBadCredentials(t *testing.T) {
	for _, cred := range []string{"", "dev", "dev:", ":hash", "dev:not-a-bcrypt-hash"} {
		_, err := NewAuthManager(cred)
		assert.ErrorIs(t, err, ErrInvalidCredential, cred)
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)

	am, err := NewAuthManager("u:" + hash)
	require.NoError(t, err)
	assert.True(t, am.Authenticate("u", "pw"))
	assert.False(t, am.Authenticate("u", "nope"))
	assert.False(t, am.Authenticate("other", "pw"))
}

func TestMiddleware(t *testing.T) {
	am := newManager(t)
	handler := am.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		name       string
		user, pass string
		setAuth    bool
		want       int
	}{
		{"no header", "", "", false, http.StatusUnauthorized},
		{"wrong password", "dev", "wrong", true, http.StatusUnauthorized},
		{"wrong user", "root", "secret", true, http.StatusUnauthorized},
		{"valid", "dev", "secret", true, http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), `Basic realm="livedev"`)
			}
		})
	}
}
