package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredential = errors.New("credential must look like user:bcrypt-hash")

// AuthManager guards the whole site with a single Basic auth credential.
type AuthManager struct {
	Username     string
	PasswordHash string
	Realm        string
}

// NewAuthManager parses a "user:bcrypt-hash" credential.
func NewAuthManager(credential string) (*AuthManager, error) {
	user, hash, ok := strings.Cut(credential, ":")
	if !ok || user == "" || hash == "" {
		return nil, ErrInvalidCredential
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	return &AuthManager{
		Username:     user,
		PasswordHash: hash,
		Realm:        "livedev",
	}, nil
}

// HashPassword создает хэш пароля
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword проверяет пароль
func (am *AuthManager) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(am.PasswordHash), []byte(password))
	return err == nil
}

// Authenticate аутентифицирует пользователя
func (am *AuthManager) Authenticate(username, password string) bool {
	return username == am.Username && am.CheckPassword(password)
}

// Middleware создает middleware для аутентификации
func (am *AuthManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || !am.Authenticate(username, password) {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Basic realm=%q, charset="UTF-8"`, am.Realm))
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
