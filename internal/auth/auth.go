// Package auth provides JWT bearer-token issuance and verification,
// bcrypt password hashing, and the HTTP middleware gating protected
// routes. Tokens are stateless: nothing is persisted server-side and
// expiry forces re-login.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobtrackhq/jobtrack/internal/models"
)

// Claims represents the JWT claims used by the system.
// It embeds standard JWT claims and adds the user identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key holding the authenticated user's id.
const UserIDKey ContextKey = "userID"

// UserEmailKey is the context key holding the authenticated user's email.
const UserEmailKey ContextKey = "userEmail"

// The 401 bodies are deliberately uninformative, and the same for every
// verification failure, to avoid leaking whether a token was malformed,
// badly signed or merely expired.
const (
	msgMissingToken = "Missing or invalid token"
	msgInvalidToken = "Invalid or expired token"
)

// Auth issues and verifies bearer tokens and hashes passwords.
type Auth struct {
	signingSecretKey []byte
	tokenTTL         time.Duration
}

// New creates an Auth with the given HMAC signing secret and token
// lifetime.
func New(signingSecretKey []byte, tokenTTL time.Duration) *Auth {
	return &Auth{
		signingSecretKey: signingSecretKey,
		tokenTTL:         tokenTTL,
	}
}

// BuildJWTString issues a signed token embedding the user id and email,
// expiring tokenTTL from now.
func (a *Auth) BuildJWTString(userID, email string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.tokenTTL)),
		},
		UserID: userID,
		Email:  email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(a.signingSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetClaimsFromToken verifies the signature and expiry of a token and
// returns its claims. Every failure mode collapses into
// models.ErrInvalidToken.
func (a *Auth) GetClaimsFromToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.signingSecretKey, nil
		},
	)
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, models.ErrInvalidToken
	}

	return claims, nil
}

// HashPassword one-way hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func CheckPassword(passwordHash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) == nil
}

func writeUnauthorized(response http.ResponseWriter, message string) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusUnauthorized)
	_, _ = response.Write([]byte(`{"error":"` + message + `"}`))
}

// Authenticate is an HTTP middleware that authenticates incoming
// requests using the `Authorization: Bearer <token>` header and stores
// the user id and email in the request context.
func (a *Auth) Authenticate(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		header := request.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeUnauthorized(response, msgMissingToken)
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims, err := a.GetClaimsFromToken(tokenString)
		if err != nil {
			writeUnauthorized(response, msgInvalidToken)
			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
		requestWithCtx := request.WithContext(ctx)

		h.ServeHTTP(response, requestWithCtx)
	}

	return http.HandlerFunc(middleware)
}

// UserIDFromContext extracts the authenticated user id stored by the
// Authenticate middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)

	return userID, ok && userID != ""
}
