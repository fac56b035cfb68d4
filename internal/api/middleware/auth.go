// Package middleware holds the gin middleware of the HTTP API.
package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/social-graph/pkg/response"
)

// UserIDKey is where the authenticated caller's ID lives in the gin context.
const UserIDKey = "user_id"

// Tokens issues and verifies HS256 bearer tokens whose subject is the user ID.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) Issue(userID string) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) Parse(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// AuthRequired rejects requests without a valid "Bearer <token>" header.
func AuthRequired(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.Unauthorized(c, "authorization header required")
			return
		}
		userID, err := tokens.Parse(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// OptionalAuth sets the caller when a valid token is present and continues either way.
func OptionalAuth(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
			if userID, err := tokens.Parse(token); err == nil {
				c.Set(UserIDKey, userID)
			}
		}
		c.Next()
	}
}

// CallerID returns the authenticated user ID, or "" for anonymous requests.
func CallerID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
