package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/npezzotti/go-opschat/internal/chat"
	"github.com/npezzotti/go-opschat/internal/types"
)

const (
	tokenCookieKey = "token"
	bearerPrefix   = "Bearer "

	userIdClaim = "user-id"
	roleClaim   = "role"
	expClaim    = "exp"
)

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, id chat.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (chat.Identity, bool) {
	id, ok := ctx.Value(identityKey).(chat.Identity)
	return id, ok
}

// NewToken signs a token for an operator. Tokens are normally issued by the
// operator directory; this is used by the opschat-token tool and in tests.
func NewToken(signingKey []byte, operatorId int, role types.Role, exp time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userIdClaim: operatorId,
		roleClaim:   string(role),
		expClaim:    time.Now().Add(exp).Unix(),
	})

	return token.SignedString(signingKey)
}

// tokenFromRequest reads the token from the "token" cookie, falling back to
// an Authorization bearer header.
func tokenFromRequest(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(tokenCookieKey); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, bearerPrefix) {
		if token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)); token != "" {
			return token, true
		}
	}

	return "", false
}

func (s *OpsChatApp) verifyToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return token, nil
}

func (s *OpsChatApp) extractIdentityFromToken(tokenString string) (chat.Identity, error) {
	token, err := s.verifyToken(tokenString)
	if err != nil {
		return chat.Identity{}, fmt.Errorf("verify token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return chat.Identity{}, fmt.Errorf("invalid token claims")
	}

	userId, ok := claims[userIdClaim].(float64)
	if !ok || userId <= 0 {
		return chat.Identity{}, fmt.Errorf("invalid user id claim")
	}

	roleName, ok := claims[roleClaim].(string)
	if !ok {
		return chat.Identity{}, fmt.Errorf("missing role claim")
	}

	role, err := types.ParseRole(roleName)
	if err != nil {
		return chat.Identity{}, fmt.Errorf("role claim: %w", err)
	}

	return chat.Identity{OperatorId: int(userId), Role: role}, nil
}
