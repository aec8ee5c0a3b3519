package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

func (t *Tokens) Issue(actor model.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TenantID: actor.TenantID,
		UserID:   actor.UserID,
		Role:     actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies tokenString and returns the actor it names. The tenant
// override for super admins is applied later by the middleware.
func (t *Tokens) Parse(tokenString string) (model.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return model.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return model.Actor{}, ErrInvalidToken
	}
	if claims.TenantID == "" && claims.Role != model.RoleSuperAdmin {
		return model.Actor{}, fmt.Errorf("%w: no tenant", ErrInvalidToken)
	}

	return model.Actor{
		TenantID:   claims.TenantID,
		UserID:     claims.UserID,
		Role:       claims.Role,
		SuperAdmin: claims.Role == model.RoleSuperAdmin,
	}, nil
}
