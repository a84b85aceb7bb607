package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ariefcatur/go-marketplace-orders/internal/apperr"
)

type claims struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// JWTResolver verifies HS256 tokens issued by the account service.
type JWTResolver struct {
	secret []byte
	now    func() time.Time
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret), now: time.Now}
}

func (r *JWTResolver) Resolve(_ context.Context, token string) (Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return r.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(r.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, &apperr.Error{Kind: apperr.KindAuthentication, Message: "invalid or expired token", Err: err}
	}

	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return Identity{}, &apperr.Error{Kind: apperr.KindAuthentication, Message: "invalid or expired token", Err: err}
	}
	if !c.Role.Valid() {
		return Identity{}, apperr.Unauthenticated("invalid or expired token")
	}

	return Identity{UserID: id, Role: c.Role}, nil
}

// Issue signs a token for id. Used by tooling and tests; production tokens
// come from the account service with the same secret.
func (r *JWTResolver) Issue(id Identity, ttl time.Duration) (string, error) {
	if id.UserID == uuid.Nil {
		return "", errors.New("user id is empty")
	}
	now := r.now()
	c := claims{
		UserID: id.UserID.String(),
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("jwt.SignedString: %w", err)
	}
	return s, nil
}
