package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleProvider   Role = "provider"
	RoleCustomer   Role = "customer"
	RoleProduction Role = "production"
)

var validRoles = map[Role]struct{}{
	RoleAdmin:      {},
	RoleProvider:   {},
	RoleCustomer:   {},
	RoleProduction: {},
}

func (r Role) Valid() bool {
	_, ok := validRoles[r]
	return ok
}

// Identity is the authenticated caller.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// Resolver maps a bearer credential to a caller identity.
type Resolver interface {
	Resolve(ctx context.Context, token string) (Identity, error)
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" || strings.Contains(token, " ") {
		return "", false
	}
	return token, true
}
