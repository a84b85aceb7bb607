package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-marketplace-orders/internal/auth"
	"github.com/ariefcatur/go-marketplace-orders/internal/pagination"
	"github.com/ariefcatur/go-marketplace-orders/internal/policy"
)

// Store is the read side used by QueryService.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (Order, error)
	List(ctx context.Context, f Filter, page pagination.Page) ([]Order, int, error)
}

// QueryService reads orders on behalf of a caller. Customers see their own
// orders, providers the orders placed with them, admin and production all.
type QueryService struct {
	Store Store
}

// Get returns ErrNotFound both for missing orders and for orders outside
// the caller's boundary.
func (s *QueryService) Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (Order, error) {
	o, err := s.Store.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !policy.Allow(policy.OrderRead, caller, policy.Ownership{CustomerID: o.CustomerID, ProviderID: o.ProviderID}) {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *QueryService) List(ctx context.Context, caller auth.Identity, f Filter, page pagination.Page) ([]Order, pagination.Meta, error) {
	out, total, err := s.Store.List(ctx, Scope(caller, f), page)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return out, pagination.NewMeta(page, total), nil
}

// Scope narrows f to the rows caller may see. Only admins keep the
// customer/provider filters they asked for.
func Scope(caller auth.Identity, f Filter) Filter {
	scoped := Filter{Status: f.Status, OrderNumber: f.OrderNumber}
	switch caller.Role {
	case auth.RoleAdmin:
		scoped.CustomerID, scoped.ProviderID = f.CustomerID, f.ProviderID
	case auth.RoleCustomer:
		id := caller.UserID
		scoped.CustomerID = &id
	case auth.RoleProvider:
		id := caller.UserID
		scoped.ProviderID = &id
	case auth.RoleProduction:
	default:
		// unknown roles match nothing
		none := uuid.Nil
		scoped.CustomerID = &none
	}
	return scoped
}
