package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-marketplace-orders/internal/apperr"
	"github.com/ariefcatur/go-marketplace-orders/internal/auth"
	"github.com/ariefcatur/go-marketplace-orders/internal/logging"
	"github.com/ariefcatur/go-marketplace-orders/internal/policy"
	"github.com/ariefcatur/go-marketplace-orders/internal/postgres"
)

// Patch changes an order's status and/or printed flag.
type Patch struct {
	Status  *Status `json:"status"`
	Printed *bool   `json:"printed"`
}

func (p Patch) Validate() error {
	if p.Status == nil && p.Printed == nil {
		return apperr.Validation("no fields to update")
	}
	if p.Status != nil {
		if _, err := ToStatus(string(*p.Status)); err != nil {
			return apperr.Validation("invalid status")
		}
	}
	return nil
}

type Updater struct {
	DB       postgres.Beginner
	Notifier Notifier
}

func (u *Updater) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, patch Patch) (Order, error) {
	if err := patch.Validate(); err != nil {
		return Order{}, err
	}

	updated, err := postgres.WithTxValue(ctx, u.DB, func(tx pgx.Tx) (Order, error) {
		var owner policy.Ownership
		err := tx.QueryRow(ctx, `SELECT customer_id, provider_id FROM orders WHERE order_id = $1 FOR UPDATE`, id).
			Scan(&owner.CustomerID, &owner.ProviderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Order{}, ErrNotFound
			}
			return Order{}, fmt.Errorf("select order for update: %w", err)
		}

		if caller.Role == auth.RoleCustomer && !policy.Allow(policy.OrderRead, caller, owner) {
			return Order{}, ErrNotFound
		}
		if patch.Status != nil && !policy.Allow(policy.OrderUpdateStatus, caller, owner) {
			return Order{}, apperr.Forbidden("you are not allowed to change this order's status")
		}
		if patch.Printed != nil && !policy.Allow(policy.OrderUpdatePrinted, caller, owner) {
			return Order{}, apperr.Forbidden("you are not allowed to change this order's printed flag")
		}

		set, args := patch.assignments(2)
		if _, err := tx.Exec(ctx, `UPDATE orders SET `+set+`, updated_at = now() WHERE order_id = $1`,
			append([]any{id}, args...)...); err != nil {
			return Order{}, fmt.Errorf("tx.Exec update order: %w", err)
		}
		return getOrder(ctx, tx, id)
	})
	if err != nil {
		return Order{}, err
	}

	logging.FromContext(ctx).Info("order_updated",
		zap.String("order_id", id.String()),
		zap.String("status", string(updated.Status)),
		zap.Bool("printed", updated.Printed),
	)
	if u.Notifier != nil {
		u.Notifier.OrderUpdated(ctx, updated, caller)
	}
	return updated, nil
}

func (p Patch) assignments(start int) (string, []any) {
	var (
		cols []string
		args []any
	)
	if p.Status != nil {
		args = append(args, string(*p.Status))
		cols = append(cols, fmt.Sprintf("status = $%d", start+len(args)-1))
	}
	if p.Printed != nil {
		args = append(args, *p.Printed)
		cols = append(cols, fmt.Sprintf("printed = $%d", start+len(args)-1))
	}
	return strings.Join(cols, ", "), args
}
