package listings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/go-marketplace-orders/internal/postgres"
)

const listingColumns = `ps.provider_set_id, ps.provider_id, ps.set_id, s.name, ps.price, ps.available_quantity,
	ps.is_active, ps.provider_visible, ps.admin_visible, ps.admin_status, ps.admin_notes, ps.created_at, ps.updated_at`

// Ledger is the authoritative price/stock source for checkout. Both methods
// must be called with the checkout transaction.
type Ledger struct{}

// GetForUpdate reads the listing and locks its row until the surrounding
// transaction ends.
func (Ledger) GetForUpdate(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (Listing, error) {
	row := tx.QueryRow(ctx, `SELECT `+listingColumns+`
		FROM provider_sets ps JOIN sets s ON s.set_id = ps.set_id
		WHERE ps.provider_set_id = $1
		FOR UPDATE OF ps`, id)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, fmt.Errorf("select listing for update: %w", err)
	}
	return l, nil
}

// Decrement takes qty units from an orderable listing in a single
// conditional statement and returns what is left. ErrInsufficientStock
// means no row qualified.
func (Ledger) Decrement(ctx context.Context, tx postgres.DBTX, id uuid.UUID, qty int) (int, error) {
	var remaining int
	err := tx.QueryRow(ctx, `
		UPDATE provider_sets
		SET available_quantity = available_quantity - $2, updated_at = now()
		WHERE provider_set_id = $1
		  AND available_quantity >= $2
		  AND is_active
		  AND admin_status = 'approved'
		RETURNING available_quantity`, id, qty).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrInsufficientStock
		}
		return 0, fmt.Errorf("decrement listing: %w", err)
	}
	return remaining, nil
}

func scanListing(row pgx.Row) (Listing, error) {
	var (
		l      Listing
		status string
	)
	if err := row.Scan(&l.ID, &l.ProviderID, &l.SetID, &l.SetName, &l.Price, &l.AvailableQuantity,
		&l.IsActive, &l.ProviderVisible, &l.AdminVisible, &status, &l.AdminNotes, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return Listing{}, err
	}
	s, err := ToApprovalStatus(status)
	if err != nil {
		return Listing{}, fmt.Errorf("ToApprovalStatus[%s]: %w", status, err)
	}
	l.AdminStatus = s
	return l, nil
}
