package listings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-marketplace-orders/internal/apperr"
	"github.com/ariefcatur/go-marketplace-orders/internal/auth"
	"github.com/ariefcatur/go-marketplace-orders/internal/logging"
	"github.com/ariefcatur/go-marketplace-orders/internal/policy"
	"github.com/ariefcatur/go-marketplace-orders/internal/postgres"
)

type CreateInput struct {
	ProviderID        uuid.UUID       `json:"provider_id"`
	SetID             uuid.UUID       `json:"set_id"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"available_quantity"`
	IsActive          *bool           `json:"is_active"`
	ProviderVisible   *bool           `json:"provider_visible"`
}

func (in CreateInput) Validate() error {
	if in.SetID == uuid.Nil {
		return apperr.Validation("set_id and price are required")
	}
	if in.Price.IsNegative() {
		return apperr.Validation("price must be non-negative")
	}
	if in.AvailableQuantity < 0 {
		return apperr.Validation("available_quantity must be non-negative")
	}
	return nil
}

// Service handles provider listing reads and edits. Edits take the same row
// lock as checkout so a quantity change never overwrites a concurrent sale.
type Service struct {
	DB     *pgxpool.Pool
	Ledger Ledger
}

func (s *Service) Create(ctx context.Context, caller auth.Identity, in CreateInput) (Listing, error) {
	if !policy.Allow(policy.ListingCreate, caller, policy.Ownership{}) {
		return Listing{}, apperr.Forbidden("access denied, required role: provider or admin")
	}
	if err := in.Validate(); err != nil {
		return Listing{}, err
	}

	providerID := caller.UserID
	if caller.Role == auth.RoleAdmin && in.ProviderID != uuid.Nil {
		providerID = in.ProviderID
	}
	active, visible := true, true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	if in.ProviderVisible != nil {
		visible = *in.ProviderVisible
	}

	var setExists bool
	if err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sets WHERE set_id=$1)`, in.SetID).Scan(&setExists); err != nil {
		return Listing{}, fmt.Errorf("check set: %w", err)
	}
	if !setExists {
		return Listing{}, apperr.Validation("set not found")
	}

	var id uuid.UUID
	err := s.DB.QueryRow(ctx, `
		INSERT INTO provider_sets(provider_id, set_id, price, available_quantity, is_active, provider_visible, admin_status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING provider_set_id`,
		providerID, in.SetID, in.Price, in.AvailableQuantity, active, visible,
	).Scan(&id)
	if err != nil {
		if postgres.IsUniqueViolation(err, "provider_sets_provider_set_key") {
			return Listing{}, apperr.Conflict("provider set already exists for this set")
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Listing{}, apperr.Validation("provider not found")
		}
		return Listing{}, fmt.Errorf("insert provider set: %w", err)
	}

	logging.FromContext(ctx).Info("provider_set_created",
		zap.String("provider_set_id", id.String()),
		zap.String("provider_id", providerID.String()),
	)
	return s.get(ctx, s.DB, id)
}

// Get returns the listing when the caller is an admin or its provider;
// anyone else gets not found.
func (s *Service) Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (Listing, error) {
	l, err := s.get(ctx, s.DB, id)
	if err != nil {
		return Listing{}, err
	}
	if !policy.Allow(policy.ListingRead, caller, policy.Ownership{ProviderID: l.ProviderID}) {
		return Listing{}, ErrNotFound
	}
	return l, nil
}

func (s *Service) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, patch Patch) (Listing, error) {
	if err := patch.Validate(); err != nil {
		return Listing{}, err
	}
	if bad := policy.Disallowed(patch.Fields(), policy.MutableListingFields(caller.Role)); len(bad) > 0 {
		return Listing{}, &apperr.Error{
			Kind:    apperr.KindAuthorization,
			Message: "you may not update these fields",
			Details: map[string][]string{"fields": bad},
		}
	}

	updated, err := postgres.WithTxValue(ctx, s.DB, func(tx pgx.Tx) (Listing, error) {
		current, err := s.Ledger.GetForUpdate(ctx, tx, id)
		if err != nil {
			return Listing{}, err
		}
		if !policy.Allow(policy.ListingUpdate, caller, policy.Ownership{ProviderID: current.ProviderID}) {
			return Listing{}, apperr.Forbidden("you can only update your own provider sets")
		}

		set, args := patch.assignments(2)
		if _, err := tx.Exec(ctx,
			`UPDATE provider_sets SET `+set+`, updated_at = now() WHERE provider_set_id = $1`,
			append([]any{id}, args...)...); err != nil {
			return Listing{}, fmt.Errorf("update provider set: %w", err)
		}
		return s.get(ctx, tx, id)
	})
	if err != nil {
		return Listing{}, err
	}

	logging.FromContext(ctx).Info("provider_set_updated",
		zap.String("provider_set_id", id.String()),
		zap.Strings("fields", patch.Fields()),
	)
	return updated, nil
}

func (s *Service) get(ctx context.Context, db postgres.DBTX, id uuid.UUID) (Listing, error) {
	l, err := scanListing(db.QueryRow(ctx, `SELECT `+listingColumns+`
		FROM provider_sets ps JOIN sets s ON s.set_id = ps.set_id
		WHERE ps.provider_set_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, fmt.Errorf("select listing: %w", err)
	}
	return l, nil
}
