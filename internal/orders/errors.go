package orders

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-marketplace-orders/internal/apperr"
)

type Reason string

const (
	ReasonNotFound          Reason = "not_found"
	ReasonInactive          Reason = "inactive"
	ReasonNotApproved       Reason = "not_approved"
	ReasonInsufficientStock Reason = "insufficient_stock"
)

// NotAvailableError rejects a checkout because one listing cannot be sold.
type NotAvailableError struct {
	ListingID uuid.UUID
	Reason    Reason
	Requested int
	Available int
}

func (e *NotAvailableError) Error() string {
	switch e.Reason {
	case ReasonInsufficientStock:
		return fmt.Sprintf("insufficient stock for provider set %s: requested %d, available %d",
			e.ListingID, e.Requested, e.Available)
	case ReasonNotFound:
		return fmt.Sprintf("provider set %s not found", e.ListingID)
	default:
		return fmt.Sprintf("provider set %s is not available", e.ListingID)
	}
}

func (e *NotAvailableError) ErrorKind() apperr.Kind { return apperr.KindNotAvailable }

// ProviderMismatchError rejects a checkout whose cart spans providers.
type ProviderMismatchError struct {
	ListingID uuid.UUID
	Expected  uuid.UUID
	Actual    uuid.UUID
}

func (e *ProviderMismatchError) Error() string {
	return fmt.Sprintf("all items must belong to the same provider: provider set %s belongs to %s, not %s",
		e.ListingID, e.Actual, e.Expected)
}

func (e *ProviderMismatchError) ErrorKind() apperr.Kind { return apperr.KindProviderMismatch }

var (
	ErrNotFound        = apperr.NotFound("order")
	ErrNumberExhausted = apperr.Conflict("could not allocate a unique order number")
)
