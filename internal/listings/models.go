package listings

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-marketplace-orders/internal/apperr"
)

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

var validApprovalStatuses = map[ApprovalStatus]struct{}{
	StatusPending:  {},
	StatusApproved: {},
	StatusRejected: {},
}

func ToApprovalStatus(s string) (ApprovalStatus, error) {
	status := ApprovalStatus(s)
	if _, ok := validApprovalStatuses[status]; ok {
		return status, nil
	}
	return "", errors.New("invalid approval status")
}

// Listing is a provider's priced, quantity-limited offering of a catalog set
// (a "provider set").
type Listing struct {
	ID                uuid.UUID       `json:"provider_set_id"`
	ProviderID        uuid.UUID       `json:"provider_id"`
	SetID             uuid.UUID       `json:"set_id"`
	SetName           string          `json:"set_name,omitempty"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"available_quantity"`
	IsActive          bool            `json:"is_active"`
	ProviderVisible   bool            `json:"provider_visible"`
	AdminVisible      bool            `json:"admin_visible"`
	AdminStatus       ApprovalStatus  `json:"admin_status"`
	AdminNotes        *string         `json:"admin_notes"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Orderable reports whether stock may be taken from the listing.
func (l Listing) Orderable() bool {
	return l.IsActive && l.AdminStatus == StatusApproved
}

var (
	ErrNotFound          = apperr.NotFound("provider set")
	ErrInsufficientStock = errors.New("insufficient stock")
)
