package listings

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-marketplace-orders/internal/apperr"
	"github.com/ariefcatur/go-marketplace-orders/internal/policy"
)

// Patch is a partial listing update; nil fields are left untouched.
type Patch struct {
	Price             *decimal.Decimal `json:"price"`
	AvailableQuantity *int             `json:"available_quantity"`
	IsActive          *bool            `json:"is_active"`
	ProviderVisible   *bool            `json:"provider_visible"`
	AdminVisible      *bool            `json:"admin_visible"`
	AdminStatus       *ApprovalStatus  `json:"admin_status"`
	AdminNotes        *string          `json:"admin_notes"`
}

// Fields lists the columns present in the patch.
func (p Patch) Fields() []string {
	var out []string
	if p.Price != nil {
		out = append(out, policy.FieldPrice)
	}
	if p.AvailableQuantity != nil {
		out = append(out, policy.FieldAvailableQuantity)
	}
	if p.IsActive != nil {
		out = append(out, policy.FieldIsActive)
	}
	if p.ProviderVisible != nil {
		out = append(out, policy.FieldProviderVisible)
	}
	if p.AdminVisible != nil {
		out = append(out, policy.FieldAdminVisible)
	}
	if p.AdminStatus != nil {
		out = append(out, policy.FieldAdminStatus)
	}
	if p.AdminNotes != nil {
		out = append(out, policy.FieldAdminNotes)
	}
	return out
}

func (p Patch) Validate() error {
	if len(p.Fields()) == 0 {
		return apperr.Validation("no fields to update")
	}
	if p.Price != nil && p.Price.IsNegative() {
		return apperr.Validation("price must be non-negative")
	}
	if p.AvailableQuantity != nil && *p.AvailableQuantity < 0 {
		return apperr.Validation("available_quantity must be non-negative")
	}
	if p.AdminStatus != nil {
		if _, err := ToApprovalStatus(string(*p.AdminStatus)); err != nil {
			return apperr.Validation("invalid admin_status")
		}
	}
	return nil
}

// assignments renders the SET clause; placeholders start at $start.
func (p Patch) assignments(start int) (string, []any) {
	var (
		clause string
		args   []any
	)
	add := func(col string, v any) {
		if clause != "" {
			clause += ", "
		}
		clause += fmt.Sprintf("%s = $%d", col, start+len(args))
		args = append(args, v)
	}
	if p.Price != nil {
		add("price", *p.Price)
	}
	if p.AvailableQuantity != nil {
		add("available_quantity", *p.AvailableQuantity)
	}
	if p.IsActive != nil {
		add("is_active", *p.IsActive)
	}
	if p.ProviderVisible != nil {
		add("provider_visible", *p.ProviderVisible)
	}
	if p.AdminVisible != nil {
		add("admin_visible", *p.AdminVisible)
	}
	if p.AdminStatus != nil {
		add("admin_status", string(*p.AdminStatus))
	}
	if p.AdminNotes != nil {
		add("admin_notes", *p.AdminNotes)
	}
	return clause, args
}
