package listings

import (
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-marketplace-orders/internal/apperr"
	"github.com/ariefcatur/go-marketplace-orders/internal/policy"
)

func TestPatchValidate(t *testing.T) {
	tests := []struct {
		name      string
		patch     Patch
		wantError string
	}{
		{name: "empty patch: fail", patch: Patch{}, wantError: "no fields to update"},
		{name: "negative price: fail", patch: Patch{Price: lo.ToPtr(decimal.NewFromInt(-1))}, wantError: "price must be non-negative"},
		{name: "negative quantity: fail", patch: Patch{AvailableQuantity: lo.ToPtr(-3)}, wantError: "available_quantity must be non-negative"},
		{name: "unknown admin status: fail", patch: Patch{AdminStatus: lo.ToPtr(ApprovalStatus("maybe"))}, wantError: "invalid admin_status"},
		{name: "zero price and quantity: ok", patch: Patch{Price: lo.ToPtr(decimal.Zero), AvailableQuantity: lo.ToPtr(0)}},
		{name: "approve: ok", patch: Patch{AdminStatus: lo.ToPtr(StatusApproved)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPatchAssignments(t *testing.T) {
	p := Patch{
		Price:       lo.ToPtr(decimal.RequireFromString("12.50")),
		IsActive:    lo.ToPtr(false),
		AdminStatus: lo.ToPtr(StatusRejected),
	}

	clause, args := p.assignments(2)

	assert.Equal(t, "price = $2, is_active = $3, admin_status = $4", clause)
	require.Len(t, args, 3)
	assert.True(t, decimal.RequireFromString("12.5").Equal(args[0].(decimal.Decimal)))
	assert.Equal(t, false, args[1])
	assert.Equal(t, "rejected", args[2])
	assert.Equal(t, []string{policy.FieldPrice, policy.FieldIsActive, policy.FieldAdminStatus}, p.Fields())
}

func TestOrderable(t *testing.T) {
	assert.True(t, Listing{IsActive: true, AdminStatus: StatusApproved}.Orderable())
	assert.False(t, Listing{IsActive: false, AdminStatus: StatusApproved}.Orderable())
	assert.False(t, Listing{IsActive: true, AdminStatus: StatusPending}.Orderable())
}
