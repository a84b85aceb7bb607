package orders

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-marketplace-orders/internal/apperr"
	"github.com/ariefcatur/go-marketplace-orders/internal/auth"
	"github.com/ariefcatur/go-marketplace-orders/internal/listings"
)

func validAddress() *ShippingAddress {
	return &ShippingAddress{Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}
}

func TestCheckoutRequestValidate(t *testing.T) {
	listing := uuid.New()
	tests := []struct {
		name      string
		req       CheckoutRequest
		wantError string
	}{
		{
			name: "ok",
			req:  CheckoutRequest{ProviderID: uuid.New(), Items: []CartItem{{ListingID: listing, Quantity: 1}}, ShippingAddress: validAddress()},
		},
		{
			name:      "empty cart",
			req:       CheckoutRequest{ProviderID: uuid.New(), ShippingAddress: validAddress()},
			wantError: "provider_id and items array are required",
		},
		{
			name:      "missing provider",
			req:       CheckoutRequest{Items: []CartItem{{ListingID: listing, Quantity: 1}}, ShippingAddress: validAddress()},
			wantError: "provider_id and items array are required",
		},
		{
			name:      "zero quantity",
			req:       CheckoutRequest{ProviderID: uuid.New(), Items: []CartItem{{ListingID: listing, Quantity: 0}}, ShippingAddress: validAddress()},
			wantError: "each item must have provider_set_id and quantity >= 1",
		},
		{
			name:      "missing listing id",
			req:       CheckoutRequest{ProviderID: uuid.New(), Items: []CartItem{{Quantity: 2}}, ShippingAddress: validAddress()},
			wantError: "each item must have provider_set_id and quantity >= 1",
		},
		{
			name:      "missing address",
			req:       CheckoutRequest{ProviderID: uuid.New(), Items: []CartItem{{ListingID: listing, Quantity: 1}}},
			wantError: "shipping_address is required",
		},
		{
			name: "incomplete address",
			req: CheckoutRequest{ProviderID: uuid.New(), Items: []CartItem{{ListingID: listing, Quantity: 1}},
				ShippingAddress: &ShippingAddress{Line1: "1 Main St", Country: "US"}},
			wantError: "shipping_address is incomplete",
		},
		{
			name: "bad country",
			req: CheckoutRequest{ProviderID: uuid.New(), Items: []CartItem{{ListingID: listing, Quantity: 1}},
				ShippingAddress: &ShippingAddress{Line1: "1 Main St", City: "X", PostalCode: "1", Country: "Narnia"}},
			wantError: "shipping_address.country must be an ISO 3166 country code",
		},
		{
			name: "too many items",
			req: CheckoutRequest{ProviderID: uuid.New(), ShippingAddress: validAddress(),
				Items: lo.Times(MaxCartItems+1, func(int) CartItem { return CartItem{ListingID: uuid.New(), Quantity: 1} })},
			wantError: "too many items in cart",
		},
		{
			name: "quantity above integer range",
			req: CheckoutRequest{ProviderID: uuid.New(), ShippingAddress: validAddress(),
				Items: []CartItem{{ListingID: listing, Quantity: math.MaxInt}}},
			wantError: "quantity must not exceed 2147483647",
		},
		{
			name: "repeated lines overflow once merged",
			req: CheckoutRequest{ProviderID: uuid.New(), ShippingAddress: validAddress(),
				Items: []CartItem{{ListingID: listing, Quantity: MaxItemQuantity}, {ListingID: listing, Quantity: MaxItemQuantity}}},
			wantError: "total quantity for one provider set must not exceed 2147483647",
		},
		{
			name: "repeated lines at the limit",
			req: CheckoutRequest{ProviderID: uuid.New(), ShippingAddress: validAddress(),
				Items: []CartItem{{ListingID: listing, Quantity: MaxItemQuantity - 1}, {ListingID: listing, Quantity: 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestMergeItemsAndLockOrder(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	c := uuid.MustParse("00000000-0000-0000-0000-00000000000c")

	merged := mergeItems([]CartItem{{c, 1}, {a, 2}, {c, 3}, {b, 1}})

	want := []CartItem{{c, 4}, {a, 2}, {b, 1}}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Errorf("mergeItems mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{1, 2, 0}, lockOrder(merged))
}

func TestScope(t *testing.T) {
	customer := auth.Identity{UserID: uuid.New(), Role: auth.RoleCustomer}
	provider := auth.Identity{UserID: uuid.New(), Role: auth.RoleProvider}
	admin := auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin}
	production := auth.Identity{UserID: uuid.New(), Role: auth.RoleProduction}

	other := uuid.New()
	status := StatusShipped
	asked := Filter{CustomerID: &other, ProviderID: &other, Status: &status}

	got := Scope(customer, asked)
	assert.Equal(t, customer.UserID, lo.FromPtr(got.CustomerID))
	assert.Nil(t, got.ProviderID)
	assert.Equal(t, &status, got.Status)

	got = Scope(provider, asked)
	assert.Nil(t, got.CustomerID)
	assert.Equal(t, provider.UserID, lo.FromPtr(got.ProviderID))

	got = Scope(admin, asked)
	assert.Equal(t, asked, got)

	got = Scope(production, asked)
	assert.Equal(t, Filter{Status: &status}, got)

	got = Scope(auth.Identity{UserID: uuid.New(), Role: "ghost"}, Filter{})
	assert.Equal(t, uuid.Nil, lo.FromPtr(got.CustomerID))
}

func TestFilterWhere(t *testing.T) {
	id := uuid.New()
	where, args := Filter{ProviderID: &id, OrderNumber: lo.ToPtr("MS-1")}.where()
	assert.Equal(t, " WHERE o.provider_id = $1 AND o.order_number = $2", where)
	assert.Equal(t, []any{id, "MS-1"}, args)

	where, args = Filter{}.where()
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestPatch(t *testing.T) {
	require.EqualError(t, Patch{}.Validate(), "no fields to update")
	require.EqualError(t, Patch{Status: lo.ToPtr(Status("lost"))}.Validate(), "invalid status")
	require.NoError(t, Patch{Printed: lo.ToPtr(true)}.Validate())

	set, args := Patch{Status: lo.ToPtr(StatusShipped), Printed: lo.ToPtr(true)}.assignments(2)
	assert.Equal(t, "status = $2, printed = $3", set)
	assert.Equal(t, []any{"shipped", true}, args)
}

func TestCheckoutErrorKinds(t *testing.T) {
	id := uuid.New()

	na := &NotAvailableError{ListingID: id, Reason: ReasonInsufficientStock, Requested: 3, Available: 1}
	assert.Equal(t, apperr.KindNotAvailable, apperr.KindOf(na))
	assert.Contains(t, apperr.PublicMessage(na), "requested 3, available 1")

	pm := &ProviderMismatchError{ListingID: id, Expected: uuid.New(), Actual: uuid.New()}
	assert.Equal(t, apperr.KindProviderMismatch, apperr.KindOf(pm))
	assert.Equal(t, 400, apperr.KindOf(pm).HTTPStatus())

	assert.Equal(t, apperr.KindConflict, apperr.KindOf(ErrNumberExhausted))
}

func TestToStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "processing", "shipped", "delivered", "cancelled"} {
		got, err := ToStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), got)
	}
	_, err := ToStatus("refunded")
	require.Error(t, err)
}

func TestUnorderableReason(t *testing.T) {
	assert.Equal(t, ReasonInactive, unorderableReason(listings.Listing{IsActive: false, AdminStatus: listings.StatusPending}))
	assert.Equal(t, ReasonInactive, unorderableReason(listings.Listing{IsActive: false, AdminStatus: listings.StatusApproved}))
	assert.Equal(t, ReasonNotApproved, unorderableReason(listings.Listing{IsActive: true, AdminStatus: listings.StatusRejected}))
}
