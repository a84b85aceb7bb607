package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ariefcatur/go-marketplace-orders/internal/auth"
)

func TestAllow(t *testing.T) {
	customer := auth.Identity{UserID: uuid.New(), Role: auth.RoleCustomer}
	otherCustomer := auth.Identity{UserID: uuid.New(), Role: auth.RoleCustomer}
	provider := auth.Identity{UserID: uuid.New(), Role: auth.RoleProvider}
	otherProvider := auth.Identity{UserID: uuid.New(), Role: auth.RoleProvider}
	admin := auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin}
	production := auth.Identity{UserID: uuid.New(), Role: auth.RoleProduction}

	order := Ownership{CustomerID: customer.UserID, ProviderID: provider.UserID}
	listing := Ownership{ProviderID: provider.UserID}

	tests := []struct {
		name   string
		action Action
		caller auth.Identity
		owner  Ownership
		want   bool
	}{
		{"customer creates order: allow", OrderCreate, customer, Ownership{}, true},
		{"provider creates order: deny", OrderCreate, provider, Ownership{}, false},
		{"admin creates order: deny", OrderCreate, admin, Ownership{}, false},

		{"owning customer reads order: allow", OrderRead, customer, order, true},
		{"other customer reads order: deny", OrderRead, otherCustomer, order, false},
		{"owning provider reads order: allow", OrderRead, provider, order, true},
		{"other provider reads order: deny", OrderRead, otherProvider, order, false},
		{"admin reads order: allow", OrderRead, admin, order, true},
		{"production reads order: allow", OrderRead, production, order, true},
		{"customer reads unowned zero order: deny", OrderRead, auth.Identity{Role: auth.RoleCustomer}, Ownership{}, false},

		{"admin updates status: allow", OrderUpdateStatus, admin, order, true},
		{"owning provider updates status: allow", OrderUpdateStatus, provider, order, true},
		{"other provider updates status: deny", OrderUpdateStatus, otherProvider, order, false},
		{"customer updates status: deny", OrderUpdateStatus, customer, order, false},
		{"production updates status: deny", OrderUpdateStatus, production, order, false},

		{"admin updates printed: allow", OrderUpdatePrinted, admin, order, true},
		{"production updates printed: allow", OrderUpdatePrinted, production, order, true},
		{"provider updates printed: deny", OrderUpdatePrinted, provider, order, false},

		{"provider creates listing: allow", ListingCreate, provider, Ownership{}, true},
		{"customer creates listing: deny", ListingCreate, customer, Ownership{}, false},
		{"owner updates listing: allow", ListingUpdate, provider, listing, true},
		{"other provider updates listing: deny", ListingUpdate, otherProvider, listing, false},
		{"admin reads listing: allow", ListingRead, admin, listing, true},
		{"customer reads listing: deny", ListingRead, customer, listing, false},

		{"admin writes settings: allow", SettingsWrite, admin, Ownership{}, true},
		{"provider writes settings: deny", SettingsWrite, provider, Ownership{}, false},
		{"unknown action: deny", Action("nope"), admin, Ownership{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.action, tt.caller, tt.owner))
		})
	}
}

func TestMutableListingFields(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{FieldPrice, FieldAvailableQuantity, FieldIsActive, FieldProviderVisible},
		MutableListingFields(auth.RoleProvider))
	assert.Contains(t, MutableListingFields(auth.RoleAdmin), FieldAdminStatus)
	assert.Empty(t, MutableListingFields(auth.RoleCustomer))

	got := Disallowed([]string{FieldPrice, FieldAdminStatus}, MutableListingFields(auth.RoleProvider))
	assert.Equal(t, []string{FieldAdminStatus}, got)
	assert.Empty(t, Disallowed([]string{FieldPrice}, MutableListingFields(auth.RoleAdmin)))
}
