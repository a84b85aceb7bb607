// Package policy decides whether a caller may perform an action on a
// resource, independent of transport.
package policy

import (
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/ariefcatur/go-marketplace-orders/internal/auth"
)

type Action string

const (
	OrderCreate        Action = "order.create"
	OrderRead          Action = "order.read"
	OrderUpdateStatus  Action = "order.update_status"
	OrderUpdatePrinted Action = "order.update_printed"
	ListingCreate      Action = "listing.create"
	ListingRead        Action = "listing.read"
	ListingUpdate      Action = "listing.update"
	SettingsList       Action = "settings.list"
	SettingsWrite      Action = "settings.write"
)

// Ownership describes who owns the target resource. Zero ids mean
// "no owner of that kind".
type Ownership struct {
	CustomerID uuid.UUID
	ProviderID uuid.UUID
}

// Allow reports whether caller may perform action on a resource with the
// given ownership.
func Allow(action Action, caller auth.Identity, owner Ownership) bool {
	switch action {
	case OrderCreate:
		return caller.Role == auth.RoleCustomer
	case OrderRead:
		switch caller.Role {
		case auth.RoleAdmin, auth.RoleProduction:
			return true
		case auth.RoleCustomer:
			return owner.CustomerID != uuid.Nil && owner.CustomerID == caller.UserID
		case auth.RoleProvider:
			return owner.ProviderID != uuid.Nil && owner.ProviderID == caller.UserID
		}
		return false
	case OrderUpdateStatus:
		return caller.Role == auth.RoleAdmin ||
			(caller.Role == auth.RoleProvider && owner.ProviderID != uuid.Nil && owner.ProviderID == caller.UserID)
	case OrderUpdatePrinted:
		return caller.Role == auth.RoleAdmin || caller.Role == auth.RoleProduction
	case ListingCreate:
		return caller.Role == auth.RoleAdmin || caller.Role == auth.RoleProvider
	case ListingRead, ListingUpdate:
		return caller.Role == auth.RoleAdmin || (owner.ProviderID != uuid.Nil && owner.ProviderID == caller.UserID)
	case SettingsList, SettingsWrite:
		return caller.Role == auth.RoleAdmin
	}
	return false
}

// Listing fields a caller may change through a listing patch.
const (
	FieldPrice             = "price"
	FieldAvailableQuantity = "available_quantity"
	FieldIsActive          = "is_active"
	FieldProviderVisible   = "provider_visible"
	FieldAdminVisible      = "admin_visible"
	FieldAdminStatus       = "admin_status"
	FieldAdminNotes        = "admin_notes"
)

var (
	providerListingFields = []string{FieldPrice, FieldAvailableQuantity, FieldIsActive, FieldProviderVisible}
	adminListingFields    = append(append([]string{}, providerListingFields...), FieldAdminVisible, FieldAdminStatus, FieldAdminNotes)
)

// MutableListingFields is the allow-list of listing columns role may patch.
func MutableListingFields(role auth.Role) []string {
	switch role {
	case auth.RoleAdmin:
		return adminListingFields
	case auth.RoleProvider:
		return providerListingFields
	}
	return nil
}

// Disallowed returns the fields not present in allowed.
func Disallowed(fields, allowed []string) []string {
	return lo.Without(fields, allowed...)
}
