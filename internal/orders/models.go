package orders

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/ariefcatur/go-marketplace-orders/internal/apperr"
)

// MaxCartItems bounds the number of distinct cart entries per checkout.
const MaxCartItems = 100

// MaxItemQuantity bounds the quantity of one listing in a cart, per entry
// and after repeated entries are merged. Quantities are stored as INTEGER.
const MaxItemQuantity = math.MaxInt32

type Order struct {
	ID              uuid.UUID       `json:"order_id"`
	Number          string          `json:"order_number"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	ProviderID      uuid.UUID       `json:"provider_id"`
	CustomerName    string          `json:"customer_name,omitempty"`
	ProviderName    string          `json:"provider_name,omitempty"`
	Status          Status          `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Currency        string          `json:"currency"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	Printed         bool            `json:"printed"`
	Items           []Line          `json:"items,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Line is an immutable priced quantity of one set within an order.
type Line struct {
	ID        uuid.UUID       `json:"order_item_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	ListingID uuid.UUID       `json:"provider_set_id"`
	SetID     uuid.UUID       `json:"set_id"`
	SetName   string          `json:"set_name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type ShippingAddress struct {
	RecipientName string `json:"recipient_name,omitempty"`
	Line1         string `json:"line1"`
	Line2         string `json:"line2,omitempty"`
	City          string `json:"city"`
	State         string `json:"state,omitempty"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
}

func (a ShippingAddress) Validate() error {
	var missing []string
	if strings.TrimSpace(a.Line1) == "" {
		missing = append(missing, "line1")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		missing = append(missing, "postal_code")
	}
	if strings.TrimSpace(a.Country) == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return apperr.ValidationWith("shipping_address is incomplete", map[string][]string{"missing": missing})
	}
	region, err := language.ParseRegion(a.Country)
	if err != nil || !region.IsCountry() {
		return apperr.Validation("shipping_address.country must be an ISO 3166 country code")
	}
	return nil
}

// CartItem is transient checkout input; it is never persisted.
type CartItem struct {
	ListingID uuid.UUID `json:"provider_set_id"`
	Quantity  int       `json:"quantity"`
}

type CheckoutRequest struct {
	ProviderID      uuid.UUID        `json:"provider_id"`
	Items           []CartItem       `json:"items"`
	ShippingAddress *ShippingAddress `json:"shipping_address"`
}

// Validate checks the request shape without touching storage.
func (r CheckoutRequest) Validate() error {
	if r.ProviderID == uuid.Nil || len(r.Items) == 0 {
		return apperr.Validation("provider_id and items array are required")
	}
	if len(r.Items) > MaxCartItems {
		return apperr.Validation("too many items in cart")
	}
	totals := make(map[uuid.UUID]int64, len(r.Items))
	for i, it := range r.Items {
		if it.ListingID == uuid.Nil || it.Quantity < 1 {
			return apperr.ValidationWith("each item must have provider_set_id and quantity >= 1",
				map[string]int{"index": i})
		}
		if it.Quantity > MaxItemQuantity {
			return apperr.ValidationWith(fmt.Sprintf("quantity must not exceed %d", MaxItemQuantity),
				map[string]int{"index": i})
		}
		totals[it.ListingID] += int64(it.Quantity)
		if totals[it.ListingID] > MaxItemQuantity {
			return apperr.ValidationWith(fmt.Sprintf("total quantity for one provider set must not exceed %d", MaxItemQuantity),
				map[string]string{"provider_set_id": it.ListingID.String()})
		}
	}
	if r.ShippingAddress == nil {
		return apperr.Validation("shipping_address is required")
	}
	return r.ShippingAddress.Validate()
}

// StockLevel is a listing's quantity right after a checkout decremented it.
type StockLevel struct {
	ListingID uuid.UUID
	Remaining int
}
