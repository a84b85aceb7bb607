package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
)

const (
	EventOrderCreated    = "OrderCreated"
	EventOrderUpdated    = "OrderUpdated"
	EventListingStockLow = "ListingStockLow"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps payload for publishing. The trace id is taken from the
// span in ctx, when there is one.
func NewEnvelope(ctx context.Context, eventType, producer, correlationID string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       b,
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		env.TraceID = sc.TraceID().String()
	}
	return env, nil
}

type LinePayload struct {
	ListingID string          `json:"provider_set_id"`
	SetID     string          `json:"set_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Remaining int             `json:"remaining"`
}

type OrderCreatedPayload struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  string          `json:"customer_id"`
	ProviderID  string          `json:"provider_id"`
	Items       []LinePayload   `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
}

type OrderUpdatedPayload struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Status      Status `json:"status"`
	Printed     bool   `json:"printed"`
	UpdatedBy   string `json:"updated_by"`
}

type ListingStockLowPayload struct {
	ListingID  string `json:"provider_set_id"`
	ProviderID string `json:"provider_id"`
	Remaining  int    `json:"remaining"`
	Threshold  int    `json:"threshold"`
	OrderID    string `json:"order_id"`
}

// CreatedPayload builds the OrderCreated payload; stock carries the
// quantities left after the checkout.
func CreatedPayload(o Order, stock []StockLevel) OrderCreatedPayload {
	remaining := lo.SliceToMap(stock, func(s StockLevel) (uuid.UUID, int) {
		return s.ListingID, s.Remaining
	})
	items := lo.Map(o.Items, func(l Line, _ int) LinePayload {
		return LinePayload{
			ListingID: l.ListingID.String(),
			SetID:     l.SetID.String(),
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Remaining: remaining[l.ListingID],
		}
	})
	return OrderCreatedPayload{
		OrderID:     o.ID.String(),
		OrderNumber: o.Number,
		CustomerID:  o.CustomerID.String(),
		ProviderID:  o.ProviderID.String(),
		Items:       items,
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency,
	}
}
