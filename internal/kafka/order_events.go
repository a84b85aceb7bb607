package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/ariefcatur/go-marketplace-orders/internal/auth"
	"github.com/ariefcatur/go-marketplace-orders/internal/logging"
	"github.com/ariefcatur/go-marketplace-orders/internal/metrics"
	"github.com/ariefcatur/go-marketplace-orders/internal/orders"
)

// OrderEvents publishes committed order changes. Failures are logged and
// counted; they never reach the caller.
type OrderEvents struct {
	Created     Publisher
	Updated     Publisher
	ServiceName string
	Metrics     *metrics.Metrics
}

func (e *OrderEvents) OrderCreated(ctx context.Context, o orders.Order, stock []orders.StockLevel) {
	e.publish(ctx, e.Created, orders.EventOrderCreated, o.ID.String(), orders.CreatedPayload(o, stock))
}

func (e *OrderEvents) OrderUpdated(ctx context.Context, o orders.Order, by auth.Identity) {
	e.publish(ctx, e.Updated, orders.EventOrderUpdated, o.ID.String(), orders.OrderUpdatedPayload{
		OrderID:     o.ID.String(),
		OrderNumber: o.Number,
		Status:      o.Status,
		Printed:     o.Printed,
		UpdatedBy:   by.UserID.String(),
	})
}

func (e *OrderEvents) publish(ctx context.Context, p Publisher, eventType, orderID string, payload any) {
	if p == nil {
		return
	}
	env, err := orders.NewEnvelope(ctx, eventType, e.ServiceName, orderID, payload)
	if err == nil {
		err = PublishEnvelope(p, orderID, env)
	}
	if err != nil {
		e.Metrics.PublishFailed(eventType)
		logging.FromContext(ctx).Warn("event_publish_failed",
			zap.String("event_type", eventType),
			zap.String("order_id", orderID),
			zap.Error(err))
	}
}
