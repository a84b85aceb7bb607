// Package inventory watches committed orders and raises low-stock alerts
// for the listings they drew down.
package inventory

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/ariefcatur/go-marketplace-orders/internal/kafka"
	"github.com/ariefcatur/go-marketplace-orders/internal/metrics"
	"github.com/ariefcatur/go-marketplace-orders/internal/orders"
	"github.com/ariefcatur/go-marketplace-orders/internal/redisx"
	"github.com/ariefcatur/go-marketplace-orders/internal/settings"
)

const defaultThreshold = 5

type Thresholds interface {
	Number(ctx context.Context, key string, def float64) (float64, error)
}

type Claimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type Service struct {
	Settings    Thresholds
	Claims      Claimer // nil disables dedup
	Alerts      kafkax.Publisher
	ServiceName string
	Metrics     *metrics.Metrics
	Log         *zap.Logger
}

// HandleOrderCreated is the consumer handler for order.created.
func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	env, err := kafkax.UnmarshalEnvelope(m.Value)
	if err != nil {
		return err
	}
	if env.EventType != orders.EventOrderCreated {
		return nil
	}

	fresh, err := s.claim(ctx, fmt.Sprintf(redisx.KeyDedup, "inventory", env.EventID), redisx.TTLDedup)
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
	if err != nil {
		return err
	}

	threshold, err := s.Settings.Number(ctx, settings.KeyLowStockThreshold, defaultThreshold)
	if err != nil {
		s.Log.Warn("low_stock_threshold_unreadable", zap.Error(err))
		threshold = defaultThreshold
	}

	for _, it := range p.Items {
		if float64(it.Remaining) > threshold {
			continue
		}
		first, err := s.claim(ctx, fmt.Sprintf(redisx.KeyStockLow, it.ListingID), redisx.TTLStockLow)
		if err != nil {
			return err
		}
		if !first {
			continue
		}
		if err := s.publishLow(ctx, env.TraceID, p, it, int(threshold)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) publishLow(ctx context.Context, traceID string, p orders.OrderCreatedPayload, it orders.LinePayload, threshold int) error {
	env, err := orders.NewEnvelope(ctx, orders.EventListingStockLow, s.ServiceName, p.OrderID, orders.ListingStockLowPayload{
		ListingID:  it.ListingID,
		ProviderID: p.ProviderID,
		Remaining:  it.Remaining,
		Threshold:  threshold,
		OrderID:    p.OrderID,
	})
	if err != nil {
		return err
	}
	if env.TraceID == "" {
		env.TraceID = traceID
	}
	if err := kafkax.PublishEnvelope(s.Alerts, it.ListingID, env); err != nil {
		return fmt.Errorf("publish %s: %w", orders.EventListingStockLow, err)
	}

	s.Metrics.LowStock()
	s.Log.Info("listing_stock_low",
		zap.String("provider_set_id", it.ListingID),
		zap.Int("remaining", it.Remaining),
		zap.Int("threshold", threshold),
	)
	return nil
}

func (s *Service) claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if s.Claims == nil {
		return true, nil
	}
	return s.Claims.Claim(ctx, key, ttl)
}
