package orders

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-marketplace-orders/internal/apperr"
	"github.com/ariefcatur/go-marketplace-orders/internal/auth"
	"github.com/ariefcatur/go-marketplace-orders/internal/listings"
	"github.com/ariefcatur/go-marketplace-orders/internal/logging"
	"github.com/ariefcatur/go-marketplace-orders/internal/metrics"
	"github.com/ariefcatur/go-marketplace-orders/internal/policy"
	"github.com/ariefcatur/go-marketplace-orders/internal/postgres"
)

const orderNumberConstraint = "orders_order_number_key"

// Ledger is the stock and price source consulted inside the checkout
// transaction.
type Ledger interface {
	GetForUpdate(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (listings.Listing, error)
	Decrement(ctx context.Context, tx postgres.DBTX, id uuid.UUID, qty int) (int, error)
}

// Notifier is told about committed order changes. Implementations must not
// block the caller for long; failures are theirs to report.
type Notifier interface {
	OrderCreated(ctx context.Context, o Order, stock []StockLevel)
	OrderUpdated(ctx context.Context, o Order, by auth.Identity)
}

// Engine turns a cart into a persisted order. Stock checks, decrements and
// the order insert share one transaction: either everything commits or
// nothing is visible.
type Engine struct {
	DB       postgres.Beginner
	Ledger   Ledger
	Numbers  NumberSource
	Currency string
	Notifier Notifier
	Metrics  *metrics.Metrics
}

func (e *Engine) Checkout(ctx context.Context, caller auth.Identity, req CheckoutRequest) (order Order, err error) {
	start := time.Now()
	ctx, span := otel.Tracer("orders").Start(ctx, "orders.Checkout")
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = apperr.KindOf(err).String()
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
		e.Metrics.ObserveCheckout(outcome, time.Since(start))
	}()

	if !policy.Allow(policy.OrderCreate, caller, policy.Ownership{}) {
		return Order{}, apperr.Forbidden("access denied, required role: customer")
	}
	if err := req.Validate(); err != nil {
		return Order{}, err
	}
	span.SetAttributes(
		attribute.String("customer_id", caller.UserID.String()),
		attribute.String("provider_id", req.ProviderID.String()),
		attribute.Int("items", len(req.Items)),
	)

	items := mergeItems(req.Items)
	var stock []StockLevel

	order, err = postgres.WithTxValue(ctx, e.DB, func(tx pgx.Tx) (Order, error) {
		o := Order{
			CustomerID:      caller.UserID,
			ProviderID:      req.ProviderID,
			Status:          StatusPending,
			TotalAmount:     decimal.Zero,
			Currency:        e.Currency,
			ShippingAddress: *req.ShippingAddress,
			Items:           make([]Line, len(items)),
		}
		stock = make([]StockLevel, 0, len(items))

		for _, idx := range lockOrder(items) {
			it := items[idx]
			line, remaining, err := e.take(ctx, tx, req.ProviderID, it)
			if err != nil {
				return Order{}, err
			}
			o.Items[idx] = line
			o.TotalAmount = o.TotalAmount.Add(line.LineTotal)
			stock = append(stock, StockLevel{ListingID: it.ListingID, Remaining: remaining})
		}

		if err := e.insertWithNumber(ctx, tx, &o); err != nil {
			return Order{}, err
		}
		if err := insertLines(ctx, tx, o.ID, o.Items); err != nil {
			return Order{}, err
		}
		return o, nil
	})
	if err != nil {
		logCheckoutRejected(ctx, err)
		return Order{}, err
	}

	logging.FromContext(ctx).Info("order_created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.Number),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(order.Items)),
	)
	if e.Notifier != nil {
		e.Notifier.OrderCreated(ctx, order, stock)
	}
	return order, nil
}

// take locks one listing, checks it can be sold to this cart and decrements
// its stock.
func (e *Engine) take(ctx context.Context, tx pgx.Tx, providerID uuid.UUID, it CartItem) (Line, int, error) {
	l, err := e.Ledger.GetForUpdate(ctx, tx, it.ListingID)
	if err != nil {
		if errors.Is(err, listings.ErrNotFound) {
			return Line{}, 0, &NotAvailableError{ListingID: it.ListingID, Reason: ReasonNotFound}
		}
		return Line{}, 0, err
	}
	switch {
	case !l.Orderable():
		return Line{}, 0, &NotAvailableError{ListingID: l.ID, Reason: unorderableReason(l)}
	case l.ProviderID != providerID:
		return Line{}, 0, &ProviderMismatchError{ListingID: l.ID, Expected: providerID, Actual: l.ProviderID}
	case l.AvailableQuantity < it.Quantity:
		return Line{}, 0, &NotAvailableError{
			ListingID: l.ID,
			Reason:    ReasonInsufficientStock,
			Requested: it.Quantity,
			Available: l.AvailableQuantity,
		}
	}

	remaining, err := e.Ledger.Decrement(ctx, tx, l.ID, it.Quantity)
	if err != nil {
		if errors.Is(err, listings.ErrInsufficientStock) {
			return Line{}, 0, &NotAvailableError{
				ListingID: l.ID,
				Reason:    ReasonInsufficientStock,
				Requested: it.Quantity,
				Available: l.AvailableQuantity,
			}
		}
		return Line{}, 0, err
	}

	return Line{
		ListingID: l.ID,
		SetID:     l.SetID,
		SetName:   l.SetName,
		Quantity:  it.Quantity,
		UnitPrice: l.Price,
		LineTotal: l.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
	}, remaining, nil
}

func unorderableReason(l listings.Listing) Reason {
	if !l.IsActive {
		return ReasonInactive
	}
	return ReasonNotApproved
}

// insertWithNumber inserts the order header under a savepoint so a number
// collision can be retried once without aborting the checkout transaction.
func (e *Engine) insertWithNumber(ctx context.Context, tx pgx.Tx, o *Order) error {
	for attempt := 0; attempt < 2; attempt++ {
		o.Number = e.Numbers.Next()
		err := postgres.WithTx(ctx, tx, func(sp pgx.Tx) error {
			return insertOrder(ctx, sp, o)
		})
		if err == nil {
			return nil
		}
		if !postgres.IsUniqueViolation(err, orderNumberConstraint) {
			return err
		}
		e.Metrics.OrderNumberRetry()
		logging.FromContext(ctx).Warn("order_number_collision",
			zap.String("order_number", o.Number),
			zap.Int("attempt", attempt+1),
		)
	}
	return ErrNumberExhausted
}

// mergeItems folds repeated listings into one entry, keeping first-seen order.
func mergeItems(in []CartItem) []CartItem {
	out := make([]CartItem, 0, len(in))
	seen := make(map[uuid.UUID]int, len(in))
	for _, it := range in {
		if i, ok := seen[it.ListingID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		seen[it.ListingID] = len(out)
		out = append(out, it)
	}
	return out
}

// lockOrder returns item indexes sorted by listing id. Every checkout locks
// rows in this order, so two carts sharing listings cannot deadlock.
func lockOrder(items []CartItem) []int {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(a, b int) int {
		return bytes.Compare(items[a].ListingID[:], items[b].ListingID[:])
	})
	return idx
}

func logCheckoutRejected(ctx context.Context, err error) {
	kind := apperr.KindOf(err)
	fields := []zap.Field{zap.String("kind", kind.String())}

	var na *NotAvailableError
	var pm *ProviderMismatchError
	switch {
	case errors.As(err, &na):
		fields = append(fields, zap.String("provider_set_id", na.ListingID.String()), zap.String("reason", string(na.Reason)))
	case errors.As(err, &pm):
		fields = append(fields, zap.String("provider_set_id", pm.ListingID.String()))
	}

	log := logging.FromContext(ctx)
	if kind == apperr.KindInternal {
		log.Error("checkout_failed", append(fields, zap.Error(err))...)
		return
	}
	log.Warn("checkout_rejected", fields...)
}
