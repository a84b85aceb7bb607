package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-marketplace-orders/internal/apperr"
	"github.com/ariefcatur/go-marketplace-orders/internal/auth"
	"github.com/ariefcatur/go-marketplace-orders/internal/logging"
	"github.com/ariefcatur/go-marketplace-orders/internal/orders"
	"github.com/ariefcatur/go-marketplace-orders/internal/pagination"
)

type Checkouter interface {
	Checkout(ctx context.Context, caller auth.Identity, req orders.CheckoutRequest) (orders.Order, error)
}

type OrderReader interface {
	Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (orders.Order, error)
	List(ctx context.Context, caller auth.Identity, f orders.Filter, page pagination.Page) ([]orders.Order, pagination.Meta, error)
}

type OrderUpdater interface {
	Update(ctx context.Context, caller auth.Identity, id uuid.UUID, patch orders.Patch) (orders.Order, error)
}

// IdempotencyStore maps a customer's Idempotency-Key to the order it created.
type IdempotencyStore interface {
	Lookup(ctx context.Context, customerID uuid.UUID, key string) (uuid.UUID, bool, error)
	Remember(ctx context.Context, customerID uuid.UUID, key string, orderID uuid.UUID) error
}

const headerIdempotencyKey = "Idempotency-Key"

type OrdersHandler struct {
	Checkout    Checkouter
	Reader      OrderReader
	Updater     OrderUpdater
	Idempotency IdempotencyStore // optional
	Resp        Responder
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Put("/orders/{id}", h.updateOrder)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	ctx := r.Context()
	who := caller(r)

	idemKey := r.Header.Get(headerIdempotencyKey)
	if idemKey != "" && h.Idempotency != nil {
		if o, ok := h.replay(ctx, who, idemKey); ok {
			h.Resp.Data(w, http.StatusOK, o)
			return
		}
	}

	o, err := h.Checkout.Checkout(ctx, who, req)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	if idemKey != "" && h.Idempotency != nil {
		if err := h.Idempotency.Remember(ctx, who.UserID, idemKey, o.ID); err != nil {
			logging.FromContext(ctx).Warn("idempotency_remember_failed", zap.Error(err))
		}
	}
	h.Resp.Data(w, http.StatusCreated, o)
}

// replay returns the order an earlier request with the same key created.
// Lookup failures fall through to a normal checkout.
func (h *OrdersHandler) replay(ctx context.Context, who auth.Identity, key string) (orders.Order, bool) {
	id, found, err := h.Idempotency.Lookup(ctx, who.UserID, key)
	if err != nil {
		logging.FromContext(ctx).Warn("idempotency_lookup_failed", zap.Error(err))
		return orders.Order{}, false
	}
	if !found {
		return orders.Order{}, false
	}
	o, err := h.Reader.Get(ctx, who, id)
	if err != nil {
		return orders.Order{}, false
	}
	logging.FromContext(ctx).Info("checkout_replayed", zap.String("order_id", id.String()))
	return o, true
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	f, err := parseOrderFilter(r)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	page := pagination.Parse(r.URL.Query())

	out, meta, err := h.Reader.List(r.Context(), caller(r), f, page)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.List(w, out, meta)
}

func parseOrderFilter(r *http.Request) (orders.Filter, error) {
	q := r.URL.Query()
	var f orders.Filter

	if s := q.Get("status"); s != "" {
		st, err := orders.ToStatus(s)
		if err != nil {
			return f, apperr.Validation("invalid status")
		}
		f.Status = &st
	}
	if n := q.Get("order_number"); n != "" {
		f.OrderNumber = &n
	}
	for param, dst := range map[string]**uuid.UUID{"customer_id": &f.CustomerID, "provider_id": &f.ProviderID} {
		v := q.Get(param)
		if v == "" {
			continue
		}
		id, err := uuid.Parse(v)
		if err != nil {
			return f, apperr.Validation("invalid " + param)
		}
		*dst = &id
	}
	return f, nil
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "order")
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	o, err := h.Reader.Get(r.Context(), caller(r), id)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Data(w, http.StatusOK, o)
}

func (h *OrdersHandler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "order")
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	var patch orders.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	o, err := h.Updater.Update(r.Context(), caller(r), id, patch)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Data(w, http.StatusOK, o)
}

// pathID parses the {id} URL parameter. Malformed ids read as not found.
func pathID(r *http.Request, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.NotFound(resource)
	}
	return id, nil
}
