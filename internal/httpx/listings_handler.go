package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ariefcatur/go-marketplace-orders/internal/auth"
	"github.com/ariefcatur/go-marketplace-orders/internal/listings"
)

type ListingService interface {
	Create(ctx context.Context, caller auth.Identity, in listings.CreateInput) (listings.Listing, error)
	Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (listings.Listing, error)
	Update(ctx context.Context, caller auth.Identity, id uuid.UUID, patch listings.Patch) (listings.Listing, error)
}

type ListingsHandler struct {
	Service ListingService
	Resp    Responder
}

func (h *ListingsHandler) Register(r chi.Router) {
	r.Post("/provider-sets", h.create)
	r.Get("/provider-sets/{id}", h.get)
	r.Put("/provider-sets/{id}", h.update)
}

func (h *ListingsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in listings.CreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	l, err := h.Service.Create(r.Context(), caller(r), in)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Data(w, http.StatusCreated, l)
}

func (h *ListingsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "provider set")
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	l, err := h.Service.Get(r.Context(), caller(r), id)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Data(w, http.StatusOK, l)
}

func (h *ListingsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "provider set")
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	var patch listings.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	l, err := h.Service.Update(r.Context(), caller(r), id, patch)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Data(w, http.StatusOK, l)
}
