package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-marketplace-orders/internal/apperr"
	"github.com/ariefcatur/go-marketplace-orders/internal/policy"
	"github.com/ariefcatur/go-marketplace-orders/internal/settings"
)

type SettingsService interface {
	Get(ctx context.Context, key string) (settings.Setting, error)
	All(ctx context.Context) ([]settings.Setting, error)
	Put(ctx context.Context, key string, in settings.Input) (settings.Setting, error)
}

type SettingsHandler struct {
	Settings SettingsService
	Resp     Responder
}

// RegisterPublic mounts the unauthenticated read of a single setting.
func (h *SettingsHandler) RegisterPublic(r chi.Router) {
	r.Get("/settings/{key}", h.get)
}

func (h *SettingsHandler) Register(r chi.Router) {
	r.Get("/settings", h.list)
	r.Put("/settings/{key}", h.put)
}

// list returns every setting as a key -> typed value map.
func (h *SettingsHandler) list(w http.ResponseWriter, r *http.Request) {
	if !policy.Allow(policy.SettingsList, caller(r), policy.Ownership{}) {
		h.Resp.Error(w, r, apperr.Forbidden("access denied, required role: admin"))
		return
	}
	all, err := h.Settings.All(r.Context())
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	out := make(map[string]any, len(all))
	for _, st := range all {
		out[st.Key] = st.Value
	}
	h.Resp.Data(w, http.StatusOK, out)
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	st, err := h.Settings.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Data(w, http.StatusOK, st)
}

func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request) {
	if !policy.Allow(policy.SettingsWrite, caller(r), policy.Ownership{}) {
		h.Resp.Error(w, r, apperr.Forbidden("access denied, required role: admin"))
		return
	}
	var in settings.Input
	if err := decodeJSON(w, r, &in); err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	st, err := h.Settings.Put(r.Context(), chi.URLParam(r, "key"), in)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.Data(w, http.StatusOK, st)
}
