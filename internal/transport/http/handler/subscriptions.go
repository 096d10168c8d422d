package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/payssd/payssd-api/internal/application/subscription"
)

// SubscriptionHandler handles a merchant's view of their subscriptions.
type SubscriptionHandler struct {
	svc subscription.Service
}

func NewSubscriptionHandler(svc subscription.Service) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc}
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	subs, err := h.svc.List(r.Context(), merchantID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Data: subs})
}

func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	sub, err := h.svc.Get(r.Context(), merchantID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	sub, err := h.svc.Cancel(r.Context(), merchantID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
