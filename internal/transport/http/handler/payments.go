package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/payssd/payssd-api/internal/application/payment"
)

// PaymentHandler handles the merchant's review queue of submitted payments.
type PaymentHandler struct {
	svc payment.Service
}

func NewPaymentHandler(svc payment.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	payments, err := h.svc.List(r.Context(), merchantID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Data: payments})
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), merchantID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Confirm(r.Context(), merchantID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	// The reason is optional; an empty body is fine.
	_ = json.NewDecoder(r.Body).Decode(&body)
	p, err := h.svc.Reject(r.Context(), merchantID, chi.URLParam(r, "id"), body.Reason)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
