package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/payssd/payssd-api/internal/application/instruction"
	"github.com/payssd/payssd-api/internal/application/payment"
	"github.com/payssd/payssd-api/internal/application/product"
	"github.com/payssd/payssd-api/internal/application/subscription"
	"github.com/payssd/payssd-api/internal/domain"
	"github.com/payssd/payssd-api/internal/pkg/validate"
)

// CheckoutHandler serves the public storefront: no authentication, payers
// identify themselves by contact details and reference codes.
type CheckoutHandler struct {
	products     product.Service
	subs         subscription.Service
	payments     payment.Service
	instructions instruction.Service
}

func NewCheckoutHandler(products product.Service, subs subscription.Service, payments payment.Service, instructions instruction.Service) *CheckoutHandler {
	return &CheckoutHandler{
		products:     products,
		subs:         subs,
		payments:     payments,
		instructions: instructions,
	}
}

// ListProducts returns a merchant's enabled products.
func (h *CheckoutHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	merchantID := chi.URLParam(r, "merchantID")
	all, err := h.products.List(r.Context(), merchantID)
	if err != nil {
		httpError(w, err)
		return
	}
	visible := all[:0]
	for _, p := range all {
		if p.Enable {
			visible = append(visible, p)
		}
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Data: visible})
}

// ListPrices returns the enabled prices of one product.
func (h *CheckoutHandler) ListPrices(w http.ResponseWriter, r *http.Request) {
	merchantID := chi.URLParam(r, "merchantID")
	all, err := h.products.ListPrices(r.Context(), merchantID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	visible := all[:0]
	for _, p := range all {
		if p.Enable {
			visible = append(visible, p)
		}
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Data: visible})
}

// ListInstructions returns the merchant's enabled receiving accounts.
func (h *CheckoutHandler) ListInstructions(w http.ResponseWriter, r *http.Request) {
	instructions, err := h.instructions.ListEnabled(r.Context(), chi.URLParam(r, "merchantID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Data: instructions})
}

// Subscribe opens a pending subscription and hands the payer a reference
// code to quote in their transfer.
func (h *CheckoutHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	sub, err := h.subs.Create(r.Context(), chi.URLParam(r, "merchantID"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// subscriptionStatusEnvelope is what a payer sees when they look up their
// reference code: the subscription plus where to send the money.
type subscriptionStatusEnvelope struct {
	Subscription *domain.Subscription        `json:"subscription"`
	Instructions []domain.PaymentInstruction `json:"payment_instructions"`
}

// Status looks a subscription up by reference code.
func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subs.GetByReferenceCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httpError(w, err)
		return
	}
	instructions, err := h.instructions.ListEnabled(r.Context(), sub.MerchantID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subscriptionStatusEnvelope{Subscription: sub, Instructions: instructions})
}

// SubmitPayment records a payer's claim that a transfer was made.
func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	p, err := h.payments.Submit(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
