package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/payssd/payssd-api/internal/application/product"
	"github.com/payssd/payssd-api/internal/domain"
	"github.com/payssd/payssd-api/internal/pkg/validate"
)

// ProductHandler handles a merchant's product catalogue and prices.
type ProductHandler struct {
	svc product.Service
}

func NewProductHandler(svc product.Service) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	var in domain.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	p, err := h.svc.Create(r.Context(), merchantID, in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	products, err := h.svc.List(r.Context(), merchantID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Data: products})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
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

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	var in domain.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	p, err := h.svc.Update(r.Context(), merchantID, chi.URLParam(r, "id"), in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), merchantID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "product deleted"})
}

func (h *ProductHandler) AddPrice(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	var in domain.PriceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	p, err := h.svc.AddPrice(r.Context(), merchantID, chi.URLParam(r, "id"), in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) ListPrices(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	prices, err := h.svc.ListPrices(r.Context(), merchantID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Data: prices})
}

func (h *ProductHandler) DeletePrice(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePrice(r.Context(), merchantID, chi.URLParam(r, "id"), chi.URLParam(r, "priceID")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "price deleted"})
}
