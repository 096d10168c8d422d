package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/payssd/payssd-api/internal/application/instruction"
	"github.com/payssd/payssd-api/internal/domain"
	"github.com/payssd/payssd-api/internal/pkg/validate"
)

// InstructionHandler handles a merchant's payment instructions, the
// receiving accounts shown to payers at checkout.
type InstructionHandler struct {
	svc instruction.Service
}

func NewInstructionHandler(svc instruction.Service) *InstructionHandler {
	return &InstructionHandler{svc: svc}
}

func (h *InstructionHandler) Create(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	var in domain.PaymentInstructionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	pi, err := h.svc.Create(r.Context(), merchantID, in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pi)
}

func (h *InstructionHandler) List(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	instructions, err := h.svc.List(r.Context(), merchantID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Data: instructions})
}

func (h *InstructionHandler) Update(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	var in domain.PaymentInstructionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	pi, err := h.svc.Update(r.Context(), merchantID, chi.URLParam(r, "id"), in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pi)
}

func (h *InstructionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), merchantID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "payment instruction deleted"})
}
