package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/payssd/payssd-api/internal/application/content"
)

// 100 MB upload cap.
const maxUploadBytes = 100 << 20

// ContentHandler handles creator content: merchant uploads and the public
// paywall.
type ContentHandler struct {
	svc content.Service
}

func NewContentHandler(svc content.Service) *ContentHandler {
	return &ContentHandler{svc: svc}
}

// Upload accepts a multipart form with a "file" part plus title,
// description and premium fields.
func (h *ContentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field required")
		return
	}
	defer file.Close()

	premium, _ := strconv.ParseBool(r.FormValue("premium"))
	c, err := h.svc.Upload(r.Context(), merchantID, content.UploadInput{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Premium:     premium,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	items, err := h.svc.List(r.Context(), merchantID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Data: items})
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := callerID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), merchantID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "content deleted"})
}

// ListPublic shows a merchant's storefront catalogue, metadata only.
func (h *ContentHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListPublic(r.Context(), chi.URLParam(r, "merchantID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Data: items})
}

// Access hands out a short-lived download URL. Premium items require an
// active subscription reference code in the query string.
func (h *ContentHandler) Access(w http.ResponseWriter, r *http.Request) {
	url, item, err := h.svc.Access(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("reference_code"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"content": item,
		"url":     url,
	})
}
