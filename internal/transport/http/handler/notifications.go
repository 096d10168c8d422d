package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/payssd/payssd-api/internal/application/notification"
	"github.com/payssd/payssd-api/internal/domain"
	"github.com/payssd/payssd-api/internal/pkg/validate"
)

type logStore interface {
	ListByChannel(ctx context.Context, channel domain.Channel, limit int32) ([]domain.NotificationLog, error)
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.NotificationLog, string, error)
}

// NotificationHandler handles the admin views of the dispatch pipeline:
// the delivery log and ad-hoc test sends.
type NotificationHandler struct {
	svc  notification.Service
	logs logStore
}

func NewNotificationHandler(svc notification.Service, logs logStore) *NotificationHandler {
	return &NotificationHandler{svc: svc, logs: logs}
}

// ListLogs returns delivery log rows, optionally filtered by channel.
func (h *NotificationHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit, cursor := parseListQuery(r)
	if ch := r.URL.Query().Get("channel"); ch != "" {
		rows, err := h.logs.ListByChannel(r.Context(), domain.Channel(ch), int32(limit))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ListEnvelope{Data: rows})
		return
	}
	rows, next, err := h.logs.ScanPage(r.Context(), int32(limit), cursor)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Data: rows, NextCursor: next})
}

type testSendRequest struct {
	Channel string `json:"channel" validate:"required,oneof=email sms whatsapp"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Message string `json:"message" validate:"required"`
}

// TestSend pushes a one-off message through the live provider
// configuration so an admin can verify credentials end to end.
func (h *NotificationHandler) TestSend(w http.ResponseWriter, r *http.Request) {
	adminID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req testSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	result := h.svc.Send(r.Context(), &domain.NotificationPayload{
		EventType:      domain.EventPlatformAlert,
		RecipientType:  domain.RecipientAdmin,
		RecipientID:    adminID,
		RecipientEmail: req.Email,
		RecipientPhone: req.Phone,
		Channels:       []domain.Channel{domain.Channel(req.Channel)},
		Data:           map[string]interface{}{"message": req.Message},
	})
	writeJSON(w, http.StatusOK, result)
}
