package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/payssd/payssd-api/internal/domain"
	"github.com/payssd/payssd-api/internal/infrastructure/providers"
	"github.com/payssd/payssd-api/internal/pkg/id"
)

type ProviderStore interface {
	ActiveForChannel(ctx context.Context, channel domain.Channel) (*domain.ProviderConfig, error)
}

type TemplateStore interface {
	GetActive(ctx context.Context, eventType string, channel domain.Channel) (*domain.NotificationTemplate, error)
}

type LogStore interface {
	Put(ctx context.Context, l *domain.NotificationLog) error
}

type MerchantStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// adapterFactory matches providers.New; swapped out in tests.
type adapterFactory func(channel domain.Channel, provider string, creds map[string]string, client *http.Client) (providers.Adapter, error)

// Service fans a notification out across the payload's channels. Dispatch is
// stateless and single-pass: one synchronous attempt per channel, one log
// row per attempt, no retries.
type Service interface {
	Send(ctx context.Context, payload *domain.NotificationPayload) *domain.SendResult
	NotifyAdmin(ctx context.Context, eventType string, data map[string]interface{}, channels ...domain.Channel) *domain.SendResult
	NotifyMerchant(ctx context.Context, merchantID, eventType string, data map[string]interface{}, channels ...domain.Channel) *domain.SendResult
	NotifyCustomer(ctx context.Context, email, phone, eventType string, data map[string]interface{}, channels ...domain.Channel) *domain.SendResult
}

type service struct {
	providers  ProviderStore
	templates  TemplateStore
	logs       LogStore
	users      MerchantStore
	client     *http.Client
	newAdapter adapterFactory
	adminEmail string
	adminPhone string
}

func NewService(providerStore ProviderStore, templateStore TemplateStore, logStore LogStore, userStore MerchantStore, client *http.Client, adminEmail, adminPhone string) Service {
	return &service{
		providers:  providerStore,
		templates:  templateStore,
		logs:       logStore,
		users:      userStore,
		client:     client,
		newAdapter: providers.New,
		adminEmail: adminEmail,
		adminPhone: adminPhone,
	}
}

// Send attempts each requested channel independently. A per-channel failure
// never aborts the other channels, and the overall result is a success if
// any channel succeeded.
func (s *service) Send(ctx context.Context, payload *domain.NotificationPayload) *domain.SendResult {
	out := &domain.SendResult{Results: make([]domain.ChannelResult, 0, len(payload.Channels))}
	for _, ch := range payload.Channels {
		res := s.sendChannel(ctx, payload, ch)
		out.Results = append(out.Results, res)
		if res.Success {
			out.Success = true
		}
	}
	return out
}

func (s *service) sendChannel(ctx context.Context, payload *domain.NotificationPayload, ch domain.Channel) domain.ChannelResult {
	cfg, err := s.providers.ActiveForChannel(ctx, ch)
	if err != nil {
		return domain.ChannelResult{
			Channel: ch,
			Error:   fmt.Sprintf("No active %s provider configured", ch),
		}
	}

	recipient := payload.RecipientEmail
	if ch != domain.ChannelEmail {
		recipient = payload.RecipientPhone
	}

	tpl := s.resolve(ctx, payload.EventType, ch)
	rendered := render(tpl, payload.Data)

	res := domain.ChannelResult{Channel: ch, Provider: cfg.Provider}

	adapter, err := s.newAdapter(ch, cfg.Provider, cfg.Credentials, s.client)
	if err != nil {
		res.Error = err.Error()
	} else {
		sent := adapter.Send(ctx, providers.Message{
			Recipient: recipient,
			Subject:   rendered.Subject,
			Body:      rendered.Body,
		})
		res.Success = sent.Success
		res.Error = sent.Error
		res.Response = sent.Response
	}

	s.writeLog(ctx, payload, ch, cfg.ProviderID, recipient, rendered, res)
	return res
}

// resolve prefers an active stored override for the exact (event_type,
// channel) pair and falls back to the built-in table.
func (s *service) resolve(ctx context.Context, eventType string, ch domain.Channel) Template {
	stored, err := s.templates.GetActive(ctx, eventType, ch)
	if err == nil {
		return Template{Subject: stored.Subject, Body: stored.Body}
	}
	return resolveBuiltin(eventType)
}

// writeLog appends the audit row for a channel attempt. The write is
// best-effort: a storage error is logged and does not change the result.
func (s *service) writeLog(ctx context.Context, payload *domain.NotificationPayload, ch domain.Channel, providerID, recipient string, rendered Template, res domain.ChannelResult) {
	status := domain.LogStatusFailed
	if res.Success {
		status = domain.LogStatusSent
	}
	l := &domain.NotificationLog{
		LogID:            id.New(),
		ProviderID:       providerID,
		Channel:          ch,
		Recipient:        recipient,
		RecipientType:    string(payload.RecipientType),
		EventType:        payload.EventType,
		Subject:          rendered.Subject,
		Body:             rendered.Body,
		Status:           status,
		ErrorMessage:     res.Error,
		ProviderResponse: res.Response,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.logs.Put(ctx, l); err != nil {
		slog.Warn("notification log write failed",
			"channel", ch, "event_type", payload.EventType, "error", err)
	}
}

func (s *service) NotifyAdmin(ctx context.Context, eventType string, data map[string]interface{}, channels ...domain.Channel) *domain.SendResult {
	if len(channels) == 0 {
		channels = []domain.Channel{domain.ChannelEmail}
	}
	return s.Send(ctx, &domain.NotificationPayload{
		EventType:      eventType,
		RecipientType:  domain.RecipientAdmin,
		RecipientEmail: s.adminEmail,
		RecipientPhone: s.adminPhone,
		Channels:       channels,
		Data:           data,
	})
}

func (s *service) NotifyMerchant(ctx context.Context, merchantID, eventType string, data map[string]interface{}, channels ...domain.Channel) *domain.SendResult {
	if len(channels) == 0 {
		channels = []domain.Channel{domain.ChannelEmail}
	}
	u, err := s.users.Get(ctx, merchantID)
	if err != nil {
		return &domain.SendResult{Error: "Merchant not found"}
	}
	phone := ""
	if u.Phone != nil {
		phone = *u.Phone
	}
	return s.Send(ctx, &domain.NotificationPayload{
		EventType:      eventType,
		RecipientType:  domain.RecipientMerchant,
		RecipientID:    merchantID,
		RecipientEmail: u.Email,
		RecipientPhone: phone,
		Channels:       channels,
		Data:           data,
	})
}

func (s *service) NotifyCustomer(ctx context.Context, email, phone, eventType string, data map[string]interface{}, channels ...domain.Channel) *domain.SendResult {
	if len(channels) == 0 {
		channels = []domain.Channel{domain.ChannelSMS}
	}
	return s.Send(ctx, &domain.NotificationPayload{
		EventType:      eventType,
		RecipientType:  domain.RecipientCustomer,
		RecipientEmail: email,
		RecipientPhone: phone,
		Channels:       channels,
		Data:           data,
	})
}
