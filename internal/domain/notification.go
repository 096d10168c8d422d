package domain

import "time"

// Channel is a delivery medium with its own provider roster.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// Channels is the full roster, used for validation and test-sends.
var Channels = []Channel{ChannelEmail, ChannelSMS, ChannelWhatsApp}

// Event types recognised by the built-in template table. Unknown event types
// are not an error; the resolver falls back to a generic template.
const (
	EventPaymentCreated        = "payment.created"
	EventPaymentConfirmed      = "payment.confirmed"
	EventPaymentRejected       = "payment.rejected"
	EventSubscriptionCreated   = "subscription.created"
	EventSubscriptionRenewed   = "subscription.renewed"
	EventSubscriptionExpiring  = "subscription.expiring"
	EventSubscriptionExpired   = "subscription.expired"
	EventSubscriptionCancelled = "subscription.cancelled"
	EventMerchantSignup        = "merchant.signup"
	EventMerchantVerified      = "merchant.verified"
	EventCustomerCreated       = "customer.created"
	EventPlatformAlert         = "platform.alert"
	EventWebhookFailed         = "webhook.failed"
)

// RecipientType identifies who a notification is addressed to.
type RecipientType string

const (
	RecipientAdmin    RecipientType = "admin"
	RecipientMerchant RecipientType = "merchant"
	RecipientCustomer RecipientType = "customer"
)

// NotificationPayload is the ephemeral input to a dispatch. It is constructed
// fresh per call and never persisted.
type NotificationPayload struct {
	EventType      string
	RecipientType  RecipientType
	RecipientID    string
	RecipientEmail string
	RecipientPhone string
	Channels       []Channel
	Data           map[string]interface{}
}

// ChannelResult is the outcome of a single channel attempt.
type ChannelResult struct {
	Channel  Channel `json:"channel"`
	Provider string  `json:"provider,omitempty"`
	Success  bool    `json:"success"`
	Error    string  `json:"error,omitempty"`
	Response string  `json:"response,omitempty"`
}

// SendResult is the overall outcome of a dispatch. Success is true if any
// channel succeeded; callers needing per-channel confirmation inspect Results.
type SendResult struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Results []ChannelResult `json:"results"`
}

// NotificationLog is the append-only audit record, one row per
// (payload, channel) attempt regardless of outcome.
type NotificationLog struct {
	LogID            string    `json:"id" dynamodbav:"log_id"`
	ProviderID       string    `json:"provider_id,omitempty" dynamodbav:"provider_id"`
	Channel          Channel   `json:"channel" dynamodbav:"channel"`
	Recipient        string    `json:"recipient" dynamodbav:"recipient"`
	RecipientType    string    `json:"recipient_type" dynamodbav:"recipient_type"`
	EventType        string    `json:"event_type" dynamodbav:"event_type"`
	Subject          string    `json:"subject,omitempty" dynamodbav:"subject"`
	Body             string    `json:"body" dynamodbav:"body"`
	Status           string    `json:"status" dynamodbav:"status"` // "sent" | "failed"
	ErrorMessage     string    `json:"error_message,omitempty" dynamodbav:"error_message"`
	ProviderResponse string    `json:"provider_response,omitempty" dynamodbav:"provider_response"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
}

const (
	LogStatusSent   = "sent"
	LogStatusFailed = "failed"
)
