package domain

import "time"

// NotificationTemplate is a stored override of the built-in default for a
// given (event_type, channel) pair. Placeholders use the literal {{key}}
// syntax. No escaping, no nested lookups.
type NotificationTemplate struct {
	TemplateID string    `json:"id" dynamodbav:"template_id"`
	EventType  string    `json:"event_type" dynamodbav:"event_type"`
	Channel    Channel   `json:"channel" dynamodbav:"channel"`
	Subject    string    `json:"subject,omitempty" dynamodbav:"subject"`
	Body       string    `json:"body" dynamodbav:"body"`
	IsActive   bool      `json:"is_active" dynamodbav:"is_active"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

type TemplateInput struct {
	EventType string `json:"event_type" validate:"required"`
	Channel   string `json:"channel" validate:"required,oneof=email sms whatsapp"`
	Subject   string `json:"subject"`
	Body      string `json:"body" validate:"required"`
	IsActive  *bool  `json:"is_active"`
}
