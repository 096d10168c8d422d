package domain

import "time"

// Provider name enums per channel. The set is open-ended in the table but an
// adapter must exist for a (channel, provider) pair to be usable.
const (
	ProviderResend         = "resend"
	ProviderSendGrid       = "sendgrid"
	ProviderMailgun        = "mailgun"
	ProviderSMTP           = "smtp"
	ProviderTwilio         = "twilio"
	ProviderAfricasTalking = "africastalking"
	ProviderTermii         = "termii"
	ProviderSNS            = "sns"
	ProviderWhatsApp       = "whatsapp"
	ProviderTwilioWhatsApp = "twilio_whatsapp"
)

// ProviderConfig is a per-channel, per-provider credential bundle.
// At most one is_default=true row may exist per channel.
type ProviderConfig struct {
	ProviderID  string            `json:"id" dynamodbav:"provider_id"`
	Channel     Channel           `json:"channel" dynamodbav:"channel"`
	Provider    string            `json:"provider" dynamodbav:"provider"`
	Credentials map[string]string `json:"credentials" dynamodbav:"credentials"`
	IsActive    bool              `json:"is_active" dynamodbav:"is_active"`
	IsDefault   bool              `json:"is_default" dynamodbav:"is_default"`
	CreatedAt   time.Time         `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time         `json:"updated" dynamodbav:"updated_at"`
}

type CreateProviderRequest struct {
	Channel     string            `json:"channel" validate:"required,oneof=email sms whatsapp"`
	Provider    string            `json:"provider" validate:"required"`
	Credentials map[string]string `json:"credentials" validate:"required"`
	IsDefault   bool              `json:"is_default"`
}

type UpdateProviderRequest struct {
	Credentials map[string]string `json:"credentials"`
	IsActive    *bool             `json:"is_active"`
}

// requiredCredentials lists the credential keys each (channel, provider)
// pair must carry. Checked at configuration-write time so adapters never
// see a malformed bundle.
var requiredCredentials = map[Channel]map[string][]string{
	ChannelEmail: {
		ProviderResend:   {"api_key", "from_email"},
		ProviderSendGrid: {"api_key", "from_email"},
		ProviderMailgun:  {"api_key", "domain", "from_email"},
		ProviderSMTP:     {"host", "port", "from_email"},
	},
	ChannelSMS: {
		ProviderTwilio:         {"account_sid", "auth_token", "from_number"},
		ProviderAfricasTalking: {"username", "api_key"},
		ProviderTermii:         {"api_key", "sender_id"},
		ProviderSNS:            {"region"},
	},
	ChannelWhatsApp: {
		ProviderWhatsApp:       {"phone_number_id", "access_token"},
		ProviderTwilioWhatsApp: {"account_sid", "auth_token", "from_number"},
	},
}

// RequiredCredentialKeys returns the mandatory credential keys for a
// (channel, provider) pair, or false if the pair is not supported.
func RequiredCredentialKeys(channel Channel, provider string) ([]string, bool) {
	byProvider, ok := requiredCredentials[channel]
	if !ok {
		return nil, false
	}
	keys, ok := byProvider[provider]
	return keys, ok
}
