package notification

import (
	"fmt"
	"strings"

	"github.com/payssd/payssd-api/internal/domain"
)

// Template is a subject/body pair before placeholder substitution.
type Template struct {
	Subject string
	Body    string
}

// genericTemplate is the fallback for event types the built-in table does
// not know. Unknown events are not an error.
var genericTemplate = Template{Subject: "Notification", Body: "{{message}}"}

var builtinTemplates = map[string]Template{
	domain.EventPaymentCreated: {
		Subject: "New payment pending confirmation",
		Body:    "A payment of {{amount}} {{currency}} for {{reference_code}} is awaiting your confirmation.",
	},
	domain.EventPaymentConfirmed: {
		Subject: "Payment confirmed",
		Body:    "Your payment of {{amount}} {{currency}} ({{reference_code}}) has been confirmed. Thank you!",
	},
	domain.EventPaymentRejected: {
		Subject: "Payment rejected",
		Body:    "Your payment {{reference_code}} could not be confirmed. Reason: {{reason}}",
	},
	domain.EventSubscriptionCreated: {
		Subject: "Subscription created",
		Body:    "Your subscription to {{product_name}} has been created and is pending payment. Reference: {{reference_code}}",
	},
	domain.EventSubscriptionRenewed: {
		Subject: "Subscription renewed",
		Body:    "Your subscription to {{product_name}} has been renewed until {{period_end}}.",
	},
	domain.EventSubscriptionExpiring: {
		Subject: "Subscription expiring soon",
		Body:    "Your subscription to {{product_name}} expires on {{period_end}}. Renew now to keep access.",
	},
	domain.EventSubscriptionExpired: {
		Subject: "Subscription expired",
		Body:    "Your subscription to {{product_name}} has expired.",
	},
	domain.EventSubscriptionCancelled: {
		Subject: "Subscription cancelled",
		Body:    "Your subscription to {{product_name}} has been cancelled.",
	},
	domain.EventMerchantSignup: {
		Subject: "New merchant signup",
		Body:    "{{business_name}} ({{email}}) just created a merchant account.",
	},
	domain.EventMerchantVerified: {
		Subject: "Account verified",
		Body:    "Hi {{business_name}}, your account has been verified. You can now accept payments.",
	},
	domain.EventCustomerCreated: {
		Subject: "Welcome",
		Body:    "Hi {{name}}, your account with {{business_name}} has been created.",
	},
	domain.EventPlatformAlert: {
		Subject: "Platform alert",
		Body:    "{{message}}",
	},
	domain.EventWebhookFailed: {
		Subject: "Webhook delivery failed",
		Body:    "Delivery to {{url}} failed: {{error}}",
	},
}

func resolveBuiltin(eventType string) Template {
	if t, ok := builtinTemplates[eventType]; ok {
		return t
	}
	return genericTemplate
}

// render substitutes every {{key}} present in data. Keys the template uses
// but data omits are left in place, so callers must supply every
// placeholder the template might reference.
func render(t Template, data map[string]interface{}) Template {
	for key, value := range data {
		placeholder := "{{" + key + "}}"
		repl := fmt.Sprintf("%v", value)
		t.Subject = strings.ReplaceAll(t.Subject, placeholder, repl)
		t.Body = strings.ReplaceAll(t.Body, placeholder, repl)
	}
	return t
}
