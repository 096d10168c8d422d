package notification

import (
	"testing"

	"github.com/payssd/payssd-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestResolveBuiltinKnownEvents(t *testing.T) {
	events := []string{
		domain.EventPaymentCreated,
		domain.EventPaymentConfirmed,
		domain.EventPaymentRejected,
		domain.EventSubscriptionCreated,
		domain.EventSubscriptionRenewed,
		domain.EventSubscriptionExpiring,
		domain.EventSubscriptionExpired,
		domain.EventSubscriptionCancelled,
		domain.EventMerchantSignup,
		domain.EventMerchantVerified,
		domain.EventCustomerCreated,
		domain.EventPlatformAlert,
		domain.EventWebhookFailed,
	}

	for _, ev := range events {
		tpl := resolveBuiltin(ev)
		assert.NotEmpty(t, tpl.Body, "event %s has no body", ev)
	}
}

func TestResolveBuiltinUnknownEventFallsBack(t *testing.T) {
	tpl := resolveBuiltin("order.shipped")

	assert.Equal(t, "Notification", tpl.Subject)
	assert.Equal(t, "{{message}}", tpl.Body)
}

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	tpl := Template{Subject: "Hello {{name}}", Body: "Hi {{name}}, you owe {{amount}}"}

	got := render(tpl, map[string]interface{}{"name": "Ann", "amount": 2500})

	assert.Equal(t, "Hello Ann", got.Subject)
	assert.Equal(t, "Hi Ann, you owe 2500", got.Body)
}

func TestRenderLeavesMissingKeys(t *testing.T) {
	tpl := Template{Body: "Hi {{name}}"}

	got := render(tpl, map[string]interface{}{})

	assert.Equal(t, "Hi {{name}}", got.Body)
}

func TestRenderRepeatedPlaceholder(t *testing.T) {
	tpl := Template{Body: "{{name}} and {{name}} again"}

	got := render(tpl, map[string]interface{}{"name": "Ann"})

	assert.Equal(t, "Ann and Ann again", got.Body)
}
