package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const whatsappBaseURL = "https://graph.facebook.com/v17.0"

type whatsappAdapter struct {
	creds   map[string]string
	client  *http.Client
	baseURL string
}

func newWhatsApp(creds map[string]string, client *http.Client) *whatsappAdapter {
	return &whatsappAdapter{creds: creds, client: client, baseURL: whatsappBaseURL}
}

func (a *whatsappAdapter) Send(ctx context.Context, msg Message) Result {
	// The Cloud API wants the number without the leading "+".
	to := strings.TrimPrefix(msg.Recipient, "+")

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": msg.Body},
	}
	headers := map[string]string{"Authorization": "Bearer " + a.creds["access_token"]}

	endpoint := fmt.Sprintf("%s/%s/messages", a.baseURL, a.creds["phone_number_id"])

	status, body, err := postJSON(ctx, a.client, endpoint, headers, payload)
	if err != nil {
		return failure(err)
	}
	if !is2xx(status) {
		return Result{Error: fmt.Sprintf("whatsapp returned status %d: %s", status, body), Response: body}
	}
	return Result{Success: true, Response: body}
}
