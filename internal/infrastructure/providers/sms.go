package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const (
	twilioBaseURL         = "https://api.twilio.com"
	africastalkingBaseURL = "https://api.africastalking.com"
	termiiBaseURL         = "https://api.ng.termii.com"
)

// twilioAdapter serves both plain SMS and WhatsApp; the Messages API is the
// same endpoint, with "whatsapp:"-prefixed addresses selecting the channel.
type twilioAdapter struct {
	creds    map[string]string
	client   *http.Client
	baseURL  string
	whatsapp bool
}

func newTwilio(creds map[string]string, client *http.Client, whatsapp bool) *twilioAdapter {
	return &twilioAdapter{creds: creds, client: client, baseURL: twilioBaseURL, whatsapp: whatsapp}
}

func (a *twilioAdapter) Send(ctx context.Context, msg Message) Result {
	to := msg.Recipient
	from := a.creds["from_number"]
	if a.whatsapp {
		to = "whatsapp:" + to
		from = "whatsapp:" + from
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Body", msg.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", a.baseURL, a.creds["account_sid"])

	status, body, err := postForm(ctx, a.client, endpoint, nil, a.creds["account_sid"], a.creds["auth_token"], form)
	if err != nil {
		return failure(err)
	}
	if !is2xx(status) {
		return Result{Error: fmt.Sprintf("twilio returned status %d: %s", status, body), Response: body}
	}
	return Result{Success: true, Response: body}
}

type africastalkingAdapter struct {
	creds   map[string]string
	client  *http.Client
	baseURL string
}

func newAfricasTalking(creds map[string]string, client *http.Client) *africastalkingAdapter {
	return &africastalkingAdapter{creds: creds, client: client, baseURL: africastalkingBaseURL}
}

type africastalkingResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			Number string `json:"number"`
			Status string `json:"status"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

func (a *africastalkingAdapter) Send(ctx context.Context, msg Message) Result {
	form := url.Values{}
	form.Set("username", a.creds["username"])
	form.Set("to", msg.Recipient)
	form.Set("message", msg.Body)
	if sender := a.creds["sender_id"]; sender != "" {
		form.Set("from", sender)
	}

	headers := map[string]string{
		"apiKey": a.creds["api_key"],
		"Accept": "application/json",
	}

	status, body, err := postForm(ctx, a.client, a.baseURL+"/version1/messaging", headers, "", "", form)
	if err != nil {
		return failure(err)
	}
	if !is2xx(status) {
		return Result{Error: fmt.Sprintf("africastalking returned status %d: %s", status, body), Response: body}
	}

	// An HTTP 2xx from this API does not mean acceptance; the per-recipient
	// status inside the body is authoritative.
	var parsed africastalkingResponse
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return Result{Error: "africastalking: " + err.Error(), Response: body}
	}
	recipients := parsed.SMSMessageData.Recipients
	if len(recipients) == 0 {
		return Result{Error: "africastalking: no recipients in response: " + parsed.SMSMessageData.Message, Response: body}
	}
	if recipients[0].Status != "Success" {
		return Result{Error: "africastalking: recipient status " + recipients[0].Status, Response: body}
	}
	return Result{Success: true, Response: body}
}

type termiiAdapter struct {
	creds   map[string]string
	client  *http.Client
	baseURL string
}

func newTermii(creds map[string]string, client *http.Client) *termiiAdapter {
	return &termiiAdapter{creds: creds, client: client, baseURL: termiiBaseURL}
}

type termiiResponse struct {
	Code      string `json:"code"`
	MessageID string `json:"message_id"`
	Message   string `json:"message"`
}

func (a *termiiAdapter) Send(ctx context.Context, msg Message) Result {
	payload := map[string]interface{}{
		"to":      msg.Recipient,
		"from":    a.creds["sender_id"],
		"sms":     msg.Body,
		"type":    "plain",
		"channel": "generic",
		"api_key": a.creds["api_key"],
	}

	status, body, err := postJSON(ctx, a.client, a.baseURL+"/api/sms/send", nil, payload)
	if err != nil {
		return failure(err)
	}

	// Termii signals failure through response.code, not the HTTP status.
	var parsed termiiResponse
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return Result{Error: fmt.Sprintf("termii returned status %d: %s", status, body), Response: body}
	}
	if parsed.Code != "ok" {
		return Result{Error: "termii: code " + parsed.Code + ": " + parsed.Message, Response: body}
	}
	return Result{Success: true, Response: body}
}
