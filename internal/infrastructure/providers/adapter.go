package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/payssd/payssd-api/internal/domain"
)

// Message is the normalized send request handed to an adapter.
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// Result normalizes a provider response. Adapters never return errors;
// transport and provider-semantic failures are folded into Success/Error.
type Result struct {
	Success  bool
	Error    string
	Response string
}

// Adapter translates a normalized message into exactly one outbound request
// against a specific third-party API.
type Adapter interface {
	Send(ctx context.Context, msg Message) Result
}

// NewHTTPClient builds the client shared by all HTTP-backed adapters.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// New returns the adapter for a (channel, provider) pair, or an error when
// no adapter exists for the combination.
func New(channel domain.Channel, provider string, creds map[string]string, client *http.Client) (Adapter, error) {
	switch channel {
	case domain.ChannelEmail:
		switch provider {
		case domain.ProviderResend:
			return newResend(creds, client), nil
		case domain.ProviderSendGrid:
			return newSendGrid(creds, client), nil
		case domain.ProviderMailgun:
			return newMailgun(creds, client), nil
		case domain.ProviderSMTP:
			return newSMTPMailer(creds), nil
		}
	case domain.ChannelSMS:
		switch provider {
		case domain.ProviderTwilio:
			return newTwilio(creds, client, false), nil
		case domain.ProviderAfricasTalking:
			return newAfricasTalking(creds, client), nil
		case domain.ProviderTermii:
			return newTermii(creds, client), nil
		case domain.ProviderSNS:
			return newSNS(creds)
		}
	case domain.ChannelWhatsApp:
		switch provider {
		case domain.ProviderWhatsApp:
			return newWhatsApp(creds, client), nil
		case domain.ProviderTwilioWhatsApp:
			return newTwilio(creds, client, true), nil
		}
	}
	return nil, fmt.Errorf("no adapter for %s/%s", channel, provider)
}

func failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

func readBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return ""
	}
	return string(b)
}

func postJSON(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, payload interface{}) (int, string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	return resp.StatusCode, readBody(resp.Body), nil
}

func postForm(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, basicUser, basicPass string, form url.Values) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if basicUser != "" {
		req.SetBasicAuth(basicUser, basicPass)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	return resp.StatusCode, readBody(resp.Body), nil
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}
