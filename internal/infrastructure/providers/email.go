package providers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/smtp"
	"net/url"
)

const (
	resendBaseURL   = "https://api.resend.com"
	sendgridBaseURL = "https://api.sendgrid.com"
	mailgunBaseURL  = "https://api.mailgun.net"
)

// fromAddress formats the sender as "Name <email>" when from_name is set.
func fromAddress(creds map[string]string) string {
	if name := creds["from_name"]; name != "" {
		return fmt.Sprintf("%s <%s>", name, creds["from_email"])
	}
	return creds["from_email"]
}

type resendAdapter struct {
	creds   map[string]string
	client  *http.Client
	baseURL string
}

func newResend(creds map[string]string, client *http.Client) *resendAdapter {
	return &resendAdapter{creds: creds, client: client, baseURL: resendBaseURL}
}

func (a *resendAdapter) Send(ctx context.Context, msg Message) Result {
	payload := map[string]interface{}{
		"from":    fromAddress(a.creds),
		"to":      []string{msg.Recipient},
		"subject": msg.Subject,
		"html":    msg.Body,
	}
	headers := map[string]string{"Authorization": "Bearer " + a.creds["api_key"]}

	status, body, err := postJSON(ctx, a.client, a.baseURL+"/emails", headers, payload)
	if err != nil {
		return failure(err)
	}
	if !is2xx(status) {
		return Result{Error: fmt.Sprintf("resend returned status %d: %s", status, body), Response: body}
	}
	return Result{Success: true, Response: body}
}

type sendgridAdapter struct {
	creds   map[string]string
	client  *http.Client
	baseURL string
}

func newSendGrid(creds map[string]string, client *http.Client) *sendgridAdapter {
	return &sendgridAdapter{creds: creds, client: client, baseURL: sendgridBaseURL}
}

func (a *sendgridAdapter) Send(ctx context.Context, msg Message) Result {
	payload := map[string]interface{}{
		"personalizations": []map[string]interface{}{
			{"to": []map[string]string{{"email": msg.Recipient}}},
		},
		"from": map[string]string{
			"email": a.creds["from_email"],
			"name":  a.creds["from_name"],
		},
		"subject": msg.Subject,
		"content": []map[string]string{
			{"type": "text/html", "value": msg.Body},
		},
	}
	headers := map[string]string{"Authorization": "Bearer " + a.creds["api_key"]}

	status, body, err := postJSON(ctx, a.client, a.baseURL+"/v3/mail/send", headers, payload)
	if err != nil {
		return failure(err)
	}
	if !is2xx(status) {
		return Result{Error: fmt.Sprintf("sendgrid returned status %d: %s", status, body), Response: body}
	}
	// SendGrid replies 202 with an empty body on success.
	return Result{Success: true}
}

type mailgunAdapter struct {
	creds   map[string]string
	client  *http.Client
	baseURL string
}

func newMailgun(creds map[string]string, client *http.Client) *mailgunAdapter {
	return &mailgunAdapter{creds: creds, client: client, baseURL: mailgunBaseURL}
}

func (a *mailgunAdapter) Send(ctx context.Context, msg Message) Result {
	form := url.Values{}
	form.Set("from", fromAddress(a.creds))
	form.Set("to", msg.Recipient)
	form.Set("subject", msg.Subject)
	form.Set("html", msg.Body)

	endpoint := fmt.Sprintf("%s/v3/%s/messages", a.baseURL, a.creds["domain"])

	status, body, err := postForm(ctx, a.client, endpoint, nil, "api", a.creds["api_key"], form)
	if err != nil {
		return failure(err)
	}
	if !is2xx(status) {
		return Result{Error: fmt.Sprintf("mailgun returned status %d: %s", status, body), Response: body}
	}
	return Result{Success: true, Response: body}
}

// smtpMailer delivers over plain SMTP, for merchants running their own relay.
type smtpMailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func newSMTPMailer(creds map[string]string) *smtpMailer {
	return &smtpMailer{
		host:     creds["host"],
		port:     creds["port"],
		from:     creds["from_email"],
		username: creds["username"],
		password: creds["password"],
	}
}

func (m *smtpMailer) Send(_ context.Context, msg Message) Result {
	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, msg.Recipient, msg.Subject, msg.Body)
	addr := net.JoinHostPort(m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{msg.Recipient}, []byte(raw)); err != nil {
		return failure(err)
	}
	return Result{Success: true}
}
