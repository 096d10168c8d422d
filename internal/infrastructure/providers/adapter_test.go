package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/payssd/payssd-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *http.Client {
	return NewHTTPClient(5 * time.Second)
}

func TestNewUnknownPair(t *testing.T) {
	_, err := New(domain.ChannelEmail, "pigeon", nil, testClient())
	require.Error(t, err)

	_, err = New(domain.ChannelSMS, domain.ProviderResend, nil, testClient())
	require.Error(t, err)
}

func TestResendSend(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"re_123"}`))
	}))
	defer srv.Close()

	a := newResend(map[string]string{
		"api_key":    "rk_test",
		"from_email": "billing@payssd.test",
		"from_name":  "PaySSD",
	}, srv.Client())
	a.baseURL = srv.URL

	res := a.Send(context.Background(), Message{Recipient: "m@shop.test", Subject: "Hi", Body: "<p>hi</p>"})

	require.True(t, res.Success)
	assert.Equal(t, "Bearer rk_test", gotAuth)
	assert.Equal(t, "PaySSD <billing@payssd.test>", gotPayload["from"])
	assert.Equal(t, "Hi", gotPayload["subject"])
	assert.Contains(t, res.Response, "re_123")
}

func TestResendSendNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	a := newResend(map[string]string{"api_key": "rk", "from_email": "x@y.test"}, srv.Client())
	a.baseURL = srv.URL

	res := a.Send(context.Background(), Message{Recipient: "m@shop.test"})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "422")
}

func TestResendSendNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	a := newResend(map[string]string{"api_key": "rk", "from_email": "x@y.test"}, testClient())
	a.baseURL = srv.URL

	res := a.Send(context.Background(), Message{Recipient: "m@shop.test"})

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestSendGridSend(t *testing.T) {
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	a := newSendGrid(map[string]string{"api_key": "sg", "from_email": "x@y.test"}, srv.Client())
	a.baseURL = srv.URL

	res := a.Send(context.Background(), Message{Recipient: "m@shop.test", Subject: "S", Body: "B"})

	require.True(t, res.Success)
	assert.Empty(t, res.Response)
	assert.Equal(t, "S", gotPayload["subject"])
}

func TestMailgunSend(t *testing.T) {
	var gotUser, gotPass string
	var gotTo string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotTo = r.Form.Get("to")
		assert.Equal(t, "/v3/mg.payssd.test/messages", r.URL.Path)
		w.Write([]byte(`{"id":"<msg@mg>","message":"Queued"}`))
	}))
	defer srv.Close()

	a := newMailgun(map[string]string{
		"api_key":    "key-abc",
		"domain":     "mg.payssd.test",
		"from_email": "x@y.test",
	}, srv.Client())
	a.baseURL = srv.URL

	res := a.Send(context.Background(), Message{Recipient: "m@shop.test", Subject: "S", Body: "B"})

	require.True(t, res.Success)
	assert.Equal(t, "api", gotUser)
	assert.Equal(t, "key-abc", gotPass)
	assert.Equal(t, "m@shop.test", gotTo)
	assert.Contains(t, res.Response, "Queued")
}

func TestTwilioSMSSend(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"To":   r.Form.Get("To"),
			"From": r.Form.Get("From"),
		}
		assert.Equal(t, "/2010-04-01/Accounts/ACxxx/Messages.json", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SMyyy"}`))
	}))
	defer srv.Close()

	a := newTwilio(map[string]string{
		"account_sid": "ACxxx",
		"auth_token":  "tok",
		"from_number": "+15550100",
	}, srv.Client(), false)
	a.baseURL = srv.URL

	res := a.Send(context.Background(), Message{Recipient: "+2348012345678", Body: "hello"})

	require.True(t, res.Success)
	assert.Equal(t, "+2348012345678", gotForm["To"])
	assert.Equal(t, "+15550100", gotForm["From"])
}

func TestTwilioWhatsAppPrefixesAddresses(t *testing.T) {
	var gotTo, gotFrom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotTo = r.Form.Get("To")
		gotFrom = r.Form.Get("From")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SMzzz"}`))
	}))
	defer srv.Close()

	a := newTwilio(map[string]string{
		"account_sid": "ACxxx",
		"auth_token":  "tok",
		"from_number": "+15550100",
	}, srv.Client(), true)
	a.baseURL = srv.URL

	res := a.Send(context.Background(), Message{Recipient: "+2348012345678", Body: "hello"})

	require.True(t, res.Success)
	assert.Equal(t, "whatsapp:+2348012345678", gotTo)
	assert.Equal(t, "whatsapp:+15550100", gotFrom)
}

func TestAfricasTalkingRecipientStatusFailure(t *testing.T) {
	// HTTP 200 with a non-Success recipient status must still be a failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "at_key", r.Header.Get("apiKey"))
		w.Write([]byte(`{"SMSMessageData":{"Message":"Sent to 0/1","Recipients":[{"number":"+234801","status":"InsufficientBalance"}]}}`))
	}))
	defer srv.Close()

	a := newAfricasTalking(map[string]string{"username": "payssd", "api_key": "at_key"}, srv.Client())
	a.baseURL = srv.URL

	res := a.Send(context.Background(), Message{Recipient: "+234801", Body: "hi"})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "InsufficientBalance")
}

func TestAfricasTalkingSuccess(t *testing.T) {
	var gotFrom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotFrom = r.Form.Get("from")
		w.Write([]byte(`{"SMSMessageData":{"Message":"Sent to 1/1","Recipients":[{"number":"+234801","status":"Success"}]}}`))
	}))
	defer srv.Close()

	a := newAfricasTalking(map[string]string{
		"username":  "payssd",
		"api_key":   "at_key",
		"sender_id": "PAYSSD",
	}, srv.Client())
	a.baseURL = srv.URL

	res := a.Send(context.Background(), Message{Recipient: "+234801", Body: "hi"})

	require.True(t, res.Success)
	assert.Equal(t, "PAYSSD", gotFrom)
}

func TestAfricasTalkingEmptyRecipients(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"SMSMessageData":{"Message":"InvalidPhoneNumber","Recipients":[]}}`))
	}))
	defer srv.Close()

	a := newAfricasTalking(map[string]string{"username": "payssd", "api_key": "at_key"}, srv.Client())
	a.baseURL = srv.URL

	res := a.Send(context.Background(), Message{Recipient: "bogus", Body: "hi"})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "InvalidPhoneNumber")
}

func TestTermiiCodeOK(t *testing.T) {
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(`{"code":"ok","message_id":"9122821270554876574"}`))
	}))
	defer srv.Close()

	a := newTermii(map[string]string{"api_key": "tk", "sender_id": "PAYSSD"}, srv.Client())
	a.baseURL = srv.URL

	res := a.Send(context.Background(), Message{Recipient: "+234801", Body: "hi"})

	require.True(t, res.Success)
	assert.Equal(t, "PAYSSD", gotPayload["from"])
	assert.Equal(t, "tk", gotPayload["api_key"])
}

func TestTermiiCodeNotOK(t *testing.T) {
	// Termii reports failure in the body code, not the HTTP status.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"insufficient_balance","message":"Insufficient balance"}`))
	}))
	defer srv.Close()

	a := newTermii(map[string]string{"api_key": "tk", "sender_id": "PAYSSD"}, srv.Client())
	a.baseURL = srv.URL

	res := a.Send(context.Background(), Message{Recipient: "+234801", Body: "hi"})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "insufficient_balance")
}

func TestWhatsAppStripsLeadingPlus(t *testing.T) {
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/555001/messages", r.URL.Path)
		assert.Equal(t, "Bearer wa_token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(`{"messages":[{"id":"wamid.abc"}]}`))
	}))
	defer srv.Close()

	a := newWhatsApp(map[string]string{"phone_number_id": "555001", "access_token": "wa_token"}, srv.Client())
	a.baseURL = srv.URL

	res := a.Send(context.Background(), Message{Recipient: "+2348012345678", Body: "hi"})

	require.True(t, res.Success)
	assert.Equal(t, "2348012345678", gotPayload["to"])
	assert.Equal(t, "whatsapp", gotPayload["messaging_product"])
}
