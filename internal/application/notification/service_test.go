package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/payssd/payssd-api/internal/domain"
	"github.com/payssd/payssd-api/internal/infrastructure/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockProviderStore struct{ mock.Mock }

func (m *mockProviderStore) ActiveForChannel(ctx context.Context, channel domain.Channel) (*domain.ProviderConfig, error) {
	args := m.Called(ctx, channel)
	if p, _ := args.Get(0).(*domain.ProviderConfig); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTemplateStore struct{ mock.Mock }

func (m *mockTemplateStore) GetActive(ctx context.Context, eventType string, channel domain.Channel) (*domain.NotificationTemplate, error) {
	args := m.Called(ctx, eventType, channel)
	if t, _ := args.Get(0).(*domain.NotificationTemplate); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLogStore struct{ mock.Mock }

func (m *mockLogStore) Put(ctx context.Context, l *domain.NotificationLog) error {
	return m.Called(ctx, l).Error(0)
}

type mockMerchantStore struct{ mock.Mock }

func (m *mockMerchantStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAdapter struct{ mock.Mock }

func (m *mockAdapter) Send(ctx context.Context, msg providers.Message) providers.Result {
	args := m.Called(ctx, msg)
	return args.Get(0).(providers.Result)
}

// fakeFactory hands out one adapter per channel and counts invocations.
type fakeFactory struct {
	adapters map[domain.Channel]providers.Adapter
	calls    int
}

func (f *fakeFactory) New(ch domain.Channel, provider string, creds map[string]string, client *http.Client) (providers.Adapter, error) {
	f.calls++
	a, ok := f.adapters[ch]
	if !ok {
		return nil, fmt.Errorf("no adapter for %s/%s", ch, provider)
	}
	return a, nil
}

func newTestService(providerStore *mockProviderStore, templateStore *mockTemplateStore, logStore *mockLogStore, userStore *mockMerchantStore, factory *fakeFactory) *service {
	svc := NewService(providerStore, templateStore, logStore, userStore, nil, "admin@payssd.test", "+15550109").(*service)
	svc.newAdapter = factory.New
	return svc
}

// --- tests ---

func TestSendNoActiveProvider(t *testing.T) {
	providerStore := &mockProviderStore{}
	templateStore := &mockTemplateStore{}
	logStore := &mockLogStore{}
	factory := &fakeFactory{}
	svc := newTestService(providerStore, templateStore, logStore, &mockMerchantStore{}, factory)

	providerStore.On("ActiveForChannel", mock.Anything, domain.ChannelEmail).Return(nil, domain.ErrNotFound)

	res := svc.Send(context.Background(), &domain.NotificationPayload{
		EventType:      domain.EventPlatformAlert,
		RecipientEmail: "m@shop.test",
		Channels:       []domain.Channel{domain.ChannelEmail},
		Data:           map[string]interface{}{"message": "hi"},
	})

	assert.False(t, res.Success)
	require.Len(t, res.Results, 1)
	assert.False(t, res.Results[0].Success)
	assert.Equal(t, "No active email provider configured", res.Results[0].Error)
	assert.Equal(t, 0, factory.calls)
	logStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSendAnyChannelSuccessIsOverallSuccess(t *testing.T) {
	providerStore := &mockProviderStore{}
	templateStore := &mockTemplateStore{}
	logStore := &mockLogStore{}
	emailAdapter := &mockAdapter{}
	smsAdapter := &mockAdapter{}
	factory := &fakeFactory{adapters: map[domain.Channel]providers.Adapter{
		domain.ChannelEmail: emailAdapter,
		domain.ChannelSMS:   smsAdapter,
	}}
	svc := newTestService(providerStore, templateStore, logStore, &mockMerchantStore{}, factory)

	providerStore.On("ActiveForChannel", mock.Anything, domain.ChannelEmail).
		Return(&domain.ProviderConfig{ProviderID: "p-email", Provider: domain.ProviderResend}, nil)
	providerStore.On("ActiveForChannel", mock.Anything, domain.ChannelSMS).
		Return(&domain.ProviderConfig{ProviderID: "p-sms", Provider: domain.ProviderTermii}, nil)
	templateStore.On("GetActive", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	logStore.On("Put", mock.Anything, mock.Anything).Return(nil)

	emailAdapter.On("Send", mock.Anything, mock.Anything).
		Return(providers.Result{Success: false, Error: "dial tcp: connection refused"})
	smsAdapter.On("Send", mock.Anything, mock.Anything).
		Return(providers.Result{Success: true})

	res := svc.Send(context.Background(), &domain.NotificationPayload{
		EventType:      domain.EventPaymentConfirmed,
		RecipientEmail: "m@shop.test",
		RecipientPhone: "+234801",
		Channels:       []domain.Channel{domain.ChannelEmail, domain.ChannelSMS},
		Data:           map[string]interface{}{"amount": "2500", "currency": "NGN", "reference_code": "PSD-ABCD1234"},
	})

	assert.True(t, res.Success)
	require.Len(t, res.Results, 2)
	assert.False(t, res.Results[0].Success)
	assert.NotEmpty(t, res.Results[0].Error)
	assert.True(t, res.Results[1].Success)

	// one log row per channel attempt regardless of outcome
	logStore.AssertNumberOfCalls(t, "Put", 2)
}

func TestSendWritesLogRowPerAttempt(t *testing.T) {
	providerStore := &mockProviderStore{}
	templateStore := &mockTemplateStore{}
	logStore := &mockLogStore{}
	adapter := &mockAdapter{}
	factory := &fakeFactory{adapters: map[domain.Channel]providers.Adapter{domain.ChannelSMS: adapter}}
	svc := newTestService(providerStore, templateStore, logStore, &mockMerchantStore{}, factory)

	providerStore.On("ActiveForChannel", mock.Anything, domain.ChannelSMS).
		Return(&domain.ProviderConfig{ProviderID: "p-sms", Provider: domain.ProviderTwilio}, nil)
	templateStore.On("GetActive", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	adapter.On("Send", mock.Anything, mock.Anything).
		Return(providers.Result{Success: false, Error: "twilio returned status 401"})

	var logged *domain.NotificationLog
	logStore.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		logged = args.Get(1).(*domain.NotificationLog)
	}).Return(nil)

	svc.Send(context.Background(), &domain.NotificationPayload{
		EventType:      domain.EventPaymentCreated,
		RecipientType:  domain.RecipientMerchant,
		RecipientPhone: "+234801",
		Channels:       []domain.Channel{domain.ChannelSMS},
		Data:           map[string]interface{}{"amount": "100", "currency": "NGN", "reference_code": "PSD-XXXXXXXX"},
	})

	require.NotNil(t, logged)
	assert.Equal(t, domain.LogStatusFailed, logged.Status)
	assert.Equal(t, "p-sms", logged.ProviderID)
	assert.Equal(t, "+234801", logged.Recipient)
	assert.Equal(t, "merchant", logged.RecipientType)
	assert.Equal(t, "twilio returned status 401", logged.ErrorMessage)
	assert.NotEmpty(t, logged.LogID)
}

func TestSendLogWriteFailureDoesNotChangeResult(t *testing.T) {
	providerStore := &mockProviderStore{}
	templateStore := &mockTemplateStore{}
	logStore := &mockLogStore{}
	adapter := &mockAdapter{}
	factory := &fakeFactory{adapters: map[domain.Channel]providers.Adapter{domain.ChannelEmail: adapter}}
	svc := newTestService(providerStore, templateStore, logStore, &mockMerchantStore{}, factory)

	providerStore.On("ActiveForChannel", mock.Anything, domain.ChannelEmail).
		Return(&domain.ProviderConfig{ProviderID: "p1", Provider: domain.ProviderResend}, nil)
	templateStore.On("GetActive", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	adapter.On("Send", mock.Anything, mock.Anything).Return(providers.Result{Success: true})
	logStore.On("Put", mock.Anything, mock.Anything).Return(errors.New("table throttled"))

	res := svc.Send(context.Background(), &domain.NotificationPayload{
		EventType:      domain.EventPlatformAlert,
		RecipientEmail: "m@shop.test",
		Channels:       []domain.Channel{domain.ChannelEmail},
		Data:           map[string]interface{}{"message": "hi"},
	})

	assert.True(t, res.Success)
}

func TestSendUsesStoredTemplateOverride(t *testing.T) {
	providerStore := &mockProviderStore{}
	templateStore := &mockTemplateStore{}
	logStore := &mockLogStore{}
	adapter := &mockAdapter{}
	factory := &fakeFactory{adapters: map[domain.Channel]providers.Adapter{domain.ChannelEmail: adapter}}
	svc := newTestService(providerStore, templateStore, logStore, &mockMerchantStore{}, factory)

	providerStore.On("ActiveForChannel", mock.Anything, domain.ChannelEmail).
		Return(&domain.ProviderConfig{ProviderID: "p1", Provider: domain.ProviderSendGrid}, nil)
	templateStore.On("GetActive", mock.Anything, domain.EventPaymentConfirmed, domain.ChannelEmail).
		Return(&domain.NotificationTemplate{Subject: "Receipt {{reference_code}}", Body: "Paid {{amount}}"}, nil)
	logStore.On("Put", mock.Anything, mock.Anything).Return(nil)

	var sent providers.Message
	adapter.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(providers.Message)
	}).Return(providers.Result{Success: true})

	svc.Send(context.Background(), &domain.NotificationPayload{
		EventType:      domain.EventPaymentConfirmed,
		RecipientEmail: "m@shop.test",
		Channels:       []domain.Channel{domain.ChannelEmail},
		Data:           map[string]interface{}{"reference_code": "PSD-ABCD1234", "amount": "2500"},
	})

	assert.Equal(t, "Receipt PSD-ABCD1234", sent.Subject)
	assert.Equal(t, "Paid 2500", sent.Body)
	assert.Equal(t, "m@shop.test", sent.Recipient)
}

func TestNotifyMerchantNotFound(t *testing.T) {
	providerStore := &mockProviderStore{}
	userStore := &mockMerchantStore{}
	factory := &fakeFactory{}
	svc := newTestService(providerStore, &mockTemplateStore{}, &mockLogStore{}, userStore, factory)

	userStore.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	res := svc.NotifyMerchant(context.Background(), "missing", domain.EventPaymentCreated, nil)

	assert.False(t, res.Success)
	assert.Equal(t, "Merchant not found", res.Error)
	assert.Empty(t, res.Results)
	assert.Equal(t, 0, factory.calls)
	providerStore.AssertNotCalled(t, "ActiveForChannel", mock.Anything, mock.Anything)
}

func TestNotifyMerchantDefaultsToEmail(t *testing.T) {
	providerStore := &mockProviderStore{}
	templateStore := &mockTemplateStore{}
	logStore := &mockLogStore{}
	userStore := &mockMerchantStore{}
	adapter := &mockAdapter{}
	factory := &fakeFactory{adapters: map[domain.Channel]providers.Adapter{domain.ChannelEmail: adapter}}
	svc := newTestService(providerStore, templateStore, logStore, userStore, factory)

	phone := "+234801"
	userStore.On("Get", mock.Anything, "merch-1").
		Return(&domain.User{UserID: "merch-1", Email: "owner@shop.test", Phone: &phone}, nil)
	providerStore.On("ActiveForChannel", mock.Anything, domain.ChannelEmail).
		Return(&domain.ProviderConfig{ProviderID: "p1", Provider: domain.ProviderResend}, nil)
	templateStore.On("GetActive", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	logStore.On("Put", mock.Anything, mock.Anything).Return(nil)

	var sent providers.Message
	adapter.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(providers.Message)
	}).Return(providers.Result{Success: true})

	res := svc.NotifyMerchant(context.Background(), "merch-1", domain.EventPaymentCreated,
		map[string]interface{}{"amount": "100", "currency": "NGN", "reference_code": "PSD-AAAA1111"})

	assert.True(t, res.Success)
	assert.Equal(t, "owner@shop.test", sent.Recipient)
}

func TestNotifyCustomerDefaultsToSMS(t *testing.T) {
	providerStore := &mockProviderStore{}
	templateStore := &mockTemplateStore{}
	logStore := &mockLogStore{}
	adapter := &mockAdapter{}
	factory := &fakeFactory{adapters: map[domain.Channel]providers.Adapter{domain.ChannelSMS: adapter}}
	svc := newTestService(providerStore, templateStore, logStore, &mockMerchantStore{}, factory)

	providerStore.On("ActiveForChannel", mock.Anything, domain.ChannelSMS).
		Return(&domain.ProviderConfig{ProviderID: "p1", Provider: domain.ProviderAfricasTalking}, nil)
	templateStore.On("GetActive", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	logStore.On("Put", mock.Anything, mock.Anything).Return(nil)

	var sent providers.Message
	adapter.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(providers.Message)
	}).Return(providers.Result{Success: true})

	res := svc.NotifyCustomer(context.Background(), "c@x.test", "+234802", domain.EventCustomerCreated,
		map[string]interface{}{"name": "Ada", "business_name": "Shop"})

	assert.True(t, res.Success)
	assert.Equal(t, "+234802", sent.Recipient)
}

func TestNotifyAdminUsesConfiguredContacts(t *testing.T) {
	providerStore := &mockProviderStore{}
	templateStore := &mockTemplateStore{}
	logStore := &mockLogStore{}
	adapter := &mockAdapter{}
	factory := &fakeFactory{adapters: map[domain.Channel]providers.Adapter{domain.ChannelEmail: adapter}}
	svc := newTestService(providerStore, templateStore, logStore, &mockMerchantStore{}, factory)

	providerStore.On("ActiveForChannel", mock.Anything, domain.ChannelEmail).
		Return(&domain.ProviderConfig{ProviderID: "p1", Provider: domain.ProviderResend}, nil)
	templateStore.On("GetActive", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	logStore.On("Put", mock.Anything, mock.Anything).Return(nil)

	var sent providers.Message
	adapter.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(providers.Message)
	}).Return(providers.Result{Success: true})

	res := svc.NotifyAdmin(context.Background(), domain.EventPlatformAlert,
		map[string]interface{}{"message": "disk almost full"})

	assert.True(t, res.Success)
	assert.Equal(t, "admin@payssd.test", sent.Recipient)
	assert.Equal(t, "disk almost full", sent.Body)
}
