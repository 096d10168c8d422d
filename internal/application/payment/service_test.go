package payment

import (
	"context"
	"testing"
	"time"

	"github.com/payssd/payssd-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockPaymentStore struct{ mock.Mock }

func (m *mockPaymentStore) Put(ctx context.Context, p *domain.Payment) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockPaymentStore) Get(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if p, _ := args.Get(0).(*domain.Payment); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPaymentStore) ListByMerchant(ctx context.Context, merchantID string) ([]domain.Payment, error) {
	args := m.Called(ctx, merchantID)
	if p, _ := args.Get(0).([]domain.Payment); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPaymentStore) Update(ctx context.Context, paymentID string, updates map[string]interface{}) error {
	return m.Called(ctx, paymentID, updates).Error(0)
}

type mockSubStore struct{ mock.Mock }

func (m *mockSubStore) Get(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if s, _ := args.Get(0).(*domain.Subscription); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSubStore) GetByReferenceCode(ctx context.Context, code string) (*domain.Subscription, error) {
	args := m.Called(ctx, code)
	if s, _ := args.Get(0).(*domain.Subscription); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSubStore) Update(ctx context.Context, subscriptionID string, updates map[string]interface{}) error {
	return m.Called(ctx, subscriptionID, updates).Error(0)
}

type mockPriceStore struct{ mock.Mock }

func (m *mockPriceStore) Get(ctx context.Context, priceID string) (*domain.Price, error) {
	args := m.Called(ctx, priceID)
	if p, _ := args.Get(0).(*domain.Price); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockProductStore struct{ mock.Mock }

func (m *mockProductStore) Get(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if p, _ := args.Get(0).(*domain.Product); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCustomerStore struct{ mock.Mock }

func (m *mockCustomerStore) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if c, _ := args.Get(0).(*domain.Customer); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) NotifyCustomer(ctx context.Context, email, phone, eventType string, data map[string]interface{}, channels ...domain.Channel) *domain.SendResult {
	args := m.Called(ctx, email, phone, eventType, data)
	if r, _ := args.Get(0).(*domain.SendResult); r != nil {
		return r
	}
	return &domain.SendResult{Success: true}
}
func (m *mockNotifier) NotifyMerchant(ctx context.Context, merchantID, eventType string, data map[string]interface{}, channels ...domain.Channel) *domain.SendResult {
	args := m.Called(ctx, merchantID, eventType, data)
	if r, _ := args.Get(0).(*domain.SendResult); r != nil {
		return r
	}
	return &domain.SendResult{Success: true}
}
func (m *mockNotifier) NotifyAdmin(ctx context.Context, eventType string, data map[string]interface{}, channels ...domain.Channel) *domain.SendResult {
	args := m.Called(ctx, eventType, data)
	if r, _ := args.Get(0).(*domain.SendResult); r != nil {
		return r
	}
	return &domain.SendResult{Success: true}
}

// --- fixtures ---

type testEnv struct {
	payments  *mockPaymentStore
	subs      *mockSubStore
	prices    *mockPriceStore
	products  *mockProductStore
	customers *mockCustomerStore
	notifier  *mockNotifier
	svc       Service
}

func newTestEnv() *testEnv {
	e := &testEnv{
		payments:  new(mockPaymentStore),
		subs:      new(mockSubStore),
		prices:    new(mockPriceStore),
		products:  new(mockProductStore),
		customers: new(mockCustomerStore),
		notifier:  new(mockNotifier),
	}
	e.svc = NewService(e.payments, e.subs, e.prices, e.products, e.customers, e.notifier)
	return e
}

func pendingPayment() *domain.Payment {
	return &domain.Payment{
		PaymentID: "pay-1", MerchantID: "m-1", SubscriptionID: "sub-1",
		ReferenceCode: "PSD-AAAA1111", Amount: 500000, Currency: "NGN",
		Method: domain.PaymentMethodBankTransfer, Status: domain.PaymentStatusPending,
	}
}

func monthlyPrice() *domain.Price {
	return &domain.Price{PriceID: "price-1", ProductID: "prod-1", Amount: 500000, Currency: "NGN", Interval: domain.IntervalMonthly, Enable: true}
}

// --- tests ---

func TestSubmitCreatesPendingPayment(t *testing.T) {
	e := newTestEnv()
	e.subs.On("GetByReferenceCode", mock.Anything, "PSD-AAAA1111").Return(&domain.Subscription{
		SubscriptionID: "sub-1", MerchantID: "m-1", ReferenceCode: "PSD-AAAA1111",
	}, nil)
	e.payments.On("Put", mock.Anything, mock.Anything).Return(nil)
	e.notifier.On("NotifyMerchant", mock.Anything, "m-1", domain.EventPaymentCreated, mock.MatchedBy(func(d map[string]interface{}) bool {
		return d["amount"] == "5000.00" && d["currency"] == "NGN"
	})).Return(nil)
	e.notifier.On("NotifyAdmin", mock.Anything, domain.EventPaymentCreated, mock.MatchedBy(func(d map[string]interface{}) bool {
		return d["reference_code"] == "PSD-AAAA1111"
	})).Return(nil)

	p, err := e.svc.Submit(context.Background(), domain.SubmitPaymentRequest{
		ReferenceCode: "PSD-AAAA1111", Amount: 500000, Currency: "NGN",
		Method: domain.PaymentMethodBankTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, p.Status)
	assert.Equal(t, "m-1", p.MerchantID)
	assert.Equal(t, "sub-1", p.SubscriptionID)
	e.notifier.AssertExpectations(t)
}

func TestSubmitUnknownReferenceCode(t *testing.T) {
	e := newTestEnv()
	e.subs.On("GetByReferenceCode", mock.Anything, "PSD-XXXX0000").Return(nil, domain.ErrNotFound)

	_, err := e.svc.Submit(context.Background(), domain.SubmitPaymentRequest{
		ReferenceCode: "PSD-XXXX0000", Amount: 1000, Currency: "NGN",
		Method: domain.PaymentMethodMobileMoney,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	e.payments.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestConfirmActivatesPendingSubscription(t *testing.T) {
	e := newTestEnv()
	p := pendingPayment()
	sub := &domain.Subscription{
		SubscriptionID: "sub-1", MerchantID: "m-1", CustomerID: "c-1",
		ProductID: "prod-1", PriceID: "price-1", Status: domain.SubStatusPending,
		ReferenceCode: "PSD-AAAA1111",
	}

	e.payments.On("Get", mock.Anything, "pay-1").Return(p, nil)
	e.payments.On("Update", mock.Anything, "pay-1", mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["status"] == domain.PaymentStatusConfirmed
	})).Return(nil)
	e.subs.On("Get", mock.Anything, "sub-1").Return(sub, nil)
	e.prices.On("Get", mock.Anything, "price-1").Return(monthlyPrice(), nil)
	e.subs.On("Update", mock.Anything, "sub-1", mock.MatchedBy(func(u map[string]interface{}) bool {
		end, ok := u["current_period_end"].(time.Time)
		return u["status"] == domain.SubStatusActive && ok && end.After(time.Now())
	})).Return(nil)
	e.products.On("Get", mock.Anything, "prod-1").Return(&domain.Product{ProductID: "prod-1", Name: "Premium Plan"}, nil)
	e.customers.On("Get", mock.Anything, "c-1").Return(&domain.Customer{CustomerID: "c-1", Email: "ada@example.com"}, nil)
	e.notifier.On("NotifyCustomer", mock.Anything, "ada@example.com", "", domain.EventPaymentConfirmed, mock.Anything).Return(nil)

	_, err := e.svc.Confirm(context.Background(), "m-1", "pay-1")
	require.NoError(t, err)
	e.subs.AssertExpectations(t)
	e.notifier.AssertExpectations(t)
	// The customer was told about the subscription at checkout; confirming
	// the first payment must not announce it again.
	e.notifier.AssertNotCalled(t, "NotifyCustomer", mock.Anything, mock.Anything, mock.Anything, domain.EventSubscriptionCreated, mock.Anything)
	e.notifier.AssertNotCalled(t, "NotifyCustomer", mock.Anything, mock.Anything, mock.Anything, domain.EventSubscriptionRenewed, mock.Anything)
}

func TestConfirmRenewsActiveSubscription(t *testing.T) {
	e := newTestEnv()
	p := pendingPayment()
	periodEnd := time.Now().UTC().Add(5 * 24 * time.Hour)
	sub := &domain.Subscription{
		SubscriptionID: "sub-1", MerchantID: "m-1", CustomerID: "c-1",
		ProductID: "prod-1", PriceID: "price-1", Status: domain.SubStatusActive,
		CurrentPeriodEnd: &periodEnd,
	}

	e.payments.On("Get", mock.Anything, "pay-1").Return(p, nil)
	e.payments.On("Update", mock.Anything, "pay-1", mock.Anything).Return(nil)
	e.subs.On("Get", mock.Anything, "sub-1").Return(sub, nil)
	e.prices.On("Get", mock.Anything, "price-1").Return(monthlyPrice(), nil)
	e.subs.On("Update", mock.Anything, "sub-1", mock.MatchedBy(func(u map[string]interface{}) bool {
		end, ok := u["current_period_end"].(time.Time)
		// Paying early extends from the old period end, not from today.
		return ok && end.Equal(periodEnd.AddDate(0, 1, 0))
	})).Return(nil)
	e.products.On("Get", mock.Anything, "prod-1").Return(&domain.Product{ProductID: "prod-1", Name: "Premium Plan"}, nil)
	e.customers.On("Get", mock.Anything, "c-1").Return(&domain.Customer{CustomerID: "c-1", Email: "ada@example.com"}, nil)
	e.notifier.On("NotifyCustomer", mock.Anything, "ada@example.com", "", domain.EventPaymentConfirmed, mock.Anything).Return(nil)
	e.notifier.On("NotifyCustomer", mock.Anything, "ada@example.com", "", domain.EventSubscriptionRenewed, mock.Anything).Return(nil)

	_, err := e.svc.Confirm(context.Background(), "m-1", "pay-1")
	require.NoError(t, err)
	e.subs.AssertExpectations(t)
}

func TestConfirmAlreadyReviewed(t *testing.T) {
	e := newTestEnv()
	p := pendingPayment()
	p.Status = domain.PaymentStatusConfirmed
	e.payments.On("Get", mock.Anything, "pay-1").Return(p, nil)

	_, err := e.svc.Confirm(context.Background(), "m-1", "pay-1")
	assert.ErrorIs(t, err, domain.ErrConflict)
	e.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmForeignMerchant(t *testing.T) {
	e := newTestEnv()
	e.payments.On("Get", mock.Anything, "pay-1").Return(pendingPayment(), nil)

	_, err := e.svc.Confirm(context.Background(), "m-2", "pay-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRejectLeavesSubscriptionUntouched(t *testing.T) {
	e := newTestEnv()
	p := pendingPayment()
	rejected := *p
	rejected.Status = domain.PaymentStatusRejected

	e.payments.On("Get", mock.Anything, "pay-1").Return(p, nil).Once()
	e.payments.On("Update", mock.Anything, "pay-1", mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["status"] == domain.PaymentStatusRejected
	})).Return(nil)
	e.subs.On("Get", mock.Anything, "sub-1").Return(&domain.Subscription{
		SubscriptionID: "sub-1", MerchantID: "m-1", CustomerID: "c-1", Status: domain.SubStatusPending,
	}, nil)
	e.customers.On("Get", mock.Anything, "c-1").Return(&domain.Customer{CustomerID: "c-1", Phone: "+221770000000"}, nil)
	e.notifier.On("NotifyCustomer", mock.Anything, "", "+221770000000", domain.EventPaymentRejected, mock.MatchedBy(func(d map[string]interface{}) bool {
		return d["reason"] == "amount does not match"
	})).Return(nil)
	e.payments.On("Get", mock.Anything, "pay-1").Return(&rejected, nil)

	got, err := e.svc.Reject(context.Background(), "m-1", "pay-1", "amount does not match")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRejected, got.Status)
	e.subs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestRejectDefaultReason(t *testing.T) {
	e := newTestEnv()
	p := pendingPayment()
	e.payments.On("Get", mock.Anything, "pay-1").Return(p, nil)
	e.payments.On("Update", mock.Anything, "pay-1", mock.Anything).Return(nil)
	e.subs.On("Get", mock.Anything, "sub-1").Return(&domain.Subscription{
		SubscriptionID: "sub-1", CustomerID: "c-1",
	}, nil)
	e.customers.On("Get", mock.Anything, "c-1").Return(&domain.Customer{CustomerID: "c-1", Email: "ada@example.com"}, nil)
	e.notifier.On("NotifyCustomer", mock.Anything, "ada@example.com", "", domain.EventPaymentRejected, mock.MatchedBy(func(d map[string]interface{}) bool {
		return d["reason"] == "payment could not be verified"
	})).Return(nil)

	_, err := e.svc.Reject(context.Background(), "m-1", "pay-1", "")
	require.NoError(t, err)
	e.notifier.AssertExpectations(t)
}

func TestNextPeriodEnd(t *testing.T) {
	from := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	monthly := nextPeriodEnd(from, domain.IntervalMonthly)
	require.NotNil(t, monthly)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), *monthly)

	yearly := nextPeriodEnd(from, domain.IntervalYearly)
	require.NotNil(t, yearly)
	assert.Equal(t, time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC), *yearly)

	assert.Nil(t, nextPeriodEnd(from, domain.IntervalOneTime))
}
