package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/payssd/payssd-api/internal/domain"
	"github.com/payssd/payssd-api/internal/pkg/id"
)

type Service interface {
	Submit(ctx context.Context, req domain.SubmitPaymentRequest) (*domain.Payment, error)
	Get(ctx context.Context, merchantID, paymentID string) (*domain.Payment, error)
	List(ctx context.Context, merchantID string) ([]domain.Payment, error)
	Confirm(ctx context.Context, merchantID, paymentID string) (*domain.Payment, error)
	Reject(ctx context.Context, merchantID, paymentID, reason string) (*domain.Payment, error)
}

type paymentStore interface {
	Put(ctx context.Context, p *domain.Payment) error
	Get(ctx context.Context, paymentID string) (*domain.Payment, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]domain.Payment, error)
	Update(ctx context.Context, paymentID string, updates map[string]interface{}) error
}

type subscriptionStore interface {
	Get(ctx context.Context, subscriptionID string) (*domain.Subscription, error)
	GetByReferenceCode(ctx context.Context, code string) (*domain.Subscription, error)
	Update(ctx context.Context, subscriptionID string, updates map[string]interface{}) error
}

type priceStore interface {
	Get(ctx context.Context, priceID string) (*domain.Price, error)
}

type productStore interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
}

type customerStore interface {
	Get(ctx context.Context, customerID string) (*domain.Customer, error)
}

type notifier interface {
	NotifyCustomer(ctx context.Context, email, phone, eventType string, data map[string]interface{}, channels ...domain.Channel) *domain.SendResult
	NotifyMerchant(ctx context.Context, merchantID, eventType string, data map[string]interface{}, channels ...domain.Channel) *domain.SendResult
	NotifyAdmin(ctx context.Context, eventType string, data map[string]interface{}, channels ...domain.Channel) *domain.SendResult
}

type service struct {
	payments  paymentStore
	subs      subscriptionStore
	prices    priceStore
	products  productStore
	customers customerStore
	notifier  notifier
}

func NewService(payments paymentStore, subs subscriptionStore, prices priceStore, products productStore, customers customerStore, notifier notifier) Service {
	return &service{
		payments:  payments,
		subs:      subs,
		prices:    prices,
		products:  products,
		customers: customers,
		notifier:  notifier,
	}
}

// Submit records a payer's claim that a transfer was made. The payment stays
// pending until the merchant reviews it against their account statement.
func (s *service) Submit(ctx context.Context, req domain.SubmitPaymentRequest) (*domain.Payment, error) {
	sub, err := s.subs.GetByReferenceCode(ctx, req.ReferenceCode)
	if err != nil {
		return nil, fmt.Errorf("unknown reference code: %w", domain.ErrNotFound)
	}

	now := time.Now().UTC()
	p := &domain.Payment{
		PaymentID:      id.New(),
		MerchantID:     sub.MerchantID,
		SubscriptionID: sub.SubscriptionID,
		ReferenceCode:  req.ReferenceCode,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Method:         req.Method,
		PayerName:      req.PayerName,
		PayerPhone:     req.PayerPhone,
		Note:           req.Note,
		Status:         domain.PaymentStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.payments.Put(ctx, p); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"amount":         formatAmount(p.Amount),
		"currency":       p.Currency,
		"reference_code": p.ReferenceCode,
	}
	s.notifier.NotifyMerchant(ctx, sub.MerchantID, domain.EventPaymentCreated, data)
	s.notifier.NotifyAdmin(ctx, domain.EventPaymentCreated, data)

	return p, nil
}

func (s *service) Get(ctx context.Context, merchantID, paymentID string) (*domain.Payment, error) {
	p, err := s.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.MerchantID != merchantID {
		return nil, fmt.Errorf("payment belongs to another merchant: %w", domain.ErrForbidden)
	}
	return p, nil
}

func (s *service) List(ctx context.Context, merchantID string) ([]domain.Payment, error) {
	return s.payments.ListByMerchant(ctx, merchantID)
}

// Confirm marks a pending payment as confirmed and moves the linked
// subscription forward: a pending subscription activates, an active or
// past-due one renews with an extended period end.
func (s *service) Confirm(ctx context.Context, merchantID, paymentID string) (*domain.Payment, error) {
	p, err := s.reviewable(ctx, merchantID, paymentID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.payments.Update(ctx, paymentID, map[string]interface{}{
		"status":      domain.PaymentStatusConfirmed,
		"reviewed_at": now,
	}); err != nil {
		return nil, err
	}

	sub, err := s.subs.Get(ctx, p.SubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("subscription not found for payment: %w", err)
	}
	event, err := s.advanceSubscription(ctx, sub, now)
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"amount":         formatAmount(p.Amount),
		"currency":       p.Currency,
		"reference_code": p.ReferenceCode,
		"product_name":   s.productName(ctx, sub.ProductID),
	}
	if cust, err := s.customers.Get(ctx, sub.CustomerID); err == nil {
		channels := contactChannels(cust)
		s.notifier.NotifyCustomer(ctx, cust.Email, cust.Phone, domain.EventPaymentConfirmed, data, channels...)
		if event != "" {
			if sub2, err := s.subs.Get(ctx, sub.SubscriptionID); err == nil && sub2.CurrentPeriodEnd != nil {
				data["period_end"] = sub2.CurrentPeriodEnd.Format("2006-01-02")
			}
			s.notifier.NotifyCustomer(ctx, cust.Email, cust.Phone, event, data, channels...)
		}
	}

	return s.payments.Get(ctx, paymentID)
}

// Reject marks a pending payment as rejected. The subscription is left
// untouched.
func (s *service) Reject(ctx context.Context, merchantID, paymentID, reason string) (*domain.Payment, error) {
	p, err := s.reviewable(ctx, merchantID, paymentID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.payments.Update(ctx, paymentID, map[string]interface{}{
		"status":      domain.PaymentStatusRejected,
		"reviewed_at": now,
	}); err != nil {
		return nil, err
	}

	if sub, err := s.subs.Get(ctx, p.SubscriptionID); err == nil {
		if cust, err := s.customers.Get(ctx, sub.CustomerID); err == nil {
			if reason == "" {
				reason = "payment could not be verified"
			}
			s.notifier.NotifyCustomer(ctx, cust.Email, cust.Phone, domain.EventPaymentRejected, map[string]interface{}{
				"reference_code": p.ReferenceCode,
				"reason":         reason,
			}, contactChannels(cust)...)
		}
	}

	return s.payments.Get(ctx, paymentID)
}

func (s *service) reviewable(ctx context.Context, merchantID, paymentID string) (*domain.Payment, error) {
	p, err := s.Get(ctx, merchantID, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PaymentStatusPending {
		return nil, fmt.Errorf("payment already %s: %w", p.Status, domain.ErrConflict)
	}
	return p, nil
}

// advanceSubscription applies a confirmed payment to the subscription and
// returns the lifecycle event to announce, if any.
func (s *service) advanceSubscription(ctx context.Context, sub *domain.Subscription, now time.Time) (string, error) {
	price, err := s.prices.Get(ctx, sub.PriceID)
	if err != nil {
		return "", fmt.Errorf("price not found for subscription: %w", err)
	}

	// A renewal extends from the current period end when it is still in the
	// future, so paying early never shortens the subscription.
	base := now
	if sub.CurrentPeriodEnd != nil && sub.CurrentPeriodEnd.After(now) {
		base = *sub.CurrentPeriodEnd
	}
	periodEnd := nextPeriodEnd(base, price.Interval)

	updates := map[string]interface{}{"status": domain.SubStatusActive}
	if periodEnd != nil {
		updates["current_period_end"] = *periodEnd
		// Fresh period, fresh expiry warning.
		updates["expiry_notified_at"] = nil
	}

	// First activation announces nothing beyond payment.confirmed; the
	// customer already got subscription.created at checkout.
	var event string
	switch sub.Status {
	case domain.SubStatusPending:
	case domain.SubStatusActive, domain.SubStatusPastDue:
		event = domain.EventSubscriptionRenewed
	default:
		return "", fmt.Errorf("cannot apply payment to a %s subscription: %w", sub.Status, domain.ErrConflict)
	}

	if err := s.subs.Update(ctx, sub.SubscriptionID, updates); err != nil {
		return "", err
	}
	return event, nil
}

func (s *service) productName(ctx context.Context, productID string) string {
	if p, err := s.products.Get(ctx, productID); err == nil {
		return p.Name
	}
	return ""
}

func nextPeriodEnd(from time.Time, interval string) *time.Time {
	switch interval {
	case domain.IntervalMonthly:
		t := from.AddDate(0, 1, 0)
		return &t
	case domain.IntervalYearly:
		t := from.AddDate(1, 0, 0)
		return &t
	}
	// one-time purchases have no renewal period
	return nil
}

func contactChannels(c *domain.Customer) []domain.Channel {
	if c.Phone != "" {
		return []domain.Channel{domain.ChannelSMS}
	}
	return []domain.Channel{domain.ChannelEmail}
}

func formatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
