package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/payssd/payssd-api/internal/domain"
	"github.com/payssd/payssd-api/internal/pkg/id"
	"github.com/payssd/payssd-api/internal/pkg/refcode"
)

type Service interface {
	Create(ctx context.Context, merchantID string, req domain.CreateSubscriptionRequest) (*domain.Subscription, error)
	Get(ctx context.Context, merchantID, subscriptionID string) (*domain.Subscription, error)
	GetByReferenceCode(ctx context.Context, code string) (*domain.Subscription, error)
	List(ctx context.Context, merchantID string) ([]domain.Subscription, error)
	Cancel(ctx context.Context, merchantID, subscriptionID string) (*domain.Subscription, error)
}

type subscriptionStore interface {
	Put(ctx context.Context, s *domain.Subscription) error
	Get(ctx context.Context, subscriptionID string) (*domain.Subscription, error)
	GetByReferenceCode(ctx context.Context, code string) (*domain.Subscription, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]domain.Subscription, error)
	Update(ctx context.Context, subscriptionID string, updates map[string]interface{}) error
}

type customerStore interface {
	Put(ctx context.Context, c *domain.Customer) error
	Get(ctx context.Context, customerID string) (*domain.Customer, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]domain.Customer, error)
}

type priceStore interface {
	Get(ctx context.Context, priceID string) (*domain.Price, error)
}

type productStore interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
}

type notifier interface {
	NotifyCustomer(ctx context.Context, email, phone, eventType string, data map[string]interface{}, channels ...domain.Channel) *domain.SendResult
	NotifyMerchant(ctx context.Context, merchantID, eventType string, data map[string]interface{}, channels ...domain.Channel) *domain.SendResult
}

type service struct {
	subs      subscriptionStore
	customers customerStore
	prices    priceStore
	products  productStore
	notifier  notifier
}

func NewService(subs subscriptionStore, customers customerStore, prices priceStore, products productStore, notifier notifier) Service {
	return &service{
		subs:      subs,
		customers: customers,
		prices:    prices,
		products:  products,
		notifier:  notifier,
	}
}

// Create is the checkout entry point. It resolves the price, finds or
// creates the customer by contact details, and opens a pending subscription
// under a fresh reference code the payer quotes in their transfer.
func (s *service) Create(ctx context.Context, merchantID string, req domain.CreateSubscriptionRequest) (*domain.Subscription, error) {
	price, err := s.prices.Get(ctx, req.PriceID)
	if err != nil {
		return nil, fmt.Errorf("price not found: %w", domain.ErrNotFound)
	}
	if !price.Enable {
		return nil, fmt.Errorf("price is disabled: %w", domain.ErrBadRequest)
	}
	product, err := s.products.Get(ctx, price.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	if product.MerchantID != merchantID {
		return nil, fmt.Errorf("price belongs to another merchant: %w", domain.ErrBadRequest)
	}

	cust, err := s.resolveCustomer(ctx, merchantID, req)
	if err != nil {
		return nil, err
	}

	code, err := s.newReferenceCode(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sub := &domain.Subscription{
		SubscriptionID: id.New(),
		MerchantID:     merchantID,
		CustomerID:     cust.CustomerID,
		ProductID:      product.ProductID,
		PriceID:        price.PriceID,
		Status:         domain.SubStatusPending,
		ReferenceCode:  code,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.subs.Put(ctx, sub); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"product_name":   product.Name,
		"reference_code": sub.ReferenceCode,
	}
	s.notifier.NotifyCustomer(ctx, cust.Email, cust.Phone, domain.EventSubscriptionCreated, data, contactChannels(cust)...)
	s.notifier.NotifyMerchant(ctx, merchantID, domain.EventSubscriptionCreated, data)

	return sub, nil
}

func (s *service) Get(ctx context.Context, merchantID, subscriptionID string) (*domain.Subscription, error) {
	sub, err := s.subs.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.MerchantID != merchantID {
		return nil, fmt.Errorf("subscription belongs to another merchant: %w", domain.ErrForbidden)
	}
	return sub, nil
}

func (s *service) GetByReferenceCode(ctx context.Context, code string) (*domain.Subscription, error) {
	return s.subs.GetByReferenceCode(ctx, code)
}

func (s *service) List(ctx context.Context, merchantID string) ([]domain.Subscription, error) {
	return s.subs.ListByMerchant(ctx, merchantID)
}

func (s *service) Cancel(ctx context.Context, merchantID, subscriptionID string) (*domain.Subscription, error) {
	sub, err := s.Get(ctx, merchantID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(sub.Status, domain.SubStatusCancelled) {
		return nil, fmt.Errorf("cannot cancel a %s subscription: %w", sub.Status, domain.ErrConflict)
	}
	now := time.Now().UTC()
	if err := s.subs.Update(ctx, subscriptionID, map[string]interface{}{
		"status":       domain.SubStatusCancelled,
		"cancelled_at": now,
	}); err != nil {
		return nil, err
	}

	if cust, err := s.customers.Get(ctx, sub.CustomerID); err == nil {
		data := map[string]interface{}{"product_name": s.productName(ctx, sub.ProductID)}
		s.notifier.NotifyCustomer(ctx, cust.Email, cust.Phone, domain.EventSubscriptionCancelled, data, contactChannels(cust)...)
	}

	return s.subs.Get(ctx, subscriptionID)
}

// resolveCustomer matches an existing customer by email or phone before
// creating a new record, so repeat buyers do not fork duplicates.
func (s *service) resolveCustomer(ctx context.Context, merchantID string, req domain.CreateSubscriptionRequest) (*domain.Customer, error) {
	if req.CustomerEmail == "" && req.CustomerPhone == "" {
		return nil, fmt.Errorf("customer email or phone required: %w", domain.ErrBadRequest)
	}
	existing, err := s.customers.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		c := &existing[i]
		if req.CustomerEmail != "" && c.Email == req.CustomerEmail {
			return c, nil
		}
		if req.CustomerPhone != "" && c.Phone == req.CustomerPhone {
			return c, nil
		}
	}
	now := time.Now().UTC()
	c := &domain.Customer{
		CustomerID: id.New(),
		MerchantID: merchantID,
		Name:       req.CustomerName,
		Email:      req.CustomerEmail,
		Phone:      req.CustomerPhone,
		Enable:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.customers.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// newReferenceCode retries a few times on the off chance of a collision.
func (s *service) newReferenceCode(ctx context.Context) (string, error) {
	for i := 0; i < 5; i++ {
		code, err := refcode.New()
		if err != nil {
			return "", err
		}
		if _, err := s.subs.GetByReferenceCode(ctx, code); err != nil {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique reference code")
}

func (s *service) productName(ctx context.Context, productID string) string {
	if p, err := s.products.Get(ctx, productID); err == nil {
		return p.Name
	}
	return ""
}

// contactChannels picks SMS when the customer has a phone, email otherwise.
func contactChannels(c *domain.Customer) []domain.Channel {
	if c.Phone != "" {
		return []domain.Channel{domain.ChannelSMS}
	}
	return []domain.Channel{domain.ChannelEmail}
}
