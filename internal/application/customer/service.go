package customer

import (
	"context"
	"fmt"
	"time"

	"github.com/payssd/payssd-api/internal/domain"
	"github.com/payssd/payssd-api/internal/pkg/id"
)

const (
	fieldName  = "name"
	fieldEmail = "email"
	fieldPhone = "phone"
)

type Service interface {
	Create(ctx context.Context, merchantID string, in domain.CustomerInput) (*domain.Customer, error)
	Get(ctx context.Context, merchantID, customerID string) (*domain.Customer, error)
	List(ctx context.Context, merchantID string) ([]domain.Customer, error)
	Update(ctx context.Context, merchantID, customerID string, in domain.CustomerInput) (*domain.Customer, error)
	Delete(ctx context.Context, merchantID, customerID string) error
}

type customerStore interface {
	Put(ctx context.Context, c *domain.Customer) error
	Get(ctx context.Context, customerID string) (*domain.Customer, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]domain.Customer, error)
	Update(ctx context.Context, customerID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, customerID string) error
}

type merchantStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type notifier interface {
	NotifyCustomer(ctx context.Context, email, phone, eventType string, data map[string]interface{}, channels ...domain.Channel) *domain.SendResult
}

type service struct {
	repo     customerStore
	users    merchantStore
	notifier notifier
}

func NewService(repo customerStore, users merchantStore, notifier notifier) Service {
	return &service{repo: repo, users: users, notifier: notifier}
}

func (s *service) Create(ctx context.Context, merchantID string, in domain.CustomerInput) (*domain.Customer, error) {
	now := time.Now().UTC()
	c := &domain.Customer{
		CustomerID: id.New(),
		MerchantID: merchantID,
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Enable:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}
	if s.notifier != nil && (c.Email != "" || c.Phone != "") {
		businessName := ""
		if m, err := s.users.Get(ctx, merchantID); err == nil {
			businessName = m.BusinessName
		}
		channels := []domain.Channel{domain.ChannelSMS}
		if c.Phone == "" {
			channels = []domain.Channel{domain.ChannelEmail}
		}
		s.notifier.NotifyCustomer(ctx, c.Email, c.Phone, domain.EventCustomerCreated, map[string]interface{}{
			"name":          c.Name,
			"business_name": businessName,
		}, channels...)
	}
	return c, nil
}

func (s *service) Get(ctx context.Context, merchantID, customerID string) (*domain.Customer, error) {
	c, err := s.repo.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c.MerchantID != merchantID {
		return nil, fmt.Errorf("customer belongs to another merchant: %w", domain.ErrForbidden)
	}
	return c, nil
}

func (s *service) List(ctx context.Context, merchantID string) ([]domain.Customer, error) {
	return s.repo.ListByMerchant(ctx, merchantID)
}

func (s *service) Update(ctx context.Context, merchantID, customerID string, in domain.CustomerInput) (*domain.Customer, error) {
	if _, err := s.Get(ctx, merchantID, customerID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		fieldName:  in.Name,
		fieldEmail: in.Email,
		fieldPhone: in.Phone,
	}
	if err := s.repo.Update(ctx, customerID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, customerID)
}

func (s *service) Delete(ctx context.Context, merchantID, customerID string) error {
	if _, err := s.Get(ctx, merchantID, customerID); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, customerID)
}
