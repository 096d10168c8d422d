package product

import (
	"context"
	"fmt"
	"time"

	"github.com/payssd/payssd-api/internal/domain"
	"github.com/payssd/payssd-api/internal/pkg/id"
)

const (
	fieldName        = "name"
	fieldDescription = "description"
	fieldEnable      = "enable"
)

type Service interface {
	Create(ctx context.Context, merchantID string, in domain.ProductInput) (*domain.Product, error)
	Get(ctx context.Context, merchantID, productID string) (*domain.Product, error)
	List(ctx context.Context, merchantID string) ([]domain.Product, error)
	Update(ctx context.Context, merchantID, productID string, in domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, merchantID, productID string) error

	AddPrice(ctx context.Context, merchantID, productID string, in domain.PriceInput) (*domain.Price, error)
	ListPrices(ctx context.Context, merchantID, productID string) ([]domain.Price, error)
	DeletePrice(ctx context.Context, merchantID, productID, priceID string) error
}

type productStore interface {
	Put(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, productID string) (*domain.Product, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]domain.Product, error)
	Update(ctx context.Context, productID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, productID string) error
}

type priceStore interface {
	Put(ctx context.Context, p *domain.Price) error
	Get(ctx context.Context, priceID string) (*domain.Price, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Price, error)
	SoftDelete(ctx context.Context, priceID string) error
}

type service struct {
	products productStore
	prices   priceStore
}

func NewService(products productStore, prices priceStore) Service {
	return &service{products: products, prices: prices}
}

func (s *service) Create(ctx context.Context, merchantID string, in domain.ProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	p := &domain.Product{
		ProductID:   id.New(),
		MerchantID:  merchantID,
		Name:        in.Name,
		Description: in.Description,
		Enable:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.products.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, merchantID, productID string) (*domain.Product, error) {
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.MerchantID != merchantID {
		return nil, fmt.Errorf("product belongs to another merchant: %w", domain.ErrForbidden)
	}
	return p, nil
}

func (s *service) List(ctx context.Context, merchantID string) ([]domain.Product, error) {
	return s.products.ListByMerchant(ctx, merchantID)
}

func (s *service) Update(ctx context.Context, merchantID, productID string, in domain.ProductInput) (*domain.Product, error) {
	if _, err := s.Get(ctx, merchantID, productID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		fieldName:        in.Name,
		fieldDescription: in.Description,
	}
	if err := s.products.Update(ctx, productID, updates); err != nil {
		return nil, err
	}
	return s.products.Get(ctx, productID)
}

func (s *service) Delete(ctx context.Context, merchantID, productID string) error {
	if _, err := s.Get(ctx, merchantID, productID); err != nil {
		return err
	}
	return s.products.SoftDelete(ctx, productID)
}

func (s *service) AddPrice(ctx context.Context, merchantID, productID string, in domain.PriceInput) (*domain.Price, error) {
	if _, err := s.Get(ctx, merchantID, productID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p := &domain.Price{
		PriceID:   id.New(),
		ProductID: productID,
		Amount:    in.Amount,
		Currency:  in.Currency,
		Interval:  in.Interval,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.prices.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ListPrices(ctx context.Context, merchantID, productID string) ([]domain.Price, error) {
	if _, err := s.Get(ctx, merchantID, productID); err != nil {
		return nil, err
	}
	return s.prices.ListByProduct(ctx, productID)
}

func (s *service) DeletePrice(ctx context.Context, merchantID, productID, priceID string) error {
	if _, err := s.Get(ctx, merchantID, productID); err != nil {
		return err
	}
	price, err := s.prices.Get(ctx, priceID)
	if err != nil {
		return err
	}
	if price.ProductID != productID {
		return fmt.Errorf("price belongs to another product: %w", domain.ErrForbidden)
	}
	return s.prices.SoftDelete(ctx, priceID)
}
