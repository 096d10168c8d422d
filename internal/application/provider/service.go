package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/payssd/payssd-api/internal/domain"
	"github.com/payssd/payssd-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, req domain.CreateProviderRequest) (*domain.ProviderConfig, error)
	Get(ctx context.Context, providerID string) (*domain.ProviderConfig, error)
	List(ctx context.Context) ([]domain.ProviderConfig, error)
	Update(ctx context.Context, providerID string, req domain.UpdateProviderRequest) (*domain.ProviderConfig, error)
	Delete(ctx context.Context, providerID string) error
	SetDefault(ctx context.Context, providerID string) error
}

type providerStore interface {
	Put(ctx context.Context, p *domain.ProviderConfig) error
	Get(ctx context.Context, providerID string) (*domain.ProviderConfig, error)
	List(ctx context.Context) ([]domain.ProviderConfig, error)
	Update(ctx context.Context, providerID string, updates map[string]interface{}) error
	Delete(ctx context.Context, providerID string) error
	SetDefault(ctx context.Context, channel domain.Channel, providerID string) error
}

type service struct {
	repo providerStore
}

func NewService(repo providerStore) Service {
	return &service{repo: repo}
}

// Create validates the credential bundle against the required-key table
// before writing, so adapters never see a malformed configuration.
func (s *service) Create(ctx context.Context, req domain.CreateProviderRequest) (*domain.ProviderConfig, error) {
	channel := domain.Channel(req.Channel)
	if err := validateCredentials(channel, req.Provider, req.Credentials); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.ProviderConfig{
		ProviderID:  id.New(),
		Channel:     channel,
		Provider:    req.Provider,
		Credentials: req.Credentials,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, err
	}
	if req.IsDefault {
		if err := s.repo.SetDefault(ctx, channel, p.ProviderID); err != nil {
			return nil, err
		}
		p.IsDefault = true
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, providerID string) (*domain.ProviderConfig, error) {
	return s.repo.Get(ctx, providerID)
}

func (s *service) List(ctx context.Context) ([]domain.ProviderConfig, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, providerID string, req domain.UpdateProviderRequest) (*domain.ProviderConfig, error) {
	p, err := s.repo.Get(ctx, providerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Credentials != nil {
		if err := validateCredentials(p.Channel, p.Provider, req.Credentials); err != nil {
			return nil, err
		}
		updates["credentials"] = req.Credentials
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return p, nil
	}
	if err := s.repo.Update(ctx, providerID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, providerID)
}

func (s *service) Delete(ctx context.Context, providerID string) error {
	if _, err := s.repo.Get(ctx, providerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, providerID)
}

// SetDefault atomically moves the channel default to the given provider.
func (s *service) SetDefault(ctx context.Context, providerID string) error {
	p, err := s.repo.Get(ctx, providerID)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return fmt.Errorf("cannot make an inactive provider the default: %w", domain.ErrBadRequest)
	}
	return s.repo.SetDefault(ctx, p.Channel, providerID)
}

func validateCredentials(channel domain.Channel, provider string, creds map[string]string) error {
	required, ok := domain.RequiredCredentialKeys(channel, provider)
	if !ok {
		return fmt.Errorf("unsupported provider %s for channel %s: %w", provider, channel, domain.ErrBadRequest)
	}
	for _, key := range required {
		if creds[key] == "" {
			return fmt.Errorf("missing credential %q for %s/%s: %w", key, channel, provider, domain.ErrBadRequest)
		}
	}
	return nil
}
