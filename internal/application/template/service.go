package template

import (
	"context"
	"time"

	"github.com/payssd/payssd-api/internal/domain"
	"github.com/payssd/payssd-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, in domain.TemplateInput) (*domain.NotificationTemplate, error)
	Get(ctx context.Context, templateID string) (*domain.NotificationTemplate, error)
	List(ctx context.Context) ([]domain.NotificationTemplate, error)
	Update(ctx context.Context, templateID string, in domain.TemplateInput) (*domain.NotificationTemplate, error)
	Delete(ctx context.Context, templateID string) error
}

type templateStore interface {
	Put(ctx context.Context, t *domain.NotificationTemplate) error
	Get(ctx context.Context, templateID string) (*domain.NotificationTemplate, error)
	List(ctx context.Context) ([]domain.NotificationTemplate, error)
	Update(ctx context.Context, templateID string, updates map[string]interface{}) error
	Delete(ctx context.Context, templateID string) error
}

type service struct {
	repo templateStore
}

func NewService(repo templateStore) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, in domain.TemplateInput) (*domain.NotificationTemplate, error) {
	now := time.Now().UTC()
	t := &domain.NotificationTemplate{
		TemplateID: id.New(),
		EventType:  in.EventType,
		Channel:    domain.Channel(in.Channel),
		Subject:    in.Subject,
		Body:       in.Body,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
	if err := s.repo.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Get(ctx context.Context, templateID string) (*domain.NotificationTemplate, error) {
	return s.repo.Get(ctx, templateID)
}

func (s *service) List(ctx context.Context) ([]domain.NotificationTemplate, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, templateID string, in domain.TemplateInput) (*domain.NotificationTemplate, error) {
	if _, err := s.repo.Get(ctx, templateID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"event_type": in.EventType,
		"channel":    in.Channel,
		"subject":    in.Subject,
		"body":       in.Body,
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if err := s.repo.Update(ctx, templateID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, templateID)
}

func (s *service) Delete(ctx context.Context, templateID string) error {
	if _, err := s.repo.Get(ctx, templateID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, templateID)
}
