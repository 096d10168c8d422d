package instruction

import (
	"context"
	"fmt"
	"time"

	"github.com/payssd/payssd-api/internal/domain"
	"github.com/payssd/payssd-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, merchantID string, in domain.PaymentInstructionInput) (*domain.PaymentInstruction, error)
	List(ctx context.Context, merchantID string) ([]domain.PaymentInstruction, error)
	ListEnabled(ctx context.Context, merchantID string) ([]domain.PaymentInstruction, error)
	Update(ctx context.Context, merchantID, instructionID string, in domain.PaymentInstructionInput) (*domain.PaymentInstruction, error)
	Delete(ctx context.Context, merchantID, instructionID string) error
}

type instructionStore interface {
	Put(ctx context.Context, pi *domain.PaymentInstruction) error
	Get(ctx context.Context, instructionID string) (*domain.PaymentInstruction, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]domain.PaymentInstruction, error)
	Update(ctx context.Context, instructionID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, instructionID string) error
}

type service struct {
	repo instructionStore
}

func NewService(repo instructionStore) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, merchantID string, in domain.PaymentInstructionInput) (*domain.PaymentInstruction, error) {
	now := time.Now().UTC()
	pi := &domain.PaymentInstruction{
		InstructionID: id.New(),
		MerchantID:    merchantID,
		Type:          in.Type,
		Label:         in.Label,
		AccountName:   in.AccountName,
		AccountNumber: in.AccountNumber,
		ProviderName:  in.ProviderName,
		Instructions:  in.Instructions,
		Enable:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Put(ctx, pi); err != nil {
		return nil, err
	}
	return pi, nil
}

func (s *service) List(ctx context.Context, merchantID string) ([]domain.PaymentInstruction, error) {
	return s.repo.ListByMerchant(ctx, merchantID)
}

// ListEnabled returns the instructions shown on the public checkout page.
func (s *service) ListEnabled(ctx context.Context, merchantID string) ([]domain.PaymentInstruction, error) {
	all, err := s.repo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	enabled := all[:0]
	for _, pi := range all {
		if pi.Enable {
			enabled = append(enabled, pi)
		}
	}
	return enabled, nil
}

func (s *service) Update(ctx context.Context, merchantID, instructionID string, in domain.PaymentInstructionInput) (*domain.PaymentInstruction, error) {
	if err := s.checkOwner(ctx, merchantID, instructionID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"type":           in.Type,
		"label":          in.Label,
		"account_name":   in.AccountName,
		"account_number": in.AccountNumber,
		"provider_name":  in.ProviderName,
		"instructions":   in.Instructions,
	}
	if err := s.repo.Update(ctx, instructionID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, instructionID)
}

func (s *service) Delete(ctx context.Context, merchantID, instructionID string) error {
	if err := s.checkOwner(ctx, merchantID, instructionID); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, instructionID)
}

func (s *service) checkOwner(ctx context.Context, merchantID, instructionID string) error {
	pi, err := s.repo.Get(ctx, instructionID)
	if err != nil {
		return err
	}
	if pi.MerchantID != merchantID {
		return fmt.Errorf("instruction belongs to another merchant: %w", domain.ErrForbidden)
	}
	return nil
}
