package content

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/payssd/payssd-api/internal/domain"
	"github.com/payssd/payssd-api/internal/pkg/id"
)

const presignTTL = 15 * time.Minute

type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	Title       string
	Description string
	Premium     bool
}

type Service interface {
	Upload(ctx context.Context, merchantID string, in UploadInput) (*domain.ContentItem, error)
	List(ctx context.Context, merchantID string) ([]domain.ContentItem, error)
	ListPublic(ctx context.Context, merchantID string) ([]domain.ContentItem, error)
	Access(ctx context.Context, contentID, referenceCode string) (string, *domain.ContentItem, error)
	Delete(ctx context.Context, merchantID, contentID string) error
}

type contentStore interface {
	Put(ctx context.Context, c *domain.ContentItem) error
	Get(ctx context.Context, contentID string) (*domain.ContentItem, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]domain.ContentItem, error)
	SoftDelete(ctx context.Context, contentID string) error
}

type subscriptionStore interface {
	GetByReferenceCode(ctx context.Context, code string) (*domain.Subscription, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	repo    contentStore
	subs    subscriptionStore
	objects objectStore
}

func NewService(repo contentStore, subs subscriptionStore, objects objectStore) Service {
	return &service{repo: repo, subs: subs, objects: objects}
}

func (s *service) Upload(ctx context.Context, merchantID string, in UploadInput) (*domain.ContentItem, error) {
	cid := id.New()
	safeName := sanitizeFilename(in.Filename)
	// The content ID keeps same-named uploads on distinct objects.
	key := fmt.Sprintf("content/%s/%s/%s", merchantID, cid, safeName)
	if _, err := s.objects.Upload(ctx, key, in.Reader, in.ContentType); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &domain.ContentItem{
		ContentID:   cid,
		MerchantID:  merchantID,
		Title:       in.Title,
		Description: in.Description,
		Object:      key,
		Size:        in.Size,
		ContentType: in.ContentType,
		Premium:     in.Premium,
		Enable:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) List(ctx context.Context, merchantID string) ([]domain.ContentItem, error) {
	return s.repo.ListByMerchant(ctx, merchantID)
}

// ListPublic returns the enabled items for a merchant's storefront.
// Metadata only; the object itself stays behind Access.
func (s *service) ListPublic(ctx context.Context, merchantID string) ([]domain.ContentItem, error) {
	all, err := s.repo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	visible := all[:0]
	for _, c := range all {
		if c.Enable {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// Access returns a short-lived presigned URL for an item. Free items are
// public; premium items require an active subscription to the owning
// merchant, proven by its reference code.
func (s *service) Access(ctx context.Context, contentID, referenceCode string) (string, *domain.ContentItem, error) {
	c, err := s.repo.Get(ctx, contentID)
	if err != nil {
		return "", nil, err
	}
	if !c.Enable {
		return "", nil, fmt.Errorf("content not found: %w", domain.ErrNotFound)
	}
	if c.Premium {
		if referenceCode == "" {
			return "", nil, fmt.Errorf("subscription reference code required: %w", domain.ErrForbidden)
		}
		sub, err := s.subs.GetByReferenceCode(ctx, referenceCode)
		if err != nil {
			return "", nil, fmt.Errorf("unknown reference code: %w", domain.ErrForbidden)
		}
		if sub.MerchantID != c.MerchantID || sub.Status != domain.SubStatusActive {
			return "", nil, fmt.Errorf("no active subscription for this content: %w", domain.ErrForbidden)
		}
	}
	url, err := s.objects.PresignedURL(ctx, c.Object, presignTTL)
	if err != nil {
		return "", nil, err
	}
	return url, c, nil
}

func (s *service) Delete(ctx context.Context, merchantID, contentID string) error {
	c, err := s.repo.Get(ctx, contentID)
	if err != nil {
		return err
	}
	if c.MerchantID != merchantID {
		return fmt.Errorf("content belongs to another merchant: %w", domain.ErrForbidden)
	}
	if err := s.objects.Delete(ctx, c.Object); err != nil {
		slog.Warn("failed to delete content object", "key", c.Object, "err", err)
	}
	return s.repo.SoftDelete(ctx, contentID)
}

func sanitizeFilename(name string) string {
	base := path.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return id.New()
	}
	return b.String()
}
