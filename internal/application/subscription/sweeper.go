package subscription

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/payssd/payssd-api/internal/domain"
)

// How long before the period end the expiry warning goes out, and how long
// a past_due subscription keeps access before it expires for good.
const (
	expiryWarningLead = 3 * 24 * time.Hour
	pastDueGrace      = 7 * 24 * time.Hour
)

// Sweeper walks subscriptions on a schedule and advances the ones whose
// billing period has run out: active ones get a renewal warning, then fall
// to past_due at the period end, then expire once the grace runs out.
type Sweeper struct {
	subs      subscriptionStore
	lister    statusLister
	customers customerStore
	products  productStore
	notifier  notifier
	cron      *cron.Cron
	now       func() time.Time
}

type statusLister interface {
	ListByStatus(ctx context.Context, status string) ([]domain.Subscription, error)
}

func NewSweeper(subs subscriptionStore, lister statusLister, customers customerStore, products productStore, notifier notifier) *Sweeper {
	return &Sweeper{
		subs:      subs,
		lister:    lister,
		customers: customers,
		products:  products,
		notifier:  notifier,
		cron:      cron.New(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules the sweep. The spec is a standard cron expression, or an
// @every duration.
func (w *Sweeper) Start(spec string) error {
	_, err := w.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		w.Sweep(ctx)
	})
	if err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

func (w *Sweeper) Stop() {
	w.cron.Stop()
}

// Sweep runs one pass over active and past_due subscriptions.
func (w *Sweeper) Sweep(ctx context.Context) {
	w.sweepActive(ctx)
	w.sweepPastDue(ctx)
}

func (w *Sweeper) sweepActive(ctx context.Context) {
	active, err := w.lister.ListByStatus(ctx, domain.SubStatusActive)
	if err != nil {
		slog.Warn("sweep: listing active subscriptions failed", "err", err)
		return
	}
	now := w.now()
	for i := range active {
		sub := &active[i]
		if sub.CurrentPeriodEnd == nil {
			continue
		}
		end := *sub.CurrentPeriodEnd
		switch {
		case !end.After(now):
			w.markPastDue(ctx, sub)
		case end.Sub(now) <= expiryWarningLead && sub.ExpiryNotifiedAt == nil:
			w.warnExpiring(ctx, sub, end)
		}
	}
}

func (w *Sweeper) sweepPastDue(ctx context.Context) {
	pastDue, err := w.lister.ListByStatus(ctx, domain.SubStatusPastDue)
	if err != nil {
		slog.Warn("sweep: listing past_due subscriptions failed", "err", err)
		return
	}
	now := w.now()
	for i := range pastDue {
		sub := &pastDue[i]
		if sub.CurrentPeriodEnd == nil {
			continue
		}
		if now.Sub(*sub.CurrentPeriodEnd) >= pastDueGrace {
			w.expire(ctx, sub)
		}
	}
}

func (w *Sweeper) warnExpiring(ctx context.Context, sub *domain.Subscription, end time.Time) {
	now := w.now()
	if err := w.subs.Update(ctx, sub.SubscriptionID, map[string]interface{}{
		"expiry_notified_at": now,
	}); err != nil {
		slog.Warn("sweep: marking expiry warning failed", "subscription_id", sub.SubscriptionID, "err", err)
		return
	}
	data := map[string]interface{}{
		"product_name":   w.productName(ctx, sub.ProductID),
		"reference_code": sub.ReferenceCode,
		"period_end":     end.Format("2006-01-02"),
	}
	w.notifyCustomer(ctx, sub, domain.EventSubscriptionExpiring, data)
}

func (w *Sweeper) markPastDue(ctx context.Context, sub *domain.Subscription) {
	if !domain.CanTransition(sub.Status, domain.SubStatusPastDue) {
		return
	}
	if err := w.subs.Update(ctx, sub.SubscriptionID, map[string]interface{}{
		"status": domain.SubStatusPastDue,
	}); err != nil {
		slog.Warn("sweep: moving subscription to past_due failed", "subscription_id", sub.SubscriptionID, "err", err)
	}
}

func (w *Sweeper) expire(ctx context.Context, sub *domain.Subscription) {
	if !domain.CanTransition(sub.Status, domain.SubStatusExpired) {
		return
	}
	if err := w.subs.Update(ctx, sub.SubscriptionID, map[string]interface{}{
		"status": domain.SubStatusExpired,
	}); err != nil {
		slog.Warn("sweep: expiring subscription failed", "subscription_id", sub.SubscriptionID, "err", err)
		return
	}
	data := map[string]interface{}{
		"product_name":   w.productName(ctx, sub.ProductID),
		"reference_code": sub.ReferenceCode,
	}
	w.notifyCustomer(ctx, sub, domain.EventSubscriptionExpired, data)
	w.notifier.NotifyMerchant(ctx, sub.MerchantID, domain.EventSubscriptionExpired, data)
}

func (w *Sweeper) notifyCustomer(ctx context.Context, sub *domain.Subscription, eventType string, data map[string]interface{}) {
	cust, err := w.customers.Get(ctx, sub.CustomerID)
	if err != nil {
		slog.Warn("sweep: customer lookup failed", "customer_id", sub.CustomerID, "err", err)
		return
	}
	w.notifier.NotifyCustomer(ctx, cust.Email, cust.Phone, eventType, data, contactChannels(cust)...)
}

func (w *Sweeper) productName(ctx context.Context, productID string) string {
	if p, err := w.products.Get(ctx, productID); err == nil {
		return p.Name
	}
	return ""
}
