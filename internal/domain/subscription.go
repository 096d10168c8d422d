package domain

import "time"

// Subscription statuses.
const (
	SubStatusPending   = "pending"
	SubStatusActive    = "active"
	SubStatusPastDue   = "past_due"
	SubStatusExpired   = "expired"
	SubStatusCancelled = "cancelled"
)

// subTransitions encodes the allowed status moves:
// pending → active/cancelled, active → past_due/cancelled,
// past_due → active/expired/cancelled. Expired and cancelled are terminal.
var subTransitions = map[string][]string{
	SubStatusPending: {SubStatusActive, SubStatusCancelled},
	SubStatusActive:  {SubStatusPastDue, SubStatusCancelled},
	SubStatusPastDue: {SubStatusActive, SubStatusExpired, SubStatusCancelled},
}

// CanTransition reports whether a subscription may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, allowed := range subTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Subscription links a customer to a price. ReferenceCode is the code a
// payer quotes in their transfer; payment matching is a single lookup on it.
type Subscription struct {
	SubscriptionID   string     `json:"id" dynamodbav:"subscription_id"`
	MerchantID       string     `json:"merchant_id" dynamodbav:"merchant_id"`
	CustomerID       string     `json:"customer_id" dynamodbav:"customer_id"`
	ProductID        string     `json:"product_id" dynamodbav:"product_id"`
	PriceID          string     `json:"price_id" dynamodbav:"price_id"`
	Status           string     `json:"status" dynamodbav:"status"`
	ReferenceCode    string     `json:"reference_code" dynamodbav:"reference_code"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty" dynamodbav:"current_period_end"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty" dynamodbav:"cancelled_at"`
	ExpiryNotifiedAt *time.Time `json:"-" dynamodbav:"expiry_notified_at"`
	CreatedAt        time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateSubscriptionRequest struct {
	PriceID       string `json:"price_id" validate:"required"`
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone string `json:"customer_phone"`
}
