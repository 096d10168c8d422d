package domain

import "time"

type Product struct {
	ProductID   string    `json:"id" dynamodbav:"product_id"`
	MerchantID  string    `json:"merchant_id" dynamodbav:"merchant_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Description string    `json:"description,omitempty" dynamodbav:"description"`
	Enable      bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type ProductInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// Billing intervals for a price.
const (
	IntervalOneTime = "one_time"
	IntervalMonthly = "monthly"
	IntervalYearly  = "yearly"
)

// Price attaches an amount and billing interval to a product.
// Amount is in minor units (e.g. kobo, cents).
type Price struct {
	PriceID   string    `json:"id" dynamodbav:"price_id"`
	ProductID string    `json:"product_id" dynamodbav:"product_id"`
	Amount    int64     `json:"amount" dynamodbav:"amount"`
	Currency  string    `json:"currency" dynamodbav:"currency"`
	Interval  string    `json:"interval" dynamodbav:"interval"`
	Enable    bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type PriceInput struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required,len=3"`
	Interval string `json:"interval" validate:"required,oneof=one_time monthly yearly"`
}
