package domain

import "time"

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusConfirmed = "confirmed"
	PaymentStatusRejected  = "rejected"
)

// Payment methods (how the payer transferred the money).
const (
	PaymentMethodMobileMoney  = "mobile_money"
	PaymentMethodBankTransfer = "bank_transfer"
)

// Payment is a payer's claim that a manual transfer was made. It stays
// pending until the merchant confirms or rejects it against their own
// account statement.
type Payment struct {
	PaymentID      string     `json:"id" dynamodbav:"payment_id"`
	MerchantID     string     `json:"merchant_id" dynamodbav:"merchant_id"`
	SubscriptionID string     `json:"subscription_id,omitempty" dynamodbav:"subscription_id"`
	ReferenceCode  string     `json:"reference_code" dynamodbav:"reference_code"`
	Amount         int64      `json:"amount" dynamodbav:"amount"`
	Currency       string     `json:"currency" dynamodbav:"currency"`
	Method         string     `json:"method" dynamodbav:"method"`
	PayerName      string     `json:"payer_name,omitempty" dynamodbav:"payer_name"`
	PayerPhone     string     `json:"payer_phone,omitempty" dynamodbav:"payer_phone"`
	Note           string     `json:"note,omitempty" dynamodbav:"note"`
	Status         string     `json:"status" dynamodbav:"status"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty" dynamodbav:"reviewed_at"`
	CreatedAt      time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type SubmitPaymentRequest struct {
	ReferenceCode string `json:"reference_code" validate:"required"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	Currency      string `json:"currency" validate:"required,len=3"`
	Method        string `json:"method" validate:"required,oneof=mobile_money bank_transfer"`
	PayerName     string `json:"payer_name"`
	PayerPhone    string `json:"payer_phone"`
	Note          string `json:"note"`
}

// PaymentInstruction is a merchant's receiving account shown at checkout:
// a mobile-money wallet or a bank account the payer should transfer to.
type PaymentInstruction struct {
	InstructionID string    `json:"id" dynamodbav:"instruction_id"`
	MerchantID    string    `json:"merchant_id" dynamodbav:"merchant_id"`
	Type          string    `json:"type" dynamodbav:"type"` // mobile_money | bank_transfer
	Label         string    `json:"label" dynamodbav:"label"`
	AccountName   string    `json:"account_name" dynamodbav:"account_name"`
	AccountNumber string    `json:"account_number" dynamodbav:"account_number"`
	ProviderName  string    `json:"provider_name,omitempty" dynamodbav:"provider_name"`
	Instructions  string    `json:"instructions,omitempty" dynamodbav:"instructions"`
	Enable        bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

type PaymentInstructionInput struct {
	Type          string `json:"type" validate:"required,oneof=mobile_money bank_transfer"`
	Label         string `json:"label" validate:"required"`
	AccountName   string `json:"account_name" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required"`
	ProviderName  string `json:"provider_name"`
	Instructions  string `json:"instructions"`
}
