package domain

import "time"

// ContentItem is a piece of creator content. Premium items are gated behind
// an active subscription to the owning merchant; free items are public.
type ContentItem struct {
	ContentID   string    `json:"id" dynamodbav:"content_id"`
	MerchantID  string    `json:"merchant_id" dynamodbav:"merchant_id"`
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description,omitempty" dynamodbav:"description"`
	Object      string    `json:"-" dynamodbav:"object"` // S3 key
	Size        int64     `json:"size" dynamodbav:"size"`
	ContentType string    `json:"content_type" dynamodbav:"content_type"`
	Premium     bool      `json:"premium" dynamodbav:"premium"`
	Enable      bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}
