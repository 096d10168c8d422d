package domain

// UserVerification stores one-time codes for password recovery and
// email/phone confirmation.
// PK: user_id, SK: type ("otp" | "email" | "phone").
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type UserVerification struct {
	UserID    string `json:"user_id" dynamodbav:"user_id"`
	Type      string `json:"type" dynamodbav:"type"` // "otp" | "email" | "phone"
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
