package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleMerchant = "merchant"
)

// User is a platform account, either an admin or a merchant. Customers never log
// in and are modelled separately.
type User struct {
	UserID       string     `json:"id" dynamodbav:"user_id"`
	Email        string     `json:"email" dynamodbav:"email"`
	Phone        *string    `json:"phone" dynamodbav:"phone"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	Role         string     `json:"role" dynamodbav:"role"`
	BusinessName string     `json:"business_name" dynamodbav:"business_name"`
	ContactName  string     `json:"contact_name" dynamodbav:"contact_name"`
	Country      string     `json:"country" dynamodbav:"country"`
	Verified     bool       `json:"verified" dynamodbav:"verified"`
	Enable       bool       `json:"enable" dynamodbav:"enable"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=8,max=72"`
	BusinessName string  `json:"business_name" validate:"required"`
	ContactName  string  `json:"contact_name" validate:"required"`
	Phone        *string `json:"phone"`
	Country      string  `json:"country"`
}

type UpdateUserRequest struct {
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone"`
	BusinessName *string `json:"business_name"`
	ContactName  *string `json:"contact_name"`
	Country      *string `json:"country"`
	Enable       *bool   `json:"enable"`
}
