package domain

import "time"

// Customer is a paying end-user of one merchant. Customers have no login;
// they are identified at checkout by contact details and subscription
// reference codes.
type Customer struct {
	CustomerID string    `json:"id" dynamodbav:"customer_id"`
	MerchantID string    `json:"merchant_id" dynamodbav:"merchant_id"`
	Name       string    `json:"name" dynamodbav:"name"`
	Email      string    `json:"email,omitempty" dynamodbav:"email"`
	Phone      string    `json:"phone,omitempty" dynamodbav:"phone"`
	Enable     bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CustomerInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}
