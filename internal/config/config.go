package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	JWTPrivateKeyPath      string
	JWTPublicKeyPath       string
	JWTExpiryDays          int
	RefreshTokenExpiryDays int

	// Platform admin contact, the recipient of admin notifications.
	AdminEmail string
	AdminPhone string

	// Outbound HTTP timeout for notification provider calls, in seconds.
	ProviderTimeoutSecs int

	// Cron expression (or @every duration) for the subscription sweeper.
	SweepSchedule string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users                 string
	Sessions              string
	Customers             string
	Products              string
	Prices                string
	Subscriptions         string
	Payments              string
	PaymentInstructions   string
	Content               string
	NotificationProviders string
	NotificationTemplates string
	NotificationLogs      string
	UserVerifications     string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:                 getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:              getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Customers:             getEnv("DYNAMO_TABLE_CUSTOMERS", "customers"),
			Products:              getEnv("DYNAMO_TABLE_PRODUCTS", "products"),
			Prices:                getEnv("DYNAMO_TABLE_PRICES", "prices"),
			Subscriptions:         getEnv("DYNAMO_TABLE_SUBSCRIPTIONS", "subscriptions"),
			Payments:              getEnv("DYNAMO_TABLE_PAYMENTS", "payments"),
			PaymentInstructions:   getEnv("DYNAMO_TABLE_PAYMENT_INSTRUCTIONS", "payment_instructions"),
			Content:               getEnv("DYNAMO_TABLE_CONTENT", "content_items"),
			NotificationProviders: getEnv("DYNAMO_TABLE_NOTIFICATION_PROVIDERS", "notification_providers"),
			NotificationTemplates: getEnv("DYNAMO_TABLE_NOTIFICATION_TEMPLATES", "notification_templates"),
			NotificationLogs:      getEnv("DYNAMO_TABLE_NOTIFICATION_LOGS", "notification_logs"),
			UserVerifications:     getEnv("DYNAMO_TABLE_USER_VERIFICATIONS", "user_verifications"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "payssd-content"),

		JWTPrivateKeyPath:      getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:       getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiryDays:          getEnvInt("JWT_EXPIRY_DAYS", 7),
		RefreshTokenExpiryDays: getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30),

		AdminEmail: getEnv("ADMIN_EMAIL", ""),
		AdminPhone: getEnv("ADMIN_PHONE", ""),

		ProviderTimeoutSecs: getEnvInt("PROVIDER_TIMEOUT_SECS", 30),

		SweepSchedule: getEnv("SWEEP_SCHEDULE", "@every 1h"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
