package http

import (
	"net/http"

	"github.com/payssd/payssd-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/payssd/payssd-api/internal/infrastructure/jwt"
	s3infra "github.com/payssd/payssd-api/internal/infrastructure/s3"
)

// Deps holds the infrastructure dependencies for the router. Services are
// constructed inside NewRouter from these.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	SessionRepo      *dynamo.SessionRepo
	VerificationRepo *dynamo.VerificationRepo
	CustomerRepo     *dynamo.CustomerRepo
	ProductRepo      *dynamo.ProductRepo
	PriceRepo        *dynamo.PriceRepo
	SubscriptionRepo *dynamo.SubscriptionRepo
	PaymentRepo      *dynamo.PaymentRepo
	InstructionRepo  *dynamo.InstructionRepo
	ContentRepo      *dynamo.ContentRepo
	ProviderRepo     *dynamo.ProviderRepo
	TemplateRepo     *dynamo.TemplateRepo
	LogRepo          *dynamo.LogRepo

	S3Store     *s3infra.Store
	JWTProvider *jwtinfra.Provider

	// Outbound client shared by all notification provider adapters.
	ProviderClient *http.Client
}
