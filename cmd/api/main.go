package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/payssd/payssd-api/internal/application/notification"
	"github.com/payssd/payssd-api/internal/application/subscription"
	"github.com/payssd/payssd-api/internal/config"
	"github.com/payssd/payssd-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/payssd/payssd-api/internal/infrastructure/jwt"
	"github.com/payssd/payssd-api/internal/infrastructure/providers"
	s3infra "github.com/payssd/payssd-api/internal/infrastructure/s3"
	transporthttp "github.com/payssd/payssd-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("loading JWT keys: %v", err)
	}

	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		SessionRepo:      dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.UserVerifications),
		CustomerRepo:     dynamo.NewCustomerRepo(dynamoClient, cfg.DynamoTables.Customers),
		ProductRepo:      dynamo.NewProductRepo(dynamoClient, cfg.DynamoTables.Products),
		PriceRepo:        dynamo.NewPriceRepo(dynamoClient, cfg.DynamoTables.Prices),
		SubscriptionRepo: dynamo.NewSubscriptionRepo(dynamoClient, cfg.DynamoTables.Subscriptions),
		PaymentRepo:      dynamo.NewPaymentRepo(dynamoClient, cfg.DynamoTables.Payments),
		InstructionRepo:  dynamo.NewInstructionRepo(dynamoClient, cfg.DynamoTables.PaymentInstructions),
		ContentRepo:      dynamo.NewContentRepo(dynamoClient, cfg.DynamoTables.Content),
		ProviderRepo:     dynamo.NewProviderRepo(dynamoClient, cfg.DynamoTables.NotificationProviders),
		TemplateRepo:     dynamo.NewTemplateRepo(dynamoClient, cfg.DynamoTables.NotificationTemplates),
		LogRepo:          dynamo.NewLogRepo(dynamoClient, cfg.DynamoTables.NotificationLogs),
		S3Store:          s3Store,
		JWTProvider:      jwtProvider,
		ProviderClient:   providers.NewHTTPClient(time.Duration(cfg.ProviderTimeoutSecs) * time.Second),
	}

	router := transporthttp.NewRouter(cfg, deps)

	// Background sweeper that warns about, lapses and expires subscriptions
	// whose billing period has run out.
	notifSvc := notification.NewService(
		deps.ProviderRepo, deps.TemplateRepo, deps.LogRepo, deps.UserRepo,
		deps.ProviderClient, cfg.AdminEmail, cfg.AdminPhone,
	)
	sweeper := subscription.NewSweeper(deps.SubscriptionRepo, deps.SubscriptionRepo, deps.CustomerRepo, deps.ProductRepo, notifSvc)
	if err := sweeper.Start(cfg.SweepSchedule); err != nil {
		log.Fatalf("starting subscription sweeper: %v", err)
	}
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
