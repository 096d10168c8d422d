package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/payssd/payssd-api/internal/application/auth"
	"github.com/payssd/payssd-api/internal/application/content"
	"github.com/payssd/payssd-api/internal/application/customer"
	"github.com/payssd/payssd-api/internal/application/instruction"
	"github.com/payssd/payssd-api/internal/application/notification"
	"github.com/payssd/payssd-api/internal/application/payment"
	"github.com/payssd/payssd-api/internal/application/product"
	"github.com/payssd/payssd-api/internal/application/provider"
	"github.com/payssd/payssd-api/internal/application/session"
	"github.com/payssd/payssd-api/internal/application/subscription"
	"github.com/payssd/payssd-api/internal/application/template"
	"github.com/payssd/payssd-api/internal/application/user"
	"github.com/payssd/payssd-api/internal/config"
	"github.com/payssd/payssd-api/internal/domain"
	"github.com/payssd/payssd-api/internal/transport/http/handler"
	appmiddleware "github.com/payssd/payssd-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	refreshDur := time.Duration(cfg.RefreshTokenExpiryDays) * 24 * time.Hour

	notifSvc := notification.NewService(
		deps.ProviderRepo, deps.TemplateRepo, deps.LogRepo, deps.UserRepo,
		deps.ProviderClient, cfg.AdminEmail, cfg.AdminPhone,
	)
	sessionSvc := session.NewService(deps.SessionRepo, deps.UserRepo, deps.JWTProvider)
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:        deps.UserRepo,
		SessionRepo:     deps.SessionRepo,
		JWTProvider:     deps.JWTProvider,
		Notifier:        notifSvc,
		RefreshTokenDur: refreshDur,
	})
	authSvc := auth.NewService(deps.VerificationRepo, deps.UserRepo, deps.SessionRepo, notifSvc, deps.JWTProvider, refreshDur)
	customerSvc := customer.NewService(deps.CustomerRepo, deps.UserRepo, notifSvc)
	productSvc := product.NewService(deps.ProductRepo, deps.PriceRepo)
	instructionSvc := instruction.NewService(deps.InstructionRepo)
	subscriptionSvc := subscription.NewService(deps.SubscriptionRepo, deps.CustomerRepo, deps.PriceRepo, deps.ProductRepo, notifSvc)
	paymentSvc := payment.NewService(deps.PaymentRepo, deps.SubscriptionRepo, deps.PriceRepo, deps.ProductRepo, deps.CustomerRepo, notifSvc)
	providerSvc := provider.NewService(deps.ProviderRepo)
	templateSvc := template.NewService(deps.TemplateRepo)
	contentSvc := content.NewService(deps.ContentRepo, deps.SubscriptionRepo, deps.S3Store)

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(sessionSvc)
	userH := handler.NewUserHandler(userSvc)
	pwH := handler.NewPasswordRecoveryHandler(authSvc)
	emailH := handler.NewEmailConfirmHandler(authSvc)
	phoneH := handler.NewPhoneConfirmHandler(authSvc)
	customerH := handler.NewCustomerHandler(customerSvc)
	productH := handler.NewProductHandler(productSvc)
	instructionH := handler.NewInstructionHandler(instructionSvc)
	subscriptionH := handler.NewSubscriptionHandler(subscriptionSvc)
	paymentH := handler.NewPaymentHandler(paymentSvc)
	checkoutH := handler.NewCheckoutHandler(productSvc, subscriptionSvc, paymentSvc, instructionSvc)
	contentH := handler.NewContentHandler(contentSvc)
	providerH := handler.NewProviderHandler(providerSvc)
	templateH := handler.NewTemplateHandler(templateSvc)
	notifH := handler.NewNotificationHandler(notifSvc, deps.LogRepo)

	r.Route("/v1", func(r chi.Router) {
		// Public routes (no auth).
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.With(sensitiveRL.Limit).Post("/password-recovery/{action}", pwH.Action)

		// Public storefront and checkout.
		r.Route("/public", func(r chi.Router) {
			r.Get("/merchants/{merchantID}/products", checkoutH.ListProducts)
			r.Get("/merchants/{merchantID}/products/{id}/prices", checkoutH.ListPrices)
			r.Get("/merchants/{merchantID}/payment-instructions", checkoutH.ListInstructions)
			r.Get("/merchants/{merchantID}/content", contentH.ListPublic)
			r.With(sensitiveRL.Limit).Post("/merchants/{merchantID}/subscriptions", checkoutH.Subscribe)
			r.Get("/subscriptions/{code}", checkoutH.Status)
			r.With(sensitiveRL.Limit).Post("/payments", checkoutH.SubmitPayment)
			r.Get("/content/{id}", contentH.Access)
		})

		// Authenticated routes.
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)
			r.Post("/users/change-password", userH.ChangePassword)
			r.Post("/password-recovery/change-password", pwH.ChangePassword)
			r.Post("/confirm-email/{action}", emailH.Action)
			r.Post("/confirm-phone/{action}", phoneH.Action)

			r.Post("/customers", customerH.Create)
			r.Get("/customers", customerH.List)
			r.Get("/customers/{id}", customerH.Get)
			r.Put("/customers/{id}", customerH.Update)
			r.Delete("/customers/{id}", customerH.Delete)

			r.Post("/products", productH.Create)
			r.Get("/products", productH.List)
			r.Get("/products/{id}", productH.Get)
			r.Put("/products/{id}", productH.Update)
			r.Delete("/products/{id}", productH.Delete)
			r.Post("/products/{id}/prices", productH.AddPrice)
			r.Get("/products/{id}/prices", productH.ListPrices)
			r.Delete("/products/{id}/prices/{priceID}", productH.DeletePrice)

			r.Post("/payment-instructions", instructionH.Create)
			r.Get("/payment-instructions", instructionH.List)
			r.Put("/payment-instructions/{id}", instructionH.Update)
			r.Delete("/payment-instructions/{id}", instructionH.Delete)

			r.Get("/subscriptions", subscriptionH.List)
			r.Get("/subscriptions/{id}", subscriptionH.Get)
			r.Post("/subscriptions/{id}/cancel", subscriptionH.Cancel)

			r.Get("/payments", paymentH.List)
			r.Get("/payments/{id}", paymentH.Get)
			r.Post("/payments/{id}/confirm", paymentH.Confirm)
			r.Post("/payments/{id}/reject", paymentH.Reject)

			r.Post("/content", contentH.Upload)
			r.Get("/content", contentH.List)
			r.Delete("/content/{id}", contentH.Delete)

			// Admin-only routes.
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Delete("/users/{id}", userH.Delete)

				r.Post("/notification-providers", providerH.Create)
				r.Get("/notification-providers", providerH.List)
				r.Get("/notification-providers/{id}", providerH.Get)
				r.Put("/notification-providers/{id}", providerH.Update)
				r.Delete("/notification-providers/{id}", providerH.Delete)
				r.Post("/notification-providers/{id}/default", providerH.SetDefault)

				r.Post("/notification-templates", templateH.Create)
				r.Get("/notification-templates", templateH.List)
				r.Get("/notification-templates/{id}", templateH.Get)
				r.Put("/notification-templates/{id}", templateH.Update)
				r.Delete("/notification-templates/{id}", templateH.Delete)

				r.Get("/notification-logs", notifH.ListLogs)
				r.Post("/notifications/test", notifH.TestSend)
			})
		})
	})

	return r
}
