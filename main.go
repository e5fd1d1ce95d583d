package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"threadcraft-api/config"
	"threadcraft-api/database"
	"threadcraft-api/internal/accounts"
	adminapi "threadcraft-api/internal/api/admin"
	"threadcraft-api/internal/api/billing"
	"threadcraft-api/internal/api/clerkwebhook"
	"threadcraft-api/internal/api/generate"
	"threadcraft-api/internal/api/plans"
	stripewebhooks "threadcraft-api/internal/api/stripewebhook"
	"threadcraft-api/internal/api/users"
	"threadcraft-api/internal/api/welcome"
	routes "threadcraft-api/internal/app/http"
	"threadcraft-api/internal/app/http/middleware"
	domainplans "threadcraft-api/internal/domain/plans"
	domainusers "threadcraft-api/internal/domain/users"
	"threadcraft-api/internal/generation"
	"threadcraft-api/internal/infra/email"
	"threadcraft-api/internal/infra/genai"
	stripeinfra "threadcraft-api/internal/infra/stripe"
	"threadcraft-api/internal/logging"
	"threadcraft-api/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.Init(logging.Config{Format: cfg.LogFormat, Level: cfg.LogLevel})

	db, err := database.InitDB(cfg.DBURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}
	st := store.New(db)

	catalog, err := domainplans.ParseCatalog(cfg.Stripe.PricePlans)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid STRIPE_PRICE_PLANS")
	}

	welcomer := email.NewWelcomer(mailSender(cfg.Mail), cfg.Mail.From, cfg.Mail.FromName, cfg.AppURL,
		domainusers.DefaultPoints, cfg.Generation.Cost)
	acc := accounts.NewService(st, welcomer)

	clerk, err := clerkwebhook.NewHandler(cfg.Clerk.WebhookSecret, acc)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid CLERK_WEBHOOK_SECRET")
	}

	stripeClient := stripeinfra.NewClient(cfg.Stripe.SecretKey)
	gen := generation.NewService(st, genai.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL), generation.Config{
		Cost:          cfg.Generation.Cost,
		Timeout:       cfg.Generation.Timeout,
		MaxImageBytes: cfg.Generation.MaxImageBytes,
	})

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger())

	// ✅ Add CORS middleware BEFORE registering routes
	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(cfg.CORSOrigin),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logging.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", logging.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		DB:            st,
		Verifier:      tokenVerifier(cfg),
		Users:         st,
		Accounts:      acc,
		ClerkWebhook:  clerk,
		StripeWebhook: stripewebhooks.NewHandler(cfg.Stripe.WebhookSecret, stripeClient, catalog, st),
		Me:            users.NewHandler(st, gen.Cost()),
		Generate:      generate.NewHandler(gen),
		Welcome:       welcome.NewHandler(welcomer),
		Plans:         plans.NewHandler(catalog),
		Billing:       billing.NewHandler(stripeClient, catalog, cfg.AppURL),
		Admin:         adminapi.NewHandler(st),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("ThreadCraft API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	acc.Wait()
}

// mailSender prefers the Mailtrap API, then SMTP, and logs messages when neither is configured.
func mailSender(cfg config.MailConfig) email.Sender {
	switch {
	case cfg.MailtrapToken != "":
		return email.NewMailtrapSender(cfg.MailtrapToken)
	case cfg.SMTPHost != "":
		return email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	default:
		log.Warn().Msg("No mail transport configured; welcome emails will only be logged")
		return email.NewLogSender()
	}
}

func tokenVerifier(cfg *config.Config) middleware.TokenVerifier {
	if cfg.Clerk.Issuer != "" {
		return middleware.NewOIDCVerifier(context.Background(), cfg.Clerk.Issuer, cfg.Clerk.JWKSURL)
	}
	log.Warn().Msg("CLERK_ISSUER not set; accepting HS256 tokens signed with JWT_SECRET")
	return middleware.NewHMACVerifier(cfg.Auth.JWTSecret)
}

func corsOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"http://localhost:3000"}
	}
	return out
}
