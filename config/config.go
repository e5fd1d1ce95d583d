package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Port       string
	DBURL      string
	CORSOrigin string
	AppURL     string

	LogLevel  string
	LogFormat string

	Auth       AuthConfig
	Clerk      ClerkConfig
	Stripe     StripeConfig
	Gemini     GeminiConfig
	Generation GenerationConfig
	Mail       MailConfig
}

type AuthConfig struct {
	// JWTSecret signs HS256 bearer tokens when no Clerk issuer is configured (local dev, tests).
	JWTSecret string
}

type ClerkConfig struct {
	WebhookSecret string
	Issuer        string
	JWKSURL       string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	// PricePlans is "price_id:Plan:points" entries separated by commas.
	PricePlans string
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GenerationConfig struct {
	Cost          int
	Timeout       time.Duration
	MaxImageBytes int
}

type MailConfig struct {
	MailtrapToken string
	From          string
	FromName      string
	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPassword  string
}

// DefaultPricePlans mirrors the two Stripe prices sold at launch.
const DefaultPricePlans = "price_1PyFKGBibz3ZDixDAaJ3HO74:Basic:100,price_1PyFN0Bibz3ZDixDqm9eYL8W:Pro:500"

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found. Using system environment variables.")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:       v.GetString("PORT"),
		DBURL:      v.GetString("DB_URL"),
		CORSOrigin: v.GetString("CORS_ORIGIN"),
		AppURL:     strings.TrimRight(v.GetString("APP_URL"), "/"),
		LogLevel:   v.GetString("LOG_LEVEL"),
		LogFormat:  v.GetString("LOG_FORMAT"),
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
		},
		Clerk: ClerkConfig{
			WebhookSecret: v.GetString("CLERK_WEBHOOK_SECRET"),
			Issuer:        v.GetString("CLERK_ISSUER"),
			JWKSURL:       v.GetString("CLERK_JWKS_URL"),
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
			PricePlans:    v.GetString("STRIPE_PRICE_PLANS"),
		},
		Gemini: GeminiConfig{
			APIKey:  v.GetString("GEMINI_API_KEY"),
			Model:   v.GetString("GEMINI_MODEL"),
			BaseURL: v.GetString("GEMINI_BASE_URL"),
		},
		Generation: GenerationConfig{
			Cost:          v.GetInt("GENERATION_COST"),
			Timeout:       v.GetDuration("GENERATION_TIMEOUT"),
			MaxImageBytes: v.GetInt("MAX_IMAGE_BYTES"),
		},
		Mail: MailConfig{
			MailtrapToken: v.GetString("MAILTRAP_API_TOKEN"),
			From:          v.GetString("MAIL_FROM"),
			FromName:      v.GetString("MAIL_FROM_NAME"),
			SMTPHost:      v.GetString("SMTP_HOST"),
			SMTPPort:      v.GetString("SMTP_PORT"),
			SMTPUser:      v.GetString("SMTP_USER"),
			SMTPPassword:  v.GetString("SMTP_PASSWORD"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "auto")
	v.SetDefault("APP_URL", "http://localhost:3000")
	v.SetDefault("STRIPE_PRICE_PLANS", DefaultPricePlans)
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-pro")
	v.SetDefault("GENERATION_COST", 5)
	v.SetDefault("GENERATION_TIMEOUT", 60*time.Second)
	v.SetDefault("MAX_IMAGE_BYTES", 4<<20)
	v.SetDefault("MAIL_FROM", "welcome@threadcraft.ai")
	v.SetDefault("MAIL_FROM_NAME", "ThreadCraft AI")
	v.SetDefault("SMTP_PORT", "587")
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	required := map[string]string{
		"DB_URL":                c.DBURL,
		"CLERK_WEBHOOK_SECRET":  c.Clerk.WebhookSecret,
		"STRIPE_SECRET_KEY":     c.Stripe.SecretKey,
		"STRIPE_WEBHOOK_SECRET": c.Stripe.WebhookSecret,
		"GEMINI_API_KEY":        c.Gemini.APIKey,
	}
	for _, key := range []string{"DB_URL", "CLERK_WEBHOOK_SECRET", "STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET", "GEMINI_API_KEY"} {
		if strings.TrimSpace(required[key]) == "" {
			return fmt.Errorf("missing required environment variable: %s", key)
		}
	}
	if c.Clerk.Issuer == "" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("one of CLERK_ISSUER or JWT_SECRET must be set")
	}
	if c.Generation.Cost <= 0 {
		return fmt.Errorf("GENERATION_COST must be positive, got %d", c.Generation.Cost)
	}
	if c.Generation.Timeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	return nil
}
