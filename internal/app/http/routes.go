package routes

import (
	"context"
	"net/http"
	"time"

	adminapi "threadcraft-api/internal/api/admin"
	"threadcraft-api/internal/api/billing"
	"threadcraft-api/internal/api/clerkwebhook"
	"threadcraft-api/internal/api/generate"
	"threadcraft-api/internal/api/plans"
	stripewebhooks "threadcraft-api/internal/api/stripewebhook"
	"threadcraft-api/internal/api/users"
	"threadcraft-api/internal/api/welcome"
	"threadcraft-api/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries the constructed handlers and collaborators the routes need.
type Deps struct {
	DB       Pinger
	Verifier middleware.TokenVerifier
	Users    middleware.UserLookup
	Accounts middleware.Provisioner

	ClerkWebhook  *clerkwebhook.Handler
	StripeWebhook *stripewebhooks.Handler
	Me            *users.Handler
	Generate      *generate.Handler
	Welcome       *welcome.Handler
	Plans         *plans.Handler
	Billing       *billing.Handler
	Admin         *adminapi.Handler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Webhooks read the raw body for signature checks; nothing may rewrite it first.
	r.POST("/api/webhooks/clerk", d.ClerkWebhook.Handle)
	r.POST("/api/webhooks/stripe", d.StripeWebhook.Handle)

	r.GET("/health", health(d.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/plans", d.Plans.ListPlans)

	// Authenticated
	auth := r.Group("/api")
	auth.Use(middleware.AuthMiddleware(d.Verifier))

	provisioned := auth.Group("/", middleware.ProvisionUser(d.Users, d.Accounts))
	provisioned.GET("/me", d.Me.GetCurrentUser)
	provisioned.GET("/points", d.Me.GetPoints)

	// Prompts are stored verbatim, so generation skips the sanitizer.
	provisioned.POST("/generate", d.Generate.Generate)
	provisioned.GET("/history", d.Generate.History)

	// The address must reach the mailer unescaped and the template escapes the name itself.
	auth.POST("/send-welcome-email", middleware.SanitizeInput("email", "name"), d.Welcome.SendWelcomeEmail)
	auth.POST("/billing/checkout", middleware.SanitizeInput(), d.Billing.CreateCheckoutSession)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(d.Verifier), middleware.RequireRole("admin"), middleware.SanitizeInput())
	admin.GET("/stats", d.Admin.GetAdminStats)
	admin.GET("/users", d.Admin.ListAllUsers)
	admin.POST("/users/:externalId/points", d.Admin.AdjustPoints)
}

func health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
