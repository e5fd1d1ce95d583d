package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"threadcraft-api/internal/logging"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by AuthMiddleware.
const (
	KeyExternalID = "external_id"
	KeyEmail      = "email"
	KeyName       = "name"
	KeyRole       = "role"
)

// Claims is the caller identity extracted from a session token.
type Claims struct {
	ExternalID string
	Email      string
	Name       string
	Role       string
}

type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*Claims, error)
}

// OIDCVerifier checks Clerk session tokens against the instance JWKS.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier builds a verifier for issuer. jwksURL defaults to the
// issuer's well-known JWKS document.
func NewOIDCVerifier(ctx context.Context, issuer, jwksURL string) *OIDCVerifier {
	issuer = strings.TrimRight(issuer, "/")
	if jwksURL == "" {
		jwksURL = issuer + "/.well-known/jwks.json"
	}
	keySet := oidc.NewRemoteKeySet(ctx, jwksURL)
	return &OIDCVerifier{
		verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{SkipClientIDCheck: true}),
	}
}

func (v *OIDCVerifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	tok, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	var extra struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Role     string `json:"role"`
		Metadata struct {
			Role string `json:"role"`
		} `json:"metadata"`
	}
	if err := tok.Claims(&extra); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	role := extra.Role
	if role == "" {
		role = extra.Metadata.Role
	}
	return &Claims{ExternalID: tok.Subject, Email: extra.Email, Name: extra.Name, Role: role}, nil
}

// HMACVerifier accepts HS256 tokens signed with a shared secret. Used for local
// development and tests when no Clerk issuer is configured.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(_ context.Context, raw string) (*Claims, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	sub, _ := claims.GetSubject()
	out := &Claims{ExternalID: sub}
	out.Email, _ = claims["email"].(string)
	out.Name, _ = claims["name"].(string)
	out.Role, _ = claims["role"].(string)
	return out, nil
}

func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token malformed"})
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), strings.TrimSpace(tokenString))
		if err != nil || claims.ExternalID == "" {
			logging.FromContext(c.Request.Context()).Debug().Err(err).Msg("Rejected session token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(KeyExternalID, claims.ExternalID)
		c.Set(KeyEmail, claims.Email)
		c.Set(KeyName, claims.Name)
		c.Set(KeyRole, claims.Role)
		c.Next()
	}
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(KeyRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Role not found in token"})
			return
		}

		if value != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		c.Next()
	}
}
