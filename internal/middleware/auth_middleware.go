// internal/middleware/auth_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"bakery-popup/internal/pkg/jwt"
	"bakery-popup/internal/pkg/response"
	"bakery-popup/internal/pkg/session"

	"github.com/gin-gonic/gin"
)

// Roles allowed to edit the popup.
const (
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

type AuthMiddleware struct {
	verifier *jwt.Verifier
	sessions *session.Manager
}

// NewAuthMiddleware checks revocations against sessions when it is enabled.
func NewAuthMiddleware(verifier *jwt.Verifier, sessions *session.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		sessions: sessions,
	}
}

// Auth validates an operator token and stores its claims on the context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		if m.verifier == nil {
			response.Error(c, http.StatusUnauthorized, "operator authentication is not configured", nil)
			return
		}

		claims, err := m.verifier.VerifyOperatorToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		revoked, err := m.sessions.IsTokenBlacklisted(c.Request.Context(), claims.ID)
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "unable to verify session", err)
			return
		}
		if revoked {
			response.Error(c, http.StatusUnauthorized, "token has been revoked", nil)
			return
		}

		c.Set("operator_id", claims.Subject)
		c.Set("jti", claims.ID)
		c.Set("roles", claims.Roles)

		c.Next()
	}
}

// RequireRole middleware that requires user to have at least one of the specified roles
// MUST be used after Auth() middleware
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoles := GetRoles(c)

		for _, userRole := range userRoles {
			for _, requiredRole := range roles {
				if userRole == requiredRole {
					c.Next()
					return
				}
			}
		}

		err := errors.New("user does not have required role")
		response.Error(c, http.StatusForbidden, "insufficient permissions", err, map[string]interface{}{
			"required_roles": roles,
			"user_roles":     userRoles,
		})
	}
}

// OperatorOnly returns middlewares for offer authoring routes (Auth + RequireRole)
func (m *AuthMiddleware) OperatorOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole(RoleOperator, RoleAdmin),
	}
}

// extractToken extracts Bearer token from Authorization header
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return ""
}
