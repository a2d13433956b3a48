package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/navafv/digital-thread-tailor-app/internal/model"
	"github.com/navafv/digital-thread-tailor-app/pkg/jwtutil"
	"github.com/navafv/digital-thread-tailor-app/pkg/logger"
	"github.com/navafv/digital-thread-tailor-app/prometheus"
	"go.uber.org/zap"
)

const identityKey = "identity"

// TokenValidator parses and verifies access tokens
type TokenValidator interface {
	ValidateToken(token string) (*jwtutil.TenantClaims, error)
}

// AuthMiddleware verifies the bearer token and stores the acting identity
// on the context for handlers to pass into services
func AuthMiddleware(tokens TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			tokenString := c.Request().Header.Get("Authorization")
			if tokenString == "" {
				log.Warn("Missing authorization token")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			if len(tokenString) > 7 && strings.ToUpper(tokenString[0:7]) == "BEARER " {
				tokenString = tokenString[7:]
			}

			claims, err := tokens.ValidateToken(tokenString)
			if err != nil {
				log.Warn("Invalid token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			role, err := model.ParseRole(claims.Role)
			if err != nil || claims.TenantID == 0 {
				log.Warn("Token without usable role or tenant",
					zap.String("role", claims.Role),
					zap.Uint("tenant_id", claims.TenantID))
				prometheus.RecordAuthError("invalid_claims")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			who := model.Identity{
				UserID:     claims.UserID,
				TenantID:   claims.TenantID,
				Role:       role,
				CustomerID: claims.CustomerID,
			}
			c.Set(identityKey, who)

			log = log.With(
				zap.Uint("user_id", who.UserID),
				zap.Uint("tenant_id", who.TenantID),
				zap.String("role", string(who.Role)),
			)
			logger.Attach(c, log)

			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by AuthMiddleware
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	who, ok := c.Get(identityKey).(model.Identity)
	return who, ok
}

// RequireRole lets only identities with the given role through
func RequireRole(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			who, ok := IdentityFrom(c)
			if !ok {
				prometheus.RecordAuthError("missing_identity")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			var allowed bool
			switch who.Role {
			case model.RoleTailor:
				allowed = role == model.RoleTailor
			case model.RoleClient:
				allowed = role == model.RoleClient && who.CustomerID != nil
			default:
				allowed = false
			}
			if !allowed {
				logger.FromEcho(c).Warn("Role not permitted",
					zap.String("role", string(who.Role)),
					zap.String("required", string(role)))
				prometheus.RecordAuthError("wrong_role")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
			}
			return next(c)
		}
	}
}
