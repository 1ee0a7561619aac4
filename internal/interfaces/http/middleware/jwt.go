package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atelier-erp/backend/internal/infrastructure/auth"
	"github.com/atelier-erp/backend/internal/infrastructure/logger"
	"github.com/atelier-erp/backend/internal/interfaces/http/dto"
)

const (
	// ClaimsContextKey is the gin context key holding validated claims
	ClaimsContextKey = "jwt_claims"
	// ActorIDContextKey is the gin context key holding the actor id string
	ActorIDContextKey = "jwt_actor_id"
)

// JWTMiddlewareConfig configures the JWT auth middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// SkipPaths are exact request paths that bypass authentication
	SkipPaths []string
}

// JWTAuthMiddleware returns an auth middleware with default configuration
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{JWTService: jwtService})
}

// JWTAuthMiddlewareWithConfig returns an auth middleware that validates the
// Bearer token and stamps the actor identity onto the request context
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authorization header required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Authorization header must be a Bearer token")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid token")
			return
		}

		c.Set(ClaimsContextKey, claims)
		c.Set(ActorIDContextKey, claims.ActorID)

		// propagate the actor onto the request-scoped logger
		log := logger.FromContext(c.Request.Context())
		ctx, _ := logger.WithActorID(c.Request.Context(), log, claims.ActorID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}

// GetJWTClaims returns the validated claims, or nil when unauthenticated
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsContextKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetJWTActorID returns the authenticated actor id string, or empty
func GetJWTActorID(c *gin.Context) string {
	return c.GetString(ActorIDContextKey)
}

// GetJWTUsername returns the authenticated username, or empty
func GetJWTUsername(c *gin.Context) string {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.Username
	}
	return ""
}
