package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/powergrid/backend/internal/domain/identity"
	"github.com/powergrid/backend/internal/infrastructure/auth"
	"github.com/powergrid/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Auth context keys
const (
	PrincipalKey  = "principal"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Auth validates the bearer token and stores the caller's principal in the
// request context. Handlers downstream assume the principal is present.
func Auth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authorization header required")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Authorization header must be a bearer token")
			return
		}

		claims, err := jwtService.Validate(strings.TrimPrefix(header, BearerPrefix))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid token")
			return
		}

		principal, err := claims.Principal()
		if err != nil {
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid token claims")
			return
		}

		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// RequireStaff rejects callers that are not admins or employees. Must run
// after Auth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !principal.IsStaff() {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Staff access required"))
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects callers that are not admins. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !principal.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Admin access required"))
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller stored by Auth
func GetPrincipal(c *gin.Context) (identity.Principal, bool) {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return identity.Principal{}, false
	}
	principal, ok := value.(identity.Principal)
	return principal, ok
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}
