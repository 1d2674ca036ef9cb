package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"
	"task-manager/api/internal/services"
	"task-manager/api/internal/tokens"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Authenticate requires a valid bearer token and stores the caller's
// Principal on the context.
func Authenticate(jwt *tokens.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			AbortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		scheme, tokenStr, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenStr) == "" {
			AbortWithError(c, apperrors.ErrTokenInvalid)
			return
		}

		claims, err := jwt.Parse(strings.TrimSpace(tokenStr))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		p := services.PrincipalFromClaims(claims)
		c.Set(principalKey, p)
		c.Set("user_id", p.UserID.String())
		c.Set("user_role", string(p.Role))
		c.Next()
	}
}

// GetPrincipal returns the caller stored by Authenticate.
func GetPrincipal(c *gin.Context) (services.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return services.Principal{}, false
	}
	p, ok := v.(services.Principal)
	return p, ok
}

// RequireRole must run after Authenticate.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			AbortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		if !slices.Contains(roles, p.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: fmt.Sprintf("role '%s' is not authorized to access this resource", p.Role),
			})
			return
		}
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}
