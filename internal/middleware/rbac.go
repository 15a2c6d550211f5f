package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fieldlab-api/internal/models"
	appErrors "github.com/noah-isme/fieldlab-api/pkg/errors"
	"github.com/noah-isme/fieldlab-api/pkg/response"
)

// Namespace confines every role to its own route namespace. Paths are matched
// relative to apiPrefix; routes outside all namespaces are open to any role.
func Namespace(apiPrefix string) gin.HandlerFunc {
	apiPrefix = strings.TrimSuffix(apiPrefix, "/")
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		path := strings.TrimPrefix(c.Request.URL.Path, apiPrefix)
		if !models.CanAccess(claims.Role, path) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role "+string(claims.Role)+" may not access this area"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoles admits only the listed roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
