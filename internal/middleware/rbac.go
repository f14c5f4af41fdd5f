package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/evaluer-api/internal/models"
	appErrors "github.com/noah-isme/evaluer-api/pkg/errors"
	"github.com/noah-isme/evaluer-api/pkg/response"
)

const selfPrefix = "SELF:"

// Self allows access when param matches the caller's user id. The path parameter is
// consulted first, then the query string.
func Self(param string) string {
	return selfPrefix + param
}

// RBAC enforces role-based access control for routes.
func RBAC(allowed ...string) gin.HandlerFunc {
	allowedRoles := make(map[models.UserRole]struct{})
	var selfParams []string
	for _, a := range allowed {
		if param, ok := strings.CutPrefix(a, selfPrefix); ok && param != "" {
			selfParams = append(selfParams, param)
			continue
		}
		allowedRoles[models.UserRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		for _, param := range selfParams {
			if target := selfTarget(c, param); target != "" && target == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

func selfTarget(c *gin.Context, param string) string {
	if target := c.Param(param); target != "" {
		return target
	}
	return c.Query(param)
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}
