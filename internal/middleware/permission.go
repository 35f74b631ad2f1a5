package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medifixhq/medifix/internal/permissions"
	"github.com/medifixhq/medifix/pkg/errors"
	"github.com/medifixhq/medifix/pkg/metrics"
	"github.com/medifixhq/medifix/pkg/response"
)

// HospitalScope extracts the requested tenant scope from the route. The path
// parameter wins, then the query string, then the header. Nil means the
// global scope.
func HospitalScope(c *gin.Context) *string {
	for _, candidate := range []string{
		c.Param("hospitalID"),
		c.Query("hospital_id"),
		c.GetHeader("X-Hospital-ID"),
	} {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			return &candidate
		}
	}
	return nil
}

// RequirePermission checks that the authenticated user resolves the provided
// permission ID in the request's hospital scope.
func RequirePermission(resolver *permissions.Resolver, permissionID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUserIDKey)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		userID, _ := v.(string)

		allowed, err := resolver.Resolve(c.Request.Context(), userID, permissionID, HospitalScope(c))
		if err != nil {
			// Internal error while checking permissions
			metrics.PermissionChecks.WithLabelValues(permissionID, "error").Inc()
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": gin.H{"code": errors.ErrInternalServer.Code, "message": "permission check failed"}})
			return
		}
		if !allowed {
			metrics.PermissionChecks.WithLabelValues(permissionID, "denied").Inc()
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		metrics.PermissionChecks.WithLabelValues(permissionID, "allowed").Inc()
		c.Next()
	}
}
