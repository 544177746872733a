package middleware

import (
	"github.com/gin-gonic/gin"

	"fishledger/internal/core/security"
)

// RequirePermission guards read-only routes that bypass the ledger's own checks.
func RequirePermission(policy security.Policy, perm security.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.Authorize(c.Request.Context(), GetCaller(c), perm); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}
