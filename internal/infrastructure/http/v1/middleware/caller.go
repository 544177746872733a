package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"fishledger/internal/core/apperror"
	"fishledger/internal/core/id"
	"fishledger/internal/core/security"
)

const (
	HeaderUserID      = "X-User-ID"
	HeaderPermissions = "X-Permissions"

	callerKey = "caller"
)

// Caller reads the identity set by the authenticating proxy in front of the service.
// Requests without a user id pass through anonymous, with no permissions.
func Caller() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := security.Caller{}

		if raw := c.GetHeader(HeaderUserID); raw != "" {
			userID, err := id.Parse(raw)
			if err != nil {
				_ = c.Error(apperror.NewValidation("invalid user id").
					WithDetail("header", HeaderUserID))
				c.Abort()
				return
			}
			caller.UserID = userID
			caller.Permissions = parsePermissions(c.GetHeader(HeaderPermissions))
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

func parsePermissions(raw string) []security.Permission {
	var perms []security.Permission
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			perms = append(perms, security.Permission(p))
		}
	}
	return perms
}

// GetCaller returns the caller attached by Caller.
func GetCaller(c *gin.Context) security.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(security.Caller); ok {
			return caller
		}
	}
	return security.Caller{}
}
