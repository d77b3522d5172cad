package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/attendify/attendify-api/pkg/errors"
	"github.com/attendify/attendify-api/pkg/response"
)

// SweepAuth guards the sweep trigger with a shared secret bearer token. The
// request is rejected before any reconciliation logic runs.
func SweepAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "sweep trigger is not configured"))
			c.Abort()
			return
		}

		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing bearer token"))
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid sweep token"))
			c.Abort()
			return
		}

		c.Next()
	}
}
