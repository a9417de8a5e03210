package middlewares

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"shiftinsight.com/shiftinsight/security"
	"shiftinsight.com/shiftinsight/web/common"
)

const (
	CookieName = "shiftinsight.ApplicationCookie"
	ClaimsKey  = "claims"
)

// Authentication accepts a Bearer token or the application cookie.
func Authentication(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			cookie, err := c.Cookie(CookieName)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("missing token"))
				return
			}

			tokenStr = cookie
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("malformed authorization header"))
				return
			}

			tokenStr = parts[1]
		}

		claims, err := security.ParseIdentityToken(tokenStr, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole must run after Authentication.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok || !slices.Contains(roles, claims.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, common.NewErrorResponse("insufficient role"))
			return
		}
		c.Next()
	}
}

func Claims(c *gin.Context) (*security.IdentityClaims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*security.IdentityClaims)
	return claims, ok
}
