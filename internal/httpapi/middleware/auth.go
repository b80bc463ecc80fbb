package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skillswaphq/skillswap-chat/internal/auth"
	"github.com/skillswaphq/skillswap-chat/internal/common"
)

// UserIDKey is the gin context key holding the authenticated uid.
const UserIDKey = "auth_uid"

// AuthRequired resolves the current user id from the Authorization header
// (or, for websocket upgrades where headers are awkward from a browser,
// a `token` query parameter) and aborts with 401 when absent or invalid.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			common.Fail(c, http.StatusUnauthorized, 40101, "missing token")
			c.Abort()
			return
		}

		uid, err := auth.ParseJWT(token, secret)
		if err != nil {
			common.Fail(c, http.StatusUnauthorized, 40102, "invalid token")
			c.Abort()
			return
		}

		c.Set(UserIDKey, uid)
		c.Next()
	}
}

// CurrentUID returns the authenticated uid placed by AuthRequired.
func CurrentUID(c *gin.Context) (string, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return "", false
	}
	uid, ok := v.(string)
	return uid, ok && uid != ""
}
