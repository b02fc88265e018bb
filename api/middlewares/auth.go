package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hyeonkim-dev/docintake/auth"
	"github.com/hyeonkim-dev/docintake/tool"
)

// Context keys set by RequireAuth for downstream handlers.
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextToken  = "token"
)

// RequireAuth verifies the bearer token and stores the request principal in
// the gin context. Requests without a valid token are rejected with 401.
func RequireAuth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, tool.FastReturnError("Missing bearer token"))
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims, err := tokens.Verify(tokenString)
		if err != nil {
			tool.DefaultLogger.Debugf("[Auth] Token verification failed: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, tool.FastReturnError("Invalid or expired token"))
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextToken, tokenString)
		c.Next()
	}
}
