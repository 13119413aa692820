package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/onursal82-hash/Vortexbot/internal/util"
	"github.com/onursal82-hash/Vortexbot/pkg/jwt"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			util.AbortWithCustomError(c, 401, util.ErrCodeUnauthorized, "Missing authorization header")
			return
		}

		// Check if Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			util.AbortWithCustomError(c, 401, util.ErrCodeUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := jwtManager.ValidateToken(parts[1])
		if err != nil {
			util.AbortWithCustomError(c, 401, util.ErrCodeTokenInvalid, "Invalid or expired token")
			return
		}

		// The username doubles as the workspace id
		c.Set("username", claims.Username)
		c.Set("workspace_id", claims.Username)

		c.Next()
	}
}
