package middleware

import (
	"net/http"

	"coinpay-backend/internal/utils"
	"coinpay-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminAuthMiddleware validates that the caller holds an admin token.
func AdminAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := authenticate(c, secret)
		if claims == nil {
			return
		}

		if claims.Role != "admin" {
			logger.Log.Warn("unauthorized admin access attempt",
				zap.Uint("user_id", claims.UserID),
				zap.String("role", claims.Role),
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()))
			utils.AbortWithError(c, http.StatusForbidden, "Forbidden: Admins only")
			return
		}

		c.Next()
	}
}
