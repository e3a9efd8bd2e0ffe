package auth

import (
	"net/http"
	"time"

	"coinpay-backend/internal/middleware"
	"coinpay-backend/internal/services"
	"coinpay-backend/internal/utils"
	"coinpay-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logout revokes the presented token until it would have expired anyway.
// Tokens are issued by the account service; this only denylists them here.
func Logout(c *gin.Context) {
	tokenString, err := utils.ExtractToken(c)
	if err != nil {
		utils.AbortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	claims, ok := middleware.CurrentClaims(c)
	if !ok || claims.ExpiresAt == nil {
		utils.AbortWithError(c, http.StatusUnauthorized, "Invalid token expiration")
		return
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		c.JSON(http.StatusOK, utils.NewSuccessResponse("Logged out successfully", nil))
		return
	}

	if err := services.AddToDenylist(tokenString, remaining); err != nil {
		logger.Log.Error("failed to denylist token", zap.Uint("user_id", claims.UserID), zap.Error(err))
		utils.AbortWithError(c, http.StatusInternalServerError, "Failed to denylist token")
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Logged out successfully", nil))
}
