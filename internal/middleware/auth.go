package middleware

import (
	"errors"
	"net/http"

	"coinpay-backend/internal/models"
	"coinpay-backend/internal/services"
	"coinpay-backend/internal/utils"
	"coinpay-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextUserKey   = "user"
	ContextClaimsKey = "claims"
)

// authenticate checks the bearer token and the denylist. It writes the error
// response itself and returns nil claims when the request must stop.
func authenticate(c *gin.Context, secret string) *utils.Claims {
	tokenString, err := utils.ExtractToken(c)
	if err != nil {
		utils.AbortWithError(c, http.StatusUnauthorized, err.Error())
		return nil
	}

	isDenylisted, err := services.IsDenylisted(tokenString)
	if err != nil {
		logger.Log.Error("denylist lookup failed", zap.Error(err))
		utils.AbortWithError(c, http.StatusInternalServerError, "Failed to check token status")
		return nil
	}
	if isDenylisted {
		utils.AbortWithError(c, http.StatusUnauthorized, "Token has been revoked")
		return nil
	}

	claims, err := utils.ValidateToken(tokenString, secret)
	if err != nil {
		utils.AbortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
		return nil
	}
	c.Set(ContextClaimsKey, claims)
	return claims
}

// AuthMiddleware admits requests carrying a valid token for an existing account.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := authenticate(c, secret)
		if claims == nil {
			return
		}

		user, err := services.FindUserByID(claims.UserID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				utils.AbortWithError(c, http.StatusUnauthorized, "User not found")
				return
			}
			logger.Log.Error("failed to load user", zap.Uint("user_id", claims.UserID), zap.Error(err))
			utils.AbortWithError(c, http.StatusInternalServerError, "Failed to load user")
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the account stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// CurrentClaims returns the validated token claims.
func CurrentClaims(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}
