package services

import (
	"coinpay-backend/internal/database"
	"coinpay-backend/internal/models"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

const userCacheTTL = 5 * time.Minute

// FindUserByID loads the account referenced by a token. The cached copy is
// only used for identity; balances are always read inside the ledger transaction.
func FindUserByID(userID uint) (models.User, error) {
	cacheKey := fmt.Sprintf("user:%d", userID)
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(val), &user); err == nil {
				return user, nil
			}
		}
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, err
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(user); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, userCacheTTL)
		}
	}

	return user, nil
}

// InvalidateUserCache drops the cached copy after the balance changed.
func InvalidateUserCache(userID uint) {
	if database.RedisClient == nil {
		return
	}
	database.RedisClient.Del(database.Ctx, fmt.Sprintf("user:%d", userID))
}
