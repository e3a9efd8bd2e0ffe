package services

import (
	"context"
	"time"

	"coinpay-backend/internal/models"
)

// TransactionFilter defines criteria for filtering ledger entries
type TransactionFilter struct {
	UserID    *uint
	Type      *models.TransactionType
	StartTime *time.Time
	EndTime   *time.Time
	Page      int
	Limit     int
}

// History returns ledger entries, newest first.
func (l *GormLedger) History(ctx context.Context, filter TransactionFilter) ([]models.Transaction, int64, error) {
	var transactions []models.Transaction
	var total int64

	query := l.DB.WithContext(ctx).Model(&models.Transaction{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc, id desc").Limit(filter.Limit).Offset(offset).Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

// Balance reads the account balance straight from the database.
func (l *GormLedger) Balance(ctx context.Context, userID uint) (models.User, error) {
	var user models.User
	if err := l.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		return user, err
	}
	return user, nil
}
