package services

import (
	"context"
	"errors"
	"time"

	"coinpay-backend/internal/models"

	"gorm.io/gorm"
)

const (
	AuditStageReceived = "received"
	AuditStageOutcome  = "outcome"
)

var ErrNotificationNotFound = errors.New("notification not found")

// GormAuditLog appends notification records to the notification_logs table.
type GormAuditLog struct {
	DB *gorm.DB
}

func NewGormAuditLog(db *gorm.DB) *GormAuditLog {
	return &GormAuditLog{DB: db}
}

func (a *GormAuditLog) Append(ctx context.Context, rec NotificationRecord) (uint, error) {
	entry := models.NotificationLog{
		Provider:   rec.Provider,
		TradeNo:    rec.TradeNo,
		Stage:      rec.Stage,
		Outcome:    rec.Outcome,
		Reason:     rec.Reason,
		RemoteIP:   rec.RemoteIP,
		ReceivedID: rec.ReceivedID,
		Body:       rec.Body,
	}
	if err := a.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		return 0, err
	}
	return entry.ID, nil
}

func (a *GormAuditLog) Get(ctx context.Context, id uint) (*models.NotificationLog, error) {
	var entry models.NotificationLog
	if err := a.DB.WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// NotificationFilter 回调日志查询过滤条件
type NotificationFilter struct {
	Provider  *string
	TradeNo   *string
	Stage     *string
	Outcome   *string
	StartTime *time.Time
	EndTime   *time.Time
	Page      int
	Limit     int
}

// Find 查询回调日志，最新的在前
func (a *GormAuditLog) Find(ctx context.Context, filter NotificationFilter) ([]models.NotificationLog, int64, error) {
	var entries []models.NotificationLog
	var total int64

	query := a.DB.WithContext(ctx).Model(&models.NotificationLog{})
	if filter.Provider != nil {
		query = query.Where("provider = ?", *filter.Provider)
	}
	if filter.TradeNo != nil {
		query = query.Where("trade_no = ?", *filter.TradeNo)
	}
	if filter.Stage != nil {
		query = query.Where("stage = ?", *filter.Stage)
	}
	if filter.Outcome != nil {
		query = query.Where("outcome = ?", *filter.Outcome)
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
	if err := query.Order("id desc").Limit(filter.Limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
