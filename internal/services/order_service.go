package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coinpay-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderFilter 订单查询过滤条件
type OrderFilter struct {
	UserID    *uint
	Status    *models.OrderStatus
	Provider  *string
	StartTime *time.Time
	EndTime   *time.Time
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Page      int
	Limit     int
}

// GormOrderStore is the OrderStore backed by the payment_orders table.
type GormOrderStore struct {
	DB *gorm.DB
}

func NewGormOrderStore(db *gorm.DB) *GormOrderStore {
	return &GormOrderStore{DB: db}
}

func (s *GormOrderStore) Create(ctx context.Context, order *models.PaymentOrder) error {
	return s.DB.WithContext(ctx).Create(order).Error
}

func (s *GormOrderStore) Lookup(ctx context.Context, tradeNo string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := s.DB.WithContext(ctx).First(&order, "id = ?", tradeNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// CloseIfCreated 关闭未支付订单
func (s *GormOrderStore) CloseIfCreated(ctx context.Context, tradeNo string) (bool, error) {
	now := time.Now()
	res := s.DB.WithContext(ctx).Model(&models.PaymentOrder{}).
		Where("id = ? AND status = ?", tradeNo, models.OrderStatusCreated).
		Updates(map[string]interface{}{
			"status":     models.OrderStatusClosed,
			"closed_at":  now,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	order, err := s.Lookup(ctx, tradeNo)
	if err != nil {
		return false, err
	}
	if order.Status == models.OrderStatusClosed {
		return false, nil
	}
	return false, ErrOrderTerminal
}

// Find 查询订单列表
func (s *GormOrderStore) Find(ctx context.Context, filter OrderFilter) ([]models.PaymentOrder, int64, error) {
	var orders []models.PaymentOrder
	var total int64

	query := s.DB.WithContext(ctx).Model(&models.PaymentOrder{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Provider != nil {
		query = query.Where("provider = ?", *filter.Provider)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
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
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// GormLedger credits accounts for paid orders. The created -> paid update is
// conditional on the current status, so concurrent deliveries across
// processes serialise in the database and only one of them credits.
type GormLedger struct {
	DB         *gorm.DB
	HashSecret string
}

func NewGormLedger(db *gorm.DB, hashSecret string) *GormLedger {
	return &GormLedger{DB: db, HashSecret: hashSecret}
}

// CreditIfUnpaid is only called for a verified success notification.
// Nothing else in the service moves an order to paid.
func (l *GormLedger) CreditIfUnpaid(ctx context.Context, tradeNo, externalID string) (CreditResult, error) {
	result := CreditApplied
	var creditedUser uint

	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 查询订单
		var order models.PaymentOrder
		if err := tx.First(&order, "id = ?", tradeNo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		// 2. 检查订单状态
		switch order.Status {
		case models.OrderStatusPaid:
			result = CreditAlreadyApplied
			return nil
		case models.OrderStatusClosed:
			return ErrOrderTerminal
		}

		// 3. 条件更新订单状态
		now := time.Now().Truncate(time.Millisecond)
		updates := map[string]interface{}{
			"status":     models.OrderStatusPaid,
			"paid_at":    now,
			"updated_at": now,
		}
		if externalID != "" {
			updates["external_id"] = externalID
		}
		res := tx.Model(&models.PaymentOrder{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusCreated).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current models.PaymentOrder
			if err := tx.First(&current, "id = ?", order.ID).Error; err != nil {
				return err
			}
			if current.Status == models.OrderStatusPaid {
				result = CreditAlreadyApplied
				return nil
			}
			return ErrOrderTerminal
		}

		// 4. 更新用户余额
		var user models.User
		if err := tx.First(&user, order.UserID).Error; err != nil {
			return fmt.Errorf("load account %d: %w", order.UserID, err)
		}
		balanceBefore := user.Balance
		balanceAfter := balanceBefore.Add(order.Amount)
		res = tx.Model(&models.User{}).
			Where("id = ? AND version = ?", user.ID, user.Version).
			Updates(map[string]interface{}{
				"balance":    balanceAfter,
				"version":    user.Version + 1,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOptimisticLock
		}

		// 5. 创建交易记录
		entry := models.Transaction{
			CreatedAt:     now,
			UserID:        user.ID,
			OrderID:       order.ID,
			Amount:        order.Amount,
			BalanceBefore: balanceBefore,
			BalanceAfter:  balanceAfter,
			Reason:        fmt.Sprintf("top-up order %s", order.ID),
			Operator:      order.Provider,
			Type:          models.TransactionTypeUserTopup,
		}
		entry.Hash = entry.GenerateHash(l.HashSecret)
		creditedUser = user.ID

		return tx.Create(&entry).Error
	})
	if err != nil {
		return result, err
	}
	if creditedUser != 0 {
		InvalidateUserCache(creditedUser)
	}
	return result, nil
}
