package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a PaymentOrder.
// created -> paid and created -> closed are the only transitions.
type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "created"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusClosed  OrderStatus = "closed"
)

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaid || s == OrderStatusClosed
}

// OrderTypePayment marks orders opened through a gateway purchase.
const OrderTypePayment = "payment"

type PaymentOrder struct {
	ID         string          `gorm:"primarykey;type:varchar(32)"` // merchant order id (out_trade_no)
	UserID     uint            `gorm:"index;not null"`
	Subject    string          `gorm:"type:varchar(255)"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Currency   string          `gorm:"type:varchar(10);default:'CNY'"`
	Provider   string          `gorm:"type:varchar(50);index"`
	OrderType  string          `gorm:"type:varchar(20);default:'payment'"`
	Status     OrderStatus     `gorm:"type:varchar(20);index;default:'created'"`
	ReturnURL  string          `gorm:"type:varchar(512)"`
	NotifyURL  string          `gorm:"type:varchar(512)"`
	ExternalID string          `gorm:"type:varchar(64);index"` // trade number issued by the gateway
	Remark     string          `gorm:"type:varchar(255)"`
	PaidAt     *time.Time
	ClosedAt   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (PaymentOrder) TableName() string {
	return "payment_orders"
}
