package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the account credited by paid orders. Accounts are provisioned
// elsewhere; this service only reads them and adjusts Balance.
type User struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string          `gorm:"uniqueIndex;not null"`
	Role      string          `gorm:"not null;default:'user'"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	Version   int             `gorm:"default:1"`
}
