package models

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const TransactionTypeUserTopup TransactionType = "user_topup"

// Transaction is one ledger entry. OrderID is unique so an order can be
// credited at most once even if two writers race past the status check.
type Transaction struct {
	ID            uint            `gorm:"primarykey"`
	CreatedAt     time.Time       `gorm:"precision:3"` // Millisecond precision
	UserID        uint            `gorm:"index;not null"`
	OrderID       string          `gorm:"uniqueIndex;type:varchar(32);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Reason        string          `gorm:"type:text"`
	Operator      string          `gorm:"type:varchar(100)"` // provider that confirmed the payment
	Type          TransactionType `gorm:"type:varchar(50);index"`
	Hash          string          `gorm:"type:varchar(64);default:''"` // HMAC SHA256
}

// GenerateHash generates a tamper-proof hash for the transaction
func (t *Transaction) GenerateHash(secret string) string {
	data := fmt.Sprintf("%d|%s|%d|%s|%s|%s|%s|%s|%s",
		t.UserID, t.OrderID, t.CreatedAt.UnixNano(), t.Amount.StringFixed(2),
		t.BalanceBefore.StringFixed(2), t.BalanceAfter.StringFixed(2),
		t.Reason, t.Operator, t.Type)

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
