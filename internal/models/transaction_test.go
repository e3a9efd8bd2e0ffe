package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionHash(t *testing.T) {
	tx := Transaction{
		CreatedAt:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		UserID:        7,
		OrderID:       "T1",
		Amount:        decimal.RequireFromString("100.00"),
		BalanceBefore: decimal.Zero,
		BalanceAfter:  decimal.RequireFromString("100"),
		Reason:        "top-up",
		Operator:      "coinpay",
		Type:          TransactionTypeUserTopup,
	}

	h1 := tx.GenerateHash("k")
	assert.Len(t, h1, 64)
	assert.Equal(t, h1, tx.GenerateHash("k"))
	assert.NotEqual(t, h1, tx.GenerateHash("other"))

	// 100 and 100.00 are the same amount and must hash the same
	tx.Amount = decimal.NewFromInt(100)
	assert.Equal(t, h1, tx.GenerateHash("k"))

	tx.Amount = decimal.RequireFromString("100.01")
	assert.NotEqual(t, h1, tx.GenerateHash("k"))
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.False(t, OrderStatusCreated.Terminal())
	assert.True(t, OrderStatusPaid.Terminal())
	assert.True(t, OrderStatusClosed.Terminal())
}
