package user

import "time"

// WalletResponse is the caller's balance with recent ledger entries.
type WalletResponse struct {
	ID           uint              `json:"id"`
	Username     string            `json:"username"`
	Balance      string            `json:"balance"`
	Transactions []TransactionItem `json:"transactions"`
	Total        int64             `json:"total"`
	Page         int               `json:"page"`
	Limit        int               `json:"limit"`
}

type TransactionItem struct {
	OrderID       string    `json:"order_id"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	BalanceBefore string    `json:"balance_before"`
	BalanceAfter  string    `json:"balance_after"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}
