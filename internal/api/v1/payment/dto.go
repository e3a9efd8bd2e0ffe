package payment

import "time"

type PurchaseRequest struct {
	Price string `json:"price" binding:"required,max=32"`
}

type PurchaseResponse struct {
	OrderID string `json:"order_id"`
	URL     string `json:"url"`
}

type PaymentMethodResponse struct {
	Provider string `json:"provider"`
	Name     string `json:"name"`
}

type OrderResponse struct {
	ID        string     `json:"id"`
	Amount    string     `json:"amount"`
	Currency  string     `json:"currency"`
	Provider  string     `json:"provider"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}
