package order

import "time"

// OrderListItem 订单列表项
type OrderListItem struct {
	ID         string     `json:"id"`
	UserID     uint       `json:"user_id"`
	Subject    string     `json:"subject,omitempty"`
	Amount     string     `json:"amount"`
	Currency   string     `json:"currency"`
	Provider   string     `json:"provider"`
	Status     string     `json:"status"`
	OrderType  string     `json:"order_type"`
	ExternalID string     `json:"external_id,omitempty"`
	Remark     string     `json:"remark,omitempty"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// OrderListResponse 订单列表响应
type OrderListResponse struct {
	Orders []OrderListItem `json:"orders"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// OrderDetailResponse 订单详情响应
type OrderDetailResponse struct {
	OrderListItem
	User *UserBrief `json:"user,omitempty"`
}

// UserBrief 用户简要信息
type UserBrief struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Balance  string `json:"balance"`
}
