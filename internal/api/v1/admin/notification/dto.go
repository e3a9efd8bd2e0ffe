package notification

import "time"

// NotificationItem 回调日志条目
type NotificationItem struct {
	ID         uint      `json:"id"`
	Provider   string    `json:"provider"`
	TradeNo    string    `json:"trade_no,omitempty"`
	Stage      string    `json:"stage"`
	Outcome    string    `json:"outcome,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	RemoteIP   string    `json:"remote_ip,omitempty"`
	ReceivedID uint      `json:"received_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NotificationListResponse 回调日志列表响应
type NotificationListResponse struct {
	Notifications []NotificationItem `json:"notifications"`
	Total         int64              `json:"total"`
	Page          int                `json:"page"`
	Limit         int                `json:"limit"`
}

// NotificationDetailResponse carries the raw body as text when it is valid
// UTF-8 and base64 encoded otherwise.
type NotificationDetailResponse struct {
	NotificationItem
	Body       string `json:"body,omitempty"`
	BodyBase64 []byte `json:"body_base64,omitempty"`
}

// ReplayResponse 重放结果
type ReplayResponse struct {
	ReceivedID uint   `json:"received_id"`
	TradeNo    string `json:"trade_no,omitempty"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	Ack        string `json:"ack"`
}
