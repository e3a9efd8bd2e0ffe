package models

import "time"

// NotificationLog is the append-only audit trail of inbound gateway calls.
// Each call writes a "received" row holding the raw body before any parsing,
// then a second row with the final outcome that points back at it.
type NotificationLog struct {
	ID         uint      `gorm:"primarykey"`
	CreatedAt  time.Time `gorm:"precision:3;index"`
	Provider   string    `gorm:"type:varchar(50);index"`
	TradeNo    string    `gorm:"type:varchar(64);index"`
	Stage      string    `gorm:"type:varchar(20);index"` // received | outcome
	Outcome    string    `gorm:"type:varchar(20)"`
	Reason     string    `gorm:"type:varchar(255)"`
	RemoteIP   string    `gorm:"type:varchar(64)"`
	ReceivedID uint      `gorm:"index;default:0"` // outcome rows only
	Body       []byte    // raw bytes, may be invalid UTF-8
}
