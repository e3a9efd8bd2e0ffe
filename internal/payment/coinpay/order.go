package coinpay

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"coinpay-backend/internal/payment"

	"github.com/shopspring/decimal"
)

const timestampLayout = "2006-01-02 15:04:05"

// ParseAmount validates an untrusted amount string. It must be a finite
// decimal greater than zero with at most two fractional digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, payment.ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", payment.ErrInvalidAmount, raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be greater than zero", payment.ErrInvalidAmount)
	}
	if !amount.Equal(amount.Truncate(2)) {
		return decimal.Zero, fmt.Errorf("%w: at most two decimal places", payment.ErrInvalidAmount)
	}
	return amount, nil
}

// Builder assembles and signs unified orders.
type Builder struct {
	Currency string
}

func NewBuilder() *Builder {
	return &Builder{Currency: "CNY"}
}

func (b *Builder) Build(cfg payment.Config, in payment.PurchaseInput) (*payment.Order, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	if in.TradeNo == "" {
		return nil, errors.New("coinpay: trade number is required")
	}
	if in.NotifyURL == "" {
		return nil, errors.New("coinpay: notify url is required")
	}
	if cfg.Secret == "" || cfg.AppID == "" {
		return nil, errors.New("coinpay: provider is not configured")
	}

	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	order := &payment.Order{
		TradeNo:   in.TradeNo,
		Subject:   fmt.Sprintf("%s UID:%d top-up %s", in.TradeNo, in.UserID, amount.String()),
		Amount:    amount,
		Currency:  b.Currency,
		Timestamp: in.Time.In(loc).Format(timestampLayout),
		ReturnURL: in.ReturnURL,
		NotifyURL: in.NotifyURL,
	}

	params := map[string]string{
		"subject":      order.Subject,
		"out_trade_no": order.TradeNo,
		"total_amount": amount.String(),
		"timestamp":    order.Timestamp,
		"return_url":   order.ReturnURL,
		"notify_url":   order.NotifyURL,
		"app_id":       cfg.AppID,
	}
	order.Payload = Seal(params, cfg.Secret)

	return order, nil
}
