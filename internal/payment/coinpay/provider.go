// Package coinpay implements the CoinPay digital-currency gateway: order
// signing, the unified-order call and notification verification.
package coinpay

import (
	"net/http"
	"time"

	"coinpay-backend/internal/payment"
)

const (
	Name         = "coinpay"
	ReadableName = "CoinPay (BTC, ETH, USDT and more)"
)

func NewProvider(timeout time.Duration, transport http.RoundTripper) payment.Provider {
	return payment.Provider{
		Name:         Name,
		ReadableName: ReadableName,
		Builder:      NewBuilder(),
		Verifier:     Verifier{},
		Client:       NewClient(timeout, transport),
	}
}
