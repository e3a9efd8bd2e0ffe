package services

import (
	"context"
	"errors"

	"coinpay-backend/internal/models"
	"coinpay-backend/internal/payment"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderTerminal     = errors.New("order is already in a terminal state")
	ErrProviderNotFound  = errors.New("payment provider not found")
	ErrProviderDisabled  = errors.New("payment provider is disabled")
	ErrOptimisticLock    = errors.New("data has been modified concurrently, please retry")
	ErrConfigNotFound    = errors.New("payment config not found")
	ErrDuplicateProvider = errors.New("payment provider already configured")
)

// OrderStore persists payment orders.
type OrderStore interface {
	Create(ctx context.Context, order *models.PaymentOrder) error
	Lookup(ctx context.Context, tradeNo string) (*models.PaymentOrder, error)
	// CloseIfCreated moves a created order to closed. It returns false with a
	// nil error when the order is already closed, and ErrOrderTerminal when it
	// has been paid.
	CloseIfCreated(ctx context.Context, tradeNo string) (bool, error)
}

type CreditResult int

const (
	CreditApplied CreditResult = iota
	CreditAlreadyApplied
)

func (r CreditResult) String() string {
	if r == CreditApplied {
		return "applied"
	}
	return "already_applied"
}

// Ledger credits paid orders. CreditIfUnpaid must be atomic and idempotent per
// trade number: concurrent or repeated calls credit the account at most once.
type Ledger interface {
	CreditIfUnpaid(ctx context.Context, tradeNo, externalID string) (CreditResult, error)
}

// ProviderSettings is what the config store knows about one provider.
type ProviderSettings struct {
	Config  payment.Config
	Name    string
	Enabled bool
}

type ConfigStore interface {
	// Get returns ErrProviderNotFound when the provider has no stored settings.
	Get(ctx context.Context, provider string) (ProviderSettings, error)
}

// NotificationRecord is one append-only audit entry. Outcome records carry
// the id of the received record they conclude.
type NotificationRecord struct {
	Provider   string
	TradeNo    string
	Stage      string
	Outcome    string
	Reason     string
	RemoteIP   string
	ReceivedID uint
	Body       []byte
}

type AuditLog interface {
	// Append stores rec and returns its id.
	Append(ctx context.Context, rec NotificationRecord) (uint, error)
}

// ReplayGuard remembers trade numbers whose credit has already been
// committed. It is an optimisation only; the Ledger stays authoritative.
type ReplayGuard interface {
	Seen(ctx context.Context, provider, tradeNo string) bool
	Mark(ctx context.Context, provider, tradeNo string) error
}
