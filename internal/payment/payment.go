package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrMalformedNotification = errors.New("malformed notification")
	ErrSignatureMismatch     = errors.New("signature mismatch")
)

// GatewayError is returned when the remote gateway cannot be reached or
// answers with something other than a usable order. Message carries the
// upstream text for logs; it must not be shown to end users.
type GatewayError struct {
	Status  int
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("gateway error (status %d): %s", e.Status, e.Message)
	}
	return "gateway error: " + e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Config is the immutable per-provider configuration loaded from the config store.
type Config struct {
	AppID      string
	Secret     string
	GatewayURL string
	ReturnURL  string
}

// PurchaseInput is everything an OrderBuilder needs for one purchase attempt.
// Time is formatted in Location; the builder never consults process-wide zones.
type PurchaseInput struct {
	TradeNo   string
	UserID    uint
	Amount    string
	NotifyURL string
	ReturnURL string
	Time      time.Time
	Location  *time.Location
}

// Param is a single signed key/value pair.
type Param struct {
	Key   string
	Value string
}

// SignedPayload is a canonicalized parameter set together with its signature.
type SignedPayload struct {
	Params        []Param
	SigningString string
	Signature     string
}

// Order is an outbound order ready to be submitted to a gateway.
type Order struct {
	TradeNo   string
	Subject   string
	Amount    decimal.Decimal
	Currency  string
	Timestamp string
	ReturnURL string
	NotifyURL string
	Payload   SignedPayload
}

type TradeStatus int

const (
	TradeStatusOther TradeStatus = iota
	TradeStatusSuccess
	TradeStatusClosed
)

func (s TradeStatus) String() string {
	switch s {
	case TradeStatusSuccess:
		return "SUCCESS"
	case TradeStatusClosed:
		return "CLOSED"
	default:
		return "OTHER"
	}
}

// Notification is a parsed and verified inbound gateway call.
type Notification struct {
	Raw         []byte
	Fields      map[string]string // sign removed
	Signature   string
	TradeNo     string
	ExternalID  string
	RawStatus   string
	TradeStatus TradeStatus
	Amount      string
}

type OrderBuilder interface {
	Build(cfg Config, in PurchaseInput) (*Order, error)
}

type GatewayClient interface {
	Submit(ctx context.Context, cfg Config, order *Order) (string, error)
}

// NotificationVerifier parses raw and checks its signature. It returns
// ErrMalformedNotification or ErrSignatureMismatch (possibly wrapped) on failure.
type NotificationVerifier interface {
	Verify(cfg Config, raw []byte) (*Notification, error)
}
