package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coinpay-backend/internal/models"
	"coinpay-backend/internal/payment"
	"coinpay-backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const notifyRoutePrefix = "/api/v1/payment/notify/"

type PaymentServiceOptions struct {
	Registry *payment.Registry
	Configs  ConfigStore
	Orders   OrderStore
	Ledger   Ledger
	Audit    AuditLog
	Replay   ReplayGuard // optional

	// BaseURL is the public origin of this service. Notify URLs are derived
	// from it and never from client input.
	BaseURL    string
	ReturnPath string
	Location   *time.Location
	Logger     *zap.Logger
}

// PaymentService runs purchases and inbound notifications for every
// registered provider.
type PaymentService struct {
	registry   *payment.Registry
	configs    ConfigStore
	orders     OrderStore
	ledger     Ledger
	audit      AuditLog
	replay     ReplayGuard
	baseURL    string
	returnPath string
	location   *time.Location
	log        *zap.Logger

	now        func() time.Time
	newTradeNo func() string
}

func NewPaymentService(opts PaymentServiceOptions) *PaymentService {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	log := opts.Logger
	if log == nil {
		log = logger.Named("payment")
	}
	return &PaymentService{
		registry:   opts.Registry,
		configs:    opts.Configs,
		orders:     opts.Orders,
		ledger:     opts.Ledger,
		audit:      opts.Audit,
		replay:     opts.Replay,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		returnPath: opts.ReturnPath,
		location:   loc,
		log:        log,
		now:        time.Now,
		newTradeNo: newTradeNo,
	}
}

func newTradeNo() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// PaymentMethod is an enabled provider as shown to purchasers.
type PaymentMethod struct {
	Provider string
	Name     string
}

// Methods lists registered providers whose stored settings are enabled.
func (s *PaymentService) Methods(ctx context.Context) ([]PaymentMethod, error) {
	var methods []PaymentMethod
	for _, name := range s.registry.Names() {
		settings, err := s.configs.Get(ctx, name)
		if errors.Is(err, ErrProviderNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !settings.Enabled {
			continue
		}
		provider, _ := s.registry.Get(name)
		methods = append(methods, PaymentMethod{Provider: name, Name: provider.ReadableName})
	}
	return methods, nil
}

type PurchaseRequest struct {
	Provider string
	UserID   uint
	Amount   string
}

type PurchaseResult struct {
	OrderID string
	URL     string
}

// Purchase validates the amount, persists a new order and asks the gateway
// for a payment page. Amount validation happens before any signing, storage
// or network call.
func (s *PaymentService) Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error) {
	provider, ok := s.registry.Get(req.Provider)
	if !ok {
		return nil, ErrProviderNotFound
	}
	settings, err := s.configs.Get(ctx, req.Provider)
	if err != nil {
		return nil, err
	}
	if !settings.Enabled {
		return nil, ErrProviderDisabled
	}

	returnURL := settings.Config.ReturnURL
	if returnURL == "" {
		returnURL = s.baseURL + s.returnPath
	}

	tradeNo := s.newTradeNo()
	order, err := provider.Builder.Build(settings.Config, payment.PurchaseInput{
		TradeNo:   tradeNo,
		UserID:    req.UserID,
		Amount:    req.Amount,
		NotifyURL: s.baseURL + notifyRoutePrefix + provider.Name,
		ReturnURL: returnURL,
		Time:      s.now(),
		Location:  s.location,
	})
	if err != nil {
		return nil, err
	}

	record := &models.PaymentOrder{
		ID:        order.TradeNo,
		UserID:    req.UserID,
		Subject:   order.Subject,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Provider:  provider.Name,
		OrderType: models.OrderTypePayment,
		Status:    models.OrderStatusCreated,
		ReturnURL: order.ReturnURL,
		NotifyURL: order.NotifyURL,
	}
	if err := s.orders.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	url, err := provider.Client.Submit(ctx, settings.Config, order)
	if err != nil {
		s.log.Error("gateway rejected order",
			zap.String("provider", provider.Name),
			zap.String("out_trade_no", tradeNo),
			zap.Error(err))
		return nil, err
	}

	s.log.Info("order created",
		zap.String("provider", provider.Name),
		zap.String("out_trade_no", tradeNo),
		zap.Uint("user_id", req.UserID),
		zap.String("amount", order.Amount.String()))

	return &PurchaseResult{OrderID: tradeNo, URL: url}, nil
}

// OrderStatus returns the caller's own order. Orders of other users are
// reported as not found.
func (s *PaymentService) OrderStatus(ctx context.Context, userID uint, tradeNo string) (*models.PaymentOrder, error) {
	order, err := s.orders.Lookup(ctx, tradeNo)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
