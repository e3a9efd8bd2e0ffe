package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"coinpay-backend/internal/models"
	"coinpay-backend/internal/payment"
	"coinpay-backend/internal/payment/coinpay"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testSecret = "k"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_", "?", "_", "&", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.PaymentOrder{},
		&models.Transaction{},
		&models.PaymentConfig{},
		&models.NotificationLog{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, Role: "user", Balance: decimal.Zero, Version: 1}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedOrder(t *testing.T, db *gorm.DB, id string, userID uint, amount string, status models.OrderStatus) models.PaymentOrder {
	t.Helper()
	order := models.PaymentOrder{
		ID:        id,
		UserID:    userID,
		Amount:    decimal.RequireFromString(amount),
		Currency:  "CNY",
		Provider:  coinpay.Name,
		OrderType: models.OrderTypePayment,
		Status:    status,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func seedCoinPayConfig(t *testing.T, db *gorm.DB, enable bool) {
	t.Helper()
	store := NewGormConfigStore(db)
	_, err := store.Create(context.Background(), coinpay.Name, "CoinPay", map[string]interface{}{
		"app_id":      "app-1",
		"secret":      testSecret,
		"gateway_url": "https://gateway.test/",
	}, enable)
	require.NoError(t, err)
}

// fakeGateway records submissions instead of calling the network.
type fakeGateway struct {
	mu     sync.Mutex
	calls  int
	orders []*payment.Order
	err    error
}

func (f *fakeGateway) Submit(_ context.Context, cfg payment.Config, order *payment.Order) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.orders = append(f.orders, order)
	if f.err != nil {
		return "", f.err
	}
	return strings.TrimRight(cfg.GatewayURL, "/") + "/api/gateway?token=" + order.TradeNo, nil
}

func (f *fakeGateway) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testEnv struct {
	db      *gorm.DB
	svc     *PaymentService
	gateway *fakeGateway
	user    models.User
}

func newTestEnv(t *testing.T, replay ReplayGuard) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	seedCoinPayConfig(t, db, true)
	gateway := &fakeGateway{}

	registry := payment.NewRegistry(payment.Provider{
		Name:         coinpay.Name,
		ReadableName: coinpay.ReadableName,
		Builder:      coinpay.NewBuilder(),
		Verifier:     coinpay.Verifier{},
		Client:       gateway,
	})

	svc := NewPaymentService(PaymentServiceOptions{
		Registry:   registry,
		Configs:    NewGormConfigStore(db),
		Orders:     NewGormOrderStore(db),
		Ledger:     NewGormLedger(db, "hash-secret"),
		Audit:      NewGormAuditLog(db),
		Replay:     replay,
		BaseURL:    "https://shop.example.com/",
		ReturnPath: "/user/code",
		Location:   time.UTC,
	})
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	return &testEnv{db: db, svc: svc, gateway: gateway, user: seedUser(t, db, "payer")}
}

func signedNotification(t *testing.T, fields map[string]string, secret string) []byte {
	t.Helper()
	body := map[string]string{}
	for k, v := range fields {
		body[k] = v
	}
	body["sign"] = coinpay.Sign(fields, secret)
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return raw
}

func balanceOf(t *testing.T, db *gorm.DB, userID uint) decimal.Decimal {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, userID).Error)
	return user.Balance
}

func countTransactions(t *testing.T, db *gorm.DB, orderID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("order_id = ?", orderID).Count(&n).Error)
	return n
}

func statusOf(t *testing.T, db *gorm.DB, orderID string) models.OrderStatus {
	t.Helper()
	var order models.PaymentOrder
	require.NoError(t, db.First(&order, "id = ?", orderID).Error)
	return order.Status
}
