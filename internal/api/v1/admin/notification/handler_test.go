package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coinpay-backend/internal/models"
	gateway "coinpay-backend/internal/payment"
	"coinpay-backend/internal/payment/coinpay"
	"coinpay-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fixture struct {
	router *gin.Engine
	db     *gorm.DB
	logs   *services.GormAuditLog
	user   models.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.PaymentOrder{}, &models.Transaction{}, &models.PaymentConfig{}, &models.NotificationLog{}))

	user := models.User{Username: "payer", Role: "user", Version: 1}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.PaymentOrder{
		ID:        "T1",
		UserID:    user.ID,
		Amount:    decimal.RequireFromString("100.00"),
		Provider:  coinpay.Name,
		OrderType: models.OrderTypePayment,
		Status:    models.OrderStatusCreated,
	}).Error)

	configs := services.NewGormConfigStore(db)
	_, err = configs.Create(context.Background(), coinpay.Name, "CoinPay", map[string]interface{}{"app_id": "app-1", "secret": "k"}, true)
	require.NoError(t, err)

	logs := services.NewGormAuditLog(db)
	svc := services.NewPaymentService(services.PaymentServiceOptions{
		Registry: gateway.NewRegistry(coinpay.NewProvider(0, nil)),
		Configs:  configs,
		Orders:   services.NewGormOrderStore(db),
		Ledger:   services.NewGormLedger(db, "hash"),
		Audit:    logs,
		BaseURL:  "https://shop.example.com",
	})

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1/admin"), NewHandler(logs, svc))
	return &fixture{router: r, db: db, logs: logs, user: user}
}

func (f *fixture) do(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// store records body as if the gateway had delivered it.
func (f *fixture) store(t *testing.T, body []byte) uint {
	t.Helper()
	id, err := f.logs.Append(context.Background(), services.NotificationRecord{
		Provider: coinpay.Name,
		Stage:    services.AuditStageReceived,
		RemoteIP: "203.0.113.7",
		Body:     body,
	})
	require.NoError(t, err)
	return id
}

func signedBody(t *testing.T, fields map[string]string) []byte {
	t.Helper()
	body := map[string]string{"sign": coinpay.Sign(fields, "k")}
	for k, v := range fields {
		body[k] = v
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return raw
}

func (f *fixture) replay(t *testing.T, id uint) ReplayResponse {
	t.Helper()
	w := f.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/notifications/%d/replay", id))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data ReplayResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func (f *fixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	var user models.User
	require.NoError(t, f.db.First(&user, f.user.ID).Error)
	return user.Balance
}

func TestReplayNotificationCreditsOnce(t *testing.T) {
	f := setup(t)
	id := f.store(t, signedBody(t, map[string]string{"out_trade_no": "T1", "trade_status": "TRADE_SUCCESS"}))

	res := f.replay(t, id)
	assert.Equal(t, string(services.OutcomeCredited), res.Outcome)
	assert.Equal(t, "T1", res.TradeNo)
	assert.Equal(t, services.AckSuccess, res.Ack)
	assert.True(t, f.balance(t).Equal(decimal.NewFromInt(100)))

	res = f.replay(t, id)
	assert.Equal(t, string(services.OutcomeDuplicate), res.Outcome)
	assert.True(t, f.balance(t).Equal(decimal.NewFromInt(100)))

	var outcome models.NotificationLog
	require.NoError(t, f.db.Where("stage = ?", services.AuditStageOutcome).Order("id desc").First(&outcome).Error)
	assert.Equal(t, "T1", outcome.TradeNo)
	assert.True(t, strings.HasPrefix(outcome.RemoteIP, "replay:"))
}

func TestReplayNotificationChecksSignature(t *testing.T) {
	f := setup(t)
	body := signedBody(t, map[string]string{"out_trade_no": "T1", "trade_status": "TRADE_SUCCESS"})
	tampered := strings.Replace(string(body), `"trade_status":"TRADE_SUCCESS"`, `"trade_status":"TRADE_SUCCESS","total_amount":"1"`, 1)
	id := f.store(t, []byte(tampered))

	res := f.replay(t, id)
	assert.Equal(t, string(services.OutcomeRejected), res.Outcome)
	assert.Equal(t, "signature mismatch", res.Reason)
	assert.Equal(t, services.AckFail, res.Ack)
	assert.True(t, f.balance(t).IsZero())

	var order models.PaymentOrder
	require.NoError(t, f.db.First(&order, "id = ?", "T1").Error)
	assert.Equal(t, models.OrderStatusCreated, order.Status)
}

func TestReplayNotificationRequiresReceivedRecord(t *testing.T) {
	f := setup(t)
	id := f.store(t, []byte(`{"out_trade_no":"T1"}`))
	f.replay(t, id)

	var outcome models.NotificationLog
	require.NoError(t, f.db.Where("stage = ?", services.AuditStageOutcome).First(&outcome).Error)
	received, err := f.logs.Get(context.Background(), outcome.ReceivedID)
	require.NoError(t, err)
	assert.NotEqual(t, id, received.ID)
	assert.Equal(t, services.AuditStageReceived, received.Stage)
	assert.Equal(t, []byte(`{"out_trade_no":"T1"}`), received.Body)

	w := f.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/notifications/%d/replay", outcome.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/v1/admin/notifications/999/replay")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodPost, "/api/v1/admin/notifications/abc/replay")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAndGetNotifications(t *testing.T) {
	f := setup(t)
	f.replay(t, f.store(t, signedBody(t, map[string]string{"out_trade_no": "T1", "trade_status": "WAIT_BUYER_PAY"})))
	binaryID := f.store(t, []byte{0xff, 0x00, 0xfe})

	w := f.do(http.MethodGet, "/api/v1/admin/notifications?trade_no=T1")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data NotificationListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, int64(1), list.Data.Total)
	assert.Equal(t, services.AuditStageOutcome, list.Data.Notifications[0].Stage)
	assert.Equal(t, string(services.OutcomeIgnored), list.Data.Notifications[0].Outcome)

	w = f.do(http.MethodGet, "/api/v1/admin/notifications?stage=received")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(3), list.Data.Total)

	w = f.do(http.MethodGet, fmt.Sprintf("/api/v1/admin/notifications/%d", binaryID))
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Data NotificationDetailResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Empty(t, detail.Data.Body)
	assert.Equal(t, []byte{0xff, 0x00, 0xfe}, detail.Data.BodyBase64)
}
