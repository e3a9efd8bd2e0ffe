package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coinpay-backend/internal/models"
	gateway "coinpay-backend/internal/payment"
	"coinpay-backend/internal/payment/coinpay"
	"coinpay-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRouter(t *testing.T) (*gin.Engine, *services.GormConfigStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	binding.EnableDecoderUseNumber = true

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	db.Migrator().DropTable(&models.PaymentConfig{})
	require.NoError(t, db.AutoMigrate(&models.PaymentConfig{}))

	store := services.NewGormConfigStore(db)
	registry := gateway.NewRegistry(coinpay.NewProvider(0, nil))

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1/admin"), NewHandler(store, registry))
	return r, store
}

func request(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPaymentConfigLifecycle(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()

	w := request(r, http.MethodPost, "/api/v1/admin/payment/config",
		`{"name":"CoinPay","provider":"coinpay","config":{"app_id":"a1","secret":"top-secret"},"enable":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = request(r, http.MethodPost, "/api/v1/admin/payment/config",
		`{"name":"CoinPay","provider":"coinpay","config":{}}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = request(r, http.MethodGet, "/api/v1/admin/payment/config", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "top-secret")

	var list struct {
		Data []PaymentConfigResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, maskedSecret, list.Data[0].Config["secret"])
	id := list.Data[0].ID

	// echoing the masked secret back keeps the stored one
	w = request(r, http.MethodPut, "/api/v1/admin/payment/config/"+jsonID(id),
		`{"config":{"app_id":"a2","secret":"******"},"enable":false}`)
	require.Equal(t, http.StatusOK, w.Code)

	settings, err := store.Get(ctx, coinpay.Name)
	require.NoError(t, err)
	assert.Equal(t, "a2", settings.Config.AppID)
	assert.Equal(t, "top-secret", settings.Config.Secret)
	assert.False(t, settings.Enabled)

	w = request(r, http.MethodDelete, "/api/v1/admin/payment/config/"+jsonID(id), "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = request(r, http.MethodDelete, "/api/v1/admin/payment/config/"+jsonID(id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentConfigKeepsNumericAppID(t *testing.T) {
	r, store := setupRouter(t)

	w := request(r, http.MethodPost, "/api/v1/admin/payment/config",
		`{"name":"CoinPay","provider":"coinpay","config":{"app_id":9007199254740993,"secret":"s"},"enable":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = request(r, http.MethodGet, "/api/v1/admin/payment/config", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"app_id":9007199254740993`)

	settings, err := store.Get(context.Background(), coinpay.Name)
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", settings.Config.AppID)
}

func TestCreatePaymentConfigValidation(t *testing.T) {
	r, _ := setupRouter(t)

	w := request(r, http.MethodPost, "/api/v1/admin/payment/config",
		`{"name":"EPay","provider":"epay","config":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(r, http.MethodPost, "/api/v1/admin/payment/config", `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(r, http.MethodPut, "/api/v1/admin/payment/config/abc", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
