package coinpay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coinpay-backend/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestOrder(t *testing.T) *payment.Order {
	t.Helper()
	order, err := NewBuilder().Build(testConfig, payment.PurchaseInput{
		TradeNo:   "abc123",
		UserID:    1,
		Amount:    "10.50",
		NotifyURL: "https://shop.example.com/api/v1/payment/notify/coinpay",
		ReturnURL: "https://shop.example.com/user/code",
		Time:      time.Now(),
	})
	require.NoError(t, err)
	return order
}

func TestSubmitSuccess(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/unifiedorder", r.URL.Path)
		require.NoError(t, r.ParseForm())
		received = map[string]string{}
		for k := range r.PostForm {
			received[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":0,"msg":"ok","data":{"query":"token=xyz&lang=en"}}`))
	}))
	defer srv.Close()

	cfg := testConfig
	cfg.GatewayURL = srv.URL + "/"
	order := buildTestOrder(t)

	url, err := NewClient(2*time.Second, nil).Submit(context.Background(), cfg, order)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/api/gateway?token=xyz&lang=en", url)

	assert.Equal(t, "abc123", received["out_trade_no"])
	assert.Equal(t, "10.5", received["total_amount"])
	assert.Equal(t, order.Payload.Signature, received["sign"])
	sign := received["sign"]
	delete(received, "sign")
	assert.True(t, Verify(received, testConfig.Secret, sign))
}

func TestSubmitFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "Non-2xx", status: http.StatusBadGateway, body: "upstream down", message: "upstream down"},
		{name: "Business error", status: http.StatusOK, body: `{"code":40001,"msg":"invalid app_id"}`, message: "invalid app_id"},
		{name: "Malformed JSON", status: http.StatusOK, body: `<html>`, message: "malformed response"},
		{name: "Empty query", status: http.StatusOK, body: `{"code":0,"data":{"query":""}}`, message: "empty payment query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			cfg := testConfig
			cfg.GatewayURL = srv.URL
			_, err := NewClient(2*time.Second, nil).Submit(context.Background(), cfg, buildTestOrder(t))

			var gwErr *payment.GatewayError
			require.True(t, errors.As(err, &gwErr))
			assert.Equal(t, tt.message, gwErr.Message)
			assert.Equal(t, tt.status, gwErr.Status)
		})
	}
}

func TestSubmitTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig
	cfg.GatewayURL = srv.URL
	start := time.Now()
	_, err := NewClient(100*time.Millisecond, nil).Submit(context.Background(), cfg, buildTestOrder(t))

	var gwErr *payment.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, "request failed", gwErr.Message)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSubmitWithoutGatewayURL(t *testing.T) {
	cfg := testConfig
	cfg.GatewayURL = ""
	_, err := NewClient(time.Second, nil).Submit(context.Background(), cfg, buildTestOrder(t))

	var gwErr *payment.GatewayError
	assert.True(t, errors.As(err, &gwErr))
}

func TestNewClientAlwaysHasTimeout(t *testing.T) {
	tests := []struct {
		timeout time.Duration
		want    time.Duration
	}{
		{0, DefaultTimeout},
		{-time.Second, DefaultTimeout},
		{3 * time.Second, 3 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewClient(tt.timeout, nil).http.GetClient().Timeout, tt.timeout.String())
	}
}
