package coinpay

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"coinpay-backend/internal/payment"

	"github.com/go-resty/resty/v2"
)

const (
	unifiedOrderPath = "/api/unifiedorder"
	gatewayPath      = "/api/gateway"

	// DefaultTimeout bounds a Submit when no positive timeout is configured.
	DefaultTimeout = 10 * time.Second
)

type unifiedOrderResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Query string `json:"query"`
	} `json:"data"`
}

// Client submits unified orders. Each Submit is a single attempt bounded by
// the client timeout.
type Client struct {
	http *resty.Client
}

func NewClient(timeout time.Duration, transport http.RoundTripper) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if transport != nil {
		c.SetTransport(transport)
	}
	return &Client{http: c}
}

// Submit posts the signed order and returns the payment page URL the
// purchaser should be redirected to.
func (c *Client) Submit(ctx context.Context, cfg payment.Config, order *payment.Order) (string, error) {
	base := strings.TrimRight(cfg.GatewayURL, "/")
	if base == "" {
		return "", &payment.GatewayError{Message: "gateway url is not configured"}
	}

	form := make(map[string]string, len(order.Payload.Params)+1)
	for _, p := range order.Payload.Params {
		form[p.Key] = p.Value
	}
	form[signKey] = order.Payload.Signature

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(base + unifiedOrderPath)
	if err != nil {
		return "", &payment.GatewayError{Message: "request failed", Err: err}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", &payment.GatewayError{Status: resp.StatusCode(), Message: truncate(resp.String(), 512)}
	}

	var result unifiedOrderResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", &payment.GatewayError{Status: resp.StatusCode(), Message: "malformed response", Err: err}
	}
	if result.Code != 0 {
		return "", &payment.GatewayError{Status: resp.StatusCode(), Message: result.Msg}
	}
	query := strings.TrimPrefix(result.Data.Query, "?")
	if query == "" {
		return "", &payment.GatewayError{Status: resp.StatusCode(), Message: "empty payment query"}
	}

	return base + gatewayPath + "?" + query, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
