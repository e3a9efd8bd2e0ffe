package coinpay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"coinpay-backend/internal/payment"
)

const (
	tradeStatusSuccess = "TRADE_SUCCESS"
	tradeStatusClosed  = "TRADE_CLOSED"
)

// ParseNotification decodes a notification body into flat string fields.
// Only a JSON object of scalars is accepted. Scalars are rendered the way the
// gateway signed them: numbers by their literal text, true as "1", false and
// null as "".
func ParseNotification(raw []byte) (*payment.Notification, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data map[string]interface{}
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrMalformedNotification, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: empty object", payment.ErrMalformedNotification)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", payment.ErrMalformedNotification)
	}

	n := &payment.Notification{
		Raw:    raw,
		Fields: make(map[string]string, len(data)),
	}
	for k, v := range data {
		s, ok := scalarString(v)
		if !ok {
			return nil, fmt.Errorf("%w: field %q is not a scalar", payment.ErrMalformedNotification, k)
		}
		if k == signKey {
			n.Signature = s
			continue
		}
		n.Fields[k] = s
	}

	n.TradeNo = n.Fields["out_trade_no"]
	n.ExternalID = n.Fields["trade_no"]
	n.Amount = n.Fields["total_amount"]
	n.RawStatus = n.Fields["trade_status"]
	switch n.RawStatus {
	case tradeStatusSuccess:
		n.TradeStatus = payment.TradeStatusSuccess
	case tradeStatusClosed:
		n.TradeStatus = payment.TradeStatusClosed
	default:
		n.TradeStatus = payment.TradeStatusOther
	}
	return n, nil
}

func scalarString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		if val {
			return "1", true
		}
		return "", true
	case nil:
		return "", true
	default:
		return "", false
	}
}

// Verifier checks inbound notifications against the provider secret.
type Verifier struct{}

// Verify parses raw and checks its signature before anything in it is trusted.
// trade_status is only meaningful when the returned error is nil.
func (Verifier) Verify(cfg payment.Config, raw []byte) (*payment.Notification, error) {
	n, err := ParseNotification(raw)
	if err != nil {
		return nil, err
	}
	if cfg.Secret == "" || n.Signature == "" || !Verify(n.Fields, cfg.Secret, n.Signature) {
		return n, payment.ErrSignatureMismatch
	}
	if n.TradeNo == "" {
		return n, fmt.Errorf("%w: missing out_trade_no", payment.ErrMalformedNotification)
	}
	return n, nil
}
