package coinpay

import (
	"sort"
	"strings"

	"coinpay-backend/internal/payment"
)

const signKey = "sign"

// Canonicalize returns params sorted ascending by key (byte order) with the
// sign entry dropped.
func Canonicalize(params map[string]string) []payment.Param {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == signKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]payment.Param, 0, len(keys))
	for _, k := range keys {
		out = append(out, payment.Param{Key: k, Value: params[k]})
	}
	return out
}

// SigningString joins the values of params with "&". Keys are not included
// and nothing is escaped: the gateway signs exactly these bytes.
func SigningString(params []payment.Param) string {
	var builder strings.Builder
	for i, p := range params {
		if i > 0 {
			builder.WriteByte('&')
		}
		builder.WriteString(p.Value)
	}
	return builder.String()
}
