package coinpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"coinpay-backend/internal/payment"
)

// Seal canonicalizes params and signs the result with secret.
func Seal(params map[string]string, secret string) payment.SignedPayload {
	canonical := Canonicalize(params)
	signingString := SigningString(canonical)
	return payment.SignedPayload{
		Params:        canonical,
		SigningString: signingString,
		Signature:     hmacBase64(signingString, secret),
	}
}

// Sign returns base64(HMAC-SHA256(secret, signing string of params)).
func Sign(params map[string]string, secret string) string {
	return hmacBase64(SigningString(Canonicalize(params)), secret)
}

// Verify reports whether candidate is the signature of params under secret.
// The comparison is constant time.
func Verify(params map[string]string, secret, candidate string) bool {
	expected := Sign(params, secret)
	return hmac.Equal([]byte(expected), []byte(candidate))
}

func hmacBase64(data, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
