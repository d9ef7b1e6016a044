package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader carries the hex HMAC-SHA256 of a webhook body.
const SignatureHeader = "X-Bot-Signature"

func ComputeWebhookSignature(requestBody []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(requestBody)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyWebhookSignature compares in constant time. An empty secret never verifies.
func VerifyWebhookSignature(requestBody []byte, secret, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	signature = strings.TrimPrefix(strings.ToLower(signature), "sha256=")
	expected := ComputeWebhookSignature(requestBody, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
