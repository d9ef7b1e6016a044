package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"chat_id":"42","text":"/start"}`)
	sig := ComputeWebhookSignature(body, "s3cret")

	assert.True(t, VerifyWebhookSignature(body, "s3cret", sig))
	assert.True(t, VerifyWebhookSignature(body, "s3cret", "sha256="+sig))
	assert.False(t, VerifyWebhookSignature(body, "other", sig))
	assert.False(t, VerifyWebhookSignature([]byte(`{}`), "s3cret", sig))
	assert.False(t, VerifyWebhookSignature(body, "", ComputeWebhookSignature(body, "")))
}
