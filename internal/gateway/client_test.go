package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestClient_VerifySignature(t *testing.T) {
	client := NewClient("", "key", "secret", true)

	signature := sign("secret", "order_123", "pay_456")
	assert.True(t, client.VerifySignature("order_123", "pay_456", signature))

	assert.False(t, client.VerifySignature("order_123", "pay_456", "deadbeef"))
	assert.False(t, client.VerifySignature("order_999", "pay_456", signature))
	assert.False(t, client.VerifySignature("order_123", "pay_456", sign("other", "order_123", "pay_456")))
}

func TestClient_CreateOrder_Mock(t *testing.T) {
	client := NewClient("", "key", "secret", true)

	order, err := client.CreateOrder(context.Background(), 50000, "INR", "offer_1", nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(50000), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "created", order.Status)
	assert.Contains(t, order.ID, "order_")
}

func TestClient_CreateOrder_RejectsNonPositiveAmount(t *testing.T) {
	client := NewClient("", "key", "secret", true)

	_, err := client.CreateOrder(context.Background(), 0, "INR", "r", nil)
	assert.Error(t, err)
}
