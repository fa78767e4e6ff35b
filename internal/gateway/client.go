package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Order is the gateway's view of a payment order.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client talks to the payment gateway. Amounts are in the currency's
// smallest unit (paise for INR).
type Client struct {
	baseURL string
	keyID   string
	secret  string
	mock    bool
	http    *http.Client
}

func NewClient(baseURL, keyID, secret string, mock bool) *Client {
	return &Client{
		baseURL: baseURL,
		keyID:   keyID,
		secret:  secret,
		mock:    mock,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateOrder registers a payment order with the gateway. In mock mode the
// order is fabricated locally so the flow works without credentials.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*Order, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("gateway: amount must be positive")
	}
	if currency == "" {
		currency = "INR"
	}

	if c.mock {
		return &Order{
			ID:       "order_" + uuid.NewString(),
			Amount:   amount,
			Currency: currency,
			Receipt:  receipt,
			Status:   "created",
		}, nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway: marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway: create order returned status %d", resp.StatusCode)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("gateway: decode order: %w", err)
	}
	return &order, nil
}

// VerifySignature checks the payment confirmation signature: hex HMAC-SHA256 of
// "orderID|paymentID" keyed with the shared secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
