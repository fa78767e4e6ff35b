package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ankitsaini000/rwew-sub007/internal/logger"
)

// Sender delivers a short text message to a phone number.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// HTTPSender posts messages to an SMS provider's REST API.
type HTTPSender struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
}

func NewHTTPSender(apiURL, apiKey, from string) *HTTPSender {
	return &HTTPSender{
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSender) Send(ctx context.Context, to, body string) error {
	if s.apiURL == "" {
		return fmt.Errorf("sms: API URL is not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"from": s.from,
		"to":   to,
		"body": body,
	})
	if err != nil {
		return fmt.Errorf("sms: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sms: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms: send to %s: %w", to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms: provider returned status %d", resp.StatusCode)
	}
	return nil
}

// MockSender logs messages instead of sending them. Enabled through the
// SMS_MOCK environment toggle.
type MockSender struct{}

func (MockSender) Send(_ context.Context, to, body string) error {
	logger.Log.WithField("to", to).WithField("body", body).Info("sms: mock send")
	return nil
}
