package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the notification dispatch service's REST API. It sends
// both emails and text messages.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type emailRequest struct {
	EmailAddress    string            `json:"email_address"`
	TemplateID      string            `json:"template_id"`
	Personalisation map[string]string `json:"personalisation,omitempty"`
}

type smsRequest struct {
	PhoneNumber     string            `json:"phone_number"`
	TemplateID      string            `json:"template_id"`
	Personalisation map[string]string `json:"personalisation,omitempty"`
}

type notificationResponse struct {
	ID string `json:"id"`
}

// SendEmail posts to /v2/notifications/email.
func (c *Client) SendEmail(ctx context.Context, msg Message) (string, error) {
	if msg.TemplateID == "" {
		return "", ErrNoTemplate
	}
	return c.post(ctx, "/v2/notifications/email", emailRequest{
		EmailAddress:    msg.To,
		TemplateID:      msg.TemplateID,
		Personalisation: msg.Personalisation,
	})
}

// SendSMS posts to /v2/notifications/sms.
func (c *Client) SendSMS(ctx context.Context, msg Message) (string, error) {
	if msg.TemplateID == "" {
		return "", ErrNoTemplate
	}
	return c.post(ctx, "/v2/notifications/sms", smsRequest{
		PhoneNumber:     msg.To,
		TemplateID:      msg.TemplateID,
		Personalisation: msg.Personalisation,
	})
}

func (c *Client) post(ctx context.Context, path string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("notify: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out notificationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return out.ID, nil
}
