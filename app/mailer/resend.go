package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const resendEmailsURL = "https://api.resend.com/emails"

type Config struct {
	APIKey      string
	FromName    string
	FromAddress string
	HTTPTimeout time.Duration
	// BaseURL overrides the Resend endpoint; used by tests.
	BaseURL string
}

type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = resendEmailsURL
	}

	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Send delivers one HTML email and returns the provider's message id.
func (c *Client) Send(ctx context.Context, to []string, subject, html string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", errors.New("mailer api key is not configured")
	}
	if len(to) == 0 {
		return "", errors.New("mailer recipient list is empty")
	}

	payload := map[string]interface{}{
		"from":    c.fromHeader(),
		"to":      to,
		"subject": subject,
		"html":    html,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("mailer send failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", err
	}

	return parsed.ID, nil
}

func (c *Client) fromHeader() string {
	name := strings.TrimSpace(c.cfg.FromName)
	address := strings.TrimSpace(c.cfg.FromAddress)
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
