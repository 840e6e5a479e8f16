package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const OrderStatusCompleted = "COMPLETED"

var ErrOrderNotFound = errors.New("paypal order not found")

type PayPalConfig struct {
	ClientID    string
	Secret      string
	APIBaseURL  string
	HTTPTimeout time.Duration
}

// PayPalProvider talks to the PayPal Orders v2 API. Orders are created and
// captured by the hosted buttons on the client; the server only reads them
// back to confirm what the browser claims.
type PayPalProvider struct {
	cfg    PayPalConfig
	client *http.Client
}

func NewPayPalProvider(cfg PayPalConfig) *PayPalProvider {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")

	return &PayPalProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type Order struct {
	ID           string
	Status       string
	PayerID      string
	AmountValue  string
	CurrencyCode string
}

func (p *PayPalProvider) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, errors.New("paypal order id is empty")
	}

	token, err := p.fetchAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.APIBaseURL+"/v2/checkout/orders/"+url.PathEscape(orderID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrOrderNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("paypal get order failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var payload struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Payer  struct {
			PayerID string `json:"payer_id"`
		} `json:"payer"`
		PurchaseUnits []struct {
			Amount struct {
				CurrencyCode string `json:"currency_code"`
				Value        string `json:"value"`
			} `json:"amount"`
			Payments struct {
				Captures []struct {
					Amount struct {
						CurrencyCode string `json:"currency_code"`
						Value        string `json:"value"`
					} `json:"amount"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	order := &Order{
		ID:      strings.TrimSpace(payload.ID),
		Status:  strings.TrimSpace(payload.Status),
		PayerID: strings.TrimSpace(payload.Payer.PayerID),
	}
	if len(payload.PurchaseUnits) > 0 {
		unit := payload.PurchaseUnits[0]
		order.AmountValue = strings.TrimSpace(unit.Amount.Value)
		order.CurrencyCode = strings.TrimSpace(unit.Amount.CurrencyCode)
		// Captured orders report the settled amount under the capture.
		if len(unit.Payments.Captures) > 0 {
			capture := unit.Payments.Captures[0]
			if v := strings.TrimSpace(capture.Amount.Value); v != "" {
				order.AmountValue = v
				order.CurrencyCode = strings.TrimSpace(capture.Amount.CurrencyCode)
			}
		}
	}

	return order, nil
}

func (p *PayPalProvider) fetchAccessToken(ctx context.Context) (string, error) {
	if strings.TrimSpace(p.cfg.ClientID) == "" || strings.TrimSpace(p.cfg.Secret) == "" {
		return "", errors.New("paypal credentials are not configured")
	}

	values := url.Values{}
	values.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIBaseURL+"/v1/oauth2/token", strings.NewReader(values.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.cfg.ClientID, p.cfg.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("paypal token request failed: status=%d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return "", errors.New("paypal token response missing access_token")
	}

	return payload.AccessToken, nil
}
