package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newOrderServer(t *testing.T, orderStatus int, orderBody string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/oauth2/token":
			username, password, ok := r.BasicAuth()
			if !ok || username != "client-id" || password != "client-secret" {
				t.Fatalf("expected basic auth credentials, got %q/%q", username, password)
			}
			if err := r.ParseForm(); err != nil {
				t.Fatalf("parse token form: %v", err)
			}
			if r.PostForm.Get("grant_type") != "client_credentials" {
				t.Fatalf("unexpected grant type %q", r.PostForm.Get("grant_type"))
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"token-123","token_type":"Bearer"}`))
		case r.URL.Path == "/v2/checkout/orders/ORDER-1":
			if r.Header.Get("Authorization") != "Bearer token-123" {
				t.Fatalf("expected bearer token, got %q", r.Header.Get("Authorization"))
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(orderStatus)
			_, _ = w.Write([]byte(orderBody))
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
}

func newTestProvider(baseURL string) *PayPalProvider {
	return NewPayPalProvider(PayPalConfig{
		ClientID:    "client-id",
		Secret:      "client-secret",
		APIBaseURL:  baseURL,
		HTTPTimeout: time.Second,
	})
}

func TestGetOrderParsesCapturedAmount(t *testing.T) {
	body := `{
		"id": "ORDER-1",
		"status": "COMPLETED",
		"payer": {"payer_id": "PAYER-1"},
		"purchase_units": [{
			"amount": {"currency_code": "USD", "value": "15.60"},
			"payments": {"captures": [{"amount": {"currency_code": "USD", "value": "15.60"}}]}
		}]
	}`
	server := newOrderServer(t, http.StatusOK, body)
	defer server.Close()

	order, err := newTestProvider(server.URL).GetOrder(context.Background(), "ORDER-1")
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if order.Status != OrderStatusCompleted {
		t.Fatalf("unexpected status %q", order.Status)
	}
	if order.PayerID != "PAYER-1" {
		t.Fatalf("unexpected payer %q", order.PayerID)
	}
	if order.AmountValue != "15.60" || order.CurrencyCode != "USD" {
		t.Fatalf("unexpected amount %s %s", order.AmountValue, order.CurrencyCode)
	}
}

func TestGetOrderFallsBackToPurchaseUnitAmount(t *testing.T) {
	body := `{
		"id": "ORDER-1",
		"status": "APPROVED",
		"purchase_units": [{"amount": {"currency_code": "USD", "value": "23.40"}}]
	}`
	server := newOrderServer(t, http.StatusOK, body)
	defer server.Close()

	order, err := newTestProvider(server.URL).GetOrder(context.Background(), "ORDER-1")
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if order.AmountValue != "23.40" {
		t.Fatalf("unexpected amount %q", order.AmountValue)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	server := newOrderServer(t, http.StatusNotFound, `{"name":"RESOURCE_NOT_FOUND"}`)
	defer server.Close()

	_, err := newTestProvider(server.URL).GetOrder(context.Background(), "ORDER-1")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestGetOrderEmptyID(t *testing.T) {
	_, err := newTestProvider("https://api.example").GetOrder(context.Background(), "  ")
	if err == nil {
		t.Fatal("expected error for empty order id")
	}
}

func TestGetOrderMissingCredentials(t *testing.T) {
	p := NewPayPalProvider(PayPalConfig{APIBaseURL: "https://api.example"})
	_, err := p.GetOrder(context.Background(), "ORDER-1")
	if err == nil {
		t.Fatal("expected error when credentials are not configured")
	}
}
