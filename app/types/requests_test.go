package types

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newJSONContext(t *testing.T, method, target, body string) echo.Context {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestInitializePaymentRequestHeaderFallback(t *testing.T) {
	ctx := newJSONContext(t, "POST", "/api/payments", `{"payment_type":"job_application","form_data":{"email":"jane@example.com"}}`)
	ctx.Request().Header.Set(echo.HeaderXRequestID, "req-from-header")

	req, err := NewInitializePaymentRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("from context failed: %v", err)
	}
	if req.RequestID != "req-from-header" {
		t.Fatalf("expected header request id, got %q", req.RequestID)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestInitializePaymentRequestNormalizesType(t *testing.T) {
	ctx := newJSONContext(t, "POST", "/api/payments", `{"request_id":"req-1","payment_type":" Job_Application ","form_data":{"email":"jane@example.com"}}`)

	req, err := NewInitializePaymentRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("from context failed: %v", err)
	}
	if req.PaymentType != "job_application" {
		t.Fatalf("expected normalized type, got %q", req.PaymentType)
	}
}

func TestInitializePaymentRequestValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing request id", `{"payment_type":"job_application","form_data":{"email":"jane@example.com"}}`},
		{"bad type", `{"request_id":"req-1","payment_type":"donation","form_data":{"email":"jane@example.com"}}`},
		{"empty payload", `{"request_id":"req-1","payment_type":"job_application"}`},
		{"missing email", `{"request_id":"req-1","payment_type":"job_application","form_data":{"fullName":"Jane"}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := NewInitializePaymentRequestFromContext(newJSONContext(t, "POST", "/api/payments", tc.body))
			if err != nil {
				t.Fatalf("from context failed: %v", err)
			}
			if err := req.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestApprovePaymentRequestParsesParamAndBody(t *testing.T) {
	ctx := newJSONContext(t, "POST", "/api/payments/7/approve", `{"paypal_order_id":" ORDER-1 ","paypal_payer_id":"PAYER-1"}`)
	ctx.SetParamNames("id")
	ctx.SetParamValues("7")

	req, err := NewApprovePaymentRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("from context failed: %v", err)
	}
	if req.ID != 7 {
		t.Fatalf("expected id 7, got %d", req.ID)
	}
	if req.OrderID != "ORDER-1" {
		t.Fatalf("expected trimmed order id, got %q", req.OrderID)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestApprovePaymentRequestEmptyBody(t *testing.T) {
	ctx := newJSONContext(t, "POST", "/api/payments/7/approve", "")
	ctx.SetParamNames("id")
	ctx.SetParamValues("7")

	req, err := NewApprovePaymentRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("expected empty body to bind, got %v", err)
	}
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for missing order id")
	}
}

func TestManualPaymentRequestValidation(t *testing.T) {
	ctx := newJSONContext(t, "POST", "/api/payments/7/manual", `{"payment_method":"CASH","reference":"TRX-1"}`)
	ctx.SetParamNames("id")
	ctx.SetParamValues("7")

	req, err := NewManualPaymentRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("from context failed: %v", err)
	}
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for unsupported method")
	}

	ctx = newJSONContext(t, "POST", "/api/payments/7/manual", `{"payment_method":"MPESA","reference":" QA12BC34DE "}`)
	ctx.SetParamNames("id")
	ctx.SetParamValues("7")

	req, err = NewManualPaymentRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("from context failed: %v", err)
	}
	if req.Method != "mpesa" || req.Reference != "QA12BC34DE" {
		t.Fatalf("expected normalized fields, got %q %q", req.Method, req.Reference)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestSubmissionPayloadHelpers(t *testing.T) {
	payload := SubmissionPayload{"email": " jane@example.com ", "fullName": "Jane"}

	if payload.Email() != "jane@example.com" {
		t.Fatalf("expected trimmed email, got %q", payload.Email())
	}
	if payload.Field("missing") != "" {
		t.Fatal("expected empty string for missing field")
	}
	if payload.IsEmpty() {
		t.Fatal("expected non-empty payload")
	}

	clone := payload.Clone()
	clone["fullName"] = "Changed"
	if payload["fullName"] != "Jane" {
		t.Fatal("expected clone to be independent")
	}

	var empty SubmissionPayload
	if !empty.IsEmpty() {
		t.Fatal("expected nil payload to be empty")
	}
	if empty.Clone() == nil {
		t.Fatal("expected clone of nil payload to be usable")
	}
}
