package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/coshikowa/ms-go-agency/app/entity"
	"github.com/coshikowa/ms-go-agency/app/service"
	"github.com/coshikowa/ms-go-agency/app/types"
)

func TestSendJobApplicationSuccess(t *testing.T) {
	var gotKind string
	relay := &controllerRelay{
		relayFn: func(_ context.Context, kind string, payload types.SubmissionPayload, paymentID *uint64) (*service.RelayResult, error) {
			gotKind = kind
			if paymentID != nil {
				t.Fatal("direct submissions must not carry a payment id")
			}
			if payload.Field("fullName") != "Jane Wanjiku" {
				t.Fatalf("unexpected payload name %q", payload.Field("fullName"))
			}
			return &service.RelayResult{SubmissionID: 1, OperatorMessageID: "msg-1", AckSent: true}, nil
		},
	}
	ctrl := NewSubmissionController(relay)

	body := `{"fullName":"Jane Wanjiku","email":"jane@example.com","desiredPosition":"Housekeeper"}`
	rec := performJSON(t, ctrl.SendJobApplication, http.MethodPost, "/api/send-job-application", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if gotKind != entity.PaymentTypeJobApplication {
		t.Fatalf("expected job application kind, got %q", gotKind)
	}

	var resp types.MessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success response")
	}
}

func TestSendHiringRequestSuccess(t *testing.T) {
	var gotKind string
	relay := &controllerRelay{
		relayFn: func(_ context.Context, kind string, _ types.SubmissionPayload, _ *uint64) (*service.RelayResult, error) {
			gotKind = kind
			return &service.RelayResult{SubmissionID: 1}, nil
		},
	}
	ctrl := NewSubmissionController(relay)

	body := `{"companyName":"Acme Ltd","contactPerson":"John Otieno","email":"john@acme.example","position":"Driver"}`
	rec := performJSON(t, ctrl.SendHiringRequest, http.MethodPost, "/api/send-hiring-request", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotKind != entity.PaymentTypeHiringRequest {
		t.Fatalf("expected hiring request kind, got %q", gotKind)
	}
}

func TestSendJobApplicationValidationError(t *testing.T) {
	relay := &controllerRelay{
		relayFn: func(context.Context, string, types.SubmissionPayload, *uint64) (*service.RelayResult, error) {
			return nil, fmt.Errorf("%w: fullName is required", service.ErrValidation)
		},
	}
	ctrl := NewSubmissionController(relay)

	body := `{"email":"jane@example.com"}`
	rec := performJSON(t, ctrl.SendJobApplication, http.MethodPost, "/api/send-job-application", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSendJobApplicationEmptyBody(t *testing.T) {
	ctrl := NewSubmissionController(&controllerRelay{})

	rec := performJSON(t, ctrl.SendJobApplication, http.MethodPost, "/api/send-job-application", `{}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSendHiringRequestOperatorFailure(t *testing.T) {
	relay := &controllerRelay{
		relayFn: func(context.Context, string, types.SubmissionPayload, *uint64) (*service.RelayResult, error) {
			return nil, fmt.Errorf("%w: mail api down", service.ErrOperatorEmail)
		},
	}
	ctrl := NewSubmissionController(relay)

	body := `{"companyName":"Acme Ltd","contactPerson":"John Otieno","email":"john@acme.example","position":"Driver"}`
	rec := performJSON(t, ctrl.SendHiringRequest, http.MethodPost, "/api/send-hiring-request", body, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}
