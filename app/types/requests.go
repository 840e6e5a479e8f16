package types

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type InitializePaymentRequest struct {
	RequestID   string            `json:"request_id"`
	PaymentType string            `json:"payment_type"`
	FormData    SubmissionPayload `json:"form_data"`
}

func NewInitializePaymentRequestFromContext(ctx echo.Context) (*InitializePaymentRequest, error) {
	var body InitializePaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.RequestID = strings.TrimSpace(body.RequestID)
	if body.RequestID == "" {
		body.RequestID = strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
	}
	body.PaymentType = strings.ToLower(strings.TrimSpace(body.PaymentType))

	return &body, nil
}

func (r *InitializePaymentRequest) Validate() error {
	if r.RequestID == "" {
		return errors.New("request_id is required")
	}
	if r.PaymentType != "job_application" && r.PaymentType != "hiring_request" {
		return errors.New("payment_type must be job_application or hiring_request")
	}
	if r.FormData.IsEmpty() {
		return errors.New("payload is required")
	}
	if r.FormData.Email() == "" {
		return errors.New("payload email is required")
	}
	return nil
}

type GetPaymentRequest struct {
	ID uint64
}

func NewGetPaymentRequestFromContext(ctx echo.Context) (*GetPaymentRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &GetPaymentRequest{ID: id}, nil
}

func (r *GetPaymentRequest) Validate() error {
	if r.ID == 0 {
		return errors.New("invalid payment id")
	}
	return nil
}

type ApprovePaymentRequest struct {
	ID      uint64 `json:"-"`
	OrderID string `json:"paypal_order_id"`
	PayerID string `json:"paypal_payer_id"`
}

func NewApprovePaymentRequestFromContext(ctx echo.Context) (*ApprovePaymentRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}

	var body ApprovePaymentRequest
	if err = ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	body.ID = id
	body.OrderID = strings.TrimSpace(body.OrderID)
	body.PayerID = strings.TrimSpace(body.PayerID)

	return &body, nil
}

func (r *ApprovePaymentRequest) Validate() error {
	if r.ID == 0 {
		return errors.New("invalid payment id")
	}
	if r.OrderID == "" {
		return errors.New("paypal_order_id is required")
	}
	return nil
}

type ManualPaymentRequest struct {
	ID        uint64 `json:"-"`
	Method    string `json:"payment_method"`
	Reference string `json:"reference"`
}

func NewManualPaymentRequestFromContext(ctx echo.Context) (*ManualPaymentRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}

	var body ManualPaymentRequest
	if err = ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	body.ID = id
	body.Method = strings.ToLower(strings.TrimSpace(body.Method))
	body.Reference = strings.TrimSpace(body.Reference)

	return &body, nil
}

func (r *ManualPaymentRequest) Validate() error {
	if r.ID == 0 {
		return errors.New("invalid payment id")
	}
	if r.Method != "mpesa" && r.Method != "bank" {
		return errors.New("payment_method must be mpesa or bank")
	}
	if r.Reference == "" {
		return errors.New("reference is required")
	}
	return nil
}

type CancelPaymentRequest struct {
	ID     uint64 `json:"-"`
	Reason string `json:"reason"`
}

func NewCancelPaymentRequestFromContext(ctx echo.Context) (*CancelPaymentRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}

	var body CancelPaymentRequest
	if err = ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	body.ID = id
	body.Reason = strings.TrimSpace(body.Reason)

	return &body, nil
}

func (r *CancelPaymentRequest) Validate() error {
	if r.ID == 0 {
		return errors.New("invalid payment id")
	}
	return nil
}

type ProviderErrorRequest struct {
	ID      uint64 `json:"-"`
	Message string `json:"message"`
}

func NewProviderErrorRequestFromContext(ctx echo.Context) (*ProviderErrorRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}

	var body ProviderErrorRequest
	if err = ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	body.ID = id
	body.Message = strings.TrimSpace(body.Message)

	return &body, nil
}

func (r *ProviderErrorRequest) Validate() error {
	if r.ID == 0 {
		return errors.New("invalid payment id")
	}
	return nil
}

type SubmissionRequest struct {
	Kind    string
	Payload SubmissionPayload
}

func NewSubmissionRequestFromContext(ctx echo.Context, kind string) (*SubmissionRequest, error) {
	var payload SubmissionPayload
	if err := ctx.Bind(&payload); err != nil {
		return nil, err
	}
	return &SubmissionRequest{Kind: kind, Payload: payload}, nil
}

func (r *SubmissionRequest) Validate() error {
	if r.Payload.IsEmpty() {
		return errors.New("request body is required")
	}
	return nil
}
