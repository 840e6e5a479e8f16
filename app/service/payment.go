package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/coshikowa/ms-go-agency/app/entity"
	"github.com/coshikowa/ms-go-agency/app/factory"
	"github.com/coshikowa/ms-go-agency/app/provider"
	"github.com/coshikowa/ms-go-agency/app/repository"
	"github.com/coshikowa/ms-go-agency/app/types"
	"github.com/coshikowa/ms-go-agency/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type paymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	CompleteIfPending(ctx context.Context, payment *entity.Payment) (bool, error)
	SetManualMethod(ctx context.Context, id uint64, method, reference string, now time.Time) error
	ClaimRelayDispatch(ctx context.Context, id uint64, now time.Time) (bool, error)
	UpdateRelayDelivery(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id uint64) (*entity.Payment, error)
	FindByRequestID(ctx context.Context, requestID string) (*entity.Payment, error)
	FindByApprovalToken(ctx context.Context, token string) (*entity.Payment, error)
	ListDueRelayDispatch(ctx context.Context, now time.Time, limit int32) ([]*entity.Payment, error)
}

type paymentEventRepository interface {
	Create(ctx context.Context, event *entity.PaymentEvent) error
}

type orderProvider interface {
	GetOrder(ctx context.Context, orderID string) (*provider.Order, error)
}

type submissionRelay interface {
	Relay(ctx context.Context, kind string, payload types.SubmissionPayload, paymentID *uint64) (*RelayResult, error)
}

type PaymentService struct {
	paymentRepo paymentRepository
	eventRepo   paymentEventRepository
	relay       submissionRelay
	orders      orderProvider
	mail        mailSender
	appCfg      config.AppConfig
	mailerCfg   config.MailerConfig
	funnelCfg   config.FunnelConfig
	logger      logrus.FieldLogger
}

func NewPaymentService(
	paymentRepo paymentRepository,
	eventRepo paymentEventRepository,
	relay submissionRelay,
	orders orderProvider,
	mail mailSender,
	appCfg config.AppConfig,
	mailerCfg config.MailerConfig,
	funnelCfg config.FunnelConfig,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		eventRepo:   eventRepo,
		relay:       relay,
		orders:      orders,
		mail:        mail,
		appCfg:      appCfg,
		mailerCfg:   mailerCfg,
		funnelCfg:   funnelCfg,
		logger:      factory.NewModuleLogger("payments-service"),
	}
}

// InitializeSession creates the pending payment record for a submission.
// Retries with the same request id return the already-created record
// instead of piling up duplicate pending rows.
func (s *PaymentService) InitializeSession(ctx context.Context, req *types.InitializePaymentRequest) (*entity.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	existing, err := s.paymentRepo.FindByRequestID(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	amountKES := s.feeFor(req.PaymentType)
	payment := &entity.Payment{
		RequestID:           req.RequestID,
		PaymentType:         req.PaymentType,
		AmountKES:           amountKES,
		AmountUSD:           roundUSD(float64(amountKES) * s.funnelCfg.FXRateKESToUSD),
		Status:              entity.PaymentStatusPending,
		FormData:            req.FormData.Clone(),
		Email:               req.FormData.Email(),
		ApprovalToken:       uuid.NewString(),
		RelayDeliveryStatus: entity.RelayDeliveryNone,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		// Lost a race against a concurrent retry carrying the same
		// request id; the winner's record is the one to return.
		if errors.Is(err, repository.ErrPaymentAlreadyExists) {
			winner, findErr := s.paymentRepo.FindByRequestID(ctx, req.RequestID)
			if findErr != nil {
				return nil, findErr
			}
			if winner != nil {
				return winner, nil
			}
		}
		return nil, err
	}

	s.recordEvent(ctx, payment.ID, entity.EventPaymentCreated, nil, entity.PaymentStatusPending, nil)

	return payment, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, req *types.GetPaymentRequest) (*entity.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	payment, err := s.paymentRepo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	return payment, nil
}

// ApprovePayPal verifies the captured order against the provider and
// completes the payment. Repeated calls for an already-completed payment
// are a no-op that returns the current record.
func (s *PaymentService) ApprovePayPal(ctx context.Context, req *types.ApprovePaymentRequest) (*entity.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	payment, err := s.paymentRepo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.Completed() {
		return payment, nil
	}

	order, err := s.orders.GetOrder(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, provider.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: order %s does not exist", ErrOrderNotCompleted, req.OrderID)
		}
		return nil, err
	}
	if order.Status != provider.OrderStatusCompleted {
		return nil, fmt.Errorf("%w: order status is %s", ErrOrderNotCompleted, order.Status)
	}
	if err := s.verifyOrderAmount(payment, order); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	method := entity.PaymentMethodPayPal
	payerID := req.PayerID
	if payerID == "" {
		payerID = order.PayerID
	}

	payment.PaymentMethod = &method
	payment.PayPalOrderID = &order.ID
	if payerID != "" {
		payment.PayPalPayerID = &payerID
	}
	payment.CompletedAt = &now
	payment.UpdatedAt = now
	markRelayPending(payment, now)

	completed, err := s.paymentRepo.CompleteIfPending(ctx, payment)
	if err != nil {
		return nil, err
	}
	if !completed {
		// Another approval got there first. Re-read for the caller.
		current, findErr := s.paymentRepo.FindByID(ctx, req.ID)
		if findErr != nil {
			return nil, findErr
		}
		if current == nil {
			return nil, ErrPaymentNotFound
		}
		return current, nil
	}

	pending := entity.PaymentStatusPending
	s.recordEvent(ctx, payment.ID, entity.EventPaymentCompleted, &pending, entity.PaymentStatusCompleted, nil)

	// First relay attempt happens off the request path; the dispatch job
	// retries anything this misses. The goroutine works on its own copy
	// so the record returned to the caller is never written concurrently.
	relayCopy := *payment
	go s.dispatchRelayAsync(&relayCopy)

	return payment, nil
}

// SubmitManualProof records an offline payment reference and asks the
// operator to verify the funds. The payment stays pending until the
// operator follows the approval link.
func (s *PaymentService) SubmitManualProof(ctx context.Context, req *types.ManualPaymentRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	payment, err := s.paymentRepo.FindByID(ctx, req.ID)
	if err != nil {
		return err
	}
	if payment == nil {
		return ErrPaymentNotFound
	}
	if payment.Completed() {
		// Resubmitting proof for a settled payment must not page the
		// operator again.
		s.logger.WithField("payment_id", payment.ID).Info("Manual proof ignored, payment already completed")
		return nil
	}

	now := time.Now().UTC()
	if err := s.paymentRepo.SetManualMethod(ctx, req.ID, req.Method, req.Reference, now); err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			// Completed between the read above and the update.
			return nil
		}
		return err
	}

	approveURL := s.appCfg.PublicBaseURL + "/api/approve-payment?token=" + payment.ApprovalToken
	html, err := renderApprovalRequestEmail(payment, req.Method, req.Reference, approveURL)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Payment Approval Needed - %s - KES %s", paymentTypeLabel(payment.PaymentType), formatKES(payment.AmountKES))
	if _, err := s.mail.Send(ctx, []string{s.mailerCfg.OperatorEmail}, subject, html); err != nil {
		return fmt.Errorf("%w: %v", ErrOperatorEmail, err)
	}

	detail := req.Method + " " + req.Reference
	s.recordEvent(ctx, payment.ID, entity.EventManualProofSubmitted, nil, entity.PaymentStatusPending, &detail)

	return nil
}

// RecordCancel logs that the payer abandoned the checkout. The record
// itself stays pending so a later retry can still complete it.
func (s *PaymentService) RecordCancel(ctx context.Context, req *types.CancelPaymentRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	payment, err := s.paymentRepo.FindByID(ctx, req.ID)
	if err != nil {
		return err
	}
	if payment == nil {
		return ErrPaymentNotFound
	}

	var detail *string
	if req.Reason != "" {
		detail = &req.Reason
	}
	s.recordEvent(ctx, payment.ID, entity.EventPaymentCancelled, nil, payment.Status, detail)

	return nil
}

// ReportProviderError stores the raw provider failure for diagnostics and
// returns the message the payer should see.
func (s *PaymentService) ReportProviderError(ctx context.Context, req *types.ProviderErrorRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	payment, err := s.paymentRepo.FindByID(ctx, req.ID)
	if err != nil {
		return "", err
	}
	if payment == nil {
		return "", ErrPaymentNotFound
	}

	var detail *string
	if req.Message != "" {
		detail = &req.Message
	}
	s.recordEvent(ctx, payment.ID, entity.EventProviderError, nil, payment.Status, detail)

	return provider.ClassifyError(req.Message), nil
}

func (s *PaymentService) verifyOrderAmount(payment *entity.Payment, order *provider.Order) error {
	if order.CurrencyCode != "" && order.CurrencyCode != "USD" {
		return fmt.Errorf("%w: order currency is %s", ErrAmountMismatch, order.CurrencyCode)
	}

	value, err := strconv.ParseFloat(order.AmountValue, 64)
	if err != nil {
		return fmt.Errorf("%w: order amount %q is not a number", ErrAmountMismatch, order.AmountValue)
	}
	if math.Abs(value-payment.AmountUSD) > 0.005 {
		return fmt.Errorf("%w: order amount %.2f, expected %.2f", ErrAmountMismatch, value, payment.AmountUSD)
	}

	return nil
}

func (s *PaymentService) feeFor(paymentType string) int64 {
	if paymentType == entity.PaymentTypeHiringRequest {
		return s.funnelCfg.HiringRequestFeeKES
	}
	return s.funnelCfg.JobApplicationFeeKES
}

// recordEvent appends to the audit trail. A failed audit write is logged
// and never fails the payment operation it annotates.
func (s *PaymentService) recordEvent(ctx context.Context, paymentID uint64, eventType string, oldStatus *string, newStatus string, detail *string) {
	event := &entity.PaymentEvent{
		PaymentID: paymentID,
		EventType: eventType,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"payment_id": paymentID,
			"event_type": eventType,
		}).Error("Failed to record payment event")
	}
}

func markRelayPending(payment *entity.Payment, now time.Time) {
	payment.RelayDeliveryStatus = entity.RelayDeliveryPending
	payment.RelayDeliveryAttempts = 0
	payment.RelayDeliveryNextAt = &now
	payment.RelayDeliveryLastErr = nil
}

func roundUSD(value float64) float64 {
	return math.Round(value*100) / 100
}
