package service

import (
	"context"
	"strings"
	"time"

	"github.com/coshikowa/ms-go-agency/app/entity"
)

type ApprovalOutcome string

const (
	ApprovalOutcomeInvalidToken     ApprovalOutcome = "invalid_token"
	ApprovalOutcomeAlreadyCompleted ApprovalOutcome = "already_completed"
	ApprovalOutcomeCompleted        ApprovalOutcome = "completed"
)

// ApproveByToken completes a manually paid payment from the operator's
// emailed approval link. The token is the only credential, so the outcome
// deliberately stays coarse: an unknown token and a bad token look the
// same to the caller.
func (s *PaymentService) ApproveByToken(ctx context.Context, token string) (ApprovalOutcome, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ApprovalOutcomeInvalidToken, nil
	}

	payment, err := s.paymentRepo.FindByApprovalToken(ctx, token)
	if err != nil {
		return "", err
	}
	if payment == nil {
		return ApprovalOutcomeInvalidToken, nil
	}
	if payment.Completed() {
		return ApprovalOutcomeAlreadyCompleted, nil
	}

	now := time.Now().UTC()
	reviewedBy := "operator"
	payment.ReviewedBy = &reviewedBy
	payment.ReviewedAt = &now
	payment.CompletedAt = &now
	payment.UpdatedAt = now
	markRelayPending(payment, now)

	completed, err := s.paymentRepo.CompleteIfPending(ctx, payment)
	if err != nil {
		return "", err
	}
	if !completed {
		return ApprovalOutcomeAlreadyCompleted, nil
	}

	pending := entity.PaymentStatusPending
	detail := "manual approval"
	s.recordEvent(ctx, payment.ID, entity.EventPaymentCompleted, &pending, entity.PaymentStatusCompleted, &detail)

	s.sendPaymentApprovedEmail(ctx, payment)

	// Relay inline so the operator's click usually finishes the whole
	// flow; the dispatch job covers a failed attempt.
	if err := s.DispatchRelay(ctx, payment); err != nil {
		s.logger.WithError(err).WithField("payment_id", payment.ID).Warn("Relay dispatch after manual approval failed, job will retry")
	}

	return ApprovalOutcomeCompleted, nil
}

// sendPaymentApprovedEmail tells the payer their offline payment cleared.
// Best effort: the approval already happened.
func (s *PaymentService) sendPaymentApprovedEmail(ctx context.Context, payment *entity.Payment) {
	html, err := renderPaymentApprovedEmail(payment)
	if err == nil {
		_, err = s.mail.Send(ctx, []string{payment.Email}, "Payment Confirmed - Coshikowa Agency", html)
	}
	if err != nil {
		s.logger.WithError(err).WithField("payment_id", payment.ID).Warn("Payment confirmation email failed")
	}
}
