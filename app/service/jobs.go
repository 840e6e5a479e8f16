package service

import (
	"context"
	"time"

	"github.com/coshikowa/ms-go-agency/app/entity"
)

// RunRelayDispatchBatch picks up completed payments whose submission has
// not been relayed yet and dispatches each one. Per-item failures are
// recorded on the row and do not stop the batch.
func (s *PaymentService) RunRelayDispatchBatch(ctx context.Context) error {
	now := time.Now().UTC()
	items, err := s.paymentRepo.ListDueRelayDispatch(ctx, now, s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, payment := range items {
		if payment == nil {
			continue
		}
		if err := s.DispatchRelay(ctx, payment); err != nil {
			firstErr = keepFirstErr(firstErr, err)
		}
	}

	return firstErr
}

// DispatchRelay relays a completed payment's submission exactly once. The
// delivery flag on the row is the idempotence marker; anything other than
// a pending flag is a no-op. The row is claimed with a guarded update
// before anything is sent, so two dispatchers racing on the same payment
// cannot both email the operator.
func (s *PaymentService) DispatchRelay(ctx context.Context, payment *entity.Payment) error {
	if payment.RelayDeliveryStatus != entity.RelayDeliveryPending {
		return nil
	}

	now := time.Now().UTC()
	claimed, err := s.paymentRepo.ClaimRelayDispatch(ctx, payment.ID, now)
	if err != nil {
		return err
	}
	if !claimed {
		// Another dispatcher owns the row.
		return nil
	}
	payment.RelayDeliveryStatus = entity.RelayDeliveryDispatching

	_, err = s.relay.Relay(ctx, payment.PaymentType, payment.FormData, &payment.ID)
	if err != nil {
		return s.recordDispatchFailure(ctx, payment, now, err)
	}

	payment.RelayDeliveryStatus = entity.RelayDeliverySuccess
	payment.RelayDeliveryNextAt = nil
	payment.RelayDeliveryLastErr = nil
	payment.UpdatedAt = now

	if err := s.paymentRepo.UpdateRelayDelivery(ctx, payment); err != nil {
		return err
	}

	s.recordEvent(ctx, payment.ID, entity.EventRelayDispatched, nil, payment.Status, nil)

	return nil
}

func (s *PaymentService) recordDispatchFailure(ctx context.Context, payment *entity.Payment, now time.Time, dispatchErr error) error {
	payment.RelayDeliveryAttempts++
	trimmed := truncate(dispatchErr.Error(), 1024)
	payment.RelayDeliveryLastErr = &trimmed

	maxAttempts := s.funnelCfg.RelayMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	if payment.RelayDeliveryAttempts >= maxAttempts {
		payment.RelayDeliveryStatus = entity.RelayDeliveryFailed
		payment.RelayDeliveryNextAt = nil
	} else {
		retryInterval := s.funnelCfg.RelayRetryInterval
		if retryInterval <= 0 {
			retryInterval = 5 * time.Minute
		}
		next := now.Add(retryInterval)
		payment.RelayDeliveryStatus = entity.RelayDeliveryPending
		payment.RelayDeliveryNextAt = &next
	}
	payment.UpdatedAt = now

	if err := s.paymentRepo.UpdateRelayDelivery(ctx, payment); err != nil {
		return err
	}

	detail := trimmed
	s.recordEvent(ctx, payment.ID, entity.EventRelayDispatchFailed, nil, payment.Status, &detail)

	return dispatchErr
}

// dispatchRelayAsync runs the first relay attempt off the request path.
// The request context is gone by the time this runs, so the attempt gets
// its own deadline.
func (s *PaymentService) dispatchRelayAsync(payment *entity.Payment) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.DispatchRelay(ctx, payment); err != nil {
		s.logger.WithError(err).WithField("payment_id", payment.ID).Warn("Initial relay dispatch failed, job will retry")
	}
}

func (s *PaymentService) batchSize() int32 {
	if s.funnelCfg.JobBatchSize > 0 {
		return s.funnelCfg.JobBatchSize
	}
	return 100
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
