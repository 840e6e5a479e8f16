package entity

import "time"

const (
	EventPaymentCreated       = "payment_created"
	EventPaymentCompleted     = "payment_completed"
	EventPaymentCancelled     = "payment_cancelled"
	EventManualProofSubmitted = "manual_proof_submitted"
	EventProviderError        = "provider_error"
	EventRelayDispatched      = "relay_dispatched"
	EventRelayDispatchFailed  = "relay_dispatch_failed"
)

type PaymentEvent struct {
	ID uint64

	PaymentID uint64

	EventType string

	OldStatus *string
	NewStatus string

	Detail *string

	CreatedAt time.Time
}
