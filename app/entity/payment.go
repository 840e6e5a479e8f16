package entity

import "time"

const (
	PaymentTypeJobApplication = "job_application"
	PaymentTypeHiringRequest  = "hiring_request"

	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"

	PaymentMethodPayPal = "paypal"
	PaymentMethodMpesa  = "mpesa"
	PaymentMethodBank   = "bank"
)

// Relay delivery states. A completed payment carries its submission payload
// to the relay at least once; the flag below is the idempotence marker.
// Dispatching means one dispatcher has claimed the row and is sending.
const (
	RelayDeliveryNone        int32 = 0
	RelayDeliveryPending     int32 = 1
	RelayDeliveryDispatching int32 = 2
	RelayDeliverySuccess     int32 = 10
	RelayDeliveryFailed      int32 = 20
)

type Payment struct {
	ID uint64

	RequestID   string
	PaymentType string

	AmountKES int64
	AmountUSD float64

	Status        string
	PaymentMethod *string

	FormData map[string]string
	Email    string

	PayPalOrderID *string
	PayPalPayerID *string

	ApprovalToken   string
	ManualReference *string

	ReviewedBy  *string
	ReviewedAt  *time.Time
	CompletedAt *time.Time
	AdminNotes  *string

	RelayDeliveryStatus   int32
	RelayDeliveryAttempts int32
	RelayDeliveryNextAt   *time.Time
	RelayDeliveryLastErr  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Payment) Completed() bool {
	return p.Status == PaymentStatusCompleted
}
