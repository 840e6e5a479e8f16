package entity

import "time"

// Submission is one relayed intake request, persisted into the
// request-tracking table matching its kind (job_applications or
// hiring_requests). The payload is stored verbatim.
type Submission struct {
	ID uint64

	Kind string

	Email       string
	ContactName string
	Position    string

	PayloadJSON string

	PaymentID *uint64

	CreatedAt time.Time
}
