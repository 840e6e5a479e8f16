package types

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ProviderErrorResponse struct {
	Message string `json:"message"`
}

type Payment struct {
	ID            uint64  `json:"id"`
	RequestID     string  `json:"request_id"`
	PaymentType   string  `json:"payment_type"`
	AmountKES     int64   `json:"amount_kes"`
	AmountUSD     float64 `json:"amount_usd"`
	Status        string  `json:"payment_status"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	Email         string  `json:"email"`
	CompletedAt   string  `json:"completed_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type PaymentEnvelopeResponse struct {
	Payment *Payment `json:"payment"`
}
