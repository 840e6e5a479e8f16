package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/coshikowa/ms-go-agency/app/entity"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentAlreadyExists = errors.New("payment already exists")
)

const paymentColumns = `id, request_id, payment_type, amount_kes, amount_usd,
		payment_status, payment_method, form_data, email,
		paypal_order_id, paypal_payer_id, approval_token, manual_reference,
		reviewed_by, reviewed_at, completed_at, admin_notes,
		relay_delivery_status, relay_delivery_attempts, relay_delivery_next_at, relay_delivery_last_error,
		created_at, updated_at`

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	formDataJSON, err := serializeFormData(payment.FormData)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO payments (
			request_id, payment_type, amount_kes, amount_usd,
			payment_status, payment_method, form_data, email,
			paypal_order_id, paypal_payer_id, approval_token, manual_reference,
			reviewed_by, reviewed_at, completed_at, admin_notes,
			relay_delivery_status, relay_delivery_attempts, relay_delivery_next_at, relay_delivery_last_error,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		payment.RequestID,
		payment.PaymentType,
		payment.AmountKES,
		payment.AmountUSD,
		payment.Status,
		nullableStringValue(payment.PaymentMethod),
		formDataJSON,
		payment.Email,
		nullableStringValue(payment.PayPalOrderID),
		nullableStringValue(payment.PayPalPayerID),
		payment.ApprovalToken,
		nullableStringValue(payment.ManualReference),
		nullableStringValue(payment.ReviewedBy),
		nullableTimeValue(payment.ReviewedAt),
		nullableTimeValue(payment.CompletedAt),
		nullableStringValue(payment.AdminNotes),
		payment.RelayDeliveryStatus,
		payment.RelayDeliveryAttempts,
		nullableTimeValue(payment.RelayDeliveryNextAt),
		nullableStringValue(payment.RelayDeliveryLastErr),
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrPaymentAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	payment.ID = uint64(id)
	return nil
}

// CompleteIfPending flips the record to completed only when it is still
// pending. Zero rows affected means another caller got there first; the
// caller treats that as the idempotent already-done case.
func (r *PaymentRepository) CompleteIfPending(ctx context.Context, payment *entity.Payment) (bool, error) {
	query := `
		UPDATE payments SET
			payment_status = ?,
			payment_method = ?,
			paypal_order_id = ?,
			paypal_payer_id = ?,
			reviewed_by = ?,
			reviewed_at = ?,
			completed_at = ?,
			admin_notes = ?,
			relay_delivery_status = ?,
			relay_delivery_attempts = ?,
			relay_delivery_next_at = ?,
			relay_delivery_last_error = ?,
			updated_at = ?
		WHERE id = ? AND payment_status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		entity.PaymentStatusCompleted,
		nullableStringValue(payment.PaymentMethod),
		nullableStringValue(payment.PayPalOrderID),
		nullableStringValue(payment.PayPalPayerID),
		nullableStringValue(payment.ReviewedBy),
		nullableTimeValue(payment.ReviewedAt),
		nullableTimeValue(payment.CompletedAt),
		nullableStringValue(payment.AdminNotes),
		payment.RelayDeliveryStatus,
		payment.RelayDeliveryAttempts,
		nullableTimeValue(payment.RelayDeliveryNextAt),
		nullableStringValue(payment.RelayDeliveryLastErr),
		payment.UpdatedAt,
		payment.ID,
		entity.PaymentStatusPending,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		payment.Status = entity.PaymentStatusCompleted
	}
	return affected > 0, nil
}

// SetManualMethod records the out-of-band payment method and the payer's
// transfer reference while the record is still pending.
func (r *PaymentRepository) SetManualMethod(ctx context.Context, id uint64, method, reference string, now time.Time) error {
	query := `
		UPDATE payments SET
			payment_method = ?,
			manual_reference = ?,
			updated_at = ?
		WHERE id = ? AND payment_status = ?
	`

	result, err := r.db.ExecContext(ctx, query, method, reference, now, id, entity.PaymentStatusPending)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// ClaimRelayDispatch moves a pending relay delivery to dispatching so that
// exactly one dispatcher sends for the row. Zero rows affected means another
// dispatcher already claimed it.
func (r *PaymentRepository) ClaimRelayDispatch(ctx context.Context, id uint64, now time.Time) (bool, error) {
	query := `
		UPDATE payments SET
			relay_delivery_status = ?,
			updated_at = ?
		WHERE id = ? AND relay_delivery_status = ?
	`

	result, err := r.db.ExecContext(ctx, query, entity.RelayDeliveryDispatching, now, id, entity.RelayDeliveryPending)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PaymentRepository) UpdateRelayDelivery(ctx context.Context, payment *entity.Payment) error {
	query := `
		UPDATE payments SET
			relay_delivery_status = ?,
			relay_delivery_attempts = ?,
			relay_delivery_next_at = ?,
			relay_delivery_last_error = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		payment.RelayDeliveryStatus,
		payment.RelayDeliveryAttempts,
		nullableTimeValue(payment.RelayDeliveryNextAt),
		nullableStringValue(payment.RelayDeliveryLastErr),
		payment.UpdatedAt,
		payment.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uint64) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`

	payment := &entity.Payment{}
	if err := scanPayment(r.db.QueryRowContext(ctx, query, id), payment); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return payment, nil
}

func (r *PaymentRepository) FindByRequestID(ctx context.Context, requestID string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE request_id = ? LIMIT 1`

	payment := &entity.Payment{}
	if err := scanPayment(r.db.QueryRowContext(ctx, query, requestID), payment); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return payment, nil
}

func (r *PaymentRepository) FindByApprovalToken(ctx context.Context, token string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE approval_token = ? LIMIT 1`

	payment := &entity.Payment{}
	if err := scanPayment(r.db.QueryRowContext(ctx, query, token), payment); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return payment, nil
}

func (r *PaymentRepository) ListDueRelayDispatch(ctx context.Context, now time.Time, limit int32) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments
		WHERE relay_delivery_status = ?
		  AND relay_delivery_next_at IS NOT NULL
		  AND relay_delivery_next_at <= ?
		ORDER BY relay_delivery_next_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, entity.RelayDeliveryPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*entity.Payment, 0)
	for rows.Next() {
		item := &entity.Payment{}
		if err := scanPayment(rows, item); err != nil {
			return nil, err
		}
		payments = append(payments, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(scan rowScanner, payment *entity.Payment) error {
	var paymentMethod sql.NullString
	var formDataJSON string
	var paypalOrderID sql.NullString
	var paypalPayerID sql.NullString
	var manualReference sql.NullString
	var reviewedBy sql.NullString
	var reviewedAt sql.NullTime
	var completedAt sql.NullTime
	var adminNotes sql.NullString
	var relayNextAt sql.NullTime
	var relayLastErr sql.NullString

	err := scan.Scan(
		&payment.ID,
		&payment.RequestID,
		&payment.PaymentType,
		&payment.AmountKES,
		&payment.AmountUSD,
		&payment.Status,
		&paymentMethod,
		&formDataJSON,
		&payment.Email,
		&paypalOrderID,
		&paypalPayerID,
		&payment.ApprovalToken,
		&manualReference,
		&reviewedBy,
		&reviewedAt,
		&completedAt,
		&adminNotes,
		&payment.RelayDeliveryStatus,
		&payment.RelayDeliveryAttempts,
		&relayNextAt,
		&relayLastErr,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return err
	}

	payment.PaymentMethod = stringPtrFromNull(paymentMethod)
	payment.PayPalOrderID = stringPtrFromNull(paypalOrderID)
	payment.PayPalPayerID = stringPtrFromNull(paypalPayerID)
	payment.ManualReference = stringPtrFromNull(manualReference)
	payment.ReviewedBy = stringPtrFromNull(reviewedBy)
	payment.ReviewedAt = timePtrFromNull(reviewedAt)
	payment.CompletedAt = timePtrFromNull(completedAt)
	payment.AdminNotes = stringPtrFromNull(adminNotes)
	payment.RelayDeliveryNextAt = timePtrFromNull(relayNextAt)
	payment.RelayDeliveryLastErr = stringPtrFromNull(relayLastErr)

	formData, err := parseFormData(formDataJSON)
	if err != nil {
		return err
	}
	payment.FormData = formData

	return nil
}
