package repository

import (
	"context"
	"errors"

	"github.com/coshikowa/ms-go-agency/app/entity"
)

var ErrUnknownSubmissionKind = errors.New("unknown submission kind")

type SubmissionRepository struct {
	db DBTX
}

func NewSubmissionRepository(db DBTX) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, submission *entity.Submission) error {
	table, err := submissionTable(submission.Kind)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ` + table + ` (
			email, contact_name, position, payload_json, payment_id, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var paymentID interface{}
	if submission.PaymentID != nil {
		paymentID = *submission.PaymentID
	}

	result, err := r.db.ExecContext(ctx, query,
		submission.Email,
		submission.ContactName,
		submission.Position,
		submission.PayloadJSON,
		paymentID,
		submission.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	submission.ID = uint64(id)

	return nil
}

func submissionTable(kind string) (string, error) {
	switch kind {
	case entity.PaymentTypeJobApplication:
		return "job_applications", nil
	case entity.PaymentTypeHiringRequest:
		return "hiring_requests", nil
	default:
		return "", ErrUnknownSubmissionKind
	}
}
