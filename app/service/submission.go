package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/coshikowa/ms-go-agency/app/entity"
	"github.com/coshikowa/ms-go-agency/app/factory"
	"github.com/coshikowa/ms-go-agency/app/types"
	"github.com/sirupsen/logrus"
)

type submissionRepository interface {
	Create(ctx context.Context, submission *entity.Submission) error
}

type mailSender interface {
	Send(ctx context.Context, to []string, subject, html string) (string, error)
}

type RelayResult struct {
	SubmissionID      uint64
	OperatorMessageID string
	AckSent           bool
}

// SubmissionService is the relay: it turns a submission payload into the
// operator notification, a persisted request-tracking row, and a
// best-effort acknowledgment to the submitter. Calling it twice with the
// same payload sends duplicate emails; idempotence is the caller's job
// (the payment dispatch path keys it on the payment row).
type SubmissionService struct {
	submissionRepo submissionRepository
	mail           mailSender
	operatorEmail  string
	logger         logrus.FieldLogger
}

func NewSubmissionService(submissionRepo submissionRepository, mail mailSender, operatorEmail string) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		mail:           mail,
		operatorEmail:  strings.TrimSpace(operatorEmail),
		logger:         factory.NewModuleLogger("submission-relay"),
	}
}

func (s *SubmissionService) Relay(ctx context.Context, kind string, payload types.SubmissionPayload, paymentID *uint64) (*RelayResult, error) {
	if err := validatePayload(kind, payload); err != nil {
		return nil, err
	}

	position := resolvePosition(kind, payload)
	name := contactName(kind, payload)

	operatorHTML, err := renderOperatorEmail(kind, position, name, payload)
	if err != nil {
		return nil, err
	}

	operatorID, err := s.mail.Send(ctx, []string{s.operatorEmail}, operatorSubject(kind, position, name), operatorHTML)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOperatorEmail, err)
	}

	result := &RelayResult{OperatorMessageID: operatorID}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	submission := &entity.Submission{
		Kind:        kind,
		Email:       payload.Email(),
		ContactName: name,
		Position:    position,
		PayloadJSON: string(payloadJSON),
		PaymentID:   paymentID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	result.SubmissionID = submission.ID

	// The operator already has the submission; a failed acknowledgment
	// must not fail the call.
	ackHTML, err := renderAcknowledgmentEmail(kind, position, name)
	if err == nil {
		_, err = s.mail.Send(ctx, []string{payload.Email()}, ackSubject(kind), ackHTML)
	}
	if err != nil {
		s.logger.WithError(err).WithField("kind", kind).Warn("Acknowledgment email failed")
	} else {
		result.AckSent = true
	}

	return result, nil
}

func validatePayload(kind string, payload types.SubmissionPayload) error {
	if payload.IsEmpty() {
		return fmt.Errorf("%w: request body is required", ErrValidation)
	}
	if payload.Email() == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}

	switch kind {
	case entity.PaymentTypeJobApplication:
		if payload.Field("fullName") == "" {
			return fmt.Errorf("%w: fullName is required", ErrValidation)
		}
		if resolvePosition(kind, payload) == "" {
			return fmt.Errorf("%w: desiredPosition or jobCategory is required", ErrValidation)
		}
	case entity.PaymentTypeHiringRequest:
		if payload.Field("companyName") == "" {
			return fmt.Errorf("%w: companyName is required", ErrValidation)
		}
		if payload.Field("contactPerson") == "" {
			return fmt.Errorf("%w: contactPerson is required", ErrValidation)
		}
		if payload.Field("position") == "" {
			return fmt.Errorf("%w: position is required", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown submission kind %q", ErrValidation, kind)
	}

	return nil
}

// resolvePosition picks the display position. A job category of
// "Other"/"Others" defers to the free-text custom position.
func resolvePosition(kind string, payload types.SubmissionPayload) string {
	if kind == entity.PaymentTypeHiringRequest {
		return payload.Field("position")
	}

	category := payload.Field("jobCategory")
	if category == "Others" || category == "Other" {
		if custom := payload.Field("customPosition"); custom != "" {
			return custom
		}
	}
	if desired := payload.Field("desiredPosition"); desired != "" {
		return desired
	}
	return category
}

func contactName(kind string, payload types.SubmissionPayload) string {
	if kind == entity.PaymentTypeHiringRequest {
		return payload.Field("contactPerson")
	}
	return payload.Field("fullName")
}

func operatorSubject(kind, position, contactName string) string {
	if kind == entity.PaymentTypeHiringRequest {
		return "New Hiring Request - " + position
	}
	return "New Job Application - " + position + " - " + contactName
}

func ackSubject(kind string) string {
	if kind == entity.PaymentTypeHiringRequest {
		return "Hiring Request Received - Coshikowa Agency"
	}
	return "Application Received - Coshikowa Agency"
}
