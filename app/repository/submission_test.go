package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coshikowa/ms-go-agency/app/entity"
)

func newMockSubmissionRepo(t *testing.T) (*SubmissionRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewSubmissionRepository(db), mock
}

func TestSubmissionCreateJobApplication(t *testing.T) {
	repo, mock := newMockSubmissionRepo(t)
	mock.ExpectExec("INSERT INTO job_applications").WillReturnResult(sqlmock.NewResult(3, 1))

	submission := &entity.Submission{
		Kind:        entity.PaymentTypeJobApplication,
		Email:       "jane@example.com",
		ContactName: "Jane Wanjiku",
		Position:    "Housekeeper",
		PayloadJSON: `{"email":"jane@example.com"}`,
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), submission); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if submission.ID != 3 {
		t.Fatalf("expected id 3, got %d", submission.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSubmissionCreateHiringRequestTable(t *testing.T) {
	repo, mock := newMockSubmissionRepo(t)
	mock.ExpectExec("INSERT INTO hiring_requests").WillReturnResult(sqlmock.NewResult(1, 1))

	paymentID := uint64(42)
	submission := &entity.Submission{
		Kind:        entity.PaymentTypeHiringRequest,
		Email:       "john@acme.example",
		ContactName: "John Otieno",
		Position:    "Driver",
		PayloadJSON: `{"email":"john@acme.example"}`,
		PaymentID:   &paymentID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), submission); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSubmissionCreateUnknownKind(t *testing.T) {
	repo, _ := newMockSubmissionRepo(t)

	err := repo.Create(context.Background(), &entity.Submission{Kind: "newsletter"})
	if !errors.Is(err, ErrUnknownSubmissionKind) {
		t.Fatalf("expected ErrUnknownSubmissionKind, got %v", err)
	}
}
