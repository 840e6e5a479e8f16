package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func isDuplicateEntryError(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

func nullableStringValue(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTimeValue(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func stringPtrFromNull(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func timePtrFromNull(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func serializeFormData(formData map[string]string) (string, error) {
	if formData == nil {
		formData = map[string]string{}
	}
	payload, err := json.Marshal(formData)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func parseFormData(raw string) (map[string]string, error) {
	if raw == "" {
		return map[string]string{}, nil
	}
	var formData map[string]string
	if err := json.Unmarshal([]byte(raw), &formData); err != nil {
		return nil, err
	}
	if formData == nil {
		formData = map[string]string{}
	}
	return formData, nil
}
