package id

import (
	"time"

	"github.com/google/uuid"
)

// NewStatementID returns a fresh statement identifier.
func NewStatementID() string {
	return uuid.NewString()
}

// NewTransactionID returns a fresh transaction identifier.
func NewTransactionID() string {
	return uuid.NewString()
}

// NewProjectID returns a fresh project identifier.
func NewProjectID() string {
	return uuid.NewString()
}

// MonthStart truncates a date to the first day of its month in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthKey formats a bucket month like "2025-01".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
