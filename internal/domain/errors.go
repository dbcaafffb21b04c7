package domain

import "errors"

var (
	// Record errors
	ErrServiceNotFound      = errors.New("service not found")
	ErrConflictingSchedules = errors.New("service carries both daily and monthly due dates")

	// Capture flow errors
	ErrMalformedAmount  = errors.New("amount must be a number with up to two decimal places")
	ErrNotDailyCycle    = errors.New("service is not billed by daily consumption")
	ErrNoPendingCapture = errors.New("no payment capture in progress")
)
