package calendar

import "errors"

var (
	// ErrInvalidFormat signals an unparseable date/time pair. Creation aborts
	// before any write.
	ErrInvalidFormat = errors.New("invalid date/time format, expected YYYY-MM-DD HH:MM")

	ErrNotFound  = errors.New("event not found")
	ErrForbidden = errors.New("only the event creator can cancel this event")

	// Confirmation outcomes for conflicting schedules. Both abort creation
	// with no writes.
	ErrConfirmationTimeout  = errors.New("no confirmation received within the timeout")
	ErrConfirmationDeclined = errors.New("event creation declined")
)
