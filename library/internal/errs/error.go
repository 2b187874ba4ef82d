package errs

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrForbidden         = errors.New("forbidden")
	ErrBusy              = errors.New("busy, retry later")

	ErrBookUnavailable      = errors.New("book is unavailable")
	ErrBookAvailable        = errors.New("book is available, borrow it instead")
	ErrAlreadyBorrowing     = errors.New("user already borrows this book")
	ErrAlreadyReturned      = errors.New("loan already returned")
	ErrAlreadyTerminal      = errors.New("reservation already terminal")
	ErrDuplicateReservation = errors.New("duplicate reservation")
	ErrLoanOverdue          = errors.New("loan is overdue")

	ErrLoanLimit        = errors.New("active loan limit reached")
	ErrReservationLimit = errors.New("active reservation limit reached")
	ErrRequestLimit     = errors.New("active purchase request limit reached")
	ErrDuplicateRequest = errors.New("duplicate purchase request")
	ErrHasOverdue       = errors.New("user has overdue loans")
	ErrQueueWaiting     = errors.New("book has waiting reservations")
	ErrExtensionLimit   = errors.New("extension limit reached")
	ErrAdmission        = errors.New("catalog admission failed, retry admission")
)

// ValidationError carries field -> reason pairs.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (v *ValidationError) Error() string {
	if v == nil || len(v.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

var kinds = []struct {
	err  error
	kind string
}{
	// admission failures wrap their cause and must win over it
	{ErrAdmission, "admission_failed"},
	{ErrNotFound, "not_found"},
	{ErrConflict, "conflict"},
	{ErrInvalidTransition, "invalid_transition"},
	{ErrForbidden, "forbidden"},
	{ErrBusy, "busy"},
	{ErrBookUnavailable, "book_unavailable"},
	{ErrBookAvailable, "book_available"},
	{ErrAlreadyBorrowing, "already_borrowing"},
	{ErrAlreadyReturned, "already_returned"},
	{ErrAlreadyTerminal, "already_terminal"},
	{ErrDuplicateReservation, "duplicate_reservation"},
	{ErrLoanOverdue, "loan_overdue"},
	{ErrLoanLimit, "loan_limit"},
	{ErrReservationLimit, "reservation_limit"},
	{ErrRequestLimit, "request_limit"},
	{ErrDuplicateRequest, "duplicate_request"},
	{ErrHasOverdue, "has_overdue"},
	{ErrQueueWaiting, "queue_waiting"},
	{ErrExtensionLimit, "extension_limit"},
}

// Kind maps err to a stable label, "" for nil and "internal" for anything unknown.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
