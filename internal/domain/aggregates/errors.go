package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode standardizes aggregate failure semantics across domains.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeNotFound           ErrorCode = "not_found"
	CodeConflict           ErrorCode = "conflict"
	CodeInvariantViolation ErrorCode = "invariant_violation"
	CodePreconditionFailed ErrorCode = "precondition_failed"
	CodeRetryable          ErrorCode = "retryable"
	CodeInternal           ErrorCode = "internal"
)

// Reason values name the exact rejected condition so the API layer can render
// a specific message rather than a generic failure.
const (
	ReasonNotOpen                 = "not_open"
	ReasonAlreadyJoined           = "already_joined"
	ReasonNoSlotsAvailable        = "no_slots_available"
	ReasonNotParticipant          = "not_participant"
	ReasonOrganizerCannotLeave    = "organizer_cannot_leave"
	ReasonAlreadyPaid             = "already_paid"
	ReasonNotOrganizer            = "not_organizer"
	ReasonHasPaidParticipants     = "has_paid_participants"
	ReasonNotFull                 = "not_full"
	ReasonOrganizerNotPayable     = "organizer_not_payable"
	ReasonSplitNotFound           = "split_not_found"
	ReasonConcurrentModification  = "concurrent_modification"
	ReasonOrganizerNotReady       = "organizer_not_ready"
	ReasonPaymentInitiationFailed = "payment_initiation_failed"
	ReasonPaymentNotVerified      = "payment_not_verified"
)

// Error is the canonical aggregate error wrapper.
type Error struct {
	Code    ErrorCode
	Op      string
	Reason  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = strings.TrimSpace(e.Reason)
	}
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an aggregate error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// NewReason builds an aggregate error carrying a stable rejection reason.
func NewReason(code ErrorCode, op, reason, message string) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Reason:  strings.TrimSpace(reason),
		Message: strings.TrimSpace(message),
	}
}

// Wrap annotates an existing error with aggregate error semantics.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// IsCode checks whether err (or wrapped err) carries the given aggregate code.
func IsCode(err error, code ErrorCode) bool {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return false
	}
	return aggErr.Code == code
}

// IsReason checks whether err carries the given rejection reason.
func IsReason(err error, reason string) bool {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return false
	}
	return aggErr.Reason == reason
}

// CodeOf extracts the aggregate error code when available.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

// ReasonOf extracts the rejection reason when available.
func ReasonOf(err error) string {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Reason
}
