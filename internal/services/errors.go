package services

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFields     = errors.New("required field missing")
	ErrInvalidField      = errors.New("invalid field value")
	ErrUnverified        = errors.New("email not verified, please complete OTP verification")
	ErrNotServiceable    = errors.New("service not available for this pincode")
	ErrPastDateTime      = errors.New("requested date and time is in the past")
	ErrNotFound          = errors.New("booking not found")
	ErrOTPNotFound       = errors.New("no OTP found, please request again")
	ErrOTPExpired        = errors.New("OTP expired, please request again")
	ErrOTPMismatch       = errors.New("invalid OTP")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrConflict          = errors.New("booking was updated by someone else, please retry")
)

// ValidationError names the offending field of a rejected input.
// It matches ErrMissingFields when Missing is set and ErrInvalidField otherwise.
type ValidationError struct {
	Field   string
	Reason  string
	Missing bool
}

func missingField(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required", Missing: true}
}

func invalidField(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	if e.Missing {
		return ErrMissingFields
	}
	return ErrInvalidField
}

// NotificationError reports a failed delivery to one recipient.
type NotificationError struct {
	To       string
	Template string
	Err      error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("send %s email to %s: %v", e.Template, e.To, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// StoreError wraps a persistence failure. It is always fatal to the operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
