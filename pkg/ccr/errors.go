package ccr

import (
	"errors"
	"fmt"
)

// Error classes. Every concrete error in this package matches exactly one of these
// through errors.Is.
var (
	ErrConstruction = errors.New("ccr: construction error")
	ErrState        = errors.New("ccr: state error")
	ErrCodec        = errors.New("ccr: codec error")
	ErrSignature    = errors.New("ccr: signature error")
	ErrSigning      = errors.New("ccr: signing error")
)

// ErrIncompleteRecord is returned when a record without a confidential inputs hash
// or without a signature is wire encoded.
var ErrIncompleteRecord = &stateError{msg: "record is missing the confidential inputs hash or the signature"}

type stateError struct {
	msg string
}

func (e *stateError) Error() string { return "ccr: " + e.msg }

func (e *stateError) Is(target error) bool { return target == ErrState }

// MissingFieldError reports a mandatory transaction request field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("ccr: missing %s field", e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrConstruction }

// OverflowError reports a magnitude that does not fit the fixed-width field it is
// converted into.
type OverflowError struct {
	Field string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("ccr: %s overflow", e.Field)
}

func (e *OverflowError) Is(target error) bool { return target == ErrConstruction }

type UnsupportedTypeError struct {
	Got  byte
	Want byte
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("ccr: unsupported transaction type 0x%02x, expected 0x%02x", e.Got, e.Want)
}

func (e *UnsupportedTypeError) Is(target error) bool { return target == ErrCodec }

// MalformedEncodingError wraps the rlp decoder failure. The rlp error text names the
// offending field, e.g. "(ccr.requestWire).Record.To".
type MalformedEncodingError struct {
	Err error
}

func (e *MalformedEncodingError) Error() string {
	return fmt.Sprintf("ccr: malformed encoding: %v", e.Err)
}

func (e *MalformedEncodingError) Unwrap() error { return e.Err }

func (e *MalformedEncodingError) Is(target error) bool { return target == ErrCodec }

type InvalidSignatureError struct {
	Reason string
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("ccr: invalid signature: %s", e.Reason)
}

func (e *InvalidSignatureError) Is(target error) bool { return target == ErrSignature }

// SigningError carries a failure raised by an injected signing capability. The
// original error is reachable through errors.Is and errors.As.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("ccr: signing failed: %v", e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

func (e *SigningError) Is(target error) bool { return target == ErrSigning }
