// Package errors provides a structured error type with wrapping and metadata
package errors

// Always import the project errors package as perr (platform/errors)

import (
	stderrs "errors"
	"fmt"
)

// ErrorCode defines supported error codes used across the pipeline
// Values are stable because they surface in logs; add sparingly
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodeInvalidArgument is for bad input parameters
	ErrorCodeInvalidArgument

	// ErrorCodeValidation is for configuration validation failures
	ErrorCodeValidation

	// ErrorCodeFileNotFound is for a missing input file
	ErrorCodeFileNotFound

	// ErrorCodePermissionDenied is for an unreadable input or unwritable output
	ErrorCodePermissionDenied

	// ErrorCodeDecode is for exhausting every encoding, unwrap and parse combination
	ErrorCodeDecode

	// ErrorCodeSchemaNotFound is for documents without a locatable record array
	ErrorCodeSchemaNotFound

	// ErrorCodeTimestampFieldNotFound is for a first record with no date-time field anywhere
	ErrorCodeTimestampFieldNotFound

	// ErrorCodeUnparseableTimestamp is for one record whose timestamp matches no format
	ErrorCodeUnparseableTimestamp

	// ErrorCodeWriteEncoding is for content that cannot be encoded in the output encoding
	ErrorCodeWriteEncoding

	// ErrorCodeWriteIO is for any other failure persisting an output unit
	ErrorCodeWriteIO

	// ErrorCodeCanceled is for runs aborted through their context
	ErrorCodeCanceled
)

// String returns a stable name for logs
func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeInvalidArgument:
		return "invalid_argument"
	case ErrorCodeValidation:
		return "validation"
	case ErrorCodeFileNotFound:
		return "file_not_found"
	case ErrorCodePermissionDenied:
		return "permission_denied"
	case ErrorCodeDecode:
		return "decode_failure"
	case ErrorCodeSchemaNotFound:
		return "schema_not_found"
	case ErrorCodeTimestampFieldNotFound:
		return "timestamp_field_not_found"
	case ErrorCodeUnparseableTimestamp:
		return "unparseable_timestamp"
	case ErrorCodeWriteEncoding:
		return "write_encoding"
	case ErrorCodeWriteIO:
		return "write_io"
	case ErrorCodeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Fatal reports whether a code aborts the whole run.
// Per-record and per-flush codes are logged by the caller and processing continues
func (c ErrorCode) Fatal() bool {
	switch c {
	case ErrorCodeUnparseableTimestamp, ErrorCodeWriteEncoding, ErrorCodeWriteIO:
		return false
	default:
		return true
	}
}

// ExitCode turns an ErrorCode into a process exit status
func ExitCode(c ErrorCode) int {
	switch c {
	case ErrorCodeInvalidArgument, ErrorCodeValidation:
		return 2
	case ErrorCodeFileNotFound, ErrorCodePermissionDenied, ErrorCodeDecode:
		return 3
	case ErrorCodeSchemaNotFound, ErrorCodeTimestampFieldNotFound:
		return 4
	case ErrorCodeCanceled:
		return 130
	default:
		return 1
	}
}

// Error is the structured error type with wrapping and metadata
// msg is human/developer facing; code is machine facing
// field is optional (config key, record path); op is optional operation tag
// orig is the wrapped cause
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if set
func (e *Error) Op() string { return e.op }

// CodeOf extracts an ErrorCode from any error, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// ExitStatus returns the mapped process exit status for any error; nil is 0
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	return ExitCode(CodeOf(err))
}

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Mutators (copy-on-write)

// WithField attaches a field to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp attaches an operation label to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// Constructors

// New returns a new *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a new *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// Sugar

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// Decodef returns a decode failure
func Decodef(format string, a ...any) error { return Newf(ErrorCodeDecode, format, a...) }

// SchemaNotFoundf returns a schema-not-found error
func SchemaNotFoundf(format string, a ...any) error { return Newf(ErrorCodeSchemaNotFound, format, a...) }

// TimestampFieldNotFoundf returns a timestamp-field-not-found error
func TimestampFieldNotFoundf(format string, a ...any) error {
	return Newf(ErrorCodeTimestampFieldNotFound, format, a...)
}

// UnparseableTimestampf returns an unparseable timestamp error
func UnparseableTimestampf(format string, a ...any) error {
	return Newf(ErrorCodeUnparseableTimestamp, format, a...)
}

// Internalf returns a generic internal error
func Internalf(format string, a ...any) error { return Newf(ErrorCodeUnknown, format, a...) }
