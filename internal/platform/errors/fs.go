package errors

// Filesystem helpers for mapping os/io errors to project ErrorCode

import (
	"context"
	stderrs "errors"
	"io/fs"
)

// FromFS maps a filesystem error into an *Error. Missing paths become FileNotFound,
// permission failures PermissionDenied, everything else takes fallback
// Returns nil for nil and leaves our own errors untouched
func FromFS(err error, fallback ErrorCode, op, path string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	code := fallback
	switch {
	case stderrs.Is(err, fs.ErrNotExist):
		code = ErrorCodeFileNotFound
	case stderrs.Is(err, fs.ErrPermission):
		code = ErrorCodePermissionDenied
	case stderrs.Is(err, context.Canceled), stderrs.Is(err, context.DeadlineExceeded):
		code = ErrorCodeCanceled
	}
	return &Error{code: code, msg: op + " " + path, op: op, field: path, orig: err}
}

// Canceled wraps a context error; nil stays nil
func Canceled(err error) error {
	if err == nil {
		return nil
	}
	return Wrap(err, ErrorCodeCanceled, "run canceled")
}
