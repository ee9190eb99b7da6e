package errors

import (
	"context"
	stderrs "errors"
	"io/fs"
	"os"
	"testing"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeInvalidArgument, 2},
		{ErrorCodeValidation, 2},
		{ErrorCodeFileNotFound, 3},
		{ErrorCodePermissionDenied, 3},
		{ErrorCodeDecode, 3},
		{ErrorCodeSchemaNotFound, 4},
		{ErrorCodeTimestampFieldNotFound, 4},
		{ErrorCodeCanceled, 130},
		{ErrorCodeWriteIO, 1},
		{ErrorCodeUnknown, 1},
		{9999, 1}, // default branch
	}
	for _, c := range cases {
		if got := ExitCode(c.code); got != c.want {
			t.Fatalf("ExitCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
	if ExitStatus(nil) != 0 {
		t.Fatalf("ExitStatus(nil) must be 0")
	}
	if ExitStatus(stderrs.New("x")) != 1 {
		t.Fatalf("ExitStatus(foreign) must be 1")
	}
}

func TestFatalClassification(t *testing.T) {
	for _, c := range []ErrorCode{ErrorCodeUnparseableTimestamp, ErrorCodeWriteEncoding, ErrorCodeWriteIO} {
		if c.Fatal() {
			t.Fatalf("%s must be recoverable", c)
		}
	}
	for _, c := range []ErrorCode{ErrorCodeDecode, ErrorCodeSchemaNotFound, ErrorCodeTimestampFieldNotFound, ErrorCodeFileNotFound} {
		if !c.Fatal() {
			t.Fatalf("%s must be fatal", c)
		}
	}
	if ErrorCodeDecode.String() != "decode_failure" || ErrorCode(9999).String() != "unknown" {
		t.Fatalf("String mapping mismatch")
	}
}

func TestErrorTypeAndMethods(t *testing.T) {
	// nil *Error should render "<nil>"
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q, want <nil>", e.Error())
	}

	e1 := New(ErrorCodeValidation, "bad stuff")
	if CodeOf(e1) != ErrorCodeValidation {
		t.Fatalf("CodeOf(New) = %v", CodeOf(e1))
	}
	e2 := Newf(ErrorCodeDecode, "bad bytes %d", 12)
	if got := e2.Error(); got != "bad bytes 12" {
		t.Fatalf("Newf().Error = %q", got)
	}

	src := stderrs.New("root")
	e3 := Wrap(src, ErrorCodeWriteIO, "write failed")
	if u := stderrs.Unwrap(e3); u == nil || u.Error() != "root" {
		t.Fatalf("Wrap did not keep orig")
	}
	e4 := Wrapf(src, ErrorCodeSchemaNotFound, "nope %s", "here")
	if want := "nope here: root"; e4.Error() != want {
		t.Fatalf("Wrapf().Error = %q, want %q", e4.Error(), want)
	}
	if got, ok := As(e4); !ok || got.Code() != ErrorCodeSchemaNotFound {
		t.Fatalf("As() failed for our error")
	}
	if _, ok := As(src); ok {
		t.Fatalf("As() true for foreign error")
	}

	// copy-on-write mutators
	e5 := Wrap(src, ErrorCodeInvalidArgument, "oops")
	e6 := WithField(e5, "group_by")
	e7 := WithOp(e6, "validate")
	if fe, ok := As(e6); !ok || fe.Field() != "group_by" {
		t.Fatalf("WithField failed")
	}
	if oe, ok := As(e7); !ok || oe.Op() != "validate" {
		t.Fatalf("WithOp failed")
	}
	if fe0, _ := As(e5); fe0.Field() != "" || fe0.Op() != "" {
		t.Fatalf("copy-on-write mutated original")
	}
	if WithOp(src, "x") != src || WithField(src, "x") != src {
		t.Fatalf("mutators must pass foreign errors through")
	}

	if !IsCode(InvalidArgf("x"), ErrorCodeInvalidArgument) ||
		!IsCode(Decodef("x"), ErrorCodeDecode) ||
		!IsCode(SchemaNotFoundf("x"), ErrorCodeSchemaNotFound) ||
		!IsCode(TimestampFieldNotFoundf("x"), ErrorCodeTimestampFieldNotFound) ||
		!IsCode(UnparseableTimestampf("x"), ErrorCodeUnparseableTimestamp) ||
		!IsCode(Internalf("x"), ErrorCodeUnknown) {
		t.Fatalf("sugar helpers code mismatch")
	}
}

func TestFromFS(t *testing.T) {
	if FromFS(nil, ErrorCodeWriteIO, "open", "x") != nil {
		t.Fatalf("FromFS(nil) should be nil")
	}

	_, statErr := os.Stat("/definitely/not/here/archive.js")
	nf := FromFS(statErr, ErrorCodeDecode, "read", "/definitely/not/here/archive.js")
	if !IsCode(nf, ErrorCodeFileNotFound) {
		t.Fatalf("missing path should map to FileNotFound, got %v", CodeOf(nf))
	}
	if e, _ := As(nf); e.Field() != "/definitely/not/here/archive.js" || e.Op() != "read" {
		t.Fatalf("FromFS lost op/field: %+v", e)
	}

	perm := FromFS(&fs.PathError{Op: "open", Path: "p", Err: fs.ErrPermission}, ErrorCodeWriteIO, "open", "p")
	if !IsCode(perm, ErrorCodePermissionDenied) {
		t.Fatalf("permission should map to PermissionDenied, got %v", CodeOf(perm))
	}

	other := FromFS(stderrs.New("disk full"), ErrorCodeWriteIO, "write", "p")
	if !IsCode(other, ErrorCodeWriteIO) {
		t.Fatalf("fallback code not applied")
	}

	ours := Decodef("x")
	if FromFS(ours, ErrorCodeWriteIO, "op", "p") != ours {
		t.Fatalf("FromFS must not rewrap project errors")
	}

	if !IsCode(FromFS(context.Canceled, ErrorCodeWriteIO, "write", "p"), ErrorCodeCanceled) {
		t.Fatalf("context cancel should map to Canceled")
	}
	if Canceled(nil) != nil || !IsCode(Canceled(context.Canceled), ErrorCodeCanceled) {
		t.Fatalf("Canceled helper mismatch")
	}
}
