package apperror

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without field",
			err:      New(CodeEmptyGraph, "graph has no nodes"),
			expected: "[EMPTY_GRAPH] graph has no nodes",
		},
		{
			name:     "with field",
			err:      NewWithField(CodeInvalidTarget, "target not found", "target_id"),
			expected: "[INVALID_TARGET] target not found (field: target_id)",
		},
		{
			name:     "formatted",
			err:      Newf(CodeDuplicateNode, "node %q declared twice", "3"),
			expected: `[DUPLICATE_NODE] node "3" declared twice`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeUnavailable, "trace store unavailable")

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	wrapped := fmt.Errorf("persist: %w", err)
	if !Is(wrapped, CodeUnavailable) {
		t.Error("Is should look through fmt.Errorf wrapping")
	}
}

func TestError_GRPCStatus(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected codes.Code
	}{
		{CodeEmptyGraph, codes.InvalidArgument},
		{CodeDanglingEdge, codes.InvalidArgument},
		{CodeInvalidMethod, codes.InvalidArgument},
		{CodeGraphTooLarge, codes.ResourceExhausted},
		{CodeNoPath, codes.FailedPrecondition},
		{CodeMethodMismatch, codes.FailedPrecondition},
		{CodeNotFound, codes.NotFound},
		{CodeTimeout, codes.DeadlineExceeded},
		{CodeUnavailable, codes.Unavailable},
		{CodeUnimplemented, codes.Unimplemented},
		{CodeTraceCorrupted, codes.DataLoss},
		{CodeInternal, codes.Internal},
		{ErrorCode("SOMETHING_ELSE"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			st := New(tt.code, "msg").GRPCStatus()
			if st.Code() != tt.expected {
				t.Errorf("GRPCStatus().Code() = %v, want %v", st.Code(), tt.expected)
			}
			if st.Message() != "msg" {
				t.Errorf("GRPCStatus().Message() = %q, want msg", st.Message())
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	if got := New(CodeEmptyGraph, "x").Severity; got != SeverityError {
		t.Errorf("New severity = %v", got)
	}
	if got := NewWarning(CodeInvalidWeights, "x").Severity; got != SeverityWarning {
		t.Errorf("NewWarning severity = %v", got)
	}
	if got := NewCritical(CodeInternal, "x").Severity; got != SeverityCritical {
		t.Errorf("NewCritical severity = %v", got)
	}

	err := New(CodeInvalidGraph, "bad").
		WithDetails("nodes", 4).
		WithField("graph").
		WithSeverity(SeverityCritical)
	if err.Details["nodes"] != 4 || err.Field != "graph" || err.Severity != SeverityCritical {
		t.Errorf("builder chain produced %+v", err)
	}

	var zero Error
	zero.WithDetails("k", "v")
	if zero.Details["k"] != "v" {
		t.Error("WithDetails should allocate details on a zero Error")
	}
}

func TestIsAndCode(t *testing.T) {
	err := New(CodeNoPath, "no path")

	if !Is(err, CodeNoPath) {
		t.Error("Is() should match")
	}
	if Is(err, CodeNotFound) {
		t.Error("Is() should not match a different code")
	}
	if Is(errors.New("plain"), CodeNoPath) {
		t.Error("Is() should not match a plain error")
	}
	if Code(err) != CodeNoPath {
		t.Errorf("Code() = %v", Code(err))
	}
	if Code(errors.New("plain")) != CodeInternal {
		t.Errorf("Code() of plain error = %v", Code(errors.New("plain")))
	}
}

func TestToGRPC(t *testing.T) {
	if ToGRPC(nil) != nil {
		t.Fatal("ToGRPC(nil) should return nil")
	}

	st, _ := status.FromError(ToGRPC(New(CodeInvalidSource, "bad source")))
	if st.Code() != codes.InvalidArgument {
		t.Errorf("app error code = %v", st.Code())
	}

	st, _ = status.FromError(ToGRPC(errors.New("boom")))
	if st.Code() != codes.Internal {
		t.Errorf("plain error code = %v", st.Code())
	}

	st, _ = status.FromError(ToGRPC(status.Error(codes.NotFound, "gone")))
	if st.Code() != codes.NotFound {
		t.Errorf("status error code = %v", st.Code())
	}
}

func TestFromGRPC(t *testing.T) {
	if FromGRPC(nil) != nil {
		t.Fatal("FromGRPC(nil) should return nil")
	}

	tests := []struct {
		in       codes.Code
		expected ErrorCode
	}{
		{codes.InvalidArgument, CodeInvalidArgument},
		{codes.NotFound, CodeNotFound},
		{codes.DeadlineExceeded, CodeTimeout},
		{codes.FailedPrecondition, CodeNoPath},
		{codes.ResourceExhausted, CodeGraphTooLarge},
		{codes.Unavailable, CodeUnavailable},
		{codes.DataLoss, CodeTraceCorrupted},
		{codes.Unknown, CodeInternal},
	}
	for _, tt := range tests {
		got := FromGRPC(status.Error(tt.in, "m"))
		if got.Code != tt.expected {
			t.Errorf("FromGRPC(%v).Code = %v, want %v", tt.in, got.Code, tt.expected)
		}
		if got.Message != "m" {
			t.Errorf("FromGRPC(%v).Message = %q", tt.in, got.Message)
		}
	}

	plain := errors.New("plain")
	got := FromGRPC(plain)
	if got.Code != CodeInternal || !errors.Is(got, plain) {
		t.Errorf("FromGRPC(plain) = %+v", got)
	}
}

func TestSeverityHelpers(t *testing.T) {
	if !IsWarning(NewWarning(CodeInvalidWeights, "w")) || IsWarning(New(CodeInvalidGraph, "e")) {
		t.Error("IsWarning mismatch")
	}
	if !IsCritical(NewCritical(CodeInternal, "c")) || IsCritical(New(CodeInvalidGraph, "e")) {
		t.Error("IsCritical mismatch")
	}

	for s, want := range map[Severity]string{
		SeverityWarning:  "warning",
		SeverityError:    "error",
		SeverityCritical: "critical",
		Severity(42):     "unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("Severity(%d).String() = %v, want %v", s, got, want)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		ve := NewValidationErrors()
		if ve.HasErrors() || ve.HasWarnings() {
			t.Error("new collection should be empty")
		}
		if ve.Err() != nil {
			t.Error("Err() should be nil")
		}
		if ve.First() != nil {
			t.Error("First() should be nil")
		}
	})

	t.Run("single error is returned as is", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.AddErrorWithField(CodeInvalidSource, "source not found", "source_id")

		err := ve.Err()
		if !Is(err, CodeInvalidSource) {
			t.Fatalf("Err() = %v", err)
		}
		if ve.First().Field != "source_id" {
			t.Errorf("Field = %v", ve.First().Field)
		}
	})

	t.Run("several errors collapse into INVALID_GRAPH", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.AddError(CodeDuplicateNode, "node 1 declared twice")
		ve.AddError(CodeDanglingEdge, "edge e1 points to 9")
		ve.AddWarning(CodeInvalidWeights, "negative weight on e2")

		err := ve.Err()
		if !Is(err, CodeInvalidGraph) {
			t.Fatalf("Err() = %v", err)
		}
		var appErr *Error
		if !errors.As(err, &appErr) {
			t.Fatal("expected *Error")
		}
		if msgs, _ := appErr.Details["errors"].([]string); len(msgs) != 2 {
			t.Errorf("details errors = %v", appErr.Details["errors"])
		}
		if got := ve.WarningMessages(); len(got) != 1 || got[0] != "negative weight on e2" {
			t.Errorf("WarningMessages() = %v", got)
		}
	})

	t.Run("add routes by severity", func(t *testing.T) {
		ve := NewValidationErrors()
		ve.Add(NewWarning(CodeInvalidWeights, "w"))
		ve.Add(New(CodeInvalidGraph, "e"))
		if len(ve.Warnings) != 1 || len(ve.Errors) != 1 {
			t.Errorf("errors=%d warnings=%d", len(ve.Errors), len(ve.Warnings))
		}
	})
}

func TestPredefinedErrors(t *testing.T) {
	for _, err := range []*Error{ErrEmptyGraph, ErrNilGraph, ErrInvalidSource, ErrInvalidTarget, ErrNoPath, ErrNotFound} {
		if err.Code == "" || err.Message == "" {
			t.Errorf("predefined error incomplete: %+v", err)
		}
	}
}
