// Package apperror provides coded application errors shared by the solver
// services. Every error carries a stable ErrorCode, a severity and optional
// structured details, and maps onto a gRPC status when it crosses a process
// boundary.
package apperror

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Graph validation
	CodeInvalidGraph   ErrorCode = "INVALID_GRAPH"
	CodeEmptyGraph     ErrorCode = "EMPTY_GRAPH"
	CodeInvalidNode    ErrorCode = "INVALID_NODE"
	CodeInvalidEdge    ErrorCode = "INVALID_EDGE"
	CodeDuplicateNode  ErrorCode = "DUPLICATE_NODE"
	CodeDuplicateEdge  ErrorCode = "DUPLICATE_EDGE"
	CodeDanglingEdge   ErrorCode = "DANGLING_EDGE"
	CodeInvalidSource  ErrorCode = "INVALID_SOURCE"
	CodeInvalidTarget  ErrorCode = "INVALID_TARGET"
	CodeGraphTooLarge  ErrorCode = "GRAPH_TOO_LARGE"
	CodeInvalidWeights ErrorCode = "INVALID_WEIGHTS"

	// Solving
	CodeNoPath            ErrorCode = "NO_PATH"
	CodeInvalidMethod     ErrorCode = "INVALID_METHOD"
	CodeMethodMismatch    ErrorCode = "METHOD_MISMATCH"
	CodeTimeout           ErrorCode = "TIMEOUT"
	CodeTraceCorrupted    ErrorCode = "TRACE_CORRUPTED"
	CodeUnavailable       ErrorCode = "UNAVAILABLE"
	CodeInvalidPagination ErrorCode = "INVALID_PAGINATION"
	CodeRateLimited       ErrorCode = "RATE_LIMITED"

	// General
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeNilInput        ErrorCode = "NIL_INPUT"
	CodeUnimplemented   ErrorCode = "UNIMPLEMENTED"
)

// Severity defines the criticality level of an error.
type Severity int

const (
	// SeverityWarning indicates a non-critical issue.
	SeverityWarning Severity = iota
	// SeverityError indicates a standard error that requires attention.
	SeverityError
	// SeverityCritical indicates a severe error, usually an invariant broken inside the service.
	SeverityCritical
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is an application error with a code, a human-readable message,
// the offending input field, structured details, a cause and a severity.
type Error struct {
	Code     ErrorCode
	Message  string
	Field    string
	Details  map[string]any
	Cause    error
	Severity Severity
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// GRPCStatus converts the error into a gRPC status. status.FromError picks it
// up automatically, so handlers may return *Error directly.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.GRPCCode(), e.Message)
}

// GRPCCode maps the ErrorCode onto a gRPC code.
func (e *Error) GRPCCode() codes.Code {
	switch e.Code {
	case CodeInvalidGraph, CodeEmptyGraph, CodeInvalidNode, CodeInvalidEdge,
		CodeDuplicateNode, CodeDuplicateEdge, CodeDanglingEdge, CodeInvalidSource,
		CodeInvalidTarget, CodeInvalidWeights, CodeInvalidArgument, CodeNilInput,
		CodeInvalidMethod, CodeInvalidPagination:
		return codes.InvalidArgument

	case CodeGraphTooLarge, CodeRateLimited:
		return codes.ResourceExhausted

	case CodeNoPath, CodeMethodMismatch:
		return codes.FailedPrecondition

	case CodeNotFound:
		return codes.NotFound

	case CodeTimeout:
		return codes.DeadlineExceeded

	case CodeUnavailable:
		return codes.Unavailable

	case CodeUnimplemented:
		return codes.Unimplemented

	case CodeTraceCorrupted:
		return codes.DataLoss

	default:
		return codes.Internal
	}
}

// New creates an error with SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// NewWithField creates an error bound to an input field.
func NewWithField(code ErrorCode, message, field string) *Error {
	e := New(code, message)
	e.Field = field
	return e
}

// NewWarning creates an error with SeverityWarning.
func NewWarning(code ErrorCode, message string) *Error {
	e := New(code, message)
	e.Severity = SeverityWarning
	return e
}

// NewCritical creates an error with SeverityCritical.
func NewCritical(code ErrorCode, message string) *Error {
	e := New(code, message)
	e.Severity = SeverityCritical
	return e
}

// Wrap creates an error that wraps cause.
func Wrap(cause error, code ErrorCode, message string) *Error {
	e := New(code, message)
	e.Cause = cause
	return e
}

// WithDetails adds a key-value pair to the details and returns the error.
func (e *Error) WithDetails(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithField sets the offending field.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithSeverity sets the severity.
func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// Is reports whether err is an *Error with the given code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from err, CodeInternal if err is not an *Error.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ToGRPC converts any error into a gRPC status error.
func ToGRPC(err error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.GRPCStatus().Err()
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	return status.Error(codes.Internal, err.Error())
}

// FromGRPC converts a gRPC status error back into an *Error.
func FromGRPC(err error) *Error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return Wrap(err, CodeInternal, err.Error())
	}

	var code ErrorCode
	switch st.Code() {
	case codes.InvalidArgument:
		code = CodeInvalidArgument
	case codes.NotFound:
		code = CodeNotFound
	case codes.DeadlineExceeded, codes.Canceled:
		code = CodeTimeout
	case codes.FailedPrecondition:
		code = CodeNoPath
	case codes.ResourceExhausted:
		code = CodeGraphTooLarge
	case codes.Unavailable:
		code = CodeUnavailable
	case codes.Unimplemented:
		code = CodeUnimplemented
	case codes.DataLoss:
		code = CodeTraceCorrupted
	default:
		code = CodeInternal
	}

	return New(code, st.Message())
}

// IsWarning reports whether err is an *Error with SeverityWarning.
func IsWarning(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityWarning
	}
	return false
}

// IsCritical reports whether err is an *Error with SeverityCritical.
func IsCritical(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityCritical
	}
	return false
}

// Predefined errors. Compare with Is, never return them after mutating.
var (
	ErrEmptyGraph    = New(CodeEmptyGraph, "graph has no nodes")
	ErrNilGraph      = New(CodeNilInput, "graph is nil")
	ErrInvalidSource = New(CodeInvalidSource, "source node not found")
	ErrInvalidTarget = New(CodeInvalidTarget, "target node not found")
	ErrNoPath        = New(CodeNoPath, "no path from source to target")
	ErrNotFound      = New(CodeNotFound, "not found")
)

// ValidationErrors aggregates the outcome of several validation checks.
type ValidationErrors struct {
	Errors   []*Error
	Warnings []*Error
}

// NewValidationErrors creates an empty collection.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors:   make([]*Error, 0),
		Warnings: make([]*Error, 0),
	}
}

// Add appends err to Errors or Warnings according to its severity.
func (v *ValidationErrors) Add(err *Error) {
	if err.Severity == SeverityWarning {
		v.Warnings = append(v.Warnings, err)
	} else {
		v.Errors = append(v.Errors, err)
	}
}

// AddError appends a new SeverityError error.
func (v *ValidationErrors) AddError(code ErrorCode, message string) {
	v.Errors = append(v.Errors, New(code, message))
}

// AddWarning appends a new warning.
func (v *ValidationErrors) AddWarning(code ErrorCode, message string) {
	v.Warnings = append(v.Warnings, NewWarning(code, message))
}

// AddErrorWithField appends a new error bound to field.
func (v *ValidationErrors) AddErrorWithField(code ErrorCode, message, field string) {
	v.Errors = append(v.Errors, NewWithField(code, message, field))
}

// HasErrors reports whether any non-warning error was collected.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// HasWarnings reports whether any warning was collected.
func (v *ValidationErrors) HasWarnings() bool {
	return len(v.Warnings) > 0
}

// First returns the first collected error, or nil.
func (v *ValidationErrors) First() *Error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v.Errors[0]
}

// Err returns nil when no errors were collected, the single error when there
// is exactly one, and an INVALID_GRAPH error listing all messages otherwise.
func (v *ValidationErrors) Err() error {
	switch len(v.Errors) {
	case 0:
		return nil
	case 1:
		return v.Errors[0]
	default:
		e := New(CodeInvalidGraph, fmt.Sprintf("%d validation errors, first: %s", len(v.Errors), v.Errors[0].Message))
		e.Field = v.Errors[0].Field
		return e.WithDetails("errors", v.ErrorMessages())
	}
}

// ErrorMessages returns the messages of all collected errors.
func (v *ValidationErrors) ErrorMessages() []string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Error()
	}
	return messages
}

// WarningMessages returns the messages of all collected warnings.
func (v *ValidationErrors) WarningMessages() []string {
	messages := make([]string, len(v.Warnings))
	for i, warn := range v.Warnings {
		messages[i] = warn.Message
	}
	return messages
}
