// Package exception provides the error types shared across sqlcompare.
// Every error a component reports to its caller is a CompareError tagged with a Kind,
// so callers can tell usage errors (translation, validation, configuration) apart
// from runtime conditions (connection, execution, schema).
package exception

import (
	"errors"
	"fmt"
	"runtime"
)

// Kind classifies a CompareError.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindConnection    Kind = "connection"
	KindExecution     Kind = "execution"
	KindTranslation   Kind = "translation"
	KindValidation    Kind = "validation"
	KindSchema        Kind = "schema"
)

// Sentinel errors, one per Kind. errors.Is(err, ErrTranslation) reports whether
// err is (or wraps) a CompareError of KindTranslation.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrConnection    = errors.New("database connection error")
	ErrExecution     = errors.New("query execution error")
	ErrTranslation   = errors.New("translation error")
	ErrValidation    = errors.New("validation error")
	ErrSchema        = errors.New("schema error")
)

var sentinels = map[Kind]error{
	KindConfiguration: ErrConfiguration,
	KindConnection:    ErrConnection,
	KindExecution:     ErrExecution,
	KindTranslation:   ErrTranslation,
	KindValidation:    ErrValidation,
	KindSchema:        ErrSchema,
}

// CompareError is the structured error type of sqlcompare.
type CompareError struct {
	// Kind is the error category.
	Kind Kind
	// Module indicates the component where the error occurred (e.g., "translator", "executor").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// StackTrace is the stack trace at the time of the error (for debugging).
	StackTrace string
}

// NewCompareError creates a new CompareError.
func NewCompareError(kind Kind, module, message string, originalErr error) *CompareError {
	return &CompareError{
		Kind:        kind,
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		StackTrace:  captureStack(),
	}
}

// NewCompareErrorf creates a new CompareError using a format string.
// If the last argument is an error it becomes OriginalErr and is not used for formatting.
//
// Example:
//
//	NewCompareErrorf(KindSchema, "schema", "table %s lookup failed", "runs", err)
func NewCompareErrorf(kind Kind, module, format string, a ...interface{}) *CompareError {
	var originalErr error
	args := a
	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			originalErr = err
			args = args[:len(args)-1]
		}
	}
	return &CompareError{
		Kind:        kind,
		Module:      module,
		Message:     fmt.Sprintf(format, args...),
		OriginalErr: originalErr,
		StackTrace:  captureStack(),
	}
}

func captureStack() string {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// Error implements the error interface.
func (e *CompareError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *CompareError) Unwrap() error {
	return e.OriginalErr
}

// Is matches the sentinel error of the receiver's Kind.
func (e *CompareError) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// NewTranslationError reports a failed query translation.
func NewTranslationError(message string, cause error) *CompareError {
	return NewCompareError(KindTranslation, "translator", message, cause)
}

// NewValidationError reports a violated precondition.
func NewValidationError(module, message string) *CompareError {
	return NewCompareError(KindValidation, module, message, nil)
}

// NewDatabaseConnectionError reports a failure to open a database connection.
func NewDatabaseConnectionError(module, message string, cause error) *CompareError {
	return NewCompareError(KindConnection, module, message, cause)
}

// NewSchemaError reports a failed schema operation on the results database.
func NewSchemaError(message string, cause error) *CompareError {
	return NewCompareError(KindSchema, "schema", message, cause)
}

// NewConfigurationError reports an invalid or unloadable configuration.
func NewConfigurationError(message string, cause error) *CompareError {
	return NewCompareError(KindConfiguration, "config", message, cause)
}

// IsKind reports whether err is, or wraps, a CompareError of the given kind.
func IsKind(err error, kind Kind) bool {
	var ce *CompareError
	for err != nil {
		if errors.As(err, &ce) {
			if ce.Kind == kind {
				return true
			}
			err = ce.OriginalErr
			continue
		}
		return false
	}
	return false
}

// ExtractErrorMessage extracts the error message string from an error.
// For CompareError, it returns the cleaner Message field.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var ce *CompareError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}
