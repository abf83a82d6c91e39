package helpers

import (
	"errors"
	"fmt"
	"time"

	"trend-observer/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type TrendsError struct {
	Message string
	Cause   error
}

func (e *TrendsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TrendsError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As checks
type ConfigurationError struct{ TrendsError }
type LoadError struct{ TrendsError }
type SchemaError struct{ TrendsError }
type ValidationError struct{ TrendsError }
type DatabaseError struct{ TrendsError }

func NewLoadError(message string, cause error) error {
	return &LoadError{TrendsError{Message: message, Cause: cause}}
}

func NewSchemaError(format string, args ...interface{}) error {
	return &SchemaError{TrendsError{Message: fmt.Sprintf(format, args...)}}
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{TrendsError{Message: fmt.Sprintf(format, args...)}}
}

func NewDatabaseError(message string, cause error) error {
	return &DatabaseError{TrendsError{Message: message, Cause: cause}}
}

func NewConfigurationError(message string, cause error) error {
	return &ConfigurationError{TrendsError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------

// IsFatal reports whether err must abort the run: anything raised while
// loading, parsing or validating input.
func IsFatal(err error) bool {
	var le *LoadError
	var se *SchemaError
	var ve *ValidationError
	var ce *ConfigurationError
	return errors.As(err, &le) || errors.As(err, &se) || errors.As(err, &ve) || errors.As(err, &ce)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times with exponential backoff.
func RetryWithBackoff(log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		if log != nil {
			log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, err, delay)
		}
		time.Sleep(delay)
	}

	return lastErr
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger     *logger.Logger
	ErrorCount int
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	if log == nil {
		log = logger.NewLogger(nil, "ErrorHandler")
	}
	return &ErrorHandler{Logger: log}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.ErrorCount = 0
}

// -----------------------------------------------------------------------------

// Handle logs err under context and counts it. Fatal errors are returned so the
// caller can stop the run; everything else is swallowed.
func (e *ErrorHandler) Handle(err error, context string) error {
	if err == nil {
		return nil
	}
	e.ErrorCount++
	if IsFatal(err) {
		e.Logger.Error("Fatal error in %s: %v", context, err)
		return err
	}
	e.Logger.Warning("Error in %s: %v", context, err)
	return nil
}
