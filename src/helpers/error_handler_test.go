package helpers

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrendsErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewLoadError("reading tesla.csv", cause)

	assert.Equal(t, "reading tesla.csv: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	var le *LoadError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &le))
	assert.Equal(t, "reading tesla.csv", le.Message)
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(NewSchemaError("missing column %q", "CLOSE")))
	assert.True(t, IsFatal(NewValidationError("bad window")))
	assert.True(t, IsFatal(fmt.Errorf("ctx: %w", NewLoadError("x", nil))))
	assert.False(t, IsFatal(NewDatabaseError("insert", errors.New("locked"))))
	assert.False(t, IsFatal(errors.New("plain")))
}

func TestRetryWithBackoff(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(nil, "flaky", 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = RetryWithBackoff(nil, "broken", 2, time.Millisecond, func() error {
		calls++
		return errors.New("always")
	})
	assert.EqualError(t, err, "always")
	assert.Equal(t, 2, calls)
}

func TestErrorHandlerHandle(t *testing.T) {
	h := NewErrorHandler(nil)

	assert.NoError(t, h.Handle(nil, "noop"))
	assert.NoError(t, h.Handle(NewDatabaseError("save", nil), "export"))
	assert.Error(t, h.Handle(NewSchemaError("bad"), "load"))
	assert.Equal(t, 2, h.ErrorCount)

	h.ResetErrorCount()
	assert.Zero(t, h.ErrorCount)
}
