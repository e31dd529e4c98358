package exception_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/exception"
)

func TestNewCompareError(t *testing.T) {
	originalErr := errors.New("login failed for user 'sa'")
	ce := exception.NewCompareError(exception.KindConnection, "sqlserver", "connect failed", originalErr)

	assert.Equal(t, exception.KindConnection, ce.Kind)
	assert.Equal(t, "sqlserver", ce.Module)
	assert.Equal(t, originalErr, ce.Unwrap())
	assert.Equal(t, "[sqlserver] connect failed: login failed for user 'sa'", ce.Error())
	assert.NotEmpty(t, ce.StackTrace)
}

func TestNewCompareErrorf(t *testing.T) {
	ce := exception.NewCompareErrorf(exception.KindSchema, "schema", "table %s missing", "query_results")
	assert.Nil(t, ce.Unwrap())
	assert.Equal(t, "[schema] table query_results missing", ce.Error())

	cause := errors.New("disk full")
	ce = exception.NewCompareErrorf(exception.KindSchema, "schema", "migrate %d failed", 3, cause)
	assert.Equal(t, cause, ce.Unwrap())
	assert.Equal(t, "migrate 3 failed", ce.Message)
}

func TestSentinelMatching(t *testing.T) {
	err := exception.NewTranslationError("Failed to translate query", errors.New("boom"))
	wrapped := fmt.Errorf("run aborted: %w", err)

	assert.True(t, errors.Is(wrapped, exception.ErrTranslation))
	assert.False(t, errors.Is(wrapped, exception.ErrValidation))
	assert.True(t, exception.IsKind(wrapped, exception.KindTranslation))
	assert.False(t, exception.IsKind(wrapped, exception.KindConnection))
}

func TestIsKind_NestedCompareErrors(t *testing.T) {
	inner := exception.NewDatabaseConnectionError("snowflake", "connect failed", errors.New("403"))
	outer := exception.NewCompareError(exception.KindExecution, "executor", "query failed", inner)

	assert.True(t, exception.IsKind(outer, exception.KindExecution))
	assert.True(t, exception.IsKind(outer, exception.KindConnection))
	assert.False(t, exception.IsKind(nil, exception.KindConnection))
}

func TestExtractErrorMessage(t *testing.T) {
	assert.Equal(t, "", exception.ExtractErrorMessage(nil))
	assert.Equal(t, "plain", exception.ExtractErrorMessage(errors.New("plain")))
	assert.Equal(t, "Both result batches are required",
		exception.ExtractErrorMessage(exception.NewValidationError("comparator", "Both result batches are required")))
}
