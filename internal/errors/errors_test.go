package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryFromCode(t *testing.T) {
	tests := []struct {
		code     string
		category Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeFileTooLarge, CategoryIO},
		{ErrCodeOutOfScope, CategoryScope},
		{ErrCodeInvalidInput, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
		})
	}
}

func TestScopeError_CarriesPathDetail(t *testing.T) {
	err := ScopeError("/etc/passwd")

	assert.Equal(t, ErrCodeOutOfScope, err.Code)
	assert.Equal(t, "/etc/passwd", err.Details["path"])
	assert.Contains(t, err.Error(), "ERR_301_OUT_OF_SCOPE")
}

func TestWrap_PreservesErrorChain(t *testing.T) {
	cause := stderrors.New("disk exploded")
	err := Wrap(ErrCodeIndexFailed, cause)

	require.NotNil(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestWrap_NilErrorReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestIs_MatchesByCode(t *testing.T) {
	a := New(ErrCodeCorruptIndex, "store unreadable", nil)
	b := New(ErrCodeCorruptIndex, "different message", nil)

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, New(ErrCodeInternal, "x", nil)))
}

func TestIsCode_SeesThroughWrapping(t *testing.T) {
	err := BackendUnavailable("rg", fmt.Errorf("not found in PATH"))

	assert.True(t, IsCode(err, ErrCodeToolUnavailable))
	assert.False(t, IsCode(err, ErrCodeInternal))
	assert.False(t, IsCode(nil, ErrCodeInternal))
}

func TestSeverity_DegradedPathsAreWarnings(t *testing.T) {
	assert.Equal(t, SeverityWarning, PersistenceError("corrupt", nil).Severity)
	assert.Equal(t, SeverityWarning, BackendUnavailable("rg", nil).Severity)
	assert.Equal(t, SeverityWarning, CapacityError("a.bin", 100, 10).Severity)
	assert.Equal(t, SeverityError, ValidationError("query required").Severity)
}
