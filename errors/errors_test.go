package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found")
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeStorage, "redis down")
	if !err.Retryable {
		t.Error("STORAGE_ERROR should be retryable")
	}
}

func TestAppError_NotFound_Success(t *testing.T) {
	err := NotFound("block", "k1")
	if err.Details["resource"] != "block" {
		t.Errorf("expected resource=block, got %v", err.Details["resource"])
	}
	if err.Details["id"] != "k1" {
		t.Errorf("expected id=k1, got %v", err.Details["id"])
	}
}

func TestAppError_NotFound_EmptyID(t *testing.T) {
	err := NotFound("block", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		retryable bool
	}{
		{"Exhausted", Exhausted(), ErrCodeExhausted, false},
		{"InvalidArgument", InvalidArgument("limit", "must be >= 0"), ErrCodeInvalidArgument, false},
		{"InvariantViolation", InvariantViolation("flatMap", "nil iterator"), ErrCodeInvariantViolation, false},
		{"Corrupt", Corrupt("map header", nil), ErrCodeCorrupt, false},
		{"InvalidInput", InvalidInput("seed", "negative"), ErrCodeInvalidInput, false},
		{"Validation", Validation("bad config"), ErrCodeInvalidInput, false},
		{"Internal", Internal(nil), ErrCodeInternal, false},
		{"Storage", Storage("scan", nil), ErrCodeStorage, true},
		{"Canceled", Canceled(nil), ErrCodeCanceled, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestAppError_InvalidArgument_Message(t *testing.T) {
	err := InvalidArgument("limit", "must be >= 0")
	if err.Message != "limit must be >= 0" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Details["argument"] != "limit" {
		t.Errorf("expected argument=limit, got %v", err.Details["argument"])
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NotFound("item", "1").WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := NotFound("item", "1").WithDetails(map[string]any{"extra": "info"})
	if err.Details["extra"] != "info" {
		t.Errorf("expected extra=info in details")
	}
	if err.Details["resource"] != "item" {
		t.Error("expected original details to be preserved")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_Is_MatchesByCode(t *testing.T) {
	sentinel := Exhausted()
	fresh := Exhausted()
	if fresh == sentinel {
		t.Fatal("constructors must return distinct values")
	}
	if !stderrors.Is(fresh, sentinel) {
		t.Error("expected errors.Is to match on code")
	}
	if stderrors.Is(fresh, InvalidArgument("x", "y")) {
		t.Error("different codes must not match")
	}

	wrapped := fmt.Errorf("pull: %w", fresh)
	if !stderrors.Is(wrapped, sentinel) {
		t.Error("expected wrapped error to match")
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", InvariantViolation("concat", "nil child"))
	if !IsCode(err, ErrCodeInvariantViolation) {
		t.Error("expected INVARIANT_VIOLATION to be found in chain")
	}
	if IsCode(err, ErrCodeExhausted) {
		t.Error("did not expect EXHAUSTED")
	}
	if IsCode(fmt.Errorf("plain"), ErrCodeInternal) {
		t.Error("plain errors carry no code")
	}
}

func TestAppError_AsAppError_Success(t *testing.T) {
	wrapped := fmt.Errorf("wrap: %w", Internal(nil))

	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed for wrapped AppError")
	}
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}

	if _, ok := AsAppError(fmt.Errorf("not an app error")); ok {
		t.Error("expected AsAppError to return false for non-AppError")
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("expected IsAppError to return false for plain error")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}

	orig := NotFound("item", "1")
	if Wrap(orig) != orig {
		t.Error("Wrap should return the original AppError unchanged")
	}

	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if got.Cause != plain {
		t.Error("expected cause to be the original error")
	}
}

func TestErrorCode_IsRetryableCode(t *testing.T) {
	if !IsRetryableCode(ErrCodeStorage) {
		t.Error("expected STORAGE_ERROR to be retryable")
	}
	for _, code := range []ErrorCode{ErrCodeExhausted, ErrCodeInvalidArgument, ErrCodeInvariantViolation, ErrCodeInternal} {
		if IsRetryableCode(code) {
			t.Errorf("expected %s to NOT be retryable", code)
		}
	}
}
