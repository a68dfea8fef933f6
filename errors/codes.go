package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Sequence errors
const (
	// ErrCodeExhausted indicates Next or Peek was called with no remaining element.
	ErrCodeExhausted ErrorCode = "EXHAUSTED"
	// ErrCodeInvalidArgument indicates a nil or out-of-range operator argument.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeInvariantViolation indicates a caller-supplied function broke an operator contract.
	ErrCodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeCorrupt indicates an encoded payload could not be decoded.
	ErrCodeCorrupt ErrorCode = "CORRUPT_PAYLOAD"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates configuration or user input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeStorage indicates the backing block store failed.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
	// ErrCodeCanceled indicates the consuming run was canceled through its context.
	ErrCodeCanceled ErrorCode = "CANCELED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeStorage:  true,
	ErrCodeInternal: false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
