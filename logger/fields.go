package logger

import (
	"time"
)

// Standard field keys.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldStage     = "stage"
	FieldOperator  = "operator"
	FieldElements  = "elements"
	FieldKey       = "key"
	FieldBackend   = "backend"
	FieldCommand   = "command"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)

// Fields builds a map from alternating key-value pairs. Non-string keys
// and a trailing key without a value are dropped.
//
//	logger.Info("merged", logger.Fields("inputs", 3, "elements", n))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// StageFields describes a finished pipeline stage.
func StageFields(stage string, elements int64, d time.Duration) map[string]any {
	return map[string]any{
		FieldStage:    stage,
		FieldElements: elements,
		FieldDuration: d.Milliseconds(),
	}
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]any {
	return map[string]any{
		FieldOperator: op,
		FieldError:    err.Error(),
	}
}
