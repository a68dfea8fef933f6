// Package errors provides the structured error type shared by seqkit packages.
//
// Every failure surfaced by the sequence algebra, the storage adapters and the
// seqctl tool is an *AppError carrying a machine-readable ErrorCode. Codes are
// compared with errors.Is, so a freshly built error matches the exported
// sentinels of the package that produced it:
//
//	if errors.IsCode(err, errors.ErrCodeExhausted) { ... }
package errors
