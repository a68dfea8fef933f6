// Package validation checks configuration and command input.
//
// Struct tag validation (on go-playground/validator) is used for config
// structs; the programmatic Validator collects field errors for values
// assembled at runtime, such as command-line arguments. Both report a
// single *errors.AppError with code INVALID_INPUT whose details list every
// failing field.
//
// # Struct Tag Validation
//
//	type SampleConfig struct {
//	    Step int `mapstructure:"step" validate:"gte=0"`
//	    Max  int `mapstructure:"max" validate:"gt=0"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Min("limit", limit, 0)
//	err := v.Err()
package validation
