// Package util provides shared error types and validation helpers.
//
// # Error Conventions
//
// Errors across dynfields follow one pattern:
//
//   - Sentinel errors (errors.New) for stable conditions that callers
//     check with errors.Is. Example: ErrNotFound.
//   - Structured error types when extra fields are useful
//     (e.g. ConfigError). Each type implements Error(), Unwrap() when
//     it wraps, and Is().
//   - fmt.Errorf with %w for ad-hoc context.
//
// # Validation
//
//	err := util.ValidateFieldName("email")
//	err := util.ValidateFieldNames([]string{"id", "name"})
package util
