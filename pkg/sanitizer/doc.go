// Package sanitizer provides input normalization functions for request data.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Functions handle invalid input gracefully, typically by returning
// empty strings rather than errors.
//
// The package is shared across the services for consistent normalization
// before validation and storage.
//
// Normalization includes:
//   - Phone numbers: Convert to E.164 format (+[country][number])
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - Search queries and notes: whitespace normalization via the Pipeline strategies
package sanitizer
