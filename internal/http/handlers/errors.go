// Package handlers defines HTTP-layer error codes used across all API
// endpoints. The codes supplement HTTP status semantics with a stable,
// machine-readable taxonomy clients can branch on.
//
// Conventions:
//   - Codes are lowercase snake_case.
//   - Generic codes mirror common HTTP status semantics.
//   - Domain-specific codes (no_contacts, dispatch_failed) cover business
//     outcomes a status alone cannot convey.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeNoContacts     = "no_contacts"
	ErrCodeDispatchFailed = "dispatch_failed"
	ErrCodeListFailed     = "list_failed"
	ErrCodeSetupFailed    = "setup_failed"
)
