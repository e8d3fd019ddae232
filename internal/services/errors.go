// Package services defines the business logic for alert dispatch, response
// collection, and owner/contact setup. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import "errors"

var (
	// ErrNoContacts is returned when an alert is triggered with an empty
	// contact list. No Alert row is created in that case.
	ErrNoContacts = errors.New("no contacts configured")

	// ErrAlertNotFound indicates that the requested alert does not exist.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrTokenNotFound indicates that no recipient owns the presented
	// response token. Handlers surface this distinctly from a malformed
	// request.
	ErrTokenNotFound = errors.New("unknown response token")

	// ErrInvalidStatus is returned when a response submission carries a
	// status outside {responding, not_responding}. This is a caller error,
	// not a NotFound.
	ErrInvalidStatus = errors.New("status must be responding or not_responding")
)
