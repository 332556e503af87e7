// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP
// responses (via the `fail()` helper in this package). Clients branch on these
// codes; the message is for humans.
//
// Conventions:
//   - Codes are lowercase, snake_case.
//   - Generic codes mirror common HTTP status semantics.
//   - Domain-specific codes name the moderation, access or webhook failure
//     that a status alone cannot convey.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "transaction_not_found",
//	  "message": "no transaction for this email"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeInvalidWord         = "invalid_word"
	ErrCodeInvalidChannel      = "invalid_channel"
	ErrCodeChannelNotFound     = "channel_not_found"
	ErrCodeInvalidTransaction  = "invalid_transaction"
	ErrCodeInvalidStatus       = "invalid_status"
	ErrCodeTransactionNotFound = "transaction_not_found"
	ErrCodeInvalidSignature    = "invalid_signature"
	ErrCodeInvalidEvent        = "invalid_event"
	ErrCodeStoreFailed         = "store_failed"
)
