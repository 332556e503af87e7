// Package services defines the business logic for message moderation,
// channel configuration, buyer access validation and Hotmart webhook
// ingestion. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// Negative business outcomes (a blocked message, a denied access) are values,
// not errors. Errors here cover invalid input, missing records and rejected
// webhooks; storage failures are wrapped and propagated unchanged.
package services

import "errors"

// Moderation-related errors.
var (
	// ErrInvalidWord is returned when a banned word is empty after
	// normalization on an operation that requires one.
	ErrInvalidWord = errors.New("word is empty")

	// ErrChannelNotFound indicates that no moderation config is stored for
	// the requested channel.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrInvalidChannel is returned when a channel config has no id.
	ErrInvalidChannel = errors.New("channel id is required")
)

// Access-related errors.
var (
	// ErrTransactionNotFound indicates that no transaction exists for the
	// requested buyer email.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInvalidTransaction is returned when an upserted transaction fails
	// validation (e.g. missing or malformed buyer email).
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrInvalidStatus is returned when a status update names a transaction
	// or subscription status outside the declared set.
	ErrInvalidStatus = errors.New("invalid status")
)

// Webhook-related errors.
var (
	// ErrInvalidSignature is returned when a webhook delivery does not carry
	// the configured shared token.
	ErrInvalidSignature = errors.New("invalid webhook token")

	// ErrInvalidEvent is returned when a webhook payload is missing required
	// fields.
	ErrInvalidEvent = errors.New("invalid webhook event")

	// ErrDuplicateEvent is returned when a webhook delivery with the same
	// event id has already been applied.
	ErrDuplicateEvent = errors.New("webhook event already processed")
)
