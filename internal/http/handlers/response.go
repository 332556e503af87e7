// Package handlers provides HTTP handler implementations for the admin API.
//
// This file defines the response utilities shared by every endpoint: the
// error envelope, the mapping from service errors to HTTP status and code,
// and small success helpers.
//
// Conventions:
//   - All error responses return an ErrorResponse with a stable `code`.
//   - `fail()` writes the envelope and logs 5xx with the request-scoped logger.
//   - `failErr()` maps a service error to status and code before calling fail.
//   - Negative business outcomes (blocked message, denied access) are 200s.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "channel_not_found",
//	  "message": "channel not found"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-bookclub-guard/internal/http/middleware"
	"github.com/tbourn/go-bookclub-guard/internal/services"
	"github.com/tbourn/go-bookclub-guard/internal/store"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"transaction_not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"transaction not found"`
}

// fail aborts the request with a structured error. Server errors (>=500) are
// logged with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for the router's NoRoute/NoMethod
// and middleware.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// errorMapping pairs a service sentinel with its HTTP rendering.
type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{services.ErrInvalidWord, http.StatusBadRequest, ErrCodeInvalidWord},
	{services.ErrInvalidChannel, http.StatusBadRequest, ErrCodeInvalidChannel},
	{services.ErrChannelNotFound, http.StatusNotFound, ErrCodeChannelNotFound},
	{services.ErrInvalidTransaction, http.StatusUnprocessableEntity, ErrCodeInvalidTransaction},
	{services.ErrInvalidStatus, http.StatusBadRequest, ErrCodeInvalidStatus},
	{services.ErrTransactionNotFound, http.StatusNotFound, ErrCodeTransactionNotFound},
	{services.ErrInvalidSignature, http.StatusUnauthorized, ErrCodeInvalidSignature},
	{services.ErrInvalidEvent, http.StatusBadRequest, ErrCodeInvalidEvent},
	{store.ErrCorrupt, http.StatusInternalServerError, ErrCodeStoreFailed},
}

// failErr renders err using errorMappings; anything unmapped is a 500.
func failErr(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			fail(c, m.status, m.code, err.Error())
			return
		}
	}
	fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
