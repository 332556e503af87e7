// Access HTTP handlers.
//
//   - POST   /access/validate                     (validate buyer access)
//   - GET    /access/transactions                 (list, paginated)
//   - PUT    /access/transactions                 (upsert by buyer email)
//   - GET    /access/transactions/{email}         (get)
//   - DELETE /access/transactions/{email}         (delete)
//   - PATCH  /access/transactions/{id}/status     (status update by transaction id)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-bookclub-guard/internal/domain"
	"github.com/tbourn/go-bookclub-guard/internal/http/middleware"
	"github.com/tbourn/go-bookclub-guard/internal/services"
)

// paramTransactionKey is the shared wildcard under /access/transactions.
const paramTransactionKey = "key"

// ValidateAccessRequest asks whether a buyer may enter the club. ProductID
// narrows the check to one product.
type ValidateAccessRequest struct {
	Email     string `json:"email"                binding:"required,email" example:"reader@example.com"`
	ProductID string `json:"product_id,omitempty"                          example:"1234567"`
}

// UpdateStatusRequest sets a transaction status and optionally the
// subscription status.
type UpdateStatusRequest struct {
	Status             string `json:"status"                        binding:"required" example:"CANCELED"`
	SubscriptionStatus string `json:"subscription_status,omitempty"                    example:"OVERDUE"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []domain.AccessTransaction `json:"transactions"`
	Pagination   Pagination                 `json:"pagination"`
}

// ValidateAccess godoc
// @ID          validateAccess
// @Summary     Validate buyer access
// @Description Evaluates the stored purchase for the email. A denial is a 200 with has_access=false and a reason.
// @Tags        Access
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.ValidateAccessRequest  true  "Buyer email and optional product"
// @Success     200   {object}  domain.AccessDecision
// @Failure     400   {object}  handlers.ErrorResponse "Bad request"
// @Failure     500   {object}  handlers.ErrorResponse "Store failure"
// @Router      /access/validate [post]
func (h *Handlers) ValidateAccess(c *gin.Context) {
	var req ValidateAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "a valid email is required")
		return
	}
	ctx := c.Request.Context()

	var (
		d   domain.AccessDecision
		err error
	)
	if pid := strings.TrimSpace(req.ProductID); pid != "" {
		d, err = h.accessSvc.ValidateProductAccess(ctx, req.Email, pid)
	} else {
		d, err = h.accessSvc.ValidateAccess(ctx, req.Email)
	}
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// ListTransactions godoc
// @ID          listTransactions
// @Summary     List transactions (paginated)
// @Description Returns transactions ordered by buyer email.
// @Tags        Access
// @Produce     json
// @Param       page       query  int  false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListTransactionsResponse
// @Failure     500  {object}  handlers.ErrorResponse "Store failure"
// @Router      /access/transactions [get]
func (h *Handlers) ListTransactions(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.accessSvc.ListTransactions(c.Request.Context(), page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListTransactionsResponse{
		Transactions: items,
		Pagination:   newPagination(page, pageSize, total),
	})
}

// UpsertTransaction godoc
// @ID          upsertTransaction
// @Summary     Create or replace a transaction
// @Description Replaces the record for the buyer email, keeping its internal id.
// @Tags        Access
// @Accept      json
// @Produce     json
// @Param       X-Admin-User  header  string                    false "Admin identity for audit logs"
// @Param       body          body    domain.AccessTransaction  true  "Transaction"
// @Success     200  {object}  domain.AccessTransaction
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     422  {object}  handlers.ErrorResponse "Invalid transaction"
// @Failure     500  {object}  handlers.ErrorResponse "Store failure"
// @Router      /access/transactions [put]
func (h *Handlers) UpsertTransaction(c *gin.Context) {
	var req domain.AccessTransaction
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	saved, err := h.accessSvc.UpsertTransaction(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}
	middleware.LoggerFrom(c).Info().
		Str("actor", actor(c)).
		Str("transaction_id", saved.TransactionID).
		Str("status", string(saved.Status)).
		Msg("transaction upserted")
	ok(c, http.StatusOK, saved)
}

// GetTransaction godoc
// @ID          getTransaction
// @Summary     Get the transaction for a buyer email
// @Tags        Access
// @Produce     json
// @Param       email  path      string  true  "Buyer email"  example(reader@example.com)
// @Success     200    {object}  domain.AccessTransaction
// @Failure     404    {object}  handlers.ErrorResponse "Transaction not found"
// @Failure     500    {object}  handlers.ErrorResponse "Store failure"
// @Router      /access/transactions/{email} [get]
func (h *Handlers) GetTransaction(c *gin.Context) {
	tx, err := h.accessSvc.GetTransaction(c.Request.Context(), c.Param(paramTransactionKey))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, tx)
}

// DeleteTransaction godoc
// @ID          deleteTransaction
// @Summary     Delete the transaction for a buyer email
// @Tags        Access
// @Param       X-Admin-User  header  string  false "Admin identity for audit logs"
// @Param       email         path    string  true  "Buyer email"  example(reader@example.com)
// @Success     204  {string}  string "No Content"
// @Failure     404  {object}  handlers.ErrorResponse "Transaction not found"
// @Failure     500  {object}  handlers.ErrorResponse "Store failure"
// @Router      /access/transactions/{email} [delete]
func (h *Handlers) DeleteTransaction(c *gin.Context) {
	found, err := h.accessSvc.DeleteTransaction(c.Request.Context(), c.Param(paramTransactionKey))
	if err != nil {
		failErr(c, err)
		return
	}
	if !found {
		fail(c, http.StatusNotFound, ErrCodeTransactionNotFound, "transaction not found")
		return
	}
	middleware.LoggerFrom(c).Info().Str("actor", actor(c)).Msg("transaction deleted")
	noContent(c)
}

// UpdateTransactionStatus godoc
// @ID          updateTransactionStatus
// @Summary     Update a transaction status
// @Description Sets the status of the record with the given platform transaction id.
// @Tags        Access
// @Accept      json
// @Param       X-Admin-User  header  string                        false "Admin identity for audit logs"
// @Param       id            path    string                        true  "Platform transaction ID"  example(HP17715690036014)
// @Param       body          body    handlers.UpdateStatusRequest  true  "New status"
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse "Invalid status"
// @Failure     404  {object}  handlers.ErrorResponse "Transaction not found"
// @Failure     500  {object}  handlers.ErrorResponse "Store failure"
// @Router      /access/transactions/{id}/status [patch]
func (h *Handlers) UpdateTransactionStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status is required")
		return
	}
	status, sub, err := services.ParseStatus(req.Status, req.SubscriptionStatus)
	if err != nil {
		failErr(c, err)
		return
	}

	txID := c.Param(paramTransactionKey)
	found, err := h.accessSvc.UpdateTransactionStatus(c.Request.Context(), txID, status, sub)
	if err != nil {
		failErr(c, err)
		return
	}
	if !found {
		fail(c, http.StatusNotFound, ErrCodeTransactionNotFound, "transaction not found")
		return
	}
	middleware.LoggerFrom(c).Info().
		Str("actor", actor(c)).
		Str("transaction_id", txID).
		Str("status", string(status)).
		Msg("transaction status updated")
	noContent(c)
}
