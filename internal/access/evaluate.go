// Package access turns a stored purchase record into an access decision.
//
// Evaluation is a pure decision table over the transaction status, the
// subscription status and the expiry instant. Nothing here reads or writes
// storage; the caller supplies the transaction and the current time.
package access

import (
	"strings"
	"time"

	"github.com/tbourn/go-bookclub-guard/internal/domain"
)

// Denial reasons reported in domain.AccessDecision.
const (
	ReasonNoPurchase       = "no purchase found for this email"
	ReasonCanceled         = "purchase canceled"
	ReasonRefunded         = "purchase refunded"
	ReasonChargeback       = "chargeback"
	ReasonBlocked          = "transaction blocked"
	ReasonUnknownStatus    = "unknown transaction status"
	ReasonExpired          = "access expired"
	ReasonProductMismatch  = "user does not have access to this specific product"
	subscriptionReasonStem = "subscription "
)

// SubscriptionReason is the denial reason for a lapsed subscription, e.g.
// "subscription overdue".
func SubscriptionReason(s domain.SubscriptionStatus) string {
	return subscriptionReasonStem + strings.ToLower(string(s))
}

// Evaluate decides whether tx grants access at now. A nil tx means no
// purchase exists for the email.
func Evaluate(tx *domain.AccessTransaction, now time.Time) domain.AccessDecision {
	if tx == nil {
		return domain.AccessDecision{HasAccess: false, Reason: ReasonNoPurchase, LastChecked: now}
	}

	d := domain.AccessDecision{
		TransactionID: tx.TransactionID,
		LastChecked:   now,
	}

	switch tx.Status {
	case domain.StatusApproved:
	case domain.StatusCanceled:
		d.Reason = ReasonCanceled
		return d
	case domain.StatusRefunded:
		d.Reason = ReasonRefunded
		return d
	case domain.StatusChargeback:
		d.Reason = ReasonChargeback
		return d
	case domain.StatusBlocked:
		d.Reason = ReasonBlocked
		return d
	default:
		d.Reason = ReasonUnknownStatus
		return d
	}

	if tx.ValidUntil != nil && tx.ValidUntil.Before(now) {
		d.Reason = ReasonExpired
		d.ValidUntil = tx.ValidUntil
		return d
	}

	if tx.SubscriptionID != "" {
		switch tx.SubscriptionStatus {
		case domain.SubscriptionCanceled, domain.SubscriptionOverdue:
			d.Reason = SubscriptionReason(tx.SubscriptionStatus)
			d.SubscriptionStatus = tx.SubscriptionStatus
			return d
		}
	}

	d.HasAccess = true
	d.ValidUntil = tx.ValidUntil
	d.SubscriptionStatus = tx.SubscriptionStatus
	return d
}

// EvaluateProduct is Evaluate restricted to one product: a transaction that
// otherwise grants access is denied for any other product id.
func EvaluateProduct(tx *domain.AccessTransaction, productID string, now time.Time) domain.AccessDecision {
	d := Evaluate(tx, now)
	if !d.HasAccess {
		return d
	}
	if tx.ProductID != productID {
		d.HasAccess = false
		d.Reason = ReasonProductMismatch
	}
	return d
}
