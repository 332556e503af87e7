package domain

import (
	"strings"
	"time"
)

// TransactionStatus is the one-time purchase state reported by Hotmart.
type TransactionStatus string

const (
	StatusApproved   TransactionStatus = "APPROVED"
	StatusCanceled   TransactionStatus = "CANCELED"
	StatusRefunded   TransactionStatus = "REFUNDED"
	StatusChargeback TransactionStatus = "CHARGEBACK"
	StatusBlocked    TransactionStatus = "BLOCKED"
)

// Known reports whether s is one of the declared transaction statuses.
func (s TransactionStatus) Known() bool {
	switch s {
	case StatusApproved, StatusCanceled, StatusRefunded, StatusChargeback, StatusBlocked:
		return true
	}
	return false
}

// SubscriptionStatus is the recurring-billing state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
	SubscriptionOverdue  SubscriptionStatus = "OVERDUE"
	SubscriptionDelayed  SubscriptionStatus = "DELAYED"
)

// Known reports whether s is one of the declared subscription statuses.
func (s SubscriptionStatus) Known() bool {
	switch s {
	case SubscriptionActive, SubscriptionCanceled, SubscriptionOverdue, SubscriptionDelayed:
		return true
	}
	return false
}

// AccessTransaction is the single purchase/subscription record kept per
// buyer email.
//
// Fields:
//   - ID: internal identifier, preserved across upserts for the same email.
//   - TransactionID: the payment platform's transaction code.
//   - BuyerEmail: unique key, stored lowercase.
//   - SubscriptionID / SubscriptionStatus: set for recurring purchases.
//   - ValidUntil: optional expiry for time-limited access.
//   - ProductID: the product this transaction grants.
//   - LastChecked / UpdatedAt: stamped on validation and admin mutation.
type AccessTransaction struct {
	ID                 string             `json:"id"`
	TransactionID      string             `json:"transaction_id"                example:"HP17715690036014"`
	BuyerEmail         string             `json:"buyer_email"                   example:"reader@example.com"`
	BuyerName          string             `json:"buyer_name,omitempty"`
	ProductID          string             `json:"product_id"                    example:"1234567"`
	ProductName        string             `json:"product_name,omitempty"`
	Status             TransactionStatus  `json:"status"                        example:"APPROVED"`
	SubscriptionID     string             `json:"subscription_id,omitempty"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status,omitempty" example:"ACTIVE"`
	ValidUntil         *time.Time         `json:"valid_until,omitempty"`
	PurchasedAt        *time.Time         `json:"purchased_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	LastChecked        time.Time          `json:"last_checked"`
}

// NormalizeEmail returns the lookup form of a buyer email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AccessDecision is the outcome of validating a buyer's access. It is never
// persisted.
type AccessDecision struct {
	HasAccess          bool               `json:"has_access"`
	Reason             string             `json:"reason,omitempty"              example:"access expired"`
	TransactionID      string             `json:"transaction_id,omitempty"`
	ValidUntil         *time.Time         `json:"valid_until,omitempty"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status,omitempty"`
	LastChecked        time.Time          `json:"last_checked"`
}
