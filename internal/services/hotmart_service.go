// Package services – HotmartService
//
// HotmartService ingests Hotmart postback deliveries and mirrors them onto
// the access transaction store. Each delivery is claimed in the
// webhook_events table before it is applied, so redeliveries of the same
// event id are acknowledged without touching the store again. A failed apply
// releases the claim so Hotmart's retry is processed normally.
package services

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-bookclub-guard/internal/domain"
	"github.com/tbourn/go-bookclub-guard/internal/repo"
)

// HotmartProvider is the provider name recorded in webhook_events.
const HotmartProvider = "hotmart"

// Hotmart event types handled by Process.
const (
	EventPurchaseApproved         = "PURCHASE_APPROVED"
	EventPurchaseComplete         = "PURCHASE_COMPLETE"
	EventPurchaseCanceled         = "PURCHASE_CANCELED"
	EventPurchaseRefunded         = "PURCHASE_REFUNDED"
	EventPurchaseChargeback       = "PURCHASE_CHARGEBACK"
	EventPurchaseProtest          = "PURCHASE_PROTEST"
	EventPurchaseDelayed          = "PURCHASE_DELAYED"
	EventSubscriptionCancellation = "SUBSCRIPTION_CANCELLATION"
)

// Webhook outcomes, also used as metric labels.
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeFailed    = "failed"
)

// HotmartEvent is the subset of a Hotmart postback (v2) the service reads.
type HotmartEvent struct {
	ID           string      `json:"id"`
	Event        string      `json:"event"`
	Version      string      `json:"version,omitempty"`
	CreationDate int64       `json:"creation_date,omitempty"`
	Data         HotmartData `json:"data"`
}

// HotmartData carries the event body.
type HotmartData struct {
	Product      HotmartProduct      `json:"product"`
	Buyer        HotmartBuyer        `json:"buyer"`
	Purchase     HotmartPurchase     `json:"purchase"`
	Subscription HotmartSubscription `json:"subscription"`
	Subscriber   HotmartBuyer        `json:"subscriber"`
}

// HotmartProduct identifies the purchased product. Hotmart sends the id as a
// number; older payloads send a string.
type HotmartProduct struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
}

// HotmartBuyer identifies the buyer or subscriber.
type HotmartBuyer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Code  string `json:"code,omitempty"`
}

// HotmartPurchase describes the transaction. Dates are epoch milliseconds.
type HotmartPurchase struct {
	Transaction  string `json:"transaction"`
	Status       string `json:"status"`
	ApprovedDate int64  `json:"approved_date,omitempty"`
	OrderDate    int64  `json:"order_date,omitempty"`
}

// HotmartSubscription describes the recurring plan, when any.
type HotmartSubscription struct {
	Status     string       `json:"status"`
	Subscriber HotmartBuyer `json:"subscriber"`
}

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// HotmartService applies Hotmart webhook events.
type HotmartService struct {
	// DB holds the webhook_events table. When nil, deliveries are not deduped.
	DB *gorm.DB
	// Access receives the resulting transaction changes.
	Access *AccessService
	// Hottok is the shared token Hotmart sends in X-HOTMART-HOTTOK.
	Hottok string
}

// NewHotmartService constructs a HotmartService.
func NewHotmartService(db *gorm.DB, acc *AccessService, hottok string) *HotmartService {
	return &HotmartService{DB: db, Access: acc, Hottok: strings.TrimSpace(hottok)}
}

// Verify compares token with the configured hottok in constant time. An
// unconfigured hottok rejects every delivery.
func (s *HotmartService) Verify(token string) error {
	if s.Hottok == "" || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.Hottok)) != 1 {
		return ErrInvalidSignature
	}
	return nil
}

// Process applies ev at most once per event id and returns the outcome.
// A redelivery returns OutcomeDuplicate with ErrDuplicateEvent.
func (s *HotmartService) Process(ctx context.Context, ev HotmartEvent) (string, error) {
	ev.ID = strings.TrimSpace(ev.ID)
	ev.Event = strings.ToUpper(strings.TrimSpace(ev.Event))

	ctx, span := otel.Tracer("services/HotmartService").Start(ctx, "Process",
		trace.WithAttributes(
			attribute.String("webhook.event_id", ev.ID),
			attribute.String("webhook.event", ev.Event),
			attribute.String("transaction.id", ev.Data.Purchase.Transaction),
		),
	)
	defer span.End()

	label := eventLabel(ev.Event)

	if err := validateEvent(&ev); err != nil {
		webhookEvents.WithLabelValues(label, OutcomeFailed).Inc()
		return OutcomeFailed, err
	}

	if s.DB != nil {
		if _, err := repo.CreateWebhookEvent(ctx, s.DB, HotmartProvider, ev.ID, ev.Event, ev.Data.Purchase.Transaction); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				webhookEvents.WithLabelValues(label, OutcomeDuplicate).Inc()
				return OutcomeDuplicate, ErrDuplicateEvent
			}
			webhookEvents.WithLabelValues(label, OutcomeFailed).Inc()
			return OutcomeFailed, fmt.Errorf("claim webhook event: %w", err)
		}
	}

	outcome, err := s.apply(ctx, ev)
	if err != nil {
		if s.DB != nil {
			if derr := repo.DeleteWebhookEvent(ctx, s.DB, HotmartProvider, ev.ID); derr != nil {
				log.Error().Err(derr).Str("event_id", ev.ID).Msg("release webhook claim failed")
			}
		}
		webhookEvents.WithLabelValues(label, OutcomeFailed).Inc()
		span.RecordError(err)
		return OutcomeFailed, err
	}

	webhookEvents.WithLabelValues(label, outcome).Inc()
	span.SetAttributes(attribute.String("webhook.outcome", outcome))
	log.Info().
		Str("event_id", ev.ID).
		Str("event", ev.Event).
		Str("transaction_id", ev.Data.Purchase.Transaction).
		Str("outcome", outcome).
		Msg("hotmart event processed")
	return outcome, nil
}

func validateEvent(ev *HotmartEvent) error {
	err := validation.ValidateStruct(ev,
		validation.Field(&ev.ID, validation.Required),
		validation.Field(&ev.Event, validation.Required),
	)
	if err == nil {
		err = validation.Validate(buyerEmail(*ev), is.EmailFormat)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return nil
}

func (s *HotmartService) apply(ctx context.Context, ev HotmartEvent) (string, error) {
	switch ev.Event {
	case EventPurchaseApproved, EventPurchaseComplete:
		if _, err := s.Access.UpsertTransaction(ctx, transactionFromEvent(ev, domain.StatusApproved)); err != nil {
			return "", err
		}
		return OutcomeApplied, nil

	case EventPurchaseCanceled:
		return s.setStatus(ctx, ev, domain.StatusCanceled)
	case EventPurchaseRefunded:
		return s.setStatus(ctx, ev, domain.StatusRefunded)
	case EventPurchaseChargeback:
		return s.setStatus(ctx, ev, domain.StatusChargeback)
	case EventPurchaseProtest:
		return s.setStatus(ctx, ev, domain.StatusBlocked)

	case EventPurchaseDelayed:
		return s.setSubscription(ctx, ev, domain.SubscriptionOverdue)
	case EventSubscriptionCancellation:
		return s.setSubscription(ctx, ev, domain.SubscriptionCanceled)
	}
	return OutcomeIgnored, nil
}

// setStatus updates the record for the event's transaction. An unknown
// transaction that names a buyer is recorded with the new status.
func (s *HotmartService) setStatus(ctx context.Context, ev HotmartEvent, status domain.TransactionStatus) (string, error) {
	ok, err := s.Access.UpdateTransactionStatus(ctx, ev.Data.Purchase.Transaction, status, nil)
	if err != nil {
		return "", err
	}
	if ok {
		return OutcomeApplied, nil
	}
	if buyerEmail(ev) == "" {
		return OutcomeIgnored, nil
	}
	if _, err := s.Access.UpsertTransaction(ctx, transactionFromEvent(ev, status)); err != nil {
		return "", err
	}
	return OutcomeApplied, nil
}

// setSubscription changes only the subscription status of the buyer's
// record, or of the record carrying the event's transaction id when the
// event names no stored buyer.
func (s *HotmartService) setSubscription(ctx context.Context, ev HotmartEvent, sub domain.SubscriptionStatus) (string, error) {
	ok, err := s.Access.UpdateSubscriptionStatusByEmail(ctx, buyerEmail(ev), sub)
	if err == nil && !ok {
		ok, err = s.Access.UpdateSubscriptionStatus(ctx, ev.Data.Purchase.Transaction, sub)
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return OutcomeIgnored, nil
	}
	return OutcomeApplied, nil
}

func buyerEmail(ev HotmartEvent) string {
	for _, e := range []string{ev.Data.Buyer.Email, ev.Data.Subscriber.Email, ev.Data.Subscription.Subscriber.Email} {
		if e = domain.NormalizeEmail(e); e != "" {
			return e
		}
	}
	return ""
}

func transactionFromEvent(ev HotmartEvent, status domain.TransactionStatus) domain.AccessTransaction {
	tx := domain.AccessTransaction{
		TransactionID: ev.Data.Purchase.Transaction,
		BuyerEmail:    buyerEmail(ev),
		BuyerName:     strings.TrimSpace(ev.Data.Buyer.Name),
		ProductID:     string(ev.Data.Product.ID),
		ProductName:   ev.Data.Product.Name,
		Status:        status,
	}
	if code := ev.Data.Subscription.Subscriber.Code; code != "" {
		tx.SubscriptionID = code
		sub, known := subscriptionStatus(ev.Data.Subscription.Status)
		if !known {
			log.Warn().
				Str("event_id", ev.ID).
				Str("subscription_status", ev.Data.Subscription.Status).
				Msg("unmapped hotmart subscription status")
		}
		tx.SubscriptionStatus = sub
	}
	if ms := ev.Data.Purchase.ApprovedDate; ms > 0 {
		t := time.UnixMilli(ms).UTC()
		tx.PurchasedAt = &t
	} else if ms := ev.Data.Purchase.OrderDate; ms > 0 {
		t := time.UnixMilli(ms).UTC()
		tx.PurchasedAt = &t
	}
	return tx
}

// subscriptionStatus maps Hotmart's subscription vocabulary onto
// domain.SubscriptionStatus. An empty status means active. Unmapped values
// report false and map to the empty status.
func subscriptionStatus(raw string) (domain.SubscriptionStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "ACTIVE", "STARTED":
		return domain.SubscriptionActive, true
	case "CANCELLED_BY_CUSTOMER", "CANCELLED_BY_SELLER", "CANCELLED_BY_ADMIN",
		"CANCELLED", "CANCELED", "INACTIVE", "EXPIRED":
		return domain.SubscriptionCanceled, true
	case "OVERDUE":
		return domain.SubscriptionOverdue, true
	case "DELAYED":
		return domain.SubscriptionDelayed, true
	}
	return "", false
}

// eventLabel bounds the event metric label to the handled event types.
func eventLabel(event string) string {
	switch event {
	case EventPurchaseApproved, EventPurchaseComplete, EventPurchaseCanceled,
		EventPurchaseRefunded, EventPurchaseChargeback, EventPurchaseProtest,
		EventPurchaseDelayed, EventSubscriptionCancellation:
		return event
	}
	return "other"
}
