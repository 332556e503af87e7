// Package services – AccessService
//
// AccessService keeps one purchase record per buyer email in a single JSON
// document and answers "may this buyer enter the club?" questions by feeding
// the stored record to the access decision table.
//
// Every read-modify-write cycle holds the service mutex, so concurrent HTTP
// requests in one process never lose updates. Writers in other processes are
// last-write-wins.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-bookclub-guard/internal/access"
	"github.com/tbourn/go-bookclub-guard/internal/domain"
	"github.com/tbourn/go-bookclub-guard/internal/store"
	"github.com/tbourn/go-bookclub-guard/internal/utils"
)

const transactionsKey = "access:transactions"

// AccessService manages access transactions and validates buyer access.
type AccessService struct {
	// Store persists the transaction document.
	Store store.Store
	// Now returns the current time. Defaults to time.Now().UTC().
	Now func() time.Time

	mu sync.Mutex
}

// NewAccessService constructs an AccessService over st.
func NewAccessService(st store.Store) *AccessService {
	return &AccessService{Store: st, Now: func() time.Time { return time.Now().UTC() }}
}

func (s *AccessService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

// ValidateAccess reports whether the buyer identified by email currently has
// access. When a record exists its LastChecked is stamped and persisted.
func (s *AccessService) ValidateAccess(ctx context.Context, email string) (domain.AccessDecision, error) {
	return s.validate(ctx, "ValidateAccess", email, "")
}

// ValidateProductAccess is ValidateAccess plus a check that the stored
// record grants productID.
func (s *AccessService) ValidateProductAccess(ctx context.Context, email, productID string) (domain.AccessDecision, error) {
	return s.validate(ctx, "ValidateProductAccess", email, strings.TrimSpace(productID))
}

func (s *AccessService) validate(ctx context.Context, op, email, productID string) (domain.AccessDecision, error) {
	email = domain.NormalizeEmail(email)
	ctx, span := otel.Tracer("services/AccessService").Start(ctx, op,
		trace.WithAttributes(attribute.String("product.id", productID)),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load transactions")
		return domain.AccessDecision{}, err
	}

	now := s.now()
	var tx *domain.AccessTransaction
	if i := indexByEmail(txs, email); i >= 0 {
		txs[i].LastChecked = now
		if err := store.SaveJSON(ctx, s.Store, transactionsKey, txs); err != nil {
			log.Error().Err(err).Str("key", transactionsKey).Msg("persist last_checked failed")
			span.RecordError(err)
			span.SetStatus(codes.Error, "save transactions")
			return domain.AccessDecision{}, err
		}
		tx = &txs[i]
	}

	var d domain.AccessDecision
	if productID != "" {
		d = access.EvaluateProduct(tx, productID, now)
	} else {
		d = access.Evaluate(tx, now)
	}

	result := "denied"
	if d.HasAccess {
		result = "granted"
	}
	accessDecisions.WithLabelValues(result, reasonLabel(d.Reason)).Inc()
	span.SetAttributes(
		attribute.Bool("access.granted", d.HasAccess),
		attribute.String("access.reason", d.Reason),
	)
	return d, nil
}

// reasonLabel bounds the reason label to the declared reason strings.
func reasonLabel(reason string) string {
	switch reason {
	case "":
		return "none"
	case access.ReasonNoPurchase, access.ReasonCanceled, access.ReasonRefunded,
		access.ReasonChargeback, access.ReasonBlocked, access.ReasonUnknownStatus,
		access.ReasonExpired, access.ReasonProductMismatch,
		access.SubscriptionReason(domain.SubscriptionCanceled),
		access.SubscriptionReason(domain.SubscriptionOverdue):
		return reason
	}
	return "other"
}

// UpsertTransaction inserts tx or fully replaces the record with the same
// buyer email. The internal ID of an existing record is kept; new records get
// a fresh UUID. UpdatedAt and LastChecked are stamped to now.
func (s *AccessService) UpsertTransaction(ctx context.Context, tx domain.AccessTransaction) (*domain.AccessTransaction, error) {
	tx.BuyerEmail = domain.NormalizeEmail(tx.BuyerEmail)
	tx.TransactionID = strings.TrimSpace(tx.TransactionID)
	tx.ProductID = strings.TrimSpace(tx.ProductID)

	ctx, span := otel.Tracer("services/AccessService").Start(ctx, "UpsertTransaction",
		trace.WithAttributes(
			attribute.String("transaction.id", tx.TransactionID),
			attribute.String("transaction.status", string(tx.Status)),
		),
	)
	defer span.End()

	if err := validateTransaction(&tx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tx.UpdatedAt = now
	tx.LastChecked = now
	if i := indexByEmail(txs, tx.BuyerEmail); i >= 0 {
		tx.ID = txs[i].ID
		if tx.CreatedAt.IsZero() {
			tx.CreatedAt = txs[i].CreatedAt
		}
		txs[i] = tx
	} else {
		tx.ID = uuid.NewString()
		if tx.CreatedAt.IsZero() {
			tx.CreatedAt = now
		}
		txs = append(txs, tx)
	}

	if err := store.SaveJSON(ctx, s.Store, transactionsKey, txs); err != nil {
		log.Error().Err(err).Str("key", transactionsKey).Msg("persist transaction failed")
		span.RecordError(err)
		return nil, err
	}
	out := tx
	return &out, nil
}

// validateTransaction checks the fields a record cannot be stored without.
// Unknown statuses are accepted and later evaluate as denied.
func validateTransaction(tx *domain.AccessTransaction) error {
	err := validation.ValidateStruct(tx,
		validation.Field(&tx.BuyerEmail, validation.Required, is.EmailFormat),
		validation.Field(&tx.TransactionID, validation.Length(0, 128)),
		validation.Field(&tx.ProductID, validation.Length(0, 128)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	return nil
}

// GetTransaction returns the record for email (case-insensitive) or
// ErrTransactionNotFound.
func (s *AccessService) GetTransaction(ctx context.Context, email string) (*domain.AccessTransaction, error) {
	email = domain.NormalizeEmail(email)
	ctx, span := otel.Tracer("services/AccessService").Start(ctx, "GetTransaction")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexByEmail(txs, email)
	if i < 0 {
		return nil, ErrTransactionNotFound
	}
	out := txs[i]
	return &out, nil
}

// FindByTransactionID returns the record carrying the platform transaction
// id, or ErrTransactionNotFound.
func (s *AccessService) FindByTransactionID(ctx context.Context, transactionID string) (*domain.AccessTransaction, error) {
	transactionID = strings.TrimSpace(transactionID)
	ctx, span := otel.Tracer("services/AccessService").Start(ctx, "FindByTransactionID",
		trace.WithAttributes(attribute.String("transaction.id", transactionID)),
	)
	defer span.End()

	if transactionID == "" {
		return nil, ErrTransactionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexByTransactionID(txs, transactionID); i >= 0 {
		out := txs[i]
		return &out, nil
	}
	return nil, ErrTransactionNotFound
}

// UpdateTransactionStatus sets the status (and, when subStatus is non-nil,
// the subscription status) of the first record whose TransactionID matches.
// It reports false when no record matched.
func (s *AccessService) UpdateTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, subStatus *domain.SubscriptionStatus) (bool, error) {
	transactionID = strings.TrimSpace(transactionID)
	ctx, span := otel.Tracer("services/AccessService").Start(ctx, "UpdateTransactionStatus",
		trace.WithAttributes(
			attribute.String("transaction.id", transactionID),
			attribute.String("transaction.status", string(status)),
		),
	)
	defer span.End()

	if transactionID == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	i := indexByTransactionID(txs, transactionID)
	if i < 0 {
		return false, nil
	}

	now := s.now()
	txs[i].Status = status
	if subStatus != nil {
		txs[i].SubscriptionStatus = *subStatus
	}
	txs[i].UpdatedAt = now
	txs[i].LastChecked = now

	if err := store.SaveJSON(ctx, s.Store, transactionsKey, txs); err != nil {
		log.Error().Err(err).Str("transaction_id", transactionID).Msg("persist status update failed")
		return false, err
	}
	return true, nil
}

// UpdateSubscriptionStatusByEmail sets only the subscription status of the
// record for email. It reports false when no record matched.
func (s *AccessService) UpdateSubscriptionStatusByEmail(ctx context.Context, email string, sub domain.SubscriptionStatus) (bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}
	return s.updateSubscription(ctx, "UpdateSubscriptionStatusByEmail", sub, func(txs []domain.AccessTransaction) int {
		return indexByEmail(txs, email)
	})
}

// UpdateSubscriptionStatus sets only the subscription status of the first
// record whose TransactionID matches. It reports false when none matched.
func (s *AccessService) UpdateSubscriptionStatus(ctx context.Context, transactionID string, sub domain.SubscriptionStatus) (bool, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return false, nil
	}
	return s.updateSubscription(ctx, "UpdateSubscriptionStatus", sub, func(txs []domain.AccessTransaction) int {
		return indexByTransactionID(txs, transactionID)
	})
}

func (s *AccessService) updateSubscription(ctx context.Context, op string, sub domain.SubscriptionStatus, find func([]domain.AccessTransaction) int) (bool, error) {
	ctx, span := otel.Tracer("services/AccessService").Start(ctx, op,
		trace.WithAttributes(attribute.String("subscription.status", string(sub))),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	i := find(txs)
	if i < 0 {
		return false, nil
	}

	now := s.now()
	txs[i].SubscriptionStatus = sub
	txs[i].UpdatedAt = now
	txs[i].LastChecked = now

	if err := store.SaveJSON(ctx, s.Store, transactionsKey, txs); err != nil {
		log.Error().Err(err).Str("transaction_id", txs[i].TransactionID).Msg("persist subscription update failed")
		return false, err
	}
	return true, nil
}

// ListTransactions returns a page of records ordered by buyer email and the
// total count. Invalid page or pageSize values are defaulted.
func (s *AccessService) ListTransactions(ctx context.Context, page, pageSize int) ([]domain.AccessTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	ctx, span := otel.Tracer("services/AccessService").Start(ctx, "ListTransactions",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	s.mu.Lock()
	txs, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(txs, func(i, j int) bool { return txs[i].BuyerEmail < txs[j].BuyerEmail })
	start, end := utils.PageBounds(len(txs), page, pageSize)
	out := make([]domain.AccessTransaction, end-start)
	copy(out, txs[start:end])
	return out, int64(len(txs)), nil
}

// DeleteTransaction removes the record for email and reports whether one
// existed.
func (s *AccessService) DeleteTransaction(ctx context.Context, email string) (bool, error) {
	email = domain.NormalizeEmail(email)
	ctx, span := otel.Tracer("services/AccessService").Start(ctx, "DeleteTransaction")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	i := indexByEmail(txs, email)
	if i < 0 {
		return false, nil
	}
	txs = append(txs[:i], txs[i+1:]...)
	return true, store.SaveJSON(ctx, s.Store, transactionsKey, txs)
}

func (s *AccessService) load(ctx context.Context) ([]domain.AccessTransaction, error) {
	var txs []domain.AccessTransaction
	if _, err := store.LoadJSON(ctx, s.Store, transactionsKey, &txs); err != nil {
		if errors.Is(err, store.ErrCorrupt) {
			log.Error().Err(err).Msg("transaction document is corrupt")
		}
		return nil, err
	}
	return txs, nil
}

func indexByEmail(txs []domain.AccessTransaction, email string) int {
	for i := range txs {
		if domain.NormalizeEmail(txs[i].BuyerEmail) == email {
			return i
		}
	}
	return -1
}

func indexByTransactionID(txs []domain.AccessTransaction, transactionID string) int {
	for i := range txs {
		if txs[i].TransactionID == transactionID {
			return i
		}
	}
	return -1
}

// ParseStatus converts admin input into a transaction status and an optional
// subscription status. Both are upper-cased; values outside the declared sets
// return ErrInvalidStatus. An empty sub yields a nil subscription status.
func ParseStatus(status, sub string) (domain.TransactionStatus, *domain.SubscriptionStatus, error) {
	st := domain.TransactionStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !st.Known() {
		return "", nil, fmt.Errorf("%w: transaction status %q", ErrInvalidStatus, status)
	}
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return st, nil, nil
	}
	ss := domain.SubscriptionStatus(strings.ToUpper(sub))
	if !ss.Known() {
		return "", nil, fmt.Errorf("%w: subscription status %q", ErrInvalidStatus, sub)
	}
	return st, &ss, nil
}
