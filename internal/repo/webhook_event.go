// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the WebhookEvent
// model used to process each inbound webhook delivery at most once.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-bookclub-guard/internal/domain"
)

// ErrDuplicate indicates that an event record already exists for the given
// (provider, event_id) pair.
var ErrDuplicate = errors.New("duplicate")

// GetWebhookEvent returns the recorded event or ErrNotFound.
func GetWebhookEvent(ctx context.Context, db *gorm.DB, provider, eventID string) (*domain.WebhookEvent, error) {
	if strings.TrimSpace(eventID) == "" {
		return nil, ErrNotFound
	}
	var rec domain.WebhookEvent
	err := db.WithContext(ctx).
		Where("provider = ? AND event_id = ?", provider, eventID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, err
}

// CreateWebhookEvent inserts a record and returns ErrDuplicate on unique violation.
func CreateWebhookEvent(ctx context.Context, db *gorm.DB, provider, eventID, eventType, transactionID string) (*domain.WebhookEvent, error) {
	rec := &domain.WebhookEvent{
		ID:            uuid.NewString(),
		Provider:      provider,
		EventID:       eventID,
		EventType:     eventType,
		TransactionID: transactionID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// DeleteWebhookEvent releases a claimed event so a redelivery is processed again.
func DeleteWebhookEvent(ctx context.Context, db *gorm.DB, provider, eventID string) error {
	return db.WithContext(ctx).
		Where("provider = ? AND event_id = ?", provider, eventID).
		Delete(&domain.WebhookEvent{}).Error
}

// PruneWebhookEvents deletes records created before cutoff and returns the
// number of rows removed.
func PruneWebhookEvents(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&domain.WebhookEvent{})
	return res.RowsAffected, res.Error
}
