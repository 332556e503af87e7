// Package domain defines the persistence models and value types shared by
// the repository, store, engine and service layers. GORM-mapped tables live
// in this file; moderation and access value types live next to it.
package domain

import "time"

// KVEntry is one key-value pair of the SQLite-backed store. Values are
// JSON documents chosen by the services; the table itself is schemaless.
//
// Fields:
//   - Key: primary key (namespaced, e.g. "moderation:global_words").
//   - Value: serialized document.
//   - UpdatedAt: last write, managed by GORM.
type KVEntry struct {
	Key       string    `gorm:"type:varchar(255);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"index"`
}

// TableName returns the database table name for KVEntry.
func (KVEntry) TableName() string { return "kv_entries" }

// WebhookEvent records a processed inbound webhook delivery, keyed by
// (provider, event_id). A second delivery of the same event violates the
// unique index and is skipped by the ingestion service.
type WebhookEvent struct {
	ID            string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Provider      string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_provider_event,priority:1"`
	EventID       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_provider_event,priority:2"`
	EventType     string    `gorm:"type:TEXT NOT NULL"`
	TransactionID string    `gorm:"type:TEXT NOT NULL;default:''"`
	CreatedAt     time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime;index"`
}

// TableName implements the GORM tabler interface.
func (WebhookEvent) TableName() string { return "webhook_events" }
