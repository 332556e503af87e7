package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-bookclub-guard/internal/domain"
)

func TestGetWebhookEvent_EmptyID_ReturnsNotFound(t *testing.T) {
	db := newRepoDB(t)
	rec, err := GetWebhookEvent(context.Background(), db, "hotmart", "   ")
	if rec != nil || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected (nil, ErrNotFound), got (%v, %v)", rec, err)
	}
}

func TestCreateWebhookEvent_DuplicateDetected(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	rec, err := CreateWebhookEvent(ctx, db, "hotmart", "evt-1", "PURCHASE_APPROVED", "HP1")
	if err != nil || rec == nil || rec.ID == "" {
		t.Fatalf("create: rec=%+v err=%v", rec, err)
	}
	if _, err := CreateWebhookEvent(ctx, db, "hotmart", "evt-1", "PURCHASE_APPROVED", "HP1"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	// Same event id from another provider is a distinct record.
	if _, err := CreateWebhookEvent(ctx, db, "other", "evt-1", "X", ""); err != nil {
		t.Fatalf("other provider: %v", err)
	}

	got, err := GetWebhookEvent(ctx, db, "hotmart", "evt-1")
	if err != nil || got.TransactionID != "HP1" || got.EventType != "PURCHASE_APPROVED" {
		t.Fatalf("get: %+v err=%v", got, err)
	}
}

func TestDeleteWebhookEvent_AllowsReclaim(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	if _, err := CreateWebhookEvent(ctx, db, "hotmart", "evt-2", "PURCHASE_REFUNDED", "HP2"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := DeleteWebhookEvent(ctx, db, "hotmart", "evt-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := CreateWebhookEvent(ctx, db, "hotmart", "evt-2", "PURCHASE_REFUNDED", "HP2"); err != nil {
		t.Fatalf("reclaim after delete: %v", err)
	}
}

func TestPruneWebhookEvents(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	old := &domain.WebhookEvent{ID: "old", Provider: "hotmart", EventID: "old", EventType: "X", CreatedAt: now.Add(-48 * time.Hour)}
	if err := db.Create(old).Error; err != nil {
		t.Fatalf("insert old: %v", err)
	}
	if _, err := CreateWebhookEvent(ctx, db, "hotmart", "fresh", "X", ""); err != nil {
		t.Fatalf("create fresh: %v", err)
	}

	n, err := PruneWebhookEvents(ctx, db, now.Add(-24*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("prune: n=%d err=%v", n, err)
	}
	if _, err := GetWebhookEvent(ctx, db, "hotmart", "fresh"); err != nil {
		t.Fatalf("fresh event should survive: %v", err)
	}
}
