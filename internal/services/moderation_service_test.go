package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tbourn/go-bookclub-guard/internal/domain"
	"github.com/tbourn/go-bookclub-guard/internal/moderation"
	"github.com/tbourn/go-bookclub-guard/internal/store"
)

func newModeration(t *testing.T, st store.Store) *ModerationService {
	t.Helper()
	svc, err := NewModerationService(context.Background(), st, moderation.New(), NewChannelService(st))
	must(t, err, "new moderation service")
	return svc
}

func TestModerationService_AddListRemove(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newModeration(t, st)

	wantStrings(t, svc.ListGlobalWords(ctx))

	for _, w := range []string{"  Spoiler ", "SPOILER", "   ", "Ending"} {
		must(t, svc.AddGlobalWord(ctx, w), "add "+w)
	}
	wantStrings(t, svc.ListGlobalWords(ctx), "spoiler", "ending")

	must(t, svc.RemoveGlobalWord(ctx, "ENDING"), "remove ENDING")
	must(t, svc.RemoveGlobalWord(ctx, "absent"), "remove absent")
	wantStrings(t, svc.ListGlobalWords(ctx), "spoiler")

	// A fresh service over the same store sees the persisted list.
	again := newModeration(t, st)
	wantStrings(t, again.ListGlobalWords(ctx), "spoiler")
}

func TestCheckWord(t *testing.T) {
	w, err := CheckWord("  Spoiler ")
	if err != nil || w != "spoiler" {
		t.Fatalf("CheckWord=%q err=%v", w, err)
	}
	if _, err := CheckWord(" \t "); !errors.Is(err, ErrInvalidWord) {
		t.Fatalf("expected ErrInvalidWord, got %v", err)
	}
}

func TestModerationService_ListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	svc := newModeration(t, store.NewMemoryStore())
	must(t, svc.AddGlobalWord(ctx, "spoiler"), "add")

	got := svc.ListGlobalWords(ctx)
	got[0] = "mutated"
	wantStrings(t, svc.ListGlobalWords(ctx), "spoiler")
}

func TestModerationService_FailedPersistLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	st := newFlakyStore()
	svc := newModeration(t, st)
	must(t, svc.AddGlobalWord(ctx, "spoiler"), "add")

	st.setFailures(false, true)
	if err := svc.AddGlobalWord(ctx, "ending"); !errors.Is(err, errBackend) {
		t.Fatalf("add: expected errBackend, got %v", err)
	}
	if err := svc.RemoveGlobalWord(ctx, "spoiler"); !errors.Is(err, errBackend) {
		t.Fatalf("remove: expected errBackend, got %v", err)
	}
	wantStrings(t, svc.ListGlobalWords(ctx), "spoiler")
}

func TestModerationService_LoadNormalizesStoredList(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	must(t, st.Set(ctx, globalWordsKey, `["Spoiler"," spoiler ","","Ending"]`), "seed")

	svc := newModeration(t, st)
	wantStrings(t, svc.ListGlobalWords(ctx), "spoiler", "ending")
}

func TestModerationService_CorruptListIsAnError(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	must(t, st.Set(ctx, globalWordsKey, `{not json`), "seed")

	if _, err := NewModerationService(ctx, st, nil, nil); !errors.Is(err, store.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestModerationService_ModerateAndFilter(t *testing.T) {
	ctx := context.Background()
	svc := newModeration(t, store.NewMemoryStore())
	must(t, svc.AddGlobalWord(ctx, "spoiler"), "add")

	ch := domain.ChannelModerationConfig{ID: "c1", RequireModeration: true, BannedWords: []string{"villain"}}

	res := svc.Moderate(ctx, "No SPOILER about the villain", ch)
	if res.IsApproved || res.Reason != moderation.ReasonForbiddenWords {
		t.Fatalf("expected rejection, got %+v", res)
	}
	wantStrings(t, res.BlockedWords, "spoiler", "villain")

	res = svc.Moderate(ctx, "lovely chapter", ch)
	if !res.IsApproved {
		t.Fatalf("expected approval, got %+v", res)
	}
	wantStrings(t, res.BlockedWords)

	if got := svc.FilterMessage(ctx, "No SPOILER about the villain", ch); got != "No *** about the ***" {
		t.Fatalf("filter=%q", got)
	}
}

func TestModerationService_ModerateChannel(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newModeration(t, st)

	_, err := svc.Channels.Put(ctx, domain.ChannelModerationConfig{ID: "relaxed", RequireModeration: false, BannedWords: []string{"villain"}})
	must(t, err, "put channel")

	res, err := svc.ModerateChannel(ctx, "relaxed", "the villain wins")
	must(t, err, "moderate relaxed")
	if !res.IsApproved {
		t.Fatalf("relaxed channel must approve, got %+v", res)
	}
	wantStrings(t, res.BlockedWords, "villain")

	// Unknown channels moderate with no channel words.
	res, err = svc.ModerateChannel(ctx, "unknown", "the villain wins")
	must(t, err, "moderate unknown")
	if !res.IsApproved {
		t.Fatalf("unknown channel must approve, got %+v", res)
	}
	wantStrings(t, res.BlockedWords)

	out, err := svc.FilterChannel(ctx, "relaxed", "the villain wins")
	must(t, err, "filter relaxed")
	if out != "the *** wins" {
		t.Fatalf("filter=%q", out)
	}
}

func TestModerationService_CountsOutcomes(t *testing.T) {
	ctx := context.Background()
	svc := newModeration(t, store.NewMemoryStore())
	must(t, svc.AddGlobalWord(ctx, "spoiler"), "add")

	strict := domain.ChannelModerationConfig{RequireModeration: true}
	lax := domain.ChannelModerationConfig{RequireModeration: false}

	outcomes := []string{"approved", "flagged", "forbidden_words"}
	before := map[string]float64{}
	for _, o := range outcomes {
		before[o] = testutil.ToFloat64(moderationDecisions.WithLabelValues(o))
	}

	svc.Moderate(ctx, "fine", strict)
	svc.Moderate(ctx, "spoiler", lax)
	svc.Moderate(ctx, "spoiler", strict)

	for _, o := range outcomes {
		if got := testutil.ToFloat64(moderationDecisions.WithLabelValues(o)); got != before[o]+1 {
			t.Fatalf("%s counter=%v want %v", o, got, before[o]+1)
		}
	}
}

func TestModerationOutcome(t *testing.T) {
	if got := moderationOutcome(domain.ModerationResult{Reason: "message too long (max 10 characters)"}); got != "too_long" {
		t.Fatalf("outcome=%q", got)
	}
	if got := moderationOutcome(domain.ModerationResult{Reason: moderation.ReasonExternalLinks}); got != "external_link" {
		t.Fatalf("outcome=%q", got)
	}
}
