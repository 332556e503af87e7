package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tbourn/go-bookclub-guard/internal/domain"
	"github.com/tbourn/go-bookclub-guard/internal/store"
)

func TestChannelService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewChannelService(store.NewMemoryStore())

	if _, err := svc.Get(ctx, "b"); !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("expected ErrChannelNotFound, got %v", err)
	}

	saved, err := svc.Put(ctx, domain.ChannelModerationConfig{
		ID:                " b ",
		RequireModeration: true,
		BannedWords:       []string{"Villain", "villain ", "", "Twist"},
	})
	must(t, err, "put b")
	if saved.ID != "b" {
		t.Fatalf("id=%q", saved.ID)
	}
	wantStrings(t, saved.BannedWords, "villain", "twist")

	_, err = svc.Put(ctx, domain.ChannelModerationConfig{ID: "a"})
	must(t, err, "put a")

	got, err := svc.Get(ctx, "b")
	must(t, err, "get b")
	if !reflect.DeepEqual(got, saved) {
		t.Fatalf("get=%+v want %+v", got, saved)
	}

	list, err := svc.List(ctx)
	must(t, err, "list")
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("list=%+v", list)
	}

	ok, err := svc.Delete(ctx, "b")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = svc.Delete(ctx, "b")
	if err != nil || ok {
		t.Fatalf("second delete: ok=%v err=%v", ok, err)
	}
}

func TestChannelService_PutRequiresID(t *testing.T) {
	svc := NewChannelService(store.NewMemoryStore())
	if _, err := svc.Put(context.Background(), domain.ChannelModerationConfig{ID: "  "}); !errors.Is(err, ErrInvalidChannel) {
		t.Fatalf("expected ErrInvalidChannel, got %v", err)
	}
}

func TestChannelService_ResolveDefault(t *testing.T) {
	svc := NewChannelService(store.NewMemoryStore())
	ch, err := svc.Resolve(context.Background(), "general")
	must(t, err, "resolve")
	if want := (domain.ChannelModerationConfig{ID: "general", RequireModeration: true}); !reflect.DeepEqual(ch, want) {
		t.Fatalf("resolve=%+v want %+v", ch, want)
	}
}

func TestChannelService_StoreErrorsPropagate(t *testing.T) {
	st := newFlakyStore()
	svc := NewChannelService(st)
	st.setFailures(true, false)

	if _, err := svc.Resolve(context.Background(), "general"); !errors.Is(err, errBackend) {
		t.Fatalf("resolve: expected errBackend, got %v", err)
	}
	if _, err := svc.List(context.Background()); !errors.Is(err, errBackend) {
		t.Fatalf("list: expected errBackend, got %v", err)
	}
}
