// Package services – ChannelService
//
// ChannelService keeps the moderation configuration of each debate channel in
// a single key-value document keyed by channel id. Channels without a stored
// config resolve to a moderated channel with no channel-specific words.
package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-bookclub-guard/internal/domain"
	"github.com/tbourn/go-bookclub-guard/internal/moderation"
	"github.com/tbourn/go-bookclub-guard/internal/store"
)

const channelsKey = "moderation:channels"

// ChannelService provides CRUD over channel moderation configs.
type ChannelService struct {
	// Store persists the channel document.
	Store store.Store

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// NewChannelService constructs a ChannelService over st.
func NewChannelService(st store.Store) *ChannelService {
	return &ChannelService{Store: st}
}

// Get returns the stored config for id or ErrChannelNotFound.
func (s *ChannelService) Get(ctx context.Context, id string) (domain.ChannelModerationConfig, error) {
	ctx, span := otel.Tracer("services/ChannelService").Start(ctx, "Get",
		trace.WithAttributes(attribute.String("channel.id", id)),
	)
	defer span.End()

	all, err := s.load(ctx)
	if err != nil {
		return domain.ChannelModerationConfig{}, err
	}
	ch, ok := all[strings.TrimSpace(id)]
	if !ok {
		return domain.ChannelModerationConfig{}, ErrChannelNotFound
	}
	return ch, nil
}

// Resolve returns the stored config for id, or the default config
// (moderation required, no channel words) when none is stored.
func (s *ChannelService) Resolve(ctx context.Context, id string) (domain.ChannelModerationConfig, error) {
	ch, err := s.Get(ctx, id)
	if errors.Is(err, ErrChannelNotFound) {
		return domain.ChannelModerationConfig{ID: strings.TrimSpace(id), RequireModeration: true}, nil
	}
	return ch, err
}

// Put stores cfg, replacing any previous config for the same id. Channel
// words are normalized; empties and repeats are dropped.
func (s *ChannelService) Put(ctx context.Context, cfg domain.ChannelModerationConfig) (domain.ChannelModerationConfig, error) {
	cfg.ID = strings.TrimSpace(cfg.ID)
	ctx, span := otel.Tracer("services/ChannelService").Start(ctx, "Put",
		trace.WithAttributes(
			attribute.String("channel.id", cfg.ID),
			attribute.Int("channel.words", len(cfg.BannedWords)),
		),
	)
	defer span.End()

	if cfg.ID == "" {
		return domain.ChannelModerationConfig{}, ErrInvalidChannel
	}
	cfg.BannedWords = normalizeWordList(cfg.BannedWords)

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return domain.ChannelModerationConfig{}, err
	}
	all[cfg.ID] = cfg
	if err := store.SaveJSON(ctx, s.Store, channelsKey, all); err != nil {
		return domain.ChannelModerationConfig{}, err
	}
	return cfg, nil
}

// Delete removes the config for id and reports whether one existed.
func (s *ChannelService) Delete(ctx context.Context, id string) (bool, error) {
	ctx, span := otel.Tracer("services/ChannelService").Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("channel.id", id)),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	id = strings.TrimSpace(id)
	if _, ok := all[id]; !ok {
		return false, nil
	}
	delete(all, id)
	return true, store.SaveJSON(ctx, s.Store, channelsKey, all)
}

// List returns every stored config ordered by id.
func (s *ChannelService) List(ctx context.Context) ([]domain.ChannelModerationConfig, error) {
	ctx, span := otel.Tracer("services/ChannelService").Start(ctx, "List")
	defer span.End()

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ChannelModerationConfig, 0, len(all))
	for _, ch := range all {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *ChannelService) load(ctx context.Context) (map[string]domain.ChannelModerationConfig, error) {
	all := map[string]domain.ChannelModerationConfig{}
	if _, err := store.LoadJSON(ctx, s.Store, channelsKey, &all); err != nil {
		return nil, err
	}
	if all == nil {
		all = map[string]domain.ChannelModerationConfig{}
	}
	return all, nil
}

// normalizeWordList normalizes words, dropping empties and repeats while
// keeping first-seen order.
func normalizeWordList(words []string) []string {
	out := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = moderation.Normalize(w)
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
