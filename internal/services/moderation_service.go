// Package services – ModerationService
//
// ModerationService owns the global banned-word list and binds it to the
// moderation engine. The list is loaded once at construction and every
// add/remove is persisted before it becomes visible in memory, so a failed
// write leaves the service unchanged.
//
// Observability: public methods are OpenTelemetry-instrumented and every
// decision is counted in moderation_decisions_total.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-bookclub-guard/internal/domain"
	"github.com/tbourn/go-bookclub-guard/internal/moderation"
	"github.com/tbourn/go-bookclub-guard/internal/store"
)

const globalWordsKey = "moderation:global_words"

// ModerationService manages the global word list and moderates messages.
type ModerationService struct {
	// Store persists the global word list.
	Store store.Store
	// Engine applies the message policy.
	Engine *moderation.Engine
	// Channels resolves channel configs for ModerateChannel/FilterChannel.
	// May be nil when only inline configs are used.
	Channels *ChannelService

	mu    sync.RWMutex
	words []string
}

// NewModerationService loads the global word list from st and returns a
// ready service. A corrupt stored list is an error.
func NewModerationService(ctx context.Context, st store.Store, eng *moderation.Engine, channels *ChannelService) (*ModerationService, error) {
	var stored []string
	if _, err := store.LoadJSON(ctx, st, globalWordsKey, &stored); err != nil {
		return nil, fmt.Errorf("load global words: %w", err)
	}
	if eng == nil {
		eng = moderation.New()
	}
	return &ModerationService{
		Store:    st,
		Engine:   eng,
		Channels: channels,
		words:    normalizeWordList(stored),
	}, nil
}

// ListGlobalWords returns a copy of the global list in display order.
func (s *ModerationService) ListGlobalWords(ctx context.Context) []string {
	_, span := otel.Tracer("services/ModerationService").Start(ctx, "ListGlobalWords")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.words))
	copy(out, s.words)
	return out
}

// CheckWord returns the normalized form of word, or ErrInvalidWord when
// nothing is left after normalization. Admin surfaces call it before
// AddGlobalWord, which itself treats an empty word as a no-op.
func CheckWord(word string) (string, error) {
	w := moderation.Normalize(word)
	if w == "" {
		return "", ErrInvalidWord
	}
	return w, nil
}

// AddGlobalWord normalizes word and appends it. Empty or already present
// words are a no-op.
func (s *ModerationService) AddGlobalWord(ctx context.Context, word string) error {
	w := moderation.Normalize(word)
	ctx, span := otel.Tracer("services/ModerationService").Start(ctx, "AddGlobalWord",
		trace.WithAttributes(attribute.String("word", w)),
	)
	defer span.End()

	if w == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, have := range s.words {
		if have == w {
			return nil
		}
	}
	next := make([]string, len(s.words), len(s.words)+1)
	copy(next, s.words)
	next = append(next, w)
	return s.commit(ctx, next)
}

// RemoveGlobalWord normalizes word and removes it. Absent words are a no-op.
func (s *ModerationService) RemoveGlobalWord(ctx context.Context, word string) error {
	w := moderation.Normalize(word)
	ctx, span := otel.Tracer("services/ModerationService").Start(ctx, "RemoveGlobalWord",
		trace.WithAttributes(attribute.String("word", w)),
	)
	defer span.End()

	if w == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]string, 0, len(s.words))
	for _, have := range s.words {
		if have != w {
			next = append(next, have)
		}
	}
	if len(next) == len(s.words) {
		return nil
	}
	return s.commit(ctx, next)
}

// commit persists next and swaps it in. Callers hold s.mu.
func (s *ModerationService) commit(ctx context.Context, next []string) error {
	if err := store.SaveJSON(ctx, s.Store, globalWordsKey, next); err != nil {
		log.Error().Err(err).Str("key", globalWordsKey).Msg("persist global words failed")
		return err
	}
	s.words = next
	return nil
}

// Moderate decides whether content may be posted to the channel ch.
func (s *ModerationService) Moderate(ctx context.Context, content string, ch domain.ChannelModerationConfig) domain.ModerationResult {
	_, span := otel.Tracer("services/ModerationService").Start(ctx, "Moderate",
		trace.WithAttributes(
			attribute.String("channel.id", ch.ID),
			attribute.Int("content.bytes", len(content)),
		),
	)
	defer span.End()

	s.mu.RLock()
	res := s.Engine.Moderate(content, s.words, ch)
	s.mu.RUnlock()

	outcome := moderationOutcome(res)
	moderationDecisions.WithLabelValues(outcome).Inc()
	span.SetAttributes(
		attribute.String("moderation.outcome", outcome),
		attribute.Int("moderation.blocked_words", len(res.BlockedWords)),
	)
	return res
}

// FilterMessage masks every global and channel word occurring in content.
func (s *ModerationService) FilterMessage(ctx context.Context, content string, ch domain.ChannelModerationConfig) string {
	_, span := otel.Tracer("services/ModerationService").Start(ctx, "FilterMessage",
		trace.WithAttributes(attribute.String("channel.id", ch.ID)),
	)
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Engine.Filter(content, s.words, ch)
}

// ModerateChannel resolves the stored config of channelID and moderates
// content against it.
func (s *ModerationService) ModerateChannel(ctx context.Context, channelID, content string) (domain.ModerationResult, error) {
	ch, err := s.resolve(ctx, channelID)
	if err != nil {
		return domain.ModerationResult{}, err
	}
	return s.Moderate(ctx, content, ch), nil
}

// FilterChannel resolves the stored config of channelID and filters content.
func (s *ModerationService) FilterChannel(ctx context.Context, channelID, content string) (string, error) {
	ch, err := s.resolve(ctx, channelID)
	if err != nil {
		return "", err
	}
	return s.FilterMessage(ctx, content, ch), nil
}

func (s *ModerationService) resolve(ctx context.Context, channelID string) (domain.ChannelModerationConfig, error) {
	if s.Channels == nil {
		return domain.ChannelModerationConfig{ID: channelID, RequireModeration: true}, nil
	}
	return s.Channels.Resolve(ctx, channelID)
}

// moderationOutcome maps a result to its metrics label.
func moderationOutcome(res domain.ModerationResult) string {
	switch {
	case res.IsApproved && len(res.BlockedWords) > 0:
		return "flagged"
	case res.IsApproved:
		return "approved"
	case res.Reason == moderation.ReasonExternalLinks:
		return "external_link"
	case res.Reason == moderation.ReasonForbiddenWords:
		return "forbidden_words"
	default:
		return "too_long"
	}
}
