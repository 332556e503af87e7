// Package moderation decides whether a message may be posted to a debate
// channel and masks banned words in message text.
//
//   - No logging and no I/O in the library (callers own persistence)
//   - Functional options for the message policy (Option pattern)
//   - Unicode-aware, case-insensitive whole-word matching
//   - Safe for concurrent use; compiled word patterns are cached
//
// Checks run in a fixed order: message length, external links, then banned
// words. The first two are hard limits that apply even to channels that do
// not require moderation.
package moderation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-bookclub-guard/internal/domain"
)

// Rejection reasons reported in domain.ModerationResult.
const (
	ReasonExternalLinks  = "external links not allowed"
	ReasonForbiddenWords = "message contains forbidden words"
)

// DefaultMaxMessageLength is the policy limit used when none is configured.
const DefaultMaxMessageLength = 5000

// DefaultMaskToken replaces banned words in Filter.
const DefaultMaskToken = "***"

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	maxLen     int
	blockLinks bool
	internal   []string
	mask       string
}

func defaultConfig() config {
	return config{
		maxLen: DefaultMaxMessageLength,
		mask:   DefaultMaskToken,
	}
}

// WithMaxMessageLength caps message length in runes. Values < 1 are ignored.
func WithMaxMessageLength(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.maxLen = n
		}
	}
}

// WithBlockExternalLinks rejects messages linking outside the internal domains.
func WithBlockExternalLinks(block bool) Option {
	return func(c *config) { c.blockLinks = block }
}

// WithInternalDomains sets the host allow-list. Subdomains of a listed
// domain are internal too.
func WithInternalDomains(domains ...string) Option {
	return func(c *config) {
		out := make([]string, 0, len(domains))
		for _, d := range domains {
			d = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(d)), ".")
			if d != "" {
				out = append(out, d)
			}
		}
		c.internal = out
	}
}

// WithMaskToken sets the replacement used by Filter. Empty is ignored.
func WithMaskToken(mask string) Option {
	return func(c *config) {
		if mask != "" {
			c.mask = mask
		}
	}
}

// ----------------------------------------------------------------------------
// Engine

// Engine evaluates messages against a fixed policy.
type Engine struct {
	cfg      config
	patterns sync.Map // normalized word -> *regexp.Regexp
}

// New returns an Engine configured by opts.
func New(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Engine{cfg: cfg}
}

// MaxMessageLength returns the configured length limit in runes.
func (e *Engine) MaxMessageLength() int { return e.cfg.maxLen }

// MaskToken returns the configured mask.
func (e *Engine) MaskToken() string { return e.cfg.mask }

// Normalize returns the canonical form of a banned word: Unicode lowercase
// with surrounding whitespace removed.
func Normalize(word string) string {
	return strings.TrimSpace(cases.Lower(language.Und).String(word))
}

// Moderate decides whether content may be posted to the channel described
// by ch, with global holding the global banned-word list.
//
// Matches from the global list are reported first, then channel matches. A
// word present in both lists is reported twice.
func (e *Engine) Moderate(content string, global []string, ch domain.ChannelModerationConfig) domain.ModerationResult {
	if utf8.RuneCountInString(content) > e.cfg.maxLen {
		return domain.ModerationResult{
			IsApproved:   false,
			BlockedWords: []string{},
			Reason:       fmt.Sprintf("message too long (max %d characters)", e.cfg.maxLen),
		}
	}

	links := e.ExternalLinks(content)
	if e.cfg.blockLinks && len(links) > 0 {
		return domain.ModerationResult{
			IsApproved:    false,
			BlockedWords:  []string{},
			Reason:        ReasonExternalLinks,
			ExternalLinks: links,
		}
	}

	blocked := e.FindWords(content, global)
	blocked = append(blocked, e.FindWords(content, ch.BannedWords)...)

	res := domain.ModerationResult{
		IsApproved:    true,
		BlockedWords:  blocked,
		ExternalLinks: links,
	}
	if ch.RequireModeration && len(blocked) > 0 {
		res.IsApproved = false
		res.Reason = ReasonForbiddenWords
	}
	return res
}

// FindWords returns, in list order, the normalized words that occur in
// content as whole words. The result is never nil.
func (e *Engine) FindWords(content string, words []string) []string {
	out := []string{}
	for _, w := range words {
		w = Normalize(w)
		if w == "" {
			continue
		}
		if len(e.matches(content, w)) > 0 {
			out = append(out, w)
		}
	}
	return out
}

// Filter replaces every whole-word occurrence of each global and channel
// word with the mask token, regardless of the moderation decision.
func (e *Engine) Filter(content string, global []string, ch domain.ChannelModerationConfig) string {
	out := content
	for _, list := range [][]string{global, ch.BannedWords} {
		for _, w := range list {
			w = Normalize(w)
			if w == "" {
				continue
			}
			out = e.mask(out, w)
		}
	}
	return out
}

func (e *Engine) mask(s, word string) string {
	ranges := e.matches(s, word)
	if len(ranges) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prev := 0
	for _, r := range ranges {
		if r[0] < prev {
			continue
		}
		b.WriteString(s[prev:r[0]])
		b.WriteString(e.cfg.mask)
		prev = r[1]
	}
	b.WriteString(s[prev:])
	return b.String()
}

// matches returns the byte ranges in s of whole-word occurrences of word.
// s is lowercased with the same mapping as Normalize before matching, and
// ranges are mapped back to s. A failed boundary check resumes one rune
// later so overlapping candidates are still considered.
func (e *Engine) matches(s, word string) [][2]int {
	re := e.pattern(word)
	low := lowerWithOffsets(s)
	var out [][2]int
	for start := 0; start < len(low.text); {
		loc := re.FindStringIndex(low.text[start:])
		if loc == nil {
			break
		}
		i, j := start+loc[0], start+loc[1]
		if j > i && isWholeWord(low.text, i, j) {
			out = append(out, [2]int{low.start[i], low.end[j-1]})
			start = j
			continue
		}
		_, size := utf8.DecodeRuneInString(low.text[i:])
		start = i + size
	}
	return out
}

// lowered is s in lowercase plus, for every byte of text, the byte range
// of the rune of s it came from.
type lowered struct {
	text       string
	start, end []int
}

// lowerWithOffsets lowercases s one rune at a time. Full case mapping can
// change byte lengths (İ becomes i plus U+0307), hence the offset tables.
func lowerWithOffsets(s string) lowered {
	caser := cases.Lower(language.Und)
	var b strings.Builder
	b.Grow(len(s))
	starts := make([]int, 0, len(s))
	ends := make([]int, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		var l string
		switch {
		case r < utf8.RuneSelf:
			l = string(unicode.ToLower(r))
		case r == utf8.RuneError && size == 1:
			l = s[i : i+1]
		default:
			l = caser.String(s[i : i+size])
		}
		b.WriteString(l)
		for range len(l) {
			starts = append(starts, i)
			ends = append(ends, i+size)
		}
		i += size
	}
	return lowered{text: b.String(), start: starts, end: ends}
}

func (e *Engine) pattern(word string) *regexp.Regexp {
	if v, ok := e.patterns.Load(word); ok {
		return v.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(word))
	v, _ := e.patterns.LoadOrStore(word, re)
	return v.(*regexp.Regexp)
}

// isWholeWord reports whether s[i:j] is not glued to a neighbouring token.
// Edges of the match that are not word runes (e.g. "$$$") need no boundary.
func isWholeWord(s string, i, j int) bool {
	if first, _ := utf8.DecodeRuneInString(s[i:j]); isWordRune(first) && i > 0 {
		if prev, _ := utf8.DecodeLastRuneInString(s[:i]); isWordRune(prev) {
			return false
		}
	}
	if last, _ := utf8.DecodeLastRuneInString(s[i:j]); isWordRune(last) && j < len(s) {
		if next, _ := utf8.DecodeRuneInString(s[j:]); isWordRune(next) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
