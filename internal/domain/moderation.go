package domain

// ChannelModerationConfig is the moderation view of a debate channel.
// A nil BannedWords slice is treated as an empty list.
type ChannelModerationConfig struct {
	ID                string   `json:"id,omitempty"           example:"general"`
	RequireModeration bool     `json:"require_moderation"     example:"true"`
	BannedWords       []string `json:"banned_words,omitempty" example:"spoiler"`
}

// ModerationResult is the outcome of moderating one message. It is never
// persisted.
//
// BlockedWords may be non-empty on an approved result when the channel does
// not enforce moderation. It is always empty when the message was rejected
// by the length or link policy.
type ModerationResult struct {
	IsApproved    bool     `json:"is_approved"`
	BlockedWords  []string `json:"blocked_words"`
	Reason        string   `json:"reason,omitempty"         example:"message contains forbidden words"`
	ExternalLinks []string `json:"external_links,omitempty"`
}
