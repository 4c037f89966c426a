// Package memory owns the durable per-user knowledge base, the community-wide
// shared fact registry, and per-guild configuration. All records are stored as
// JSON documents through the storage.Store abstraction and read with safe
// defaults: a record that does not exist yet behaves like a well-formed empty
// one.
package memory

import (
	"fmt"
	"time"
)

// Model identifies one of the configured AI providers
type Model string

const (
	// ModelGemini is the primary provider
	ModelGemini Model = "gemini"
	// ModelGroq is the secondary provider
	ModelGroq Model = "groq"
)

// DefaultModel is used when a user has not chosen a provider
const DefaultModel = ModelGemini

// ParseModel validates a user-supplied model name
func ParseModel(name string) (Model, error) {
	switch Model(name) {
	case ModelGemini, ModelGroq:
		return Model(name), nil
	default:
		return "", fmt.Errorf("unknown model %q (valid: %s, %s)", name, ModelGemini, ModelGroq)
	}
}

// Storage caps. Oldest entries are evicted first when a cap is reached.
const (
	MaxFacts       = 30
	MaxHistory     = 50
	MaxSharedFacts = 50

	MaxUserMessageLen = 500
	MaxBotReplyLen    = 1000
)

// DefaultColor is the embed color used when a user has no override
const DefaultColor = "#ffffff"

// Fact is one remembered statement about a user
type Fact struct {
	Text    string    `json:"text"`
	AddedAt time.Time `json:"added_at"`
}

// HistoryEntry is one stored conversation turn
type HistoryEntry struct {
	UserMessage string    `json:"user_message"`
	BotReply    string    `json:"bot_reply"`
	Time        time.Time `json:"time"`
}

// UserRecord is everything the bot knows about a single user
type UserRecord struct {
	Facts       []Fact         `json:"facts,omitempty"`
	History     []HistoryEntry `json:"history,omitempty"`
	Color       string         `json:"color,omitempty"`
	EmbedTitle  string         `json:"embed_title,omitempty"`
	EmbedFooter string         `json:"embed_footer,omitempty"`
	ChatModel   Model          `json:"chat_model,omitempty"`
	ToolModel   Model          `json:"tool_model,omitempty"`
	CreatedAt   time.Time      `json:"created_at,omitempty"`
}

// NewUserRecord returns the empty default record. Reads of unknown users
// resolve to this, so callers never see a missing-record error.
func NewUserRecord() *UserRecord {
	return &UserRecord{}
}

// SharedRecord is the single global aggregate of facts across all users
type SharedRecord struct {
	Facts []Fact `json:"facts,omitempty"`
}

// GuildConfig holds per-guild bot settings. Writes are merge-on-write: fields
// absent from an update keep their stored value.
type GuildConfig struct {
	AIChannelID string `json:"ai_channel_id,omitempty"`
}

// truncate caps a string at n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
