package memory

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/outlawlabs/outlaw/pkg/storage"
)

const userKeyPrefix = "user_"

// UserStore owns per-user records built on a storage backend. Storage
// failures never reach the reply path: failed reads degrade to the empty
// default record and failed writes are logged and dropped.
//
// Read-modify-write of a record is not atomic across concurrent turns for the
// same user; the later write wins. This is accepted given one human types at
// most one message at a time.
type UserStore struct {
	store storage.Store
}

// NewUserStore creates a user record store on the given backend
func NewUserStore(store storage.Store) *UserStore {
	return &UserStore{store: store}
}

func userKey(userID string) string {
	return userKeyPrefix + userID
}

// GetUser loads a user's record, returning the empty default when the record
// is missing or the backend read fails
func (s *UserStore) GetUser(ctx context.Context, userID string) *UserRecord {
	raw, err := s.store.Get(ctx, userKey(userID))
	if err != nil {
		log.Printf("[MEMORY]: failed to read user %s, using defaults: %v", userID, err)
		return NewUserRecord()
	}
	if raw == nil {
		return NewUserRecord()
	}

	var record UserRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		log.Printf("[MEMORY]: corrupt record for user %s, using defaults: %v", userID, err)
		return NewUserRecord()
	}

	return &record
}

// SaveUser persists a user's record. CreatedAt is set once on first save and
// never changed afterwards.
func (s *UserStore) SaveUser(ctx context.Context, userID string, record *UserRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	raw, err := json.Marshal(record)
	if err != nil {
		log.Printf("[MEMORY]: failed to serialize user %s: %v", userID, err)
		return err
	}

	if err := s.store.Set(ctx, userKey(userID), raw); err != nil {
		log.Printf("[MEMORY]: failed to save user %s: %v", userID, err)
		return err
	}

	return nil
}

// AddFact records a new fact about a user. The text is trimmed before
// storage; duplicate checks compare case-insensitively on the trimmed text.
// Returns true when a new fact was actually inserted. At most MaxFacts are
// kept, oldest evicted first.
func (s *UserStore) AddFact(ctx context.Context, userID, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	record := s.GetUser(ctx, userID)
	if containsFact(record.Facts, text) {
		return false
	}

	record.Facts = append(record.Facts, Fact{Text: text, AddedAt: time.Now().UTC()})
	if len(record.Facts) > MaxFacts {
		record.Facts = record.Facts[len(record.Facts)-MaxFacts:]
	}

	return s.SaveUser(ctx, userID, record) == nil
}

// containsFact reports whether an equal fact (case-insensitive, trimmed) is
// already present
func containsFact(facts []Fact, text string) bool {
	for _, f := range facts {
		if strings.EqualFold(strings.TrimSpace(f.Text), text) {
			return true
		}
	}
	return false
}

// GetFacts returns all facts stored for a user in insertion order
func (s *UserStore) GetFacts(ctx context.Context, userID string) []Fact {
	return s.GetUser(ctx, userID).Facts
}

// AddToHistory appends one conversation turn to a user's history. Messages
// are truncated to the storage caps; at most MaxHistory turns are kept,
// oldest evicted first.
func (s *UserStore) AddToHistory(ctx context.Context, userID, userMessage, botReply string) {
	record := s.GetUser(ctx, userID)

	record.History = append(record.History, HistoryEntry{
		UserMessage: truncate(userMessage, MaxUserMessageLen),
		BotReply:    truncate(botReply, MaxBotReplyLen),
		Time:        time.Now().UTC(),
	})
	if len(record.History) > MaxHistory {
		record.History = record.History[len(record.History)-MaxHistory:]
	}

	_ = s.SaveUser(ctx, userID, record)
}

// GetHistory returns the most recent limit turns in chronological order
// (oldest of the returned window first)
func (s *UserStore) GetHistory(ctx context.Context, userID string, limit int) []HistoryEntry {
	history := s.GetUser(ctx, userID).History
	if limit <= 0 || limit >= len(history) {
		return history
	}
	return history[len(history)-limit:]
}

// ClearUser removes a user's record entirely. Subsequent reads revert to the
// empty default.
func (s *UserStore) ClearUser(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, userKey(userID)); err != nil {
		log.Printf("[MEMORY]: failed to clear user %s: %v", userID, err)
		return err
	}
	return nil
}

// SetModel sets a user's chat model preference. Unknown model names are
// rejected with no state change.
func (s *UserStore) SetModel(ctx context.Context, userID, name string) error {
	model, err := ParseModel(name)
	if err != nil {
		return err
	}

	record := s.GetUser(ctx, userID)
	record.ChatModel = model
	return s.SaveUser(ctx, userID, record)
}

// GetModel returns a user's chat model preference, defaulting to the primary
func (s *UserStore) GetModel(ctx context.Context, userID string) Model {
	if m := s.GetUser(ctx, userID).ChatModel; m != "" {
		return m
	}
	return DefaultModel
}

// SetToolModel sets a user's model preference for one-shot tool commands
func (s *UserStore) SetToolModel(ctx context.Context, userID, name string) error {
	model, err := ParseModel(name)
	if err != nil {
		return err
	}

	record := s.GetUser(ctx, userID)
	record.ToolModel = model
	return s.SaveUser(ctx, userID, record)
}

// GetToolModel returns a user's tool model preference, defaulting to the primary
func (s *UserStore) GetToolModel(ctx context.Context, userID string) Model {
	if m := s.GetUser(ctx, userID).ToolModel; m != "" {
		return m
	}
	return DefaultModel
}

// SetColor sets a user's embed color override
func (s *UserStore) SetColor(ctx context.Context, userID, color string) error {
	record := s.GetUser(ctx, userID)
	record.Color = strings.TrimSpace(color)
	return s.SaveUser(ctx, userID, record)
}

// GetColor returns a user's embed color, or the neutral default
func (s *UserStore) GetColor(ctx context.Context, userID string) string {
	if c := s.GetUser(ctx, userID).Color; c != "" {
		return c
	}
	return DefaultColor
}

// SetEmbedTitle sets a user's embed title override
func (s *UserStore) SetEmbedTitle(ctx context.Context, userID, title string) error {
	record := s.GetUser(ctx, userID)
	record.EmbedTitle = strings.TrimSpace(title)
	return s.SaveUser(ctx, userID, record)
}

// GetEmbedTitle returns a user's embed title override, empty if unset
func (s *UserStore) GetEmbedTitle(ctx context.Context, userID string) string {
	return s.GetUser(ctx, userID).EmbedTitle
}

// SetEmbedFooter sets a user's embed footer override
func (s *UserStore) SetEmbedFooter(ctx context.Context, userID, footer string) error {
	record := s.GetUser(ctx, userID)
	record.EmbedFooter = strings.TrimSpace(footer)
	return s.SaveUser(ctx, userID, record)
}

// GetEmbedFooter returns a user's embed footer override, empty if unset
func (s *UserStore) GetEmbedFooter(ctx context.Context, userID string) string {
	return s.GetUser(ctx, userID).EmbedFooter
}
