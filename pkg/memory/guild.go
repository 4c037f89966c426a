package memory

import (
	"context"
	"encoding/json"
	"log"

	"github.com/outlawlabs/outlaw/pkg/storage"
)

const guildKeyPrefix = "guild_"

// GuildStore owns per-guild configuration records
type GuildStore struct {
	store storage.Store
}

// NewGuildStore creates a guild config store on the given backend
func NewGuildStore(store storage.Store) *GuildStore {
	return &GuildStore{store: store}
}

func guildKey(guildID string) string {
	return guildKeyPrefix + guildID
}

// Get loads a guild's config, returning the empty default when missing or on
// backend failure
func (s *GuildStore) Get(ctx context.Context, guildID string) *GuildConfig {
	raw, err := s.store.Get(ctx, guildKey(guildID))
	if err != nil {
		log.Printf("[MEMORY]: failed to read guild %s, using defaults: %v", guildID, err)
		return &GuildConfig{}
	}
	if raw == nil {
		return &GuildConfig{}
	}

	var config GuildConfig
	if err := json.Unmarshal(raw, &config); err != nil {
		log.Printf("[MEMORY]: corrupt config for guild %s, using defaults: %v", guildID, err)
		return &GuildConfig{}
	}

	return &config
}

// Set merges a patch into a guild's stored config. Fields left empty in the
// patch keep their stored value; the record is never wholesale replaced.
func (s *GuildStore) Set(ctx context.Context, guildID string, patch *GuildConfig) error {
	current := s.Get(ctx, guildID)

	if patch.AIChannelID != "" {
		current.AIChannelID = patch.AIChannelID
	}

	raw, err := json.Marshal(current)
	if err != nil {
		log.Printf("[MEMORY]: failed to serialize guild %s: %v", guildID, err)
		return err
	}

	if err := s.store.Set(ctx, guildKey(guildID), raw); err != nil {
		log.Printf("[MEMORY]: failed to save guild %s: %v", guildID, err)
		return err
	}

	return nil
}
