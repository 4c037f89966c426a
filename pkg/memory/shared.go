package memory

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/outlawlabs/outlaw/pkg/storage"
)

const sharedFactsKey = "shared_facts"

// SharedRegistry is the community memory: one global record of facts known
// about any user, injected into every user's context. It keeps a single
// aggregate record rather than scanning per-user records, so the backend
// needs no key enumeration support.
type SharedRegistry struct {
	store storage.Store
}

// NewSharedRegistry creates a shared fact registry on the given backend
func NewSharedRegistry(store storage.Store) *SharedRegistry {
	return &SharedRegistry{store: store}
}

// load reads the aggregate record, degrading to empty on any failure
func (r *SharedRegistry) load(ctx context.Context) *SharedRecord {
	raw, err := r.store.Get(ctx, sharedFactsKey)
	if err != nil {
		log.Printf("[MEMORY]: failed to read shared facts, using empty set: %v", err)
		return &SharedRecord{}
	}
	if raw == nil {
		return &SharedRecord{}
	}

	var record SharedRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		log.Printf("[MEMORY]: corrupt shared fact record, using empty set: %v", err)
		return &SharedRecord{}
	}

	return &record
}

// AllFacts returns every shared fact in insertion order
func (r *SharedRegistry) AllFacts(ctx context.Context) []Fact {
	return r.load(ctx).Facts
}

// AddFact records a fact in the community memory. Same rules as per-user
// facts: trimmed text, case-insensitive dedup, cap with FIFO eviction.
// Returns true when a new fact was actually inserted.
func (r *SharedRegistry) AddFact(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	record := r.load(ctx)
	if containsFact(record.Facts, text) {
		return false
	}

	record.Facts = append(record.Facts, Fact{Text: text, AddedAt: time.Now().UTC()})
	if len(record.Facts) > MaxSharedFacts {
		record.Facts = record.Facts[len(record.Facts)-MaxSharedFacts:]
	}

	raw, err := json.Marshal(record)
	if err != nil {
		log.Printf("[MEMORY]: failed to serialize shared facts: %v", err)
		return false
	}

	if err := r.store.Set(ctx, sharedFactsKey, raw); err != nil {
		log.Printf("[MEMORY]: failed to save shared facts: %v", err)
		return false
	}

	return true
}
