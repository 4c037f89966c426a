// Package engine implements the memory-augmented dialogue turn: model
// selection, context assembly, the primary/fallback call policy, fact
// extraction and persistence of the exchange.
package engine

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/outlawlabs/outlaw/pkg/ai"
	"github.com/outlawlabs/outlaw/pkg/memory"
)

// Fixed user-visible strings for the two degenerate outcomes of a turn
const (
	ApologyReply   = "Sorry partner, both of my AI brains failed me just now. Give it another try in a moment."
	NoContentReply = "(no content)"
)

// historyWindow is how many recent turns are injected into the prompt context
const historyWindow = 6

// Engine orchestrates one dialogue turn end to end. It owns references to the
// stores and both model clients; everything is injected at construction, no
// package-level state.
type Engine struct {
	users   *memory.UserStore
	shared  *memory.SharedRegistry
	clients map[memory.Model]ai.Client
	prompts *PromptTable

	// httpClient fetches image URLs for vision turns
	httpClient *http.Client
}

// New creates a dialogue engine. primary and secondary must be the gemini and
// groq clients in some order; each is dispatched by the name it reports.
func New(users *memory.UserStore, shared *memory.SharedRegistry, prompts *PromptTable, clients ...ai.Client) *Engine {
	byModel := make(map[memory.Model]ai.Client, len(clients))
	for _, c := range clients {
		byModel[memory.Model(c.Name())] = c
	}

	if prompts == nil {
		prompts = DefaultPromptTable()
	}

	return &Engine{
		users:      users,
		shared:     shared,
		clients:    byModel,
		prompts:    prompts,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Users exposes the user record store for the connector's config commands
func (e *Engine) Users() *memory.UserStore {
	return e.users
}

// Shared exposes the shared fact registry
func (e *Engine) Shared() *memory.SharedRegistry {
	return e.shared
}

// pick returns the client for a model preference and the alternate to fall
// back to
func (e *Engine) pick(model memory.Model) (ai.Client, ai.Client) {
	selected, ok := e.clients[model]
	if !ok {
		selected = e.clients[memory.DefaultModel]
	}

	for m, c := range e.clients {
		if m != memory.Model(selected.Name()) {
			return selected, c
		}
	}
	return selected, nil
}

// callWithFallback invokes the selected client and, if it reports itself
// unavailable, retries exactly once on the alternate. Returns the raw reply,
// or ok=false when no provider produced one.
func (e *Engine) callWithFallback(ctx context.Context, turnID string, primary, fallback ai.Client, prompt, contextBlock string) (string, bool) {
	raw, err := primary.Chat(ctx, prompt, contextBlock)
	if err == nil {
		return raw, true
	}
	log.Printf("[ENGINE]: turn %s: %s failed: %v", turnID, primary.Name(), err)

	if fallback == nil || !errors.Is(err, ai.ErrModelUnavailable) {
		return "", false
	}

	raw, err = fallback.Chat(ctx, prompt, contextBlock)
	if err != nil {
		log.Printf("[ENGINE]: turn %s: fallback %s also failed: %v", turnID, fallback.Name(), err)
		return "", false
	}

	return raw, true
}

// Respond runs one full dialogue turn for an inbound message and returns the
// reply to show the user. Storage failures along the way degrade silently;
// only both providers failing yields the fixed apology, and that path
// persists nothing.
func (e *Engine) Respond(ctx context.Context, userID, message string) string {
	turnID := uuid.NewString()[:8]

	// SELECT_MODEL
	model := e.users.GetModel(ctx, userID)
	primary, fallback := e.pick(model)

	// BUILD_CONTEXT
	facts := e.users.GetFacts(ctx, userID)
	sharedFacts := e.shared.AllFacts(ctx)
	history := e.users.GetHistory(ctx, userID, historyWindow)

	contextBlock := BuildContext(sharedFacts, facts, history)

	// Model input order is fixed: system instruction, context, new message.
	// The clients place instructions ahead of the prompt in their own wire
	// shape, so everything before the message travels as one block.
	instructions := e.prompts.System
	if contextBlock != "" {
		instructions += "\n\n" + contextBlock
	}

	// CALL_PRIMARY / CALL_FALLBACK
	raw, ok := e.callWithFallback(ctx, turnID, primary, fallback, message, instructions)
	if !ok {
		return ApologyReply
	}

	// PARSE_RESPONSE: extraction is best-effort and must never block the
	// reply path
	newFacts, cleaned := ExtractFacts(raw)
	for _, fact := range newFacts {
		if e.users.AddFact(ctx, userID, fact) {
			log.Printf("[ENGINE]: turn %s: remembered fact for user %s", turnID, userID)
		}
		e.shared.AddFact(ctx, fact)
	}

	if strings.TrimSpace(cleaned) == "" {
		cleaned = NoContentReply
	}

	// PERSIST
	e.users.AddToHistory(ctx, userID, message, cleaned)

	// RETURN
	return cleaned
}

// Tool runs a one-shot task prompt (joke, trivia, translate, ...) through the
// same primary/fallback policy using the user's tool model preference. Tool
// turns read and write no memory.
func (e *Engine) Tool(ctx context.Context, userID, task, input string) string {
	turnID := uuid.NewString()[:8]

	prompt, err := e.prompts.RenderTool(task, input)
	if err != nil {
		log.Printf("[ENGINE]: turn %s: %v", turnID, err)
		return ApologyReply
	}

	model := e.users.GetToolModel(ctx, userID)
	primary, fallback := e.pick(model)

	raw, ok := e.callWithFallback(ctx, turnID, primary, fallback, prompt, "")
	if !ok {
		return ApologyReply
	}

	if strings.TrimSpace(raw) == "" {
		return NoContentReply
	}

	return strings.TrimSpace(raw)
}
