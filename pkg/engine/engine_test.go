package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outlawlabs/outlaw/pkg/ai"
	"github.com/outlawlabs/outlaw/pkg/memory"
	"github.com/outlawlabs/outlaw/pkg/storage"
)

// stubClient is a scripted model client for driving the engine's call policy
type stubClient struct {
	name    string
	reply   string
	err     error
	calls   int
	lastCtx string
}

func (s *stubClient) Name() string {
	return s.name
}

func (s *stubClient) Chat(ctx context.Context, prompt, contextBlock string) (string, error) {
	s.calls++
	s.lastCtx = contextBlock
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// newTestEngine wires an engine over a temp file store with the given clients
func newTestEngine(t *testing.T, gemini, groq ai.Client) (*Engine, *memory.UserStore) {
	t.Helper()

	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	users := memory.NewUserStore(store)
	shared := memory.NewSharedRegistry(store)

	return New(users, shared, nil, gemini, groq), users
}

func TestRespondPrimarySuccess(t *testing.T) {
	ctx := context.Background()
	gemini := &stubClient{name: "gemini", reply: "Howdy!"}
	groq := &stubClient{name: "groq", reply: "unused"}

	eng, users := newTestEngine(t, gemini, groq)

	reply := eng.Respond(ctx, "u1", "hello there")

	assert.Equal(t, "Howdy!", reply)
	assert.Equal(t, 1, gemini.calls)
	assert.Equal(t, 0, groq.calls)

	history := users.GetHistory(ctx, "u1", 10)
	require.Len(t, history, 1)
	assert.Equal(t, "hello there", history[0].UserMessage)
	assert.Equal(t, "Howdy!", history[0].BotReply)
}

func TestRespondFallbackOnPrimaryFailure(t *testing.T) {
	ctx := context.Background()
	gemini := &stubClient{name: "gemini", err: fmt.Errorf("quota: %w", ai.ErrModelUnavailable)}
	groq := &stubClient{name: "groq", reply: "backup here"}

	eng, users := newTestEngine(t, gemini, groq)

	reply := eng.Respond(ctx, "u1", "hello")

	assert.Equal(t, "backup here", reply)
	assert.Equal(t, 1, gemini.calls)
	assert.Equal(t, 1, groq.calls)

	// Fallback replies persist like any other
	history := users.GetHistory(ctx, "u1", 10)
	require.Len(t, history, 1)
	assert.Equal(t, "backup here", history[0].BotReply)
}

func TestRespondBothProvidersFail(t *testing.T) {
	ctx := context.Background()
	gemini := &stubClient{name: "gemini", err: fmt.Errorf("down: %w", ai.ErrModelUnavailable)}
	groq := &stubClient{name: "groq", err: fmt.Errorf("down: %w", ai.ErrModelUnavailable)}

	eng, users := newTestEngine(t, gemini, groq)

	users.AddToHistory(ctx, "u1", "earlier", "reply")
	before := len(users.GetHistory(ctx, "u1", 0))

	reply := eng.Respond(ctx, "u1", "hello")

	assert.Equal(t, ApologyReply, reply)
	assert.Equal(t, 1, gemini.calls)
	assert.Equal(t, 1, groq.calls)

	// Nothing persisted on the double-failure path
	assert.Len(t, users.GetHistory(ctx, "u1", 0), before)
	assert.Empty(t, users.GetFacts(ctx, "u1"))
}

func TestRespondEmptyReplyUsesPlaceholder(t *testing.T) {
	ctx := context.Background()
	gemini := &stubClient{name: "gemini", reply: "   "}
	groq := &stubClient{name: "groq"}

	eng, users := newTestEngine(t, gemini, groq)

	reply := eng.Respond(ctx, "u1", "hello")

	assert.Equal(t, NoContentReply, reply)

	// Placeholder turns still persist
	history := users.GetHistory(ctx, "u1", 10)
	require.Len(t, history, 1)
	assert.Equal(t, NoContentReply, history[0].BotReply)
}

func TestRespondHonorsModelPreference(t *testing.T) {
	ctx := context.Background()
	gemini := &stubClient{name: "gemini", reply: "from gemini"}
	groq := &stubClient{name: "groq", reply: "from groq"}

	eng, users := newTestEngine(t, gemini, groq)
	require.NoError(t, users.SetModel(ctx, "u1", "groq"))

	reply := eng.Respond(ctx, "u1", "hello")

	assert.Equal(t, "from groq", reply)
	assert.Equal(t, 1, groq.calls)
	assert.Equal(t, 0, gemini.calls)
}

func TestRespondInjectsMemoryContext(t *testing.T) {
	ctx := context.Background()
	gemini := &stubClient{name: "gemini", reply: "ok"}
	groq := &stubClient{name: "groq"}

	eng, users := newTestEngine(t, gemini, groq)
	users.AddFact(ctx, "u1", "User's name is Alex")
	eng.Shared().AddFact(ctx, "The server is friendly")

	eng.Respond(ctx, "u1", "hello")

	// System prompt leads, memory context follows
	assert.Contains(t, gemini.lastCtx, DefaultSystemPrompt)
	assert.Contains(t, gemini.lastCtx, "User's name is Alex")
	assert.Contains(t, gemini.lastCtx, "The server is friendly")
}

func TestRespondEndToEndFactExtraction(t *testing.T) {
	ctx := context.Background()
	gemini := &stubClient{name: "gemini", reply: "Nice to meet you, Alex! [REMEMBER: User's name is Alex]"}
	groq := &stubClient{name: "groq"}

	eng, users := newTestEngine(t, gemini, groq)

	reply := eng.Respond(ctx, "u1", "My name is Alex")

	assert.Equal(t, "Nice to meet you, Alex!", reply)

	facts := users.GetFacts(ctx, "u1")
	require.Len(t, facts, 1)
	assert.Equal(t, "User's name is Alex", facts[0].Text)

	// Extracted facts also feed the community memory
	sharedFacts := eng.Shared().AllFacts(ctx)
	require.Len(t, sharedFacts, 1)
	assert.Equal(t, "User's name is Alex", sharedFacts[0].Text)

	history := users.GetHistory(ctx, "u1", 10)
	require.Len(t, history, 1)
	assert.Equal(t, "Nice to meet you, Alex!", history[0].BotReply)
	assert.NotContains(t, history[0].BotReply, "REMEMBER")
}

func TestTool(t *testing.T) {
	ctx := context.Background()

	t.Run("renders template and returns reply", func(t *testing.T) {
		gemini := &stubClient{name: "gemini", reply: "Why did the cowboy..."}
		groq := &stubClient{name: "groq"}
		eng, _ := newTestEngine(t, gemini, groq)

		reply := eng.Tool(ctx, "u1", "joke", "cowboys")

		assert.Equal(t, "Why did the cowboy...", reply)
		assert.Equal(t, 1, gemini.calls)
	})

	t.Run("unknown task yields apology", func(t *testing.T) {
		gemini := &stubClient{name: "gemini", reply: "unused"}
		groq := &stubClient{name: "groq"}
		eng, _ := newTestEngine(t, gemini, groq)

		assert.Equal(t, ApologyReply, eng.Tool(ctx, "u1", "not-a-task", ""))
		assert.Equal(t, 0, gemini.calls)
	})

	t.Run("uses tool model preference", func(t *testing.T) {
		gemini := &stubClient{name: "gemini", reply: "from gemini"}
		groq := &stubClient{name: "groq", reply: "from groq"}
		eng, users := newTestEngine(t, gemini, groq)

		require.NoError(t, users.SetToolModel(ctx, "u1", "groq"))

		assert.Equal(t, "from groq", eng.Tool(ctx, "u1", "joke", ""))
	})

	t.Run("tool turns write no history", func(t *testing.T) {
		gemini := &stubClient{name: "gemini", reply: "a joke"}
		groq := &stubClient{name: "groq"}
		eng, users := newTestEngine(t, gemini, groq)

		eng.Tool(ctx, "u1", "joke", "")

		assert.Empty(t, users.GetHistory(ctx, "u1", 10))
	})
}
