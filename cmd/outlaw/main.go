package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/outlawlabs/outlaw/internal/api"
	"github.com/outlawlabs/outlaw/internal/bot"
	"github.com/outlawlabs/outlaw/pkg/ai"
	"github.com/outlawlabs/outlaw/pkg/engine"
	"github.com/outlawlabs/outlaw/pkg/memory"
	"github.com/outlawlabs/outlaw/pkg/storage"
	"github.com/outlawlabs/outlaw/pkg/utils"
)

func main() {
	// Find env file
	envFile := ".env"
	if os.Getenv("ENV_FILE") != "" {
		envFile = os.Getenv("ENV_FILE")
	}

	// Load global config
	cfg := utils.NewConfigFromEnv(envFile)

	// Pick the persistence backend
	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("[MAIN]: failed to open storage: %v", err)
	}

	users := memory.NewUserStore(store)
	shared := memory.NewSharedRegistry(store)
	guilds := memory.NewGuildStore(store)

	// Prompt table, with optional overrides from a yaml file. The persona
	// itself can also be swapped out with a plain text file.
	prompts := engine.LoadPromptTable(cfg.GetWithDefault("PROMPTS_FILE", ""))
	if path := cfg.Get("SYSTEM_PROMPT_FILE"); path != "" {
		prompts.System = utils.LoadPromptWithFallback(path, prompts.System)
	}

	// Dialogue engine with Gemini primary and Groq fallback
	eng := engine.New(users, shared, prompts,
		ai.NewGeminiClient(cfg),
		ai.NewGroqClient(cfg),
	)

	// Wait for interrupt signal to gracefully shut down the bot
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Println("[MAIN]: Starting Outlaw...")

	b, err := bot.NewBot(cfg, eng, guilds)
	if err != nil {
		log.Fatalf("[MAIN]: failed to create bot: %v", err)
	}

	if err := b.Start(); err != nil {
		log.Fatalf("[MAIN]: failed to start bot: %v", err)
	}

	// Keep-alive status endpoint
	server := api.NewServer(cfg, b)
	if err := server.Start(); err != nil {
		log.Fatalf("[MAIN]: failed to start status server: %v", err)
	}

	// Wait for shutdown signal
	log.Println("[MAIN]: Outlaw is running. Press Ctrl+C to exit.")
	<-ctx.Done()

	server.Stop()
	if err := b.Stop(); err != nil {
		log.Printf("[MAIN]: error during bot shutdown: %v", err)
	}

	log.Println("[MAIN]: Outlaw stopped gracefully")
}

// newStore opens the backend named by STORAGE_BACKEND (sql, remote, or file)
func newStore(cfg *utils.Config) (storage.Store, error) {
	switch cfg.GetWithDefault("STORAGE_BACKEND", "file") {
	case "sql":
		return storage.NewSQLStore(cfg.Get("DATABASE_URL"))

	case "remote":
		return storage.NewRemoteStore(cfg.Get("REMOTE_STORE_URL"), cfg.Get("REMOTE_STORE_TOKEN")), nil

	default:
		return storage.NewFileStore(cfg.GetWithDefault("MEMORY_FILE", "memory.json"))
	}
}
