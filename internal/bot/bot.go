// Package bot is the Discord connector: it owns the gateway session, decides
// which messages reach the dialogue engine, and renders replies as embeds.
package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/outlawlabs/outlaw/pkg/engine"
	"github.com/outlawlabs/outlaw/pkg/memory"
	"github.com/outlawlabs/outlaw/pkg/utils"
)

const defaultPrefix = "-"

// turnTimeout bounds one dialogue turn end to end
const turnTimeout = 2 * time.Minute

// Bot represents the Discord bot instance
type Bot struct {
	config *utils.Config      // Configuration struct
	dg     *discordgo.Session // Discord session
	engine *engine.Engine     // Dialogue engine
	guilds *memory.GuildStore // Per-guild configuration

	cooldowns *CooldownTable // Per-user per-command rate limiting
	prefix    string         // Command prefix

	bootTime     time.Time
	lastActivity atomic.Int64 // unix seconds of last gateway event
}

// NewBot creates a new Discord bot instance
func NewBot(cfg *utils.Config, eng *engine.Engine, guilds *memory.GuildStore) (*Bot, error) {
	// Get discord token
	token := cfg.Get("DISCORD_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN not set in config or environment")
	}

	// Create a new Discord session
	dg, err := discordgo.New("Bot " + strings.TrimPrefix(token, "Bot "))
	if err != nil {
		return nil, err
	}

	cooldownSeconds := cfg.GetIntWithDefault("COMMAND_COOLDOWN_SECONDS", 3)

	b := &Bot{
		config:    cfg,
		dg:        dg,
		engine:    eng,
		guilds:    guilds,
		cooldowns: NewCooldownTable(time.Duration(cooldownSeconds) * time.Second),
		prefix:    cfg.GetWithDefault("COMMAND_PREFIX", defaultPrefix),
		bootTime:  time.Now(),
	}
	b.touch()

	// Intents
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	// Handlers
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)

	return b, nil
}

// Start the bot and connect to Discord
func (b *Bot) Start() error {
	return b.dg.Open()
}

// Stop the bot and clean up resources
func (b *Bot) Stop() error {
	return b.dg.Close()
}

// Connected reports whether the gateway session is live
func (b *Bot) Connected() bool {
	return b.dg != nil && b.dg.DataReady
}

// Uptime returns how long the bot has been running
func (b *Bot) Uptime() time.Duration {
	return time.Since(b.bootTime)
}

// LastActivity returns the time of the last gateway event seen
func (b *Bot) LastActivity() time.Time {
	return time.Unix(b.lastActivity.Load(), 0)
}

// touch records gateway activity for the status endpoint
func (b *Bot) touch() {
	b.lastActivity.Store(time.Now().Unix())
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.touch()
	log.Printf("[DISCORD]: Logged in as: %s#%s", r.User.Username, r.User.Discriminator)
}

// onMessageCreate handles incoming messages
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore messages from bots, including ourselves
	if m.Author == nil || m.Author.Bot {
		return
	}

	content := strings.TrimSpace(m.Content)
	if content == "" {
		return
	}

	b.touch()

	// Prefix commands
	if strings.HasPrefix(content, b.prefix) {
		fields := strings.Fields(strings.TrimPrefix(content, b.prefix))
		if len(fields) == 0 {
			return
		}
		name := strings.ToLower(fields[0])
		args := fields[1:]

		go b.handleCommand(m, name, args)
		return
	}

	// Free-form AI triggers
	if b.shouldTriggerAI(s, m, content) {
		go b.handleChat(m, content)
	}
}

// shouldTriggerAI decides whether a plain message gets an AI reply
func (b *Bot) shouldTriggerAI(s *discordgo.Session, m *discordgo.MessageCreate, content string) bool {
	inAIChannel := false
	if m.GuildID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		cfg := b.guilds.Get(ctx, m.GuildID)
		cancel()
		inAIChannel = cfg.AIChannelID != "" && cfg.AIChannelID == m.ChannelID
	}

	mentioned := false
	for _, u := range m.Mentions {
		if u.ID == s.State.User.ID {
			mentioned = true
			break
		}
	}

	replyToBot := m.ReferencedMessage != nil &&
		m.ReferencedMessage.Author != nil &&
		m.ReferencedMessage.Author.ID == s.State.User.ID

	return triggerDecision(content, inAIChannel, mentioned, replyToBot)
}

// triggerKeywords always wake the bot regardless of channel
var triggerKeywords = []string{"outlaw", "comrade"}

// triggerDecision is the channel-independent part of the trigger policy
func triggerDecision(content string, inAIChannel, mentioned, replyToBot bool) bool {
	if inAIChannel || mentioned || replyToBot {
		return true
	}

	lower := strings.ToLower(content)
	for _, kw := range triggerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	return false
}

// handleChat runs one dialogue turn and replies with an embed
func (b *Bot) handleChat(m *discordgo.MessageCreate, content string) {
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	_ = b.dg.ChannelTyping(m.ChannelID)

	reply := b.engine.Respond(ctx, m.Author.ID, content)

	b.replyEmbed(ctx, m, reply)
}

// replyEmbed sends a reply styled with the user's embed preferences, falling
// back to plain text if the embed is rejected
func (b *Bot) replyEmbed(ctx context.Context, m *discordgo.MessageCreate, reply string) {
	users := b.engine.Users()
	embed := buildReplyEmbed(
		reply,
		users.GetEmbedTitle(ctx, m.Author.ID),
		users.GetEmbedFooter(ctx, m.Author.ID),
		users.GetColor(ctx, m.Author.ID),
		string(users.GetModel(ctx, m.Author.ID)),
	)

	if _, err := b.dg.ChannelMessageSendEmbedReply(m.ChannelID, embed, m.Reference()); err != nil {
		log.Printf("[DISCORD]: embed reply failed, sending plain text: %v", err)
		b.replyText(m, reply)
	}
}

// replyText sends a plain text reply
func (b *Bot) replyText(m *discordgo.MessageCreate, content string) {
	if _, err := b.dg.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		log.Printf("[DISCORD]: failed to reply in channel %s: %v", m.ChannelID, err)
	}
}
