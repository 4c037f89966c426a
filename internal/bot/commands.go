package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/outlawlabs/outlaw/pkg/memory"
)

// toolCommands are the one-shot AI task commands dispatched through the
// engine's tool path
var toolCommands = map[string]bool{
	"joke":      true,
	"trivia":    true,
	"riddle":    true,
	"translate": true,
	"summarize": true,
	"explain":   true,
	"sentiment": true,
	"mathsolve": true,
	"tips":      true,
	"creative":  true,
	"codegen":   true,
}

const helpText = "**Outlaw commands** (prefix `%s`)\n" +
	"`chat <message>` — talk to me directly\n" +
	"`memory` — see what I remember about you, `memory clear` to wipe it\n" +
	"`setaimodel gemini|groq` — pick my chat brain\n" +
	"`settoolmodel gemini|groq` — pick my brain for task commands\n" +
	"`setcolor #rrggbb` / `settitle <text>` / `setfooter <text>` — style my replies\n" +
	"`embedsettings` — show your current reply styling\n" +
	"`setaichannel #channel` — make me answer everything in one channel\n" +
	"`analyze <image url>` — describe an image\n" +
	"`translate <language> <text>` — or reply to a message with just the language\n" +
	"`joke` `trivia` `riddle` `summarize` `explain` `sentiment` " +
	"`mathsolve` `tips` `creative` `codegen` — one-shot tasks\n" +
	"`ping` — check I'm alive"

// handleCommand dispatches one prefix command
func (b *Bot) handleCommand(m *discordgo.MessageCreate, name string, args []string) {
	// ping and help are free of cooldowns and AI calls
	switch name {
	case "ping":
		b.replyText(m, fmt.Sprintf("Pong! Heartbeat %dms.", b.dg.HeartbeatLatency().Milliseconds()))
		return
	case "help":
		b.replyText(m, fmt.Sprintf(helpText, b.prefix))
		return
	}

	known := toolCommands[name]
	switch name {
	case "chat", "memory", "forget", "setaimodel", "settoolmodel",
		"setcolor", "settitle", "setfooter", "embedsettings",
		"setaichannel", "aichat", "analyze":
		known = true
	}
	if !known {
		return
	}

	if !b.cooldowns.Allow(m.Author.ID, name) {
		remaining := b.cooldowns.Remaining(m.Author.ID, name)
		b.replyText(m, fmt.Sprintf("⏳ Hold your horses, wait %.1fs before using that again.", remaining.Seconds()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	input := strings.Join(args, " ")
	users := b.engine.Users()

	switch {
	case name == "chat":
		if strings.TrimSpace(input) == "" {
			b.replyText(m, "Say something after the command, partner.")
			return
		}
		_ = b.dg.ChannelTyping(m.ChannelID)
		reply := b.engine.Respond(ctx, m.Author.ID, input)
		b.replyEmbed(ctx, m, reply)

	case name == "memory":
		b.handleMemory(ctx, m, args)

	case name == "forget":
		_ = users.ClearUser(ctx, m.Author.ID)
		b.replyText(m, "Done! I've forgotten everything about you. We can start fresh.")

	case name == "setaimodel":
		if err := users.SetModel(ctx, m.Author.ID, input); err != nil {
			b.replyText(m, fmt.Sprintf("Can't do that: %v", err))
			return
		}
		b.replyText(m, fmt.Sprintf("✅ Chat model set to `%s`.", input))

	case name == "settoolmodel":
		if err := users.SetToolModel(ctx, m.Author.ID, input); err != nil {
			b.replyText(m, fmt.Sprintf("Can't do that: %v", err))
			return
		}
		b.replyText(m, fmt.Sprintf("✅ Tool model set to `%s`.", input))

	case name == "setcolor":
		if err := users.SetColor(ctx, m.Author.ID, input); err != nil {
			b.replyText(m, "Couldn't save that color, try again later.")
			return
		}
		b.replyText(m, fmt.Sprintf("✅ Embed color set to `%s`.", strings.TrimSpace(input)))

	case name == "settitle":
		if err := users.SetEmbedTitle(ctx, m.Author.ID, input); err != nil {
			b.replyText(m, "Couldn't save that title, try again later.")
			return
		}
		b.replyText(m, "✅ Embed title updated.")

	case name == "setfooter":
		if err := users.SetEmbedFooter(ctx, m.Author.ID, input); err != nil {
			b.replyText(m, "Couldn't save that footer, try again later.")
			return
		}
		b.replyText(m, "✅ Embed footer updated.")

	case name == "embedsettings":
		record := users.GetUser(ctx, m.Author.ID)
		embed := buildSettingsEmbed(record.EmbedTitle, record.Color, record.EmbedFooter, b.prefix)
		if _, err := b.dg.ChannelMessageSendEmbedReply(m.ChannelID, embed, m.Reference()); err != nil {
			log.Printf("[DISCORD]: failed to send settings embed: %v", err)
		}

	case name == "setaichannel" || name == "aichat":
		b.handleSetAIChannel(ctx, m, args)

	case name == "analyze":
		url := imageURLArg(args)
		if url == "" {
			b.replyText(m, fmt.Sprintf("Please provide an image URL. Example: `%sanalyze https://example.com/image.jpg`", b.prefix))
			return
		}
		_ = b.dg.ChannelTyping(m.ChannelID)
		b.replyEmbed(ctx, m, b.engine.AnalyzeImage(ctx, url))

	case name == "translate":
		text := resolveTranslateInput(args, referencedContent(m))
		if text == "" {
			b.replyText(m, fmt.Sprintf("Usage: `%stranslate <language> <text>`, or reply to a message with `%stranslate <language>`.", b.prefix, b.prefix))
			return
		}
		_ = b.dg.ChannelTyping(m.ChannelID)
		b.replyEmbed(ctx, m, b.engine.Tool(ctx, m.Author.ID, "translate", text))

	case toolCommands[name]:
		_ = b.dg.ChannelTyping(m.ChannelID)
		reply := b.engine.Tool(ctx, m.Author.ID, name, input)
		b.replyEmbed(ctx, m, reply)
	}
}

// handleMemory shows or clears a user's stored facts
func (b *Bot) handleMemory(ctx context.Context, m *discordgo.MessageCreate, args []string) {
	users := b.engine.Users()

	if len(args) > 0 && strings.EqualFold(args[0], "clear") {
		_ = users.ClearUser(ctx, m.Author.ID)
		b.replyText(m, "Done! I've forgotten everything about you. We can start fresh.")
		return
	}

	facts := users.GetFacts(ctx, m.Author.ID)
	if len(facts) == 0 {
		b.replyText(m, "I don't have any saved facts about you yet. Chat with me and I'll remember important things!")
		return
	}

	var sb strings.Builder
	sb.WriteString("**What I Remember About You:**\n\n")
	for i, f := range facts {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, f.Text))
	}

	response := sb.String()
	if len(response) > 1900 {
		response = response[:1900] + "..."
	}
	b.replyText(m, response)
}

// handleSetAIChannel binds free-form AI replies to one channel in a guild
func (b *Bot) handleSetAIChannel(ctx context.Context, m *discordgo.MessageCreate, args []string) {
	if m.GuildID == "" {
		b.replyText(m, "This command can only be used in a server.")
		return
	}

	channelID := ""
	if len(args) > 0 {
		channelID = parseChannelMention(args[0])
	}
	if channelID == "" {
		b.replyText(m, fmt.Sprintf("Please mention a channel. Example: `%ssetaichannel #channel`", b.prefix))
		return
	}

	if err := b.guilds.Set(ctx, m.GuildID, &memory.GuildConfig{AIChannelID: channelID}); err != nil {
		b.replyText(m, "Couldn't save that setting, try again later.")
		return
	}

	b.replyText(m, fmt.Sprintf("✅ AI chat channel set to <#%s>.", channelID))
}

// imageURLArg returns the first argument when it looks like an HTTP(S) URL
func imageURLArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	if !strings.HasPrefix(args[0], "http://") && !strings.HasPrefix(args[0], "https://") {
		return ""
	}
	return args[0]
}

// resolveTranslateInput builds the translate task input. With inline text the
// arguments pass through as-is; with only a language and a replied-to message,
// the replied message supplies the text.
func resolveTranslateInput(args []string, replied string) string {
	if len(args) >= 2 {
		return strings.Join(args, " ")
	}
	if len(args) == 1 && replied != "" {
		return args[0] + " " + replied
	}
	return ""
}

// referencedContent returns the trimmed content of the replied-to message, if any
func referencedContent(m *discordgo.MessageCreate) string {
	if m.ReferencedMessage == nil {
		return ""
	}
	return strings.TrimSpace(m.ReferencedMessage.Content)
}

// parseChannelMention extracts the channel ID from a <#123456> mention,
// returning "" when the argument is not a channel mention
func parseChannelMention(arg string) string {
	if !strings.HasPrefix(arg, "<#") || !strings.HasSuffix(arg, ">") {
		return ""
	}

	id := arg[2 : len(arg)-1]
	if id == "" {
		return ""
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return id
}
