package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	defaultEmbedTitle = "Outlaw"

	// Discord caps embed descriptions at 4096; stay under with room for the
	// truncation marker
	maxEmbedDescription = 3900
)

// defaultEmbedColor is the neutral fallback when a user override fails to parse
const defaultEmbedColor = 0xffffff

// buildReplyEmbed renders a dialogue reply with the user's display overrides
func buildReplyEmbed(reply, title, footer, color, model string) *discordgo.MessageEmbed {
	if title == "" {
		title = defaultEmbedTitle
	}
	if footer == "" {
		footer = "Model: " + model
	}

	if len(reply) > maxEmbedDescription {
		reply = reply[:maxEmbedDescription] + "…"
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: reply,
		Color:       parseHexColor(color),
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
	}
}

// buildSettingsEmbed renders a user's current reply styling overrides, showing
// the default and how to customize for each unset field
func buildSettingsEmbed(title, color, footer, prefix string) *discordgo.MessageEmbed {
	titleValue := fmt.Sprintf("Default: **%s**\nCustomize: `%ssettitle Your Title`", defaultEmbedTitle, prefix)
	if title != "" {
		titleValue = title
	}

	colorValue := fmt.Sprintf("Default: **White (#ffffff)**\nCustomize: `%ssetcolor #rrggbb`", prefix)
	if color != "" {
		colorValue = color
	}

	footerValue := fmt.Sprintf("Default: **Model name**\nCustomize: `%ssetfooter Your Text`", prefix)
	if footer != "" {
		footerValue = footer
	}

	return &discordgo.MessageEmbed{
		Title:       "Your Embed Settings",
		Description: "Customize how Outlaw's replies look",
		Color:       parseHexColor(color),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Title", Value: titleValue},
			{Name: "Color", Value: colorValue},
			{Name: "Footer", Value: footerValue},
		},
	}
}

// parseHexColor converts a "#rrggbb" string to a Discord color int, falling
// back to the neutral default on any malformed input
func parseHexColor(s string) int {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return defaultEmbedColor
	}

	value, err := strconv.ParseInt(s, 16, 32)
	if err != nil {
		return defaultEmbedColor
	}

	return int(value)
}
