package engine

import (
	"fmt"
	"strings"

	"github.com/outlawlabs/outlaw/pkg/memory"
)

// Section labels for the assembled context block
const (
	sharedFactsHeader = "Facts known about the community:"
	userFactsHeader   = "Things you remember about this user:"
	historyHeader     = "Recent conversation:"
)

// BuildContext assembles the bounded text block injected ahead of the user's
// new message. Order is fixed: shared facts, then user facts, then
// chronological history. Empty sections are omitted entirely; all empty
// yields "".
func BuildContext(shared, facts []memory.Fact, history []memory.HistoryEntry) string {
	var sections []string

	if len(shared) > 0 {
		lines := []string{sharedFactsHeader}
		for _, f := range shared {
			lines = append(lines, "- "+f.Text)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if len(facts) > 0 {
		lines := []string{userFactsHeader}
		for _, f := range facts {
			lines = append(lines, "- "+f.Text)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if len(history) > 0 {
		lines := []string{historyHeader}
		for _, h := range history {
			lines = append(lines, fmt.Sprintf("User: %s", h.UserMessage))
			lines = append(lines, fmt.Sprintf("Outlaw: %s", h.BotReply))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	return strings.Join(sections, "\n\n")
}
