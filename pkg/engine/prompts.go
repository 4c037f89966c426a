package engine

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSystemPrompt is the fixed instruction sent ahead of every chat turn.
// The remember-directive wording must stay in sync with the parser in this
// package.
const DefaultSystemPrompt = `You are Outlaw, a friendly wild-west themed Discord companion. ` +
	`Answer conversationally and keep replies under two paragraphs. ` +
	`When you learn something worth remembering about the user (their name, preferences, ` +
	`important life details), include it inline as [REMEMBER: the fact] anywhere in your reply. ` +
	`The marker is stripped before the user sees your message, so never reference it.`

// defaultToolPrompts are the one-shot task templates. Each template has
// exactly one %s slot for the command input (which may be empty).
var defaultToolPrompts = map[string]string{
	"joke":      "Tell me a funny joke about: %s. If no topic is given pick one yourself. Make it actually funny and clever, not a dad joke (unless that's what they asked for). Keep it to 1-2 paragraphs max.",
	"trivia":    "Generate an interesting trivia question about %s (pick a random category if none given). Format your response as:\nQUESTION: [the question]\nA) [option A]\nB) [option B]\nC) [option C]\nD) [option D]\nANSWER: [correct letter and explanation]",
	"riddle":    "Give me a clever riddle about: %s (any topic if none given). State the riddle, then put the answer on a final line formatted as ANSWER: [answer].",
	"translate": "Translate the following. The first word is the target language, the rest is the text: %s. Reply with only the translation.",
	"summarize": "Summarize the following text in a short paragraph, keeping the key points:\n\n%s",
	"explain":   "Explain the following topic simply, as if to a curious beginner:\n\n%s",
	"sentiment": "Analyze the sentiment of the following text. State whether it is positive, negative, neutral or mixed and briefly why:\n\n%s",
	"mathsolve": "Solve this math problem step by step, showing your working:\n\n%s",
	"tips":      "Give three practical, specific tips about: %s. Number them.",
	"creative":  "Write a short piece of creative writing based on this prompt:\n\n%s",
	"codegen":   "Write code for the following task. Include a brief explanation after the code block:\n\n%s",
}

// PromptTable holds the system prompt and tool templates the engine renders
// from. Entries loaded from a prompts file overlay the compiled-in defaults.
type PromptTable struct {
	System string            `yaml:"system"`
	Tools  map[string]string `yaml:"tools"`
}

// DefaultPromptTable returns the compiled-in prompts
func DefaultPromptTable() *PromptTable {
	tools := make(map[string]string, len(defaultToolPrompts))
	for k, v := range defaultToolPrompts {
		tools[k] = v
	}
	return &PromptTable{System: DefaultSystemPrompt, Tools: tools}
}

// LoadPromptTable reads a YAML prompts file and overlays it on the defaults.
// A missing or unreadable file just yields the defaults.
func LoadPromptTable(path string) *PromptTable {
	table := DefaultPromptTable()
	if path == "" {
		return table
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[ENGINE]: could not read prompts file %s: %v", path, err)
		}
		return table
	}

	var loaded PromptTable
	if err := yaml.Unmarshal(content, &loaded); err != nil {
		log.Printf("[ENGINE]: could not parse prompts file %s: %v", path, err)
		return table
	}

	if strings.TrimSpace(loaded.System) != "" {
		table.System = strings.TrimSpace(loaded.System)
	}
	for task, tpl := range loaded.Tools {
		if strings.TrimSpace(tpl) != "" {
			table.Tools[task] = tpl
		}
	}

	return table
}

// RenderTool formats the template for a task with the given input
func (t *PromptTable) RenderTool(task, input string) (string, error) {
	tpl, ok := t.Tools[task]
	if !ok {
		return "", fmt.Errorf("unknown tool task %q", task)
	}
	return fmt.Sprintf(tpl, strings.TrimSpace(input)), nil
}
