package utils

import (
	"fmt"
	"os"
	"strings"
)

// LoadPrompt reads persona instructions from a plain text file
func LoadPrompt(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file %s: %w", path, err)
	}

	prompt := strings.TrimSpace(string(content))
	if prompt == "" {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}

	return prompt, nil
}

// LoadPromptWithFallback reads persona instructions from a file, returning the
// fallback when the file is missing, unreadable, or empty
func LoadPromptWithFallback(path, fallback string) string {
	if prompt, err := LoadPrompt(path); err == nil {
		return prompt
	}
	return fallback
}
