package engine

import (
	"regexp"
	"strings"
)

// directiveRe matches an inline [REMEMBER: ...] fact directive. The keyword
// is case-insensitive; the fact body runs to the closing bracket.
var directiveRe = regexp.MustCompile(`(?i)\[\s*remember\s*:\s*([^\]]*)\]`)

// horizontalSpaceRe matches runs of spaces and tabs left behind after a
// directive is cut out
var horizontalSpaceRe = regexp.MustCompile(`[ \t]{2,}`)

// ExtractFacts pulls every remember directive out of raw model output.
// It returns the facts in order of appearance and the cleaned text with all
// directives removed.
//
// Cleaning rule: each directive is deleted, runs of spaces/tabs collapse to a
// single space (newlines are preserved), trailing spaces before a newline are
// dropped, and the result is trimmed. Malformed or absent directives simply
// yield zero facts; this function never fails.
func ExtractFacts(raw string) ([]string, string) {
	var facts []string

	for _, match := range directiveRe.FindAllStringSubmatch(raw, -1) {
		fact := strings.TrimSpace(match[1])
		if fact != "" {
			facts = append(facts, fact)
		}
	}

	cleaned := directiveRe.ReplaceAllString(raw, "")
	cleaned = horizontalSpaceRe.ReplaceAllString(cleaned, " ")

	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	cleaned = strings.TrimSpace(strings.Join(lines, "\n"))

	return facts, cleaned
}
