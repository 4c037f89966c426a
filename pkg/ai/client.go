// Package ai wraps the two text-generation providers behind one uniform
// client contract. Provider-specific request shapes and response envelopes
// never leak past the implementations in this package.
package ai

import (
	"context"
	"errors"
)

// ErrModelUnavailable marks a provider that cannot serve the call right now:
// missing credential, non-success status, or transport failure. The dialogue
// engine treats any error wrapping this sentinel as a cue to try the other
// provider.
var ErrModelUnavailable = errors.New("model unavailable")

// Client is the uniform contract both providers implement. contextBlock
// carries the system instruction plus assembled memory context; prompt is the
// new user message.
//
// A structurally valid response with no text is an empty-string success, not
// an error - the caller applies its own empty-response fallback.
type Client interface {
	// Name returns the provider's short name for logs and prefs
	Name() string

	// Chat sends one generation request and returns the reply text
	Chat(ctx context.Context, prompt, contextBlock string) (string, error)
}

// VisionClient is implemented by providers that accept image input alongside
// text. Only Gemini does; there is no fallback for vision calls.
type VisionClient interface {
	Client

	// AnalyzeImage sends the prompt with raw image bytes and returns the
	// reply text
	AnalyzeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}
