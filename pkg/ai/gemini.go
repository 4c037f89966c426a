package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/outlawlabs/outlaw/pkg/utils"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash"
)

// GeminiClient calls the Google Gemini generateContent endpoint. Gemini takes
// a single combined user message, so context and prompt are concatenated into
// one part.
type GeminiClient struct {
	cfg        *utils.Config
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient creates a Gemini client. The API key is read from config at
// call time, so a missing credential surfaces per call rather than at startup.
func NewGeminiClient(cfg *utils.Config) *GeminiClient {
	return &GeminiClient{
		cfg:        cfg,
		model:      cfg.GetWithDefault("GEMINI_MODEL", defaultGeminiModel),
		baseURL:    cfg.GetWithDefault("GEMINI_BASE_URL", defaultGeminiBaseURL),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns the provider's short name
func (c *GeminiClient) Name() string {
	return "gemini"
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

// geminiInlineData carries base64-encoded binary media inside a request part
type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Chat sends one generation request to Gemini
func (c *GeminiClient) Chat(ctx context.Context, prompt, contextBlock string) (string, error) {
	full := prompt
	if contextBlock != "" {
		full = contextBlock + "\n\n" + prompt
	}

	return c.generate(ctx, []geminiPart{{Text: full}})
}

// AnalyzeImage sends one multimodal generation request: the instruction text
// plus the image as an inline base64 part
func (c *GeminiClient) AnalyzeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	return c.generate(ctx, []geminiPart{
		{Text: prompt},
		{InlineData: &geminiInlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(image),
		}},
	})
}

// generate runs one generateContent call with the given request parts
func (c *GeminiClient) generate(ctx context.Context, parts []geminiPart) (string, error) {
	apiKey := c.cfg.Get("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set: %w", ErrModelUnavailable)
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to serialize gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %v: %w", err, ErrModelUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini returned status %d: %s: %w", resp.StatusCode, string(b), ErrModelUnavailable)
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %v: %w", err, ErrModelUnavailable)
	}

	// A response without the expected text field is an empty success, the
	// caller supplies its own no-content fallback
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
