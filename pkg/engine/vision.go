package engine

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/outlawlabs/outlaw/pkg/ai"
)

// imageAnalysisPrompt is the fixed instruction for vision turns
const imageAnalysisPrompt = "Analyze this image and describe what you see in detail. " +
	"Include: objects, colors, composition, mood, and any text visible."

// ImageUnreadableReply is returned when the image URL cannot be fetched
const ImageUnreadableReply = "I couldn't fetch that image, partner. Check the URL and try again."

// maxImageBytes caps how much image data one vision turn will download
const maxImageBytes = 8 << 20

// AnalyzeImage runs one vision turn: fetch the image, send it with the
// analysis instruction to the vision-capable provider. There is no fallback
// provider for vision and no memory read/write.
func (e *Engine) AnalyzeImage(ctx context.Context, imageURL string) string {
	turnID := uuid.NewString()[:8]

	vision := e.visionClient()
	if vision == nil {
		log.Printf("[ENGINE]: turn %s: no vision-capable provider configured", turnID)
		return ApologyReply
	}

	image, mimeType, err := e.fetchImage(ctx, imageURL)
	if err != nil {
		log.Printf("[ENGINE]: turn %s: could not fetch image %s: %v", turnID, imageURL, err)
		return ImageUnreadableReply
	}

	raw, err := vision.AnalyzeImage(ctx, imageAnalysisPrompt, image, mimeType)
	if err != nil {
		log.Printf("[ENGINE]: turn %s: image analysis via %s failed: %v", turnID, vision.Name(), err)
		return ApologyReply
	}

	if strings.TrimSpace(raw) == "" {
		return NoContentReply
	}
	return strings.TrimSpace(raw)
}

// visionClient returns the configured provider that accepts image input
func (e *Engine) visionClient() ai.VisionClient {
	for _, c := range e.clients {
		if v, ok := c.(ai.VisionClient); ok {
			return v
		}
	}
	return nil
}

// fetchImage downloads an image URL and reports its mime type. Responses
// without an image content type default to JPEG.
func (e *Engine) fetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	image, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", err
	}
	if len(image) == 0 {
		return nil, "", fmt.Errorf("image fetch returned an empty body")
	}

	mimeType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}

	return image, mimeType, nil
}
