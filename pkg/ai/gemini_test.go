package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outlawlabs/outlaw/pkg/utils"
)

func geminiTestConfig(baseURL string) *utils.Config {
	return utils.NewConfig(map[string]string{
		"GEMINI_API_KEY":  "test-key",
		"GEMINI_BASE_URL": baseURL,
	})
}

func TestGeminiChatMissingCredential(t *testing.T) {
	client := NewGeminiClient(utils.NewConfig(nil))

	_, err := client.Chat(context.Background(), "hello", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelUnavailable))
}

func TestGeminiChatSuccess(t *testing.T) {
	var gotBody geminiRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"howdy partner"}]}}]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(geminiTestConfig(srv.URL))

	reply, err := client.Chat(context.Background(), "hello", "Things you remember:\n- likes cats")
	require.NoError(t, err)
	assert.Equal(t, "howdy partner", reply)

	// Gemini takes one combined user message, context first
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "user", gotBody.Contents[0].Role)
	assert.Equal(t, "Things you remember:\n- likes cats\n\nhello", gotBody.Contents[0].Parts[0].Text)
}

func TestGeminiAnalyzeImage(t *testing.T) {
	var gotBody geminiRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"a red barn at sunset"}]}}]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(geminiTestConfig(srv.URL))

	image := []byte{0xff, 0xd8, 0xff, 0xe0}
	reply, err := client.AnalyzeImage(context.Background(), "Describe this image.", image, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "a red barn at sunset", reply)

	// Instruction text first, then the image as an inline base64 part
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 2)
	assert.Equal(t, "Describe this image.", gotBody.Contents[0].Parts[0].Text)

	inline := gotBody.Contents[0].Parts[1].InlineData
	require.NotNil(t, inline)
	assert.Equal(t, "image/png", inline.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(image), inline.Data)
}

func TestGeminiAnalyzeImageDefaultsMimeType(t *testing.T) {
	var gotBody geminiRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(geminiTestConfig(srv.URL))

	_, err := client.AnalyzeImage(context.Background(), "Describe this image.", []byte{1}, "")
	require.NoError(t, err)

	require.Len(t, gotBody.Contents[0].Parts, 2)
	assert.Equal(t, "image/jpeg", gotBody.Contents[0].Parts[1].InlineData.MimeType)
}

func TestGeminiChatMissingTextIsEmptySuccess(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no candidates", body: `{"candidates":[]}`},
		{name: "candidate without parts", body: `{"candidates":[{"content":{"parts":[]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewGeminiClient(geminiTestConfig(srv.URL))

			reply, err := client.Chat(context.Background(), "hello", "")
			require.NoError(t, err)
			assert.Empty(t, reply)
		})
	}
}

func TestGeminiChatNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(geminiTestConfig(srv.URL))

	_, err := client.Chat(context.Background(), "hello", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelUnavailable))
}

func TestGroqChatMissingCredential(t *testing.T) {
	client := NewGroqClient(utils.NewConfig(nil))

	_, err := client.Chat(context.Background(), "hello", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelUnavailable))
}
