package completion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteSendsChatRequest(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "test-key", 5*time.Second)
	content, err := client.Complete(context.Background(), Request{
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   256,
		Text:        "describe the mug",
		Structured:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", content)

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	assert.Equal(t, "json_object", captured["response_format"].(map[string]any)["type"])

	messages := captured["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "describe the mug", messages[0].(map[string]any)["content"])
}

func TestCompleteAttachesImagePart(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "k", 5*time.Second)
	_, err := client.Complete(context.Background(), Request{
		Model:        "gpt-4o-mini",
		Text:         "describe",
		ImageDataURI: "data:image/png;base64,AAAA",
		ImageDetail:  "low",
	})
	require.NoError(t, err)

	content := captured["messages"].([]any)[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	image := content[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/png;base64,AAAA", image["url"])
	assert.Equal(t, "low", image["detail"])
}

func TestCompleteSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "k", 5*time.Second)
	_, err := client.Complete(context.Background(), Request{Model: "m", Text: "x"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "rate limited")
}

func TestCompleteTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "k", 20*time.Millisecond)
	_, err := client.Complete(context.Background(), Request{Model: "m", Text: "x"})
	assert.ErrorIs(t, err, ErrCompletionTimeout)
}

func TestTruncateElidesDataURIs(t *testing.T) {
	payload := "before data:image/png;base64," + strings.Repeat("A", 64) + " after"

	out := Truncate(payload, 512)

	assert.NotContains(t, out, strings.Repeat("A", 64))
	assert.Contains(t, out, "data:...elided...")
}

func TestTruncateShortensLongStrings(t *testing.T) {
	out := Truncate(strings.Repeat("x", 600), 512)
	assert.Len(t, out, 515)
}

func TestTruncateCutsOnRuneBoundaries(t *testing.T) {
	out := Truncate(strings.Repeat("é", 20), 10)
	assert.Equal(t, strings.Repeat("é", 10)+"...", out)
}
