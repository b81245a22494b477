package genai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobboard/internal/common/logger"

	"github.com/stretchr/testify/assert"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Contains(t, r.URL.Path, ":generateContent")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestClient_Generate_Success(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{
		"candidates": [{
			"content": {"parts": [{"text": "{\"score\": 80}"}]},
			"finishReason": "STOP"
		}]
	}`)
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "test-model", time.Second, logger.NewNop())
	out, err := client.Generate(context.Background(), []Part{{Text: "prompt"}})

	assert.NoError(t, err)
	assert.Equal(t, `{"score": 80}`, out)
}

func TestClient_Generate_MaxTokens(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{
		"candidates": [{
			"content": {"parts": [{"text": "{\"truncated"}]},
			"finishReason": "MAX_TOKENS"
		}]
	}`)
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "test-model", time.Second, logger.NewNop())
	_, err := client.Generate(context.Background(), []Part{{Text: "prompt"}})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrResponseTruncated))
}

func TestClient_Generate_UpstreamError(t *testing.T) {
	srv := newTestServer(t, http.StatusServiceUnavailable, `{"error": "overloaded"}`)
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "test-model", time.Second, logger.NewNop())
	_, err := client.Generate(context.Background(), []Part{{Text: "prompt"}})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
}

func TestClient_Generate_NoCandidates(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"candidates": []}`)
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "test-model", time.Second, logger.NewNop())
	_, err := client.Generate(context.Background(), []Part{{Text: "prompt"}})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no fences", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"uppercase fence", "```JSON\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  ```json\n{\"a\": 1}\n```  ", `{"a": 1}`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripFences(tt.input))
		})
	}
}
