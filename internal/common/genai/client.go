// Package genai is a thin client for the generative-language REST API.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "jobboard/internal/common/errors"
	"jobboard/internal/common/logger"
)

var (
	ErrUpstreamFailed    = errors.New("AI_UPSTREAM_FAILED")
	ErrResponseTruncated = errors.New("AI_RESPONSE_TRUNCATED")
	ErrEmptyResponse     = errors.New("AI_EMPTY_RESPONSE")
)

// Generator is the narrow interface services depend on, so tests can
// substitute a fake instead of the HTTP client.
type Generator interface {
	Generate(ctx context.Context, parts []Part) (string, error)
}

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     logger.Logger
}

// Part is one element of a request's content: text or an inline document.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inline_data,omitempty"`
}

// Blob carries a base64-encoded document with its MIME type.
type Blob struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []Part `json:"parts"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// NewClient builds a client for the given endpoint. The timeout bounds each
// generate call; a zero timeout leaves only the request context's deadline.
func NewClient(baseURL, apiKey, model string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.WithFields(map[string]interface{}{"component": "genai"}),
	}
}

// Generate sends the parts to the model and returns the text of the first
// candidate. A candidate that stopped on its token limit is an error: the
// caller must not treat truncated JSON as usable output.
func (c *Client) Generate(ctx context.Context, parts []Part) (string, error) {
	reqBody := generateRequest{Contents: []content{{Parts: parts}}}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrUpstreamFailed, err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		upstream, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("upstream request failed", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(upstream),
		})
		return "", apperrors.NewAIUpstreamError(fmt.Sprintf("status %d: %s", resp.StatusCode, upstream))
	}

	var apiResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpstreamFailed, err)
	}

	if len(apiResp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", ErrEmptyResponse)
	}

	candidate := apiResp.Candidates[0]
	if candidate.FinishReason == "MAX_TOKENS" {
		return "", fmt.Errorf("%w: finishReason=MAX_TOKENS", ErrResponseTruncated)
	}

	var text strings.Builder
	for _, p := range candidate.Content.Parts {
		text.WriteString(p.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("%w: candidate has no text", ErrEmptyResponse)
	}

	return text.String(), nil
}

// StripFences removes a markdown code fence wrapping from model output.
// Models regularly ignore "JSON only" instructions and wrap the payload in
// ```json ... ``` anyway.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
