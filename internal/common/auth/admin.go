// internal/common/auth/admin.go
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// AdminAPI is the privileged capability surface of the hosted auth platform.
// Services depend on this interface; tests substitute a fake.
type AdminAPI interface {
	ResetPassword(ctx context.Context, userID, newPassword string) error
	SetBanned(ctx context.Context, userID string, until *time.Time) error
	UpdateMetadata(ctx context.Context, userID string, metadata map[string]interface{}) error
	VerifyEmail(ctx context.Context, userID string) error
	DeleteUser(ctx context.Context, userID string) error
}

// AdminClient talks to the auth platform's admin REST API using the
// client-credentials flow. The access token is cached until expiry. One
// client is shared across request goroutines, so the token cache is guarded
// by a mutex.
type AdminClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// TokenResponse holds the response from the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func NewAdminClient(baseURL, realm, clientID, clientSecret string) *AdminClient {
	return &AdminClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// token returns a valid access token, fetching a new one via the client
// credentials flow when the cached one has expired. The lock is held across
// the refresh so concurrent callers share a single token request.
func (a *AdminClient) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tokenExpiry.After(time.Now()) && a.accessToken != "" {
		return a.accessToken, nil
	}

	tokenURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", a.baseURL, a.realm)

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", a.clientID)
	data.Set("client_secret", a.clientSecret)

	req, err := http.NewRequestWithContext(ctx, "POST", tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	a.accessToken = tokenResp.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	return a.accessToken, nil
}

func (a *AdminClient) do(ctx context.Context, method, path string, payload interface{}) error {
	tok, err := a.token(ctx)
	if err != nil {
		return fmt.Errorf("auth admin authentication failed: %w", err)
	}

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to serialize payload: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("admin API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func (a *AdminClient) ResetPassword(ctx context.Context, userID, newPassword string) error {
	path := fmt.Sprintf("/admin/realms/%s/users/%s/reset-password", a.realm, userID)
	return a.do(ctx, "PUT", path, map[string]interface{}{
		"type":      "password",
		"value":     newPassword,
		"temporary": false,
	})
}

// SetBanned marks the account disabled until the given time; a nil until
// re-enables the account.
func (a *AdminClient) SetBanned(ctx context.Context, userID string, until *time.Time) error {
	path := fmt.Sprintf("/admin/realms/%s/users/%s", a.realm, userID)
	if until == nil {
		return a.do(ctx, "PUT", path, map[string]interface{}{
			"enabled":    true,
			"attributes": map[string]interface{}{"banned_until": nil},
		})
	}
	return a.do(ctx, "PUT", path, map[string]interface{}{
		"enabled":    false,
		"attributes": map[string]interface{}{"banned_until": until.UTC().Format(time.RFC3339)},
	})
}

func (a *AdminClient) UpdateMetadata(ctx context.Context, userID string, metadata map[string]interface{}) error {
	path := fmt.Sprintf("/admin/realms/%s/users/%s", a.realm, userID)
	return a.do(ctx, "PUT", path, map[string]interface{}{
		"attributes": metadata,
	})
}

func (a *AdminClient) VerifyEmail(ctx context.Context, userID string) error {
	path := fmt.Sprintf("/admin/realms/%s/users/%s", a.realm, userID)
	return a.do(ctx, "PUT", path, map[string]interface{}{
		"emailVerified": true,
	})
}

func (a *AdminClient) DeleteUser(ctx context.Context, userID string) error {
	path := fmt.Sprintf("/admin/realms/%s/users/%s", a.realm, userID)
	return a.do(ctx, "DELETE", path, nil)
}
