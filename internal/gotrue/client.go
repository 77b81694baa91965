// internal/gotrue/client.go
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	xerrors "friendchat-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// AdminClient talks to the external auth backend's admin API: user
// provisioning and one-time-code issuance. It is a consumer of that API, the
// backend's own behavior is out of scope.
type AdminClient struct {
	baseURL    string // e.g. https://project.example.co/auth/v1
	serviceKey string
	anonKey    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewAdminClient(baseURL, serviceKey, anonKey string, logger *zap.Logger) *AdminClient {
	return &AdminClient{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type createUserRequest struct {
	ID           string                 `json:"id,omitempty"`
	Email        string                 `json:"email"`
	EmailConfirm bool                   `json:"email_confirm"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

type generateLinkRequest struct {
	Type  string `json:"type"`
	Email string `json:"email"`
}

type generateLinkResponse struct {
	EmailOTP   string `json:"email_otp"`
	ActionLink string `json:"action_link"`
}

type apiError struct {
	Message   string `json:"msg"`
	ErrorCode string `json:"error_code"`
}

// CreateUser provisions a backing identity with a caller-chosen id.
// Provisioning is idempotent: "already registered" responses are success, not
// error, so a retried flow never fails on its own earlier work.
func (c *AdminClient) CreateUser(ctx context.Context, id, email string) error {
	body := createUserRequest{
		ID:           id,
		Email:        email,
		EmailConfirm: true,
		UserMetadata: map[string]interface{}{"beta_user": true},
	}

	status, respBody, err := c.do(ctx, http.MethodPost, "/admin/users", c.serviceKey, body)
	if err != nil {
		return err
	}

	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		// User already exists; treat as success.
		c.logger.Debug("identity already provisioned",
			zap.String("user_id", id),
			zap.Int("status", status),
		)
		return nil
	default:
		return fmt.Errorf("%w: create user returned status %d: %s",
			xerrors.ErrTransport, status, errorMessage(respBody))
	}
}

// GenerateOTP issues a one-time code tied to an email identity, used by the
// client to establish a live session with the external backend.
func (c *AdminClient) GenerateOTP(ctx context.Context, email string) (string, error) {
	body := generateLinkRequest{Type: "magiclink", Email: email}

	status, respBody, err := c.do(ctx, http.MethodPost, "/admin/generate_link", c.serviceKey, body)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("%w: generate_link returned status %d: %s",
			xerrors.ErrTransport, status, errorMessage(respBody))
	}

	var resp generateLinkResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to decode generate_link response: %w", xerrors.ErrTransport, err)
	}
	if resp.EmailOTP == "" {
		return "", fmt.Errorf("%w: generate_link response missing email_otp", xerrors.ErrTransport)
	}

	return resp.EmailOTP, nil
}

// RevokeSession performs the remote half of a sign-out on behalf of the
// session holder. Callers treat failures as best-effort only.
func (c *AdminClient) RevokeSession(ctx context.Context, sessionToken string) error {
	status, respBody, err := c.do(ctx, http.MethodPost, "/logout", sessionToken, nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: logout returned status %d: %s",
			xerrors.ErrTransport, status, errorMessage(respBody))
	}
	return nil
}

func (c *AdminClient) do(ctx context.Context, method, path, bearer string, payload interface{}) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s %s: %w", xerrors.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to read response: %w", xerrors.ErrTransport, err)
	}

	return resp.StatusCode, respBody, nil
}

func errorMessage(body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
