// Package api wraps outbound requests to the restaurant-recommendation
// service. It owns URL construction, bearer-token attachment, body
// serialization, response classification and the uniform error taxonomy.
// It never touches the session store or the UI.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource supplies the current bearer credential. An empty string means
// no session is held.
type TokenSource interface {
	Token() string
}

// CallOptions shape a single request. Method defaults to GET. RequiresAuth
// is declared by the caller, never inferred from the path.
type CallOptions struct {
	Method       string
	Body         any
	RequiresAuth bool
}

// Client is the gateway adapter for the remote API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *zap.Logger
}

// New creates a client for the service at baseURL.
func New(baseURL string, timeout time.Duration, tokens TokenSource, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     logger,
	}
}

// Call performs a request against path (relative to the base URL) and
// returns the parsed body: decoded JSON when the Content-Type says JSON,
// otherwise the raw text. A non-2xx response or a transport failure yields
// a *Error and no body.
func (c *Client) Call(ctx context.Context, path string, opts CallOptions) (any, error) {
	body, contentType, err := c.do(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	if isJSON(contentType) {
		var parsed any
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, &Error{Status: 0, Message: fmt.Sprintf("malformed JSON response: %v", err)}
		}
		return parsed, nil
	}
	return string(body), nil
}

// CallInto performs a request and decodes the JSON response into out.
func (c *Client) CallInto(ctx context.Context, path string, opts CallOptions, out any) error {
	body, contentType, err := c.do(ctx, path, opts)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if !isJSON(contentType) {
		return &Error{Status: 0, Message: fmt.Sprintf("expected JSON response, got %q", contentType)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Status: 0, Message: fmt.Sprintf("malformed JSON response: %v", err)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, opts CallOptions) ([]byte, string, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	requestID := uuid.NewString()
	start := time.Now()

	var reqBody io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if opts.RequiresAuth {
		token := ""
		if c.tokens != nil {
			token = c.tokens.Token()
		}
		if token == "" {
			// Precondition violation: the call proceeds without the header
			// and the server rejects it. The adapter does not guess.
			c.logger.Warn("authenticated call without a session token",
				zap.String("req", requestID),
				zap.String("method", method),
				zap.String("path", path))
		} else {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("request transport failure",
			zap.String("req", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, "", &Error{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &Error{Status: 0, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	c.logger.Debug("request completed",
		zap.String("req", requestID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.logger.Warn("request rejected",
			zap.String("req", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, "", &Error{Status: resp.StatusCode, Message: msg, Authenticated: opts.RequiresAuth}
	}

	return body, resp.Header.Get("Content-Type"), nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
