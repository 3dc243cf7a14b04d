package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// IdentityHeader carries the signed-in identity on every backend request
const IdentityHeader = "X-Clerk-User-Id"

// ErrUnavailable is returned when the backend could not be reached
var ErrUnavailable = errors.New("backend unavailable")

// APIError is a non-2xx response from the backend
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a backend 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// StatusOf returns the backend status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client talks HTTP+JSON to the external REST backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new Client rooted at baseURL
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout}, logger)
}

// NewClientWithHTTP creates a Client using a caller supplied http.Client
func NewClientWithHTTP(baseURL string, httpClient *http.Client, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With().Str("component", "backend_client").Logger(),
	}
}

// errorBody is the error envelope the backend returns on failure
type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// getJSON performs a GET and decodes the response into out
func (c *Client) getJSON(ctx context.Context, identity, path string, query url.Values, out any) error {
	return c.doJSON(ctx, identity, http.MethodGet, path, query, nil, out)
}

// doJSON sends body (if any) as JSON and decodes the response into out (if any)
func (c *Client) doJSON(ctx context.Context, identity, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, identity, out)
}

// send attaches the identity header, executes req and decodes the result
func (c *Client) send(req *http.Request, identity string, out any) error {
	req.Header.Set(IdentityHeader, identity)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Warn().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("Backend request failed")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError turns a non-2xx response into an APIError, using the body's
// error field verbatim when present
func decodeError(resp *http.Response) error {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("request failed with status %d", resp.StatusCode),
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return apiErr
	}
	var body errorBody
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	return apiErr
}

func workspacePath(workspaceID string, parts ...string) string {
	p := "/workspaces/" + url.PathEscape(workspaceID)
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}
