package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
	"github.com/noah-isme/internship-portal/pkg/middleware/requestid"
)

const (
	maxErrorBody    = 4 << 10
	maxDownloadSize = 50 << 20
)

// HTTPError is a non-2xx backend answer. It is carried as the wrapped error of
// the *appErrors.Error returned by every gateway.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

// Observer records backend call metrics.
type Observer interface {
	ObserveBackendRequest(method, endpoint string, status int, duration time.Duration)
}

// ClientConfig configures the backend client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
	Metrics    Observer
}

// Client performs single JSON round trips against the REST backend. It never
// retries, caches or batches.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics Observer
}

// NewClient builds a Client with sane defaults.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

type tokenKey struct{}

// WithToken attaches the bearer token used by authenticated calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the bearer token stored in ctx.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// call describes one backend request. Endpoint is the path template used as
// the metrics label; Path is the concrete path.
type call struct {
	Method   string
	Endpoint string
	Path     string
	Query    url.Values
	Body     interface{}
	Public   bool
}

func (c *Client) doJSON(ctx context.Context, req call, out interface{}) error {
	resp, err := c.send(ctx, req, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		c.logger.Warn("backend response decode failed", zap.String("endpoint", req.Endpoint), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrServer.Code, appErrors.ErrServer.Status, "unexpected response from the server")
	}
	return nil
}

type rawResponse struct {
	ContentType string
	FileName    string
	Data        []byte
}

func (c *Client) doRaw(ctx context.Context, req call) (*rawResponse, error) {
	resp, err := c.send(ctx, req, "*/*")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "download interrupted")
	}
	out := &rawResponse{ContentType: resp.Header.Get("Content-Type"), Data: data}
	if out.ContentType == "" {
		out.ContentType = "application/octet-stream"
	}
	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			out.FileName = params["filename"]
		}
	}
	return out, nil
}

// send performs the request and returns the response only for 2xx answers.
func (c *Client) send(ctx context.Context, req call, accept string) (*http.Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrServer.Code, appErrors.ErrServer.Status, "failed to encode request")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrServer.Code, appErrors.ErrServer.Status, "failed to build request")
	}
	httpReq.Header.Set("Accept", accept)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.Public {
		if token := TokenFrom(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if reqID := requestid.FromContext(ctx); reqID != "" {
		httpReq.Header.Set(requestid.Header, reqID)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		c.observe(req, http.StatusBadGateway, duration)
		c.logger.Warn("backend unreachable",
			zap.String("method", req.Method),
			zap.String("endpoint", req.Endpoint),
			zap.Duration("latency", duration),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, appErrors.ErrUnavailable.Message)
	}
	c.observe(req, resp.StatusCode, duration)

	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close() //nolint:errcheck
		message := readErrorMessage(resp.Body)
		c.logger.Info("backend request failed",
			zap.String("method", req.Method),
			zap.String("endpoint", req.Endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message))
		appErr := appErrors.FromStatus(resp.StatusCode, message)
		appErr.Err = &HTTPError{Status: resp.StatusCode, Message: message}
		return nil, appErr
	}
	return resp, nil
}

func (c *Client) observe(req call, status int, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveBackendRequest(req.Method, req.Endpoint, status, duration)
	}
}

// readErrorMessage extracts a human message from a JSON or plain-text error body.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		for _, candidate := range []string{payload.Message, payload.Detail, payload.Error} {
			if candidate != "" {
				return candidate
			}
		}
		return ""
	}
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, "<") {
		return ""
	}
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func idPath(prefix string, id int64, suffix ...string) string {
	path := fmt.Sprintf("%s/%d", prefix, id)
	for _, s := range suffix {
		path += "/" + s
	}
	return path
}
