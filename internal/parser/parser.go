// Package parser is the client of the hosted document parsing API. It turns
// a downloadable file reference into plain text.
package parser

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

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"docvault/internal/config"
	"docvault/internal/logger"
)

var (
	// ErrDisabled is returned when no parsing endpoint is configured.
	ErrDisabled = errors.New("parser: disabled")
	// ErrEmptyResult is returned when the service answers without text.
	ErrEmptyResult = errors.New("parser: empty result")
	// ErrMalformedResponse is returned when a 2xx answer is not valid JSON.
	ErrMalformedResponse = errors.New("parser: malformed response")
)

// Request identifies the file to parse. URL must be fetchable by the
// parsing service, typically a presigned object URL.
type Request struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
}

// Parser submits a file and waits for its text.
type Parser interface {
	Parse(ctx context.Context, req Request) (string, error)
}

// StatusError is a non-2xx answer from the parsing service.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("parser: status %d: %s", e.Code, e.Message)
}

// Temporary reports whether the request may succeed if repeated.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

type response struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// Client calls POST {base}/v1/parse with a bearer API key.
type Client struct {
	baseURL    string
	apiKey     string
	http       *http.Client
	maxRetries int
	newBackOff func() backoff.BackOff
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.http = c } }

// WithBackOff sets the retry schedule factory; one schedule is built per call.
func WithBackOff(fn func() backoff.BackOff) Option { return func(cl *Client) { cl.newBackOff = fn } }

func New(cfg config.ParserConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 10 * time.Second
			return b
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	return c
}

// Enabled reports whether a parsing endpoint is configured.
func (c *Client) Enabled() bool { return c.baseURL != "" }

// Parse sends req and returns the extracted text. Transport failures, 429 and
// 5xx answers are retried; any other status fails immediately.
func (c *Client) Parse(ctx context.Context, req Request) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("parser: encode request: %w", err)
	}

	log := logger.From(ctx).With(logger.Component("parser"), zap.String("filename", req.Filename))
	attempt := func() (string, error) {
		return c.do(ctx, body)
	}
	text, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.maxRetries)+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn("parse attempt failed, retrying", zap.Error(err), zap.Duration("retry_in", next))
		}),
	)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) do(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/parse", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("parser: build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}
		return "", fmt.Errorf("parser: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return "", fmt.Errorf("parser: read response: %w", err)
	}

	var out response
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Error bodies are best effort; the status alone decides retrying.
		msg := out.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		se := &StatusError{Code: resp.StatusCode, Message: msg}
		if !se.Temporary() {
			return "", backoff.Permanent(se)
		}
		return "", se
	}

	if decodeErr != nil {
		return "", backoff.Permanent(fmt.Errorf("%w: %w", ErrMalformedResponse, decodeErr))
	}
	if strings.TrimSpace(out.Content) == "" {
		return "", backoff.Permanent(ErrEmptyResult)
	}
	return out.Content, nil
}
