// Package functions invokes named remote procedures on the serverless
// function runtime: symbol analysis, checkout session creation, video
// metadata lookup. Each function takes a JSON body and returns a JSON body
// or an error; the core treats them as opaque black boxes.
package functions

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"reverie/internal/observability"

	"github.com/go-resty/resty/v2"
)

// Client calls the function runtime over HTTP.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates a function client against the given base URL. The API
// key is the shared secret the function runtime also uses to call back into
// the webhook endpoints; an empty key sends no header.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	if apiKey != "" {
		c.SetHeader("X-Api-Key", apiKey)
	}
	return &Client{http: c, logger: logger}
}

type errorBody struct {
	Error string `json:"error"`
}

// Invoke posts payload to the named function and decodes the JSON response
// into out. Errors are surfaced as opaque strings; there is no automatic
// retry here.
func (c *Client) Invoke(ctx context.Context, name string, payload interface{}, out interface{}) error {
	ctx, span := observability.TraceFunctionInvocation(ctx, name)
	defer span.End()

	var remoteErr errorBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(out).
		SetError(&remoteErr).
		Post("/functions/" + name)
	if err != nil {
		observability.FunctionInvocations.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("invoke %s: %w", name, err)
	}
	if resp.StatusCode() != http.StatusOK {
		observability.FunctionInvocations.WithLabelValues(name, "error").Inc()
		if remoteErr.Error != "" {
			return fmt.Errorf("invoke %s: %s", name, remoteErr.Error)
		}
		return fmt.Errorf("invoke %s: status %d", name, resp.StatusCode())
	}

	observability.FunctionInvocations.WithLabelValues(name, "ok").Inc()
	return nil
}

// SymbolAnalysis is the AI interpretation of one dream's symbols.
type SymbolAnalysis struct {
	Symbols []Symbol `json:"symbols"`
	Summary string   `json:"summary"`
}

// Symbol is one recognized dream symbol with its reading.
type Symbol struct {
	Name    string `json:"name"`
	Meaning string `json:"meaning"`
}

// AnalyzeSymbols runs the AI symbol analysis over a dream's text.
func (c *Client) AnalyzeSymbols(ctx context.Context, dreamText string) (*SymbolAnalysis, error) {
	var result SymbolAnalysis
	err := c.Invoke(ctx, "analyze-symbols", map[string]string{"text": dreamText}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckoutSession is the payment processor session created server-side.
type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CreateCheckoutSession asks the payment function for a hosted checkout URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, userID uint, plan string) (*CheckoutSession, error) {
	var result CheckoutSession
	err := c.Invoke(ctx, "create-checkout", map[string]interface{}{
		"user_id": userID,
		"plan":    plan,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// VideoMetadata describes an externally hosted tutorial video.
type VideoMetadata struct {
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
	Duration     int    `json:"duration"`
}

// FetchVideoMetadata resolves metadata for a learning-step video URL.
func (c *Client) FetchVideoMetadata(ctx context.Context, url string) (*VideoMetadata, error) {
	var result VideoMetadata
	err := c.Invoke(ctx, "video-metadata", map[string]string{"url": url}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
