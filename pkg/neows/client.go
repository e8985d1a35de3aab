package neows

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samvad-hq/neowatch/pkg/httpclient"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public NeoWs REST root.
	DefaultBaseURL = "https://api.nasa.gov/neo/rest/v1"
	// DefaultAPIKey is NASA's shared, heavily throttled demo key.
	DefaultAPIKey = "DEMO_KEY"

	defaultUserAgent = "neowatch/1.0"
	feedPath         = "/feed"
	nonceParam       = "_"
)

// Options configures a Client. Empty strings and zero durations fall back to defaults.
type Options struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	// WindowDays is the day radius; negative selects DefaultWindowDays.
	WindowDays int
	Timeout    time.Duration
	// MinInterval spaces consecutive fetches; zero disables pacing.
	MinInterval time.Duration
	// HTTPClient is the transport the time-bounded fetcher drives.
	HTTPClient httpclient.Client
	Now        func() time.Time
	Log        Logger
}

// Client retrieves the close-approach feed for a date window.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	windowDays int
	fetcher    *httpclient.TimeBoundedFetcher
	limiter    *rate.Limiter
	now        func() time.Time
	log        Logger
}

// NewClient builds a feed client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		apiKey:     strings.TrimSpace(opts.APIKey),
		userAgent:  strings.TrimSpace(opts.UserAgent),
		windowDays: opts.WindowDays,
		fetcher:    httpclient.NewTimeBoundedFetcher(opts.HTTPClient, opts.Timeout),
		now:        opts.Now,
		log:        ensureLogger(opts.Log),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.apiKey == "" {
		c.apiKey = DefaultAPIKey
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.windowDays < 0 {
		c.windowDays = DefaultWindowDays
	}
	if c.now == nil {
		c.now = time.Now
	}
	if opts.MinInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	}
	return c
}

// CurrentWindow returns the window centered on the client's clock.
func (c *Client) CurrentWindow() Window {
	return WindowAround(c.now(), c.windowDays)
}

// Fetch retrieves the feed for the current window.
func (c *Client) Fetch(ctx context.Context) (*FeedPayload, Window, error) {
	w := c.CurrentWindow()
	payload, err := c.FetchWindow(ctx, w)
	return payload, w, err
}

// FetchWindow retrieves and decodes the feed for w. Failures are one of
// httpclient.ErrTimeout, *httpclient.TransportError, ErrRateLimited,
// *HTTPError or *MalformedResponseError; none are retried.
func (c *Client) FetchWindow(ctx context.Context, w Window) (*FeedPayload, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for request slot: %w", err)
		}
	}

	nonce := c.now().UnixMilli()
	target := c.feedURL(w, c.apiKey, nonce)
	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": c.userAgent,
	}

	start := time.Now()
	resp, err := c.fetcher.Get(ctx, target, headers)
	if err != nil {
		c.log.ErrorObj("feed fetch failed", "fetch_error", map[string]any{
			"url":        c.feedURL(w, "***", nonce),
			"elapsed_ms": time.Since(start).Milliseconds(),
			"error":      err.Error(),
		})
		return nil, err
	}

	if err := classify(resp); err != nil {
		c.log.WarnObj("feed rejected request", "fetch_error", map[string]any{
			"window": w.String(),
			"status": resp.StatusCode(),
			"body":   responseSnippet(resp.Body()),
			"error":  err.Error(),
		})
		return nil, err
	}

	var payload FeedPayload
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		c.log.ErrorObj("feed body is not valid JSON", "fetch_error", map[string]any{
			"window": w.String(),
			"body":   responseSnippet(resp.Body()),
			"error":  err.Error(),
		})
		return nil, &MalformedResponseError{Err: err}
	}

	c.log.InfoObj("feed fetched", "fetch_meta", map[string]any{
		"window":        w.String(),
		"status":        resp.StatusCode(),
		"element_count": payload.ElementCount,
		"bytes":         len(resp.Body()),
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return &payload, nil
}

// feedURL embeds the window, key, and a cache-busting nonce.
func (c *Client) feedURL(w Window, key string, nonce int64) string {
	q := url.Values{}
	q.Set("start_date", w.StartDate())
	q.Set("end_date", w.EndDate())
	q.Set("api_key", key)
	q.Set(nonceParam, strconv.FormatInt(nonce, 10))
	return c.baseURL + feedPath + "?" + q.Encode()
}

// classify maps a non-success response onto the error taxonomy.
func classify(resp httpclient.Response) error {
	code := resp.StatusCode()
	if code >= 200 && code < 300 {
		return nil
	}
	if code == http.StatusTooManyRequests || strings.Contains(string(resp.Body()), RateLimitMarker) {
		return ErrRateLimited
	}
	return &HTTPError{Status: code, StatusText: resp.StatusText()}
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
