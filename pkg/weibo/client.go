package weibo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wbprivacy/pkg/config"
	errs "wbprivacy/pkg/errors"
	"wbprivacy/pkg/logger"
	"wbprivacy/pkg/ratelimit"
	"wbprivacy/pkg/retry"
)

const (
	// xsrfCookieName is the cookie segment the anti-forgery token is derived from
	xsrfCookieName = "XSRF-TOKEN"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Client-Version values observed on the two endpoints
	listClientVersion   = "v2.47.139"
	modifyClientVersion = "3.0.0"
)

// Client talks to the Weibo web API on behalf of one logged-in session.
// The raw cookie and the extracted anti-forgery token are fixed at
// construction and replayed verbatim on every request; all calls are
// sequential, one request in flight at a time.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	cookie     string
	xsrfToken  string

	retryConfig *config.RetryConfig
	pacer       ratelimit.Pacer
	pageDelay   time.Duration
	logger      logger.Logger
}

// NewClient creates a client from a raw browser cookie blob with default
// retry and pacing behaviour. It fails if the blob does not contain a
// usable XSRF-TOKEN segment.
func NewClient(cookie string, timeout time.Duration, log logger.Logger) (*Client, error) {
	cfg := config.DefaultConfig()
	cfg.Client.Timeout = timeout
	return NewClientWithConfig(cookie, cfg, log)
}

// NewClientWithConfig creates a client using the timeout, pacing, and retry
// settings from cfg
func NewClientWithConfig(cookie string, cfg *config.Config, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	token, ok := ExtractXSRFToken(cookie)
	if !ok {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeAuth,
			Message: "cookie does not contain an " + xsrfCookieName + " segment; copy the full cookie header from a logged-in browser session",
		}
	}

	userAgent := cfg.Weibo.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Client.Timeout,
		},
		headers: map[string]string{
			"Accept":           "application/json, text/plain, */*",
			"Accept-Language":  "zh-CN,zh;q=0.9,en;q=0.8",
			"User-Agent":       userAgent,
			"X-Requested-With": "XMLHttpRequest",
			"Sec-Fetch-Dest":   "empty",
			"Sec-Fetch-Mode":   "cors",
			"Sec-Fetch-Site":   "same-origin",
			"Cookie":           cookie,
			"X-Xsrf-Token":     token,
		},
		baseURL:     BaseURL,
		cookie:      cookie,
		xsrfToken:   token,
		retryConfig: &cfg.Retry,
		pacer:       ratelimit.NewIntervalPacer(cfg.Client.PageDelay),
		pageDelay:   cfg.Client.PageDelay,
		logger:      log,
	}

	return c, nil
}

// ExtractXSRFToken scans a raw cookie blob for the XSRF-TOKEN segment and
// returns its first '='-delimited value, trimmed. The second return value is
// false when the segment is missing or its value is empty.
func ExtractXSRFToken(cookie string) (string, bool) {
	for _, segment := range strings.Split(cookie, ";") {
		segment = strings.TrimSpace(segment)
		if !strings.HasPrefix(segment, xsrfCookieName+"=") {
			continue
		}
		value := strings.TrimSpace(strings.Split(segment, "=")[1])
		return value, value != ""
	}
	return "", false
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetBaseURL overrides the API base URL (used against test servers)
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimSuffix(base, "/")
}

// XSRFToken returns the anti-forgery token extracted at construction
func (c *Client) XSRFToken() string {
	return c.xsrfToken
}

// send issues one HTTP attempt: builds a fresh request, applies the session
// headers plus any per-endpoint extras, and reads the full body. Transport
// failures and non-2xx statuses come back as typed, retryable errors.
func (c *Client) send(ctx context.Context, method, rawURL string, extra map[string]string, form url.Values) ([]byte, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	for key, value := range extra {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": method,
		"url":    rawURL,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   method,
			"url":      rawURL,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeTransport,
			Message: fmt.Sprintf("request failed: %v", err),
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeTransport,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   method,
		"url":      rawURL,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeHTTP,
			Message: fmt.Sprintf("HTTP error %d: %s", resp.StatusCode, bodyPreview(data, 500)),
			Code:    resp.StatusCode,
		}
	}

	return data, nil
}

// sendWithRetry wraps send in the shared retry policy. The closure builds a
// fresh request per attempt so POST bodies are re-encoded on every try.
func (c *Client) sendWithRetry(ctx context.Context, method, rawURL string, extra map[string]string, form url.Values) ([]byte, error) {
	return retry.DoWithResult(func() ([]byte, error) {
		return c.send(ctx, method, rawURL, extra, form)
	}, c.retryConfigFor(ctx))
}

// retryConfigFor translates the client's retry settings into a retry.Config
func (c *Client) retryConfigFor(ctx context.Context) *retry.Config {
	cfg := retry.DefaultConfig()
	cfg.Context = ctx
	cfg.Logger = c.logger

	if c.retryConfig != nil {
		if !c.retryConfig.Enabled {
			cfg.MaxAttempts = 1
			return cfg
		}
		if c.retryConfig.MaxAttempts > 0 {
			cfg.MaxAttempts = c.retryConfig.MaxAttempts
		}
		backoff := retry.DefaultExponentialBackoff()
		if c.retryConfig.BaseDelay > 0 {
			backoff.BaseDelay = c.retryConfig.BaseDelay
		}
		if c.retryConfig.MaxDelay > 0 {
			backoff.MaxDelay = c.retryConfig.MaxDelay
		}
		cfg.Backoff = backoff
	}

	return cfg
}

// FetchPostsPage fetches a single page of a user's posts. A failing ok flag
// is an api error; an undecodable body is a parse error. Both are terminal
// for the listing.
func (c *Client) FetchPostsPage(ctx context.Context, userID string, page int) ([]Post, error) {
	extra := map[string]string{
		"Referer":        ProfileURL(c.baseURL, userID),
		"Client-Version": listClientVersion,
	}

	body, err := c.sendWithRetry(ctx, http.MethodGet, MyBlogURL(c.baseURL, userID, page), extra, nil)
	if err != nil {
		return nil, err
	}

	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.logger.ErrorWithFields("failed to parse list envelope", map[string]interface{}{
			"user_id":      userID,
			"page":         page,
			"error":        err.Error(),
			"body_preview": bodyPreview(body, 200),
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeParse,
			Message: fmt.Sprintf("failed to parse list envelope at page %d: %v", page, err),
		}
	}

	if env.OK != okSuccess {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeAPI,
			Message: fmt.Sprintf("api returned ok=%d at page %d", env.OK, page),
		}
	}

	return env.Data.List, nil
}

// FetchAllPosts walks the user's posts page by page, starting at page 1,
// until an empty page or the page ceiling. maxPages <= 0 means unbounded.
// Pages are paced at the configured inter-page delay, independent of retry
// backoff. Any page error discards the accumulator: the caller gets the full
// ordered list or nothing.
func (c *Client) FetchAllPosts(ctx context.Context, userID string, maxPages int) ([]Post, error) {
	c.logger.InfoWithFields("listing posts", map[string]interface{}{
		"user_id":   userID,
		"max_pages": maxPages,
	})

	var all []Post
	c.pacer.Reset()

	for page := 1; maxPages <= 0 || page <= maxPages; page++ {
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		posts, err := c.FetchPostsPage(ctx, userID, page)
		if err != nil {
			return nil, err
		}

		if len(posts) == 0 {
			// Exhausted: this page and all subsequent ones are assumed empty
			break
		}

		c.logger.InfoWithFields("fetched page", map[string]interface{}{
			"page":  page,
			"posts": len(posts),
		})
		all = append(all, posts...)
	}

	c.logger.InfoWithFields("listing complete", map[string]interface{}{
		"user_id":     userID,
		"total_posts": len(all),
	})

	return all, nil
}

// SetVisibility changes one post's visibility level. The body carries the
// identifier under the pluralized "ids" field together with the numeric
// visibility code. A 2xx response whose body lacks the result envelope is
// treated as success: the platform omits it on some successful responses.
func (c *Client) SetVisibility(ctx context.Context, postID string, visibility Visibility) error {
	if !visibility.IsValid() {
		return fmt.Errorf("invalid visibility level: %d", int(visibility))
	}

	form := url.Values{}
	form.Set("ids", postID)
	form.Set("visible", strconv.Itoa(visibility.Code()))

	extra := map[string]string{
		"Content-Type":   "application/x-www-form-urlencoded",
		"Origin":         c.baseURL,
		"Referer":        c.baseURL,
		"Client-Version": modifyClientVersion,
	}

	body, err := c.sendWithRetry(ctx, http.MethodPost, c.baseURL+ModifyVisibleEndpoint, extra, form)
	if err != nil {
		return err
	}

	var env modifyEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		// Known platform quirk: a 2xx response whose body does not decode is
		// presumed successful. Logged loudly so genuine failures from future
		// API changes are not silently masked.
		c.logger.WarnWithFields("modify response did not match expected envelope; assuming success", map[string]interface{}{
			"post_id":      postID,
			"body_preview": bodyPreview(body, 200),
		})
		return nil
	}

	if env.OK == nil {
		c.logger.DebugWithFields("modify envelope missing ok flag; assuming success", map[string]interface{}{
			"post_id": postID,
		})
		return nil
	}

	if *env.OK != okSuccess {
		msg := env.Msg
		if msg == "" {
			msg = "unknown error"
		}
		return &errs.Error{
			Type:    errs.ErrorTypeMutation,
			Message: msg,
		}
	}

	return nil
}

// bodyPreview truncates a response body for log output
func bodyPreview(body []byte, max int) string {
	s := string(body)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
