package roblox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

const DefaultBaseURL = "https://groups.roblox.com"

const (
	// The wall endpoint only honors the session cookie when the request
	// looks like it comes from a browser.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/139.0.0.0 Safari/537.36"
	securityCookie   = ".ROBLOSECURITY"
)

var (
	// ErrPermissionDenied means the wall is not visible with the current
	// credentials. Nothing short of a better session cookie will help.
	ErrPermissionDenied = errors.New("group wall is not visible with the current credentials")

	// ErrRetryExhausted means the rate limit retry budget ran out without a
	// successful response.
	ErrRetryExhausted = errors.New("rate limit retry budget exhausted")

	// ErrAbortedByOperator means the continuation policy declined to retry
	// after an unexpected status.
	ErrAbortedByOperator = errors.New("fetch aborted after unexpected API status")
)

type ClientConfig struct {
	// BaseURL of the groups API. Defaults to the production endpoint.
	BaseURL string

	// Cookie is an optional .ROBLOSECURITY value granting elevated wall
	// visibility. Sent together with a browser user agent when present.
	Cookie string

	// MaxAttempts is the total request budget under rate limiting.
	MaxAttempts int

	// Backoff is the wait between rate limited attempts.
	Backoff time.Duration

	// Timeout bounds each request. Zero means wait indefinitely.
	Timeout time.Duration

	// Policy decides whether to retry after an unexpected status.
	// Defaults to aborting.
	Policy ContinuePolicy
}

// Client talks to the groups API with the retry and abort semantics the
// archiver needs: a permission failure is final, rate limiting is waited out
// up to a budget, and anything else unexpected is referred to the
// continuation policy.
type Client struct {
	http   *resty.Client
	config ClientConfig
}

func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.Policy == nil {
		config.Policy = AutoAbort{}
	}

	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetHeader("Accept", "application/json")

	if config.Cookie != "" {
		httpClient.
			SetHeader("User-Agent", browserUserAgent).
			SetCookie(&http.Cookie{Name: securityCookie, Value: config.Cookie})
	}

	return &Client{http: httpClient, config: config}
}

// WallPosts fetches one page of wall posts, newest first. An empty cursor
// requests the first page.
func (c *Client) WallPosts(ctx context.Context, groupID int64, cursor string) (*WallPage, error) {
	params := map[string]string{
		"limit":     "100",
		"sortOrder": "Desc",
	}
	if cursor != "" {
		params["cursor"] = cursor
	}

	var page WallPage
	if err := c.FetchJSON(ctx, fmt.Sprintf("/v2/groups/%d/wall/posts", groupID), params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchJSON issues a GET against path and decodes the response into out.
// 403 and an exhausted rate limit budget return sentinel errors the caller
// can test with errors.Is. Any other unexpected status is referred to the
// continuation policy; retrying on its say-so does not consume the rate
// limit budget.
func (c *Client) FetchJSON(ctx context.Context, path string, params map[string]string, out any) error {
	wait := backoff.NewConstantBackOff(c.config.Backoff)
	attempt := 1

	for {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetResult(out).
			Get(path)
		if err != nil {
			return fmt.Errorf("request %s: %w", path, err)
		}

		apiRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode())).Inc()

		switch resp.StatusCode() {
		case http.StatusOK:
			return nil

		case http.StatusForbidden:
			return ErrPermissionDenied

		case http.StatusTooManyRequests:
			apiRateLimitsTotal.Inc()
			if attempt >= c.config.MaxAttempts {
				return fmt.Errorf("%w after %d attempts", ErrRetryExhausted, attempt)
			}
			log.WithFields(log.Fields{
				"attempt": attempt,
				"max":     c.config.MaxAttempts,
				"wait":    c.config.Backoff,
			}).Warn("API rate limit reached, backing off")
			if err := sleep(ctx, wait.NextBackOff()); err != nil {
				return err
			}
			attempt++

		default:
			log.WithFields(log.Fields{
				"status": resp.StatusCode(),
				"path":   path,
			}).Warn("API returned an unexpected status")
			if !c.config.Policy.Continue(resp.StatusCode()) {
				apiOperatorAbortsTotal.Inc()
				return ErrAbortedByOperator
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
