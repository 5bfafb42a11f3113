// Package zsxq fetches posts and comment threads from Zsxq groups,
// handling cursor pagination, request throttling and bounded retries.
package zsxq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/auth"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/config"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/retry"
)

// TimeLayout is the timestamp format the API speaks, timezone included.
const TimeLayout = "2006-01-02T15:04:05.000-0700"

const (
	topicPageSize   = 20
	commentPageSize = 30

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
)

// ErrAuthFailed marks an invalid or expired session. It is never
// retried here; refreshing the session is the login collaborator's job.
var ErrAuthFailed = errors.New("zsxq: authentication failed")

// Client is a thin typed wrapper over the Zsxq v2 HTTP API.
type Client struct {
	http  *resty.Client
	retry retry.Policy
}

// NewClient builds a client whose requests carry the session cookie.
func NewClient(creds auth.Credentials, cfg *config.Config) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.APIBaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeaders(map[string]string{
			"Cookie":     creds.CookieHeader(),
			"User-Agent": userAgent,
			"Origin":     "https://wx.zsxq.com",
			"Referer":    "https://wx.zsxq.com/",
			"Accept":     "application/json, text/plain, */*",
		})

	return &Client{
		http:  httpClient,
		retry: retry.Transport(),
	}
}

// ListTopics returns one newest-first page of topics for a group. An
// empty endTime asks for the latest page; otherwise it is the cursor in
// TimeLayout format.
func (c *Client) ListTopics(ctx context.Context, groupID string, endTime string) ([]rawTopic, error) {
	params := map[string]string{
		"scope": "all",
		"count": fmt.Sprintf("%d", topicPageSize),
	}
	if endTime != "" {
		params["end_time"] = endTime
	}

	raw, err := c.get(ctx, fmt.Sprintf("/groups/%s/topics", groupID), params)
	if err != nil {
		return nil, err
	}

	var data topicsData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode topics page: %w", err)
	}
	return data.Topics, nil
}

// ListComments returns the comment thread of a topic, oldest first.
func (c *Client) ListComments(ctx context.Context, topicID string) ([]rawComment, error) {
	params := map[string]string{
		"count": fmt.Sprintf("%d", commentPageSize),
		"sort":  "asc",
	}

	raw, err := c.get(ctx, fmt.Sprintf("/topics/%s/comments", topicID), params)
	if err != nil {
		return nil, err
	}

	var data commentsData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return data.Comments, nil
}

// Validate checks the session by requesting the current user. A
// non-succeeded response means the cookie is invalid or expired.
func (c *Client) Validate(ctx context.Context) error {
	raw, err := c.get(ctx, "/users/self", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	var data selfData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	return nil
}

// get performs one API call under the transport retry policy and
// unwraps the response envelope.
func (c *Client) get(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	var payload json.RawMessage

	err := c.retry.Do(ctx, func() error {
		req := c.http.R().SetContext(ctx)
		if params != nil {
			req.SetQueryParams(params)
		}

		resp, err := req.Get(path)
		if err != nil {
			return fmt.Errorf("GET %s: %w", path, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode())
		}

		var env envelope
		if err := json.Unmarshal(resp.Body(), &env); err != nil {
			return fmt.Errorf("GET %s: decode envelope: %w", path, err)
		}
		if !env.Succeeded {
			return fmt.Errorf("GET %s: API code %d", path, env.Code)
		}

		payload = env.RespData
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}
