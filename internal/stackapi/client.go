package stackapi

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

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/stackusage/internal/config"
)

const (
	EndpointQuestions = "questions"
	EndpointAnswers   = "answers"
	EndpointUsers     = "users"
)

// StatusError reports a non-2xx response from the API. Fetching stops at the
// first failure; there is no retry policy.
type StatusError struct {
	Endpoint   string
	Page       int
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("/%s page %d failed with status %d: %s", e.Endpoint, e.Page, e.StatusCode, e.Body)
}

// envelope is the common wrapper around every list response. When the
// endpoint is overloaded it sets backoff; ignoring it earns a 502 on the
// next call.
type envelope struct {
	Items   []json.RawMessage `json:"items"`
	HasMore bool              `json:"has_more"`
	Backoff int               `json:"backoff"`
}

// Snapshot holds one full fetch of the three collections. Raw payloads are
// kept alongside the decoded records so dumps stay byte-faithful to the API.
type Snapshot struct {
	Questions []Question
	Answers   []Answer
	Users     []User

	RawQuestions []json.RawMessage
	RawAnswers   []json.RawMessage
	RawUsers     []json.RawMessage

	FetchedAt time.Time
}

type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	filters    config.FilterConfig
	httpClient *http.Client
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg config.APIConfig) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/") + "/",
		apiKey:     cfg.APIKey,
		pageSize:   cfg.PageSize,
		filters:    cfg.Filters,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		sleep:      sleepContext,
	}
}

// Snapshot fetches questions, answers, and users in full. All three
// collections are fetched before the caller writes anything, so a failed
// endpoint leaves no artifacts behind.
func (c *Client) Snapshot(ctx context.Context) (*Snapshot, error) {
	rawQuestions, err := c.FetchAll(ctx, EndpointQuestions, c.filters.Questions)
	if err != nil {
		return nil, err
	}
	rawAnswers, err := c.FetchAll(ctx, EndpointAnswers, c.filters.Answers)
	if err != nil {
		return nil, err
	}
	rawUsers, err := c.FetchAll(ctx, EndpointUsers, c.filters.Users)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		RawQuestions: rawQuestions,
		RawAnswers:   rawAnswers,
		RawUsers:     rawUsers,
		FetchedAt:    time.Now(),
	}
	if snap.Questions, err = decodeItems[Question](EndpointQuestions, rawQuestions); err != nil {
		return nil, err
	}
	if snap.Answers, err = decodeItems[Answer](EndpointAnswers, rawAnswers); err != nil {
		return nil, err
	}
	if snap.Users, err = decodeItems[User](EndpointUsers, rawUsers); err != nil {
		return nil, err
	}
	return snap, nil
}

// FetchAll pages through one endpoint until has_more is false and returns the
// raw items in order.
func (c *Client) FetchAll(ctx context.Context, endpoint string, filterID string) ([]json.RawMessage, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("endpoint", endpoint))

	var items []json.RawMessage
	for page := 1; ; page++ {
		logger.Info("fetching page", zap.Int("page", page))
		env, err := c.fetchPage(ctx, endpoint, filterID, page)
		if err != nil {
			return nil, err
		}
		items = append(items, env.Items...)
		if !env.HasMore {
			break
		}
		if env.Backoff > 0 {
			wait := time.Duration(env.Backoff) * time.Second
			logger.Info("backoff requested by endpoint", zap.Duration("wait", wait))
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
	}
	logger.Info("fetch complete", zap.Int("items", len(items)))
	return items, nil
}

func (c *Client) fetchPage(ctx context.Context, endpoint string, filterID string, page int) (*envelope, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("pagesize", strconv.Itoa(c.pageSize))
	if filterID != "" {
		params.Set("filter", filterID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request for /%s: %w", endpoint, err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get /%s page %d: %w", endpoint, page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{
			Endpoint:   endpoint,
			Page:       page,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode /%s page %d: %w", endpoint, page, err)
	}
	return &env, nil
}

func decodeItems[T any](endpoint string, raw []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raw))
	for i, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("decode /%s item %d: %w", endpoint, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
