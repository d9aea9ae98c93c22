package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// UserCookieName is the cookie the backend uses to identify the signed-in
// account. The client forwards it on every call.
const UserCookieName = "uid"

// DefaultTimeout bounds every backend call unless overridden.
const DefaultTimeout = 10 * time.Second

// Client talks to the backend's /data endpoints.
type Client struct {
	http *resty.Client
	log  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for per-request debug output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(DefaultTimeout).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	c := &Client{http: rc, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.log.Debug("backend call",
			zap.String("method", resp.Request.Method),
			zap.String("url", resp.Request.URL),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("latency", resp.Time()),
		)
		return nil
	})
	return c
}

func (c *Client) request(ctx context.Context, uid string) *resty.Request {
	r := c.http.R().SetContext(ctx)
	if uid != "" {
		r.SetCookie(&http.Cookie{Name: UserCookieName, Value: uid})
	}
	return r
}

// ViewData fetches the dashboard payload for the user identified by uid.
// It returns ErrNotReady while the backend is still collecting data.
func (c *Client) ViewData(ctx context.Context, uid string) (*ViewData, error) {
	resp, err := c.request(ctx, uid).Get("/data/view")
	if err != nil {
		return nil, fmt.Errorf("get view data: %w", err)
	}
	if resp.StatusCode() == http.StatusNoContent {
		return nil, ErrNotReady
	}
	var out ViewData
	if err := decode(resp, &out); err != nil {
		return nil, fmt.Errorf("get view data: %w", err)
	}
	return &out, nil
}

// Day fetches the follow events recorded on isoDate (YYYY-MM-DD).
func (c *Client) Day(ctx context.Context, uid, isoDate string) (*DayData, error) {
	resp, err := c.request(ctx, uid).
		SetPathParam("date", isoDate).
		Get("/data/day/{date}")
	if err != nil {
		return nil, fmt.Errorf("get day %s: %w", isoDate, err)
	}
	var out DayData
	if err := decode(resp, &out); err != nil {
		return nil, fmt.Errorf("get day %s: %w", isoDate, err)
	}
	return &out, nil
}

// Criteria lists the user's saved search criteria in backend order.
func (c *Client) Criteria(ctx context.Context, uid string) ([]SearchCriterion, error) {
	resp, err := c.request(ctx, uid).Get("/data/search")
	if err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}
	var out []SearchCriterion
	if err := decode(resp, &out); err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}
	return out, nil
}

// Criterion fetches a single criterion by id.
func (c *Client) Criterion(ctx context.Context, uid, id string) (*SearchCriterion, error) {
	resp, err := c.request(ctx, uid).
		SetPathParam("id", id).
		Get("/data/search/{id}")
	if err != nil {
		return nil, fmt.Errorf("get criterion %s: %w", id, err)
	}
	var out SearchCriterion
	if err := decode(resp, &out); err != nil {
		return nil, fmt.Errorf("get criterion %s: %w", id, err)
	}
	return &out, nil
}

// SaveCriterion creates (empty ID) or updates a criterion and returns the
// stored version.
func (c *Client) SaveCriterion(ctx context.Context, uid string, sc SearchCriterion) (*SearchCriterion, error) {
	resp, err := c.request(ctx, uid).
		SetHeader("Content-Type", "application/json").
		SetBody(sc).
		Post("/data/search")
	if err != nil {
		return nil, fmt.Errorf("save criterion: %w", err)
	}
	var out SearchCriterion
	if err := decode(resp, &out); err != nil {
		return nil, fmt.Errorf("save criterion: %w", err)
	}
	return &out, nil
}

// DeleteCriterion deletes a criterion by id.
func (c *Client) DeleteCriterion(ctx context.Context, uid, id string) error {
	resp, err := c.request(ctx, uid).
		SetPathParam("id", id).
		Delete("/data/search/{id}")
	if err != nil {
		return fmt.Errorf("delete criterion %s: %w", id, err)
	}
	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("delete criterion %s: %w", id, err)
	}
	return nil
}

// SearchResults fetches one page of results for criterion id, starting
// after key (empty for the first page).
func (c *Client) SearchResults(ctx context.Context, uid, id, key string) (*ResultPage, error) {
	r := c.request(ctx, uid).SetPathParam("id", id)
	if key != "" {
		r.SetQueryParam("key", key)
	}
	resp, err := r.Get("/data/search/{id}/results")
	if err != nil {
		return nil, fmt.Errorf("search results %s: %w", id, err)
	}
	var out ResultPage
	if err := decode(resp, &out); err != nil {
		return nil, fmt.Errorf("search results %s: %w", id, err)
	}
	return &out, nil
}

func checkStatus(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	apiErr := &APIError{}
	// Error bodies are best-effort; a plain-text body still yields a status.
	_ = json.Unmarshal(resp.Body(), apiErr)
	apiErr.Status = resp.StatusCode()
	return apiErr
}

func decode(resp *resty.Response, out any) error {
	if err := checkStatus(resp); err != nil {
		return err
	}
	body := resp.Body()
	if len(body) == 0 {
		return fmt.Errorf("empty response body (status %d)", resp.StatusCode())
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
