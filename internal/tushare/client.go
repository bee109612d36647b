package tushare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"tushare-mcp/internal/metrics"
	"tushare-mcp/internal/ratelimit"
	"tushare-mcp/pkg/model"
)

// DefaultBaseURL is the Tushare Pro HTTP endpoint
const DefaultBaseURL = "http://api.tushare.pro"

// Params are the named arguments of a Tushare interface
type Params map[string]any

// Request is one Tushare interface call
type Request struct {
	API    string
	Params Params
	Fields string // comma-separated, empty for the interface default
}

// Querier executes Tushare requests
type Querier interface {
	Query(ctx context.Context, req Request) (*model.Table, error)
}

// Options configures a Client
type Options struct {
	BaseURL    string
	RateLimit  int            // per minute, per API
	RateLimits map[string]int // per-API overrides of RateLimit
	Timeout    time.Duration
	MaxRetries int
}

// Client talks to the Tushare Pro API
type Client struct {
	token      string
	baseURL    string
	client     *http.Client
	limiters   *ratelimit.MultiLimiter
	maxRetries int
}

// NewClient creates a Tushare client
func NewClient(token string, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RateLimit < 1 {
		opts.RateLimit = 200
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	limiters := ratelimit.NewMultiLimiter(opts.RateLimit)
	for api, perMinute := range opts.RateLimits {
		limiters.Add(api, perMinute)
	}
	return &Client{
		token:      token,
		baseURL:    opts.BaseURL,
		client:     &http.Client{Timeout: opts.Timeout},
		limiters:   limiters,
		maxRetries: opts.MaxRetries,
	}
}

// IsAvailable checks if the client has a token
func (c *Client) IsAvailable() bool {
	return c.token != ""
}

// Limits reports the quota and back-off of every interface called so far
// or configured with its own quota
func (c *Client) Limits() []ratelimit.Status {
	return c.limiters.Status()
}

type apiRequest struct {
	APIName string         `json:"api_name"`
	Token   string         `json:"token"`
	Params  map[string]any `json:"params"`
	Fields  string         `json:"fields"`
}

type apiResponse struct {
	RequestID string       `json:"request_id"`
	Code      int          `json:"code"`
	Msg       string       `json:"msg"`
	Data      *model.Table `json:"data"`
}

// Query calls one Tushare interface, retrying transport failures and
// exhausted quotas with back-off
func (c *Client) Query(ctx context.Context, req Request) (*model.Table, error) {
	limiter := c.limiters.Get(req.API)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := limiter.Sleep(ctx); err != nil {
				return nil, err
			}
		}
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		start := time.Now()
		table, err := c.do(ctx, req)
		switch {
		case err == nil:
			metrics.ObserveUpstream(req.API, metrics.OutcomeOK, time.Since(start))
			limiter.ResetBackoff()
			return table, nil
		case IsRateLimited(err):
			metrics.ObserveUpstream(req.API, metrics.OutcomeRateLimited, time.Since(start))
			limiter.SignalRateLimited()
		default:
			metrics.ObserveUpstream(req.API, metrics.OutcomeError, time.Since(start))
		}

		lastErr = err
		if !IsRetryable(err) {
			return nil, err
		}
		log.Warn().Err(err).
			Str("api", req.API).
			Int("attempt", attempt+1).
			Dur("backoff", limiter.GetBackoff()).
			Msg("Tushare request failed, retrying")
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, req Request) (*model.Table, error) {
	body, err := json.Marshal(apiRequest{
		APIName: req.API,
		Token:   c.token,
		Params:  cleanParams(req.Params),
		Fields:  req.Fields,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &APIError{API: req.API, Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return nil, &APIError{API: req.API, Err: fmt.Errorf("status %d", resp.StatusCode), Retryable: true}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{API: req.API, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var data apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if data.Code != 0 {
		return nil, &APIError{
			API:       req.API,
			Code:      data.Code,
			Msg:       data.Msg,
			Retryable: data.Code == CodeRateLimited,
		}
	}
	if data.Data == nil {
		return &model.Table{}, nil
	}

	log.Debug().
		Str("api", req.API).
		Str("request_id", data.RequestID).
		Int("rows", data.Data.Len()).
		Msg("Tushare response")

	return data.Data, nil
}

// cleanParams drops unset arguments; Tushare treats an empty string as a filter
func cleanParams(p Params) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		switch x := v.(type) {
		case nil:
			continue
		case string:
			if x == "" {
				continue
			}
		case *int:
			if x == nil {
				continue
			}
			v = *x
		}
		out[k] = v
	}
	return out
}
