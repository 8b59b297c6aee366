package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/navigation"
	"github.com/fekuna/omnipos-storefront-service/internal/navigation/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/platform/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPath        = "/categories"
	DefaultTimeout     = 5 * time.Second
	DefaultMaxAttempts = 3
	DefaultBackoffStep = time.Second
)

var (
	ErrUnexpectedStatus  = errors.New("unexpected status code")
	ErrMalformedResponse = errors.New("malformed categories response")
)

type Config struct {
	BaseURL string
	Path    string
	// Timeout bounds a single attempt, body decoding included.
	Timeout     time.Duration
	MaxAttempts int
	// BackoffStep is multiplied by the attempt number to get the wait before the next attempt.
	BackoffStep time.Duration
}

var _ navigation.Fetcher = (*Client)(nil)

type Client struct {
	http     *http.Client
	endpoint string
	cfg      Config
	logger   logger.ZapLogger
}

// NewClient fills an empty Path and non-positive Timeout and MaxAttempts with the defaults.
// A zero BackoffStep retries without waiting; a negative one gets DefaultBackoffStep.
// httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client, log logger.ZapLogger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("categories base url is required")
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BackoffStep < 0 {
		cfg.BackoffStep = DefaultBackoffStep
	}

	endpoint, err := url.JoinPath(cfg.BaseURL, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("build categories endpoint: %w", err)
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		http:     httpClient,
		endpoint: endpoint,
		cfg:      cfg,
		logger:   log,
	}, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// FetchCategories returns the upstream list verbatim, or an empty list once every attempt failed.
func (c *Client) FetchCategories(ctx context.Context) []model.Category {
	return c.Fetch(ctx).Categories
}

// Fetch runs the attempts strictly one after another.
func (c *Client) Fetch(ctx context.Context) dto.FetchResult {
	log := c.logger.With(
		zap.String("fetch_id", uuid.NewString()),
		zap.String("endpoint", c.endpoint),
	)

	var lastErr error
	attempt := 1
	for ; attempt <= c.cfg.MaxAttempts; attempt++ {
		log.Debug("Fetching categories", zap.Int("attempt", attempt), zap.Int("max_attempts", c.cfg.MaxAttempts))

		categories, err := c.fetchOnce(ctx)
		if err == nil {
			log.Info("Categories fetched", zap.Int("attempt", attempt), zap.Int("count", len(categories)))
			return dto.FetchResult{Categories: categories, Attempts: attempt}
		}
		lastErr = err
		log.Warn("Category fetch attempt failed", zap.Int("attempt", attempt), zap.Error(err))

		if attempt == c.cfg.MaxAttempts {
			break
		}
		if err := sleep(ctx, c.cfg.BackoffStep*time.Duration(attempt)); err != nil {
			lastErr = err
			log.Warn("Category fetch cancelled during backoff", zap.Int("attempt", attempt), zap.Error(err))
			break
		}
	}

	log.Warn("All category fetch attempts failed, returning empty list",
		zap.Int("attempts", attempt),
		zap.Error(lastErr),
	)
	return dto.FetchResult{
		Categories: []model.Category{},
		Attempts:   attempt,
		Err:        lastErr,
		Degraded:   true,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) fetchOnce(ctx context.Context) ([]model.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request categories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode body: %w", ErrMalformedResponse, err)
	}
	if !env.Success {
		return nil, fmt.Errorf("%w: success flag not set", ErrMalformedResponse)
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: data is not an array", ErrMalformedResponse)
	}

	categories := make([]model.Category, 0)
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("%w: decode categories: %w", ErrMalformedResponse, err)
	}
	return categories, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
