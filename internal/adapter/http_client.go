// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sethvargo/go-retry"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/logger"
	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

// HTTPClientConfig configures the note-service HTTP adapter.
type HTTPClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration

	// MaxRetries bounds backoff retries on 429/5xx responses.
	MaxRetries uint64
}

type noteStoreAdapter struct {
	client *resty.Client
	logger *logger.Logger

	maxRetries uint64
	baseDelay  time.Duration

	mu    sync.RWMutex
	token string
}

// NewNoteStoreAdapter constructs the resty-based [ItemStore] over the note
// service REST API.
func NewNoteStoreAdapter(cfg HTTPClientConfig, log *logger.Logger) ItemStore {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &noteStoreAdapter{
		client:     cli,
		logger:     log,
		maxRetries: cfg.MaxRetries,
		baseDelay:  250 * time.Millisecond,
		token:      strings.TrimSpace(cfg.Token),
	}
}

func (a *noteStoreAdapter) SetToken(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = strings.TrimSpace(token)
}

func (a *noteStoreAdapter) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *noteStoreAdapter) CreateItem(ctx context.Context, item models.RemoteItem) (models.RemoteItem, error) {
	if err := checkBodyLimit(item); err != nil {
		return models.RemoteItem{}, err
	}

	var created models.RemoteItem
	err := a.do(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.SetBody(item).Post("/api/items")
	}, &created)
	if err != nil {
		return models.RemoteItem{}, fmt.Errorf("create item: %w", err)
	}

	return created, nil
}

func (a *noteStoreAdapter) UpdateItem(ctx context.Context, item models.RemoteItem) error {
	if err := checkBodyLimit(item); err != nil {
		return err
	}

	err := a.do(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.SetBody(item).Put("/api/items/" + item.ID)
	}, nil)
	if err != nil {
		return fmt.Errorf("update item %s: %w", item.ID, err)
	}

	return nil
}

func (a *noteStoreAdapter) DeleteItem(ctx context.Context, id string) error {
	err := a.do(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.Delete("/api/items/" + id)
	}, nil)
	if err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}

	return nil
}

func (a *noteStoreAdapter) ListItems(ctx context.Context, q ItemQuery) ([]models.RemoteItem, error) {
	var items []models.RemoteItem
	err := a.do(ctx, func(req *resty.Request) (*resty.Response, error) {
		if q.TitlePrefix != "" {
			req.SetQueryParam("title_prefix", q.TitlePrefix)
		}
		if q.Tag != "" {
			req.SetQueryParam("tag", q.Tag)
		}
		return req.Get("/api/items")
	}, &items)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return items, nil
}

func (a *noteStoreAdapter) BatchGet(ctx context.Context, ids []string) ([]models.RemoteItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var items []models.RemoteItem
	err := a.do(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.SetBody(map[string][]string{"ids": ids}).Post("/api/items/batch-get")
	}, &items)
	if err != nil {
		return nil, fmt.Errorf("batch get %d items: %w", len(ids), err)
	}

	return items, nil
}

func (a *noteStoreAdapter) BatchSet(ctx context.Context, items []models.RemoteItem) error {
	if len(items) == 0 {
		return nil
	}
	for _, item := range items {
		if err := checkBodyLimit(item); err != nil {
			return err
		}
	}

	err := a.do(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.SetBody(map[string][]models.RemoteItem{"items": items}).Put("/api/items/batch")
	}, nil)
	if err != nil {
		return fmt.Errorf("batch set %d items: %w", len(items), err)
	}

	return nil
}

// do issues one authed request with backoff on retryable responses and
// decodes the body into out when out is non-nil.
func (a *noteStoreAdapter) do(ctx context.Context, send func(*resty.Request) (*resty.Response, error), out any) error {
	if err := a.checkTokenExpiry(); err != nil {
		return err
	}

	backoff := retry.WithCappedDuration(5*time.Second,
		retry.WithMaxRetries(a.maxRetries, retry.NewExponential(a.baseDelay)))

	var body []byte
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := send(a.authedRequest(ctx))
		if err != nil {
			// transport failures are worth one more round
			return retry.RetryableError(fmt.Errorf("%w: %v", ErrNetwork, err))
		}
		if err = mapHTTPError(resp); err != nil {
			return err
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return err
	}

	if out != nil && len(body) > 0 {
		if err = json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

func (a *noteStoreAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")
	if token := a.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

// checkTokenExpiry inspects the bearer token locally so an expired token
// surfaces ErrAuthExpired without a round trip. Tokens that are not JWTs
// pass through untouched.
func (a *noteStoreAdapter) checkTokenExpiry() error {
	token := a.Token()
	if token == "" {
		return nil
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if time.Now().After(exp.Time) {
		a.logger.Warn().Time("expired_at", exp.Time).Msg("bearer token expired")
		return ErrAuthExpired
	}

	return nil
}

func checkBodyLimit(item models.RemoteItem) error {
	if n := utf8.RuneCountInString(item.Body); n > models.RemoteBodyLimit {
		// the service would silently truncate, corrupting the chunk
		return fmt.Errorf("%w: %d chars in %q", ErrPayloadTooLarge, n, item.Title)
	}
	return nil
}
