// Package backend talks to the new marathon platform's admin API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marathon-migrate/internal/domain"
	"marathon-migrate/internal/httpx"
	"marathon-migrate/internal/ratelimit"
)

const contentTypeJSON = "application/json"

type Client struct {
	BaseURL     string
	Email       string
	Password    string
	HTTP        *http.Client
	BearerToken string
	Limiter     ratelimit.Waiter
}

func New(baseURL, email, password string, limiter ratelimit.Waiter) *Client {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	tr := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Email:    email,
		Password: password,
		HTTP: &http.Client{
			Timeout:   60 * time.Second,
			Transport: tr,
		},
		Limiter: limiter,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Authenticate logs in with admin credentials and keeps the token for the
// lifetime of the client instance.
func (c *Client) Authenticate(ctx context.Context) error {
	if err := c.Limiter.Wait(ctx); err != nil {
		return err
	}

	b, err := json.Marshal(loginRequest{Email: c.Email, Password: c.Password})
	if err != nil {
		return err
	}

	var lr loginResponse
	err = httpx.DoJSON(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/auth/login", bytes.NewReader(b))
			if err != nil {
				return nil, err
			}
			r.Header.Set("Content-Type", contentTypeJSON)
			r.Header.Set("Accept", contentTypeJSON)
			return r, nil
		},
		&lr,
		httpx.DefaultRetryConfig(),
	)
	if err != nil {
		return fmt.Errorf("backend auth failed: %w", err)
	}
	if lr.Token == "" {
		return errors.New("backend auth: token not found in response")
	}
	c.BearerToken = lr.Token
	return nil
}

// ListMarathonDays returns the day records already present under a
// destination marathon. Used to upsert instead of blindly creating.
func (c *Client) ListMarathonDays(ctx context.Context, marathonID string) ([]domain.DestinationDay, error) {
	if c.BearerToken == "" {
		return nil, errors.New("backend: missing bearer token (call Authenticate first)")
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var days []domain.DestinationDay
	endpoint := fmt.Sprintf("%s/api/marathons/admin/%s/days", c.BaseURL, url.PathEscape(marathonID))
	err := httpx.DoJSON(ctx, c.HTTP, c.buildJSONReq(http.MethodGet, endpoint, nil), &days, httpx.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("backend: list days for %s: %w", marathonID, err)
	}
	return days, nil
}

// CreateMarathonDay POSTs a transformed day under the destination marathon.
// Creation is not idempotent server-side, so it is never retried; callers
// go through ListMarathonDays first to avoid duplicates.
func (c *Client) CreateMarathonDay(ctx context.Context, marathonID string, day domain.TransformedDay) (map[string]any, error) {
	if c.BearerToken == "" {
		return nil, errors.New("backend: missing bearer token (call Authenticate first)")
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	b, err := json.Marshal(day)
	if err != nil {
		return nil, fmt.Errorf("backend: marshal day %d: %w", day.DayNumber, err)
	}

	var created map[string]any
	endpoint := fmt.Sprintf("%s/api/marathons/admin/%s/days", c.BaseURL, url.PathEscape(marathonID))
	err = httpx.DoJSON(ctx, c.HTTP, c.buildJSONReq(http.MethodPost, endpoint, b), &created, httpx.NoRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("backend: create day %d for %s: %w", day.DayNumber, marathonID, err)
	}
	return created, nil
}

// UpdateMarathonDay PUTs a transformed day over an existing day record.
func (c *Client) UpdateMarathonDay(ctx context.Context, marathonID, dayID string, day domain.TransformedDay) (map[string]any, error) {
	if c.BearerToken == "" {
		return nil, errors.New("backend: missing bearer token (call Authenticate first)")
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	b, err := json.Marshal(day)
	if err != nil {
		return nil, fmt.Errorf("backend: marshal day %d: %w", day.DayNumber, err)
	}

	var updated map[string]any
	endpoint := fmt.Sprintf("%s/api/marathons/admin/%s/days/%s", c.BaseURL, url.PathEscape(marathonID), url.PathEscape(dayID))
	err = httpx.DoJSON(ctx, c.HTTP, c.buildJSONReq(http.MethodPut, endpoint, b), &updated, httpx.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("backend: update day %s for %s: %w", dayID, marathonID, err)
	}
	return updated, nil
}

func (c *Client) buildJSONReq(method, endpoint string, body []byte) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		var rd *bytes.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		} else {
			rd = bytes.NewReader(nil)
		}
		r, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
		if err != nil {
			return nil, err
		}
		if body != nil {
			r.Header.Set("Content-Type", contentTypeJSON)
		}
		r.Header.Set("Accept", contentTypeJSON)
		r.Header.Set("Authorization", "Bearer "+c.BearerToken)
		return r, nil
	}
}
