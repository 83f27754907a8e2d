// Package legacy talks to the vendor API the marathon content is migrated
// from. Three endpoints: token auth, full course structure, and a per-day
// exercise fetch used when the API only returns the "current day".
package legacy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marathon-migrate/internal/domain"
	"marathon-migrate/internal/httpx"
	"marathon-migrate/internal/ratelimit"
)

type Client struct {
	BaseURL     string
	Username    string
	Password    string
	HTTP        *http.Client
	BearerToken string

	// Limiter paces every request. Never nil after New.
	Limiter ratelimit.Waiter

	// FetchWorkers bounds parallel per-day fetches for the current-day
	// structure variant.
	FetchWorkers int
}

func New(baseURL, username, password string, limiter ratelimit.Waiter) *Client {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		Password: password,
		HTTP: &http.Client{
			Timeout: 60 * time.Second,
		},
		Limiter:      limiter,
		FetchWorkers: 4,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Authenticate obtains a bearer token and keeps it for the lifetime of the
// client instance.
func (c *Client) Authenticate(ctx context.Context) error {
	if err := c.Limiter.Wait(ctx); err != nil {
		return err
	}

	form := url.Values{}
	form.Set("username", c.Username)
	form.Set("password", c.Password)
	form.Set("grant_type", "password")
	payload := form.Encode()

	var tr tokenResponse
	err := httpx.DoJSON(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/token/auth", strings.NewReader(payload))
			if err != nil {
				return nil, err
			}
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			r.Header.Set("Accept", "application/json")
			return r, nil
		},
		&tr,
		httpx.DefaultRetryConfig(),
	)
	if err != nil {
		return fmt.Errorf("legacy auth failed: %w", err)
	}
	if tr.AccessToken == "" {
		return errors.New("legacy auth: token not found in response")
	}
	c.BearerToken = tr.AccessToken
	return nil
}

// FetchCourseStructure returns the raw structure response for a marathon.
// The shape varies by legacy API version; see StructureResponse.
func (c *Client) FetchCourseStructure(ctx context.Context, marathonID string) (StructureResponse, error) {
	var out StructureResponse
	if c.BearerToken == "" {
		return out, errors.New("legacy: missing bearer token (call Authenticate first)")
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return out, err
	}

	endpoint := fmt.Sprintf("%s/api/usermarathon/startmarathon?marathonId=%s", c.BaseURL, url.QueryEscape(marathonID))
	err := httpx.DoJSON(ctx, c.HTTP, c.buildGet(endpoint), &out, httpx.DefaultRetryConfig())
	if err != nil {
		return out, fmt.Errorf("legacy: fetch structure for %s: %w", marathonID, err)
	}
	return out, nil
}

// FetchDayExercises returns one day's category/exercise tree.
func (c *Client) FetchDayExercises(ctx context.Context, dayID int64) (domain.Day, error) {
	var day domain.Day
	if c.BearerToken == "" {
		return day, errors.New("legacy: missing bearer token (call Authenticate first)")
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return day, err
	}

	endpoint := fmt.Sprintf("%s/api/usermarathon/getdayexercise?dayId=%s", c.BaseURL, strconv.FormatInt(dayID, 10))
	err := httpx.DoJSON(ctx, c.HTTP, c.buildGet(endpoint), &day, httpx.DefaultRetryConfig())
	if err != nil {
		return day, fmt.Errorf("legacy: fetch day %d: %w", dayID, err)
	}
	return day, nil
}

// FetchCourseDays fetches the structure and normalizes whichever variant
// came back into a canonical day list.
func (c *Client) FetchCourseDays(ctx context.Context, marathonID string) ([]domain.Day, error) {
	structure, err := c.FetchCourseStructure(ctx, marathonID)
	if err != nil {
		return nil, err
	}
	days, err := Normalize(ctx, structure, c.FetchDayExercises, c.FetchWorkers)
	if err != nil {
		return nil, fmt.Errorf("legacy: normalize structure for %s: %w", marathonID, err)
	}
	return days, nil
}

func (c *Client) buildGet(endpoint string) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		r.Header.Set("Accept", "application/json")
		r.Header.Set("Authorization", "Bearer "+c.BearerToken)
		return r, nil
	}
}
