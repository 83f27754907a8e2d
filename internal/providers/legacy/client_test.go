package legacy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marathon-migrate/internal/ratelimit"
)

func newTestClient(baseURL string) *Client {
	c := New(baseURL, "robot@example.com", "secret", ratelimit.Unlimited{})
	return c
}

func TestAuthenticateStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/token/auth" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("grant_type") != "password" {
			t.Errorf("expected grant_type=password, got %q", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("username") != "robot@example.com" {
			t.Errorf("unexpected username %q", r.PostForm.Get("username"))
		}
		fmt.Fprint(w, `{"access_token":"tok-123","token_type":"bearer","expires_in":3600}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if err := c.Authenticate(context.Background()); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if c.BearerToken != "tok-123" {
		t.Errorf("expected token tok-123, got %q", c.BearerToken)
	}
}

func TestAuthenticateEmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if err := c.Authenticate(context.Background()); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestAuthenticateRejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.Authenticate(context.Background())
	if err == nil {
		t.Fatal("expected auth error")
	}
	if !strings.Contains(err.Error(), "legacy auth failed") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestFetchCourseStructureRequiresToken(t *testing.T) {
	c := newTestClient("http://unused.example.com")
	if _, err := c.FetchCourseStructure(context.Background(), "mar-1"); err == nil {
		t.Fatal("expected error without bearer token")
	}
}

func TestFetchCourseStructureSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/usermarathon/startmarathon" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("marathonId"); got != "mar-1" {
			t.Errorf("expected marathonId=mar-1, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("expected bearer header, got %q", got)
		}
		fmt.Fprint(w, `{"marathonDays":[{"id":1,"dayNumber":1,"description":"Day 1","dayCategories":[]}]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.BearerToken = "tok-1"

	structure, err := c.FetchCourseStructure(context.Background(), "mar-1")
	if err != nil {
		t.Fatalf("fetch structure: %v", err)
	}
	if len(structure.MarathonDays) != 1 || structure.MarathonDays[0].Description != "Day 1" {
		t.Errorf("unexpected structure %+v", structure)
	}
}

func TestFetchDayExercises(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/usermarathon/getdayexercise" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("dayId"); got != "77" {
			t.Errorf("expected dayId=77, got %q", got)
		}
		fmt.Fprint(w, `{"id":77,"dayNumber":3,"description":"Day 3","dayCategories":[{"categoryName":"Neck","order":1,"exercises":[]}]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.BearerToken = "tok-1"

	day, err := c.FetchDayExercises(context.Background(), 77)
	if err != nil {
		t.Fatalf("fetch day: %v", err)
	}
	if day.ID != 77 || day.DayNumber != 3 || len(day.DayCategories) != 1 {
		t.Errorf("unexpected day %+v", day)
	}
}

func TestFetchCourseDaysCurrentDayVariant(t *testing.T) {
	var dayFetches int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/usermarathon/startmarathon":
			fmt.Fprint(w, `{"marathonDay":{"id":11,"dayNumber":1,"description":"Day 1"},"dayIds":[11,12]}`)
		case "/api/usermarathon/getdayexercise":
			dayFetches++
			fmt.Fprint(w, `{"id":12,"dayNumber":2,"description":"Day 2"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.BearerToken = "tok-1"

	days, err := c.FetchCourseDays(context.Background(), "mar-1")
	if err != nil {
		t.Fatalf("fetch course days: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].DayNumber != 1 || days[1].DayNumber != 2 {
		t.Errorf("days out of order: %+v", days)
	}
	// the inline current day must not be re-fetched
	if dayFetches != 1 {
		t.Errorf("expected 1 per-day fetch, got %d", dayFetches)
	}
}

func TestFetchCourseDaysUnknownVariant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.BearerToken = "tok-1"

	if _, err := c.FetchCourseDays(context.Background(), "mar-1"); err == nil {
		t.Fatal("expected error for unknown variant")
	}
}
