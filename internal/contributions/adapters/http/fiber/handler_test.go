package fiber

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"contrib-graph-service/internal/cache"
	"contrib-graph-service/internal/contributions/core/domain"
	"contrib-graph-service/internal/contributions/core/usecase"
)

type fakeUseCase struct {
	result usecase.FetchUnifiedResult
	err    error
	inputs []usecase.FetchUnifiedInput
}

func (f *fakeUseCase) Execute(_ context.Context, in usecase.FetchUnifiedInput) (usecase.FetchUnifiedResult, error) {
	f.inputs = append(f.inputs, in)
	return f.result, f.err
}

type fakeLimiter struct {
	allow bool
	keys  []string
}

func (f *fakeLimiter) Allow(key string) bool {
	f.keys = append(f.keys, key)
	return f.allow
}

func newApp(uc FetchUnifiedUseCase, limiter RateLimiter) *fiber.App {
	app := fiber.New()
	h := NewContributionsHandler(uc, limiter, nil)
	app.Get("/v1/contributions", h.GetContributions)
	return app
}

func doRequest(t *testing.T, app *fiber.App, url string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDay(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// ------------------------------------------------------------
// GET /v1/contributions
// ------------------------------------------------------------

func TestGetContributions_Success(t *testing.T) {
	uc := &fakeUseCase{result: usecase.FetchUnifiedResult{
		Series: domain.UnifiedSeries{
			{
				Date:   day(t, "2025-06-01"),
				Counts: map[domain.Source]int{domain.SourceGitHub: 3, domain.SourceGitLab: 5},
				Total:  8,
			},
			{
				Date:   day(t, "2025-06-02"),
				Counts: map[domain.Source]int{domain.SourceGitHub: 2, domain.SourceGitLab: 0},
				Total:  2,
			},
		},
		SourcesRequested: 2,
		SourcesSucceeded: 2,
	}}
	app := newApp(uc, nil)

	resp := doRequest(t, app, "/v1/contributions?from=2025-06-01&to=2025-06-02", map[string]string{
		"X-Github-Token": "gh-token",
		"X-Gitlab-Token": "gl-token",
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body ContributionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.From != "2025-06-01" || body.To != "2025-06-02" {
		t.Errorf("unexpected range echo: %s..%s", body.From, body.To)
	}
	if len(body.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(body.Days))
	}
	if body.Days[0].Total != 8 || body.Days[0].Counts["github"] != 3 || body.Days[0].Counts["gitlab"] != 5 {
		t.Errorf("unexpected first day: %+v", body.Days[0])
	}
	if body.SourcesRequested != 2 || body.SourcesSucceeded != 2 {
		t.Errorf("unexpected source counters: %d/%d", body.SourcesSucceeded, body.SourcesRequested)
	}

	if len(uc.inputs) != 1 {
		t.Fatalf("expected one use case call, got %d", len(uc.inputs))
	}
	in := uc.inputs[0]
	if in.Sources[domain.SourceGitHub].Token != "gh-token" {
		t.Errorf("github token not forwarded: %+v", in.Sources)
	}
	if in.Sources[domain.SourceGitLab].Token != "gl-token" {
		t.Errorf("gitlab token not forwarded: %+v", in.Sources)
	}
}

func TestGetContributions_ForwardsPreResolvedIdentities(t *testing.T) {
	uc := &fakeUseCase{result: usecase.FetchUnifiedResult{SourcesRequested: 2, SourcesSucceeded: 2}}
	app := newApp(uc, nil)

	resp := doRequest(t, app,
		"/v1/contributions?from=2025-06-01&to=2025-06-02&github_user=octocat&gitlab_user=42",
		map[string]string{"X-Github-Token": "gh", "X-Gitlab-Token": "gl"})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	in := uc.inputs[0]
	if in.Sources[domain.SourceGitHub].Identity != "octocat" {
		t.Errorf("github identity not forwarded: %+v", in.Sources)
	}
	if in.Sources[domain.SourceGitLab].Identity != "42" {
		t.Errorf("gitlab identity not forwarded: %+v", in.Sources)
	}
}

func TestGetContributions_PartialFailureStillOK(t *testing.T) {
	uc := &fakeUseCase{result: usecase.FetchUnifiedResult{
		Series: domain.UnifiedSeries{{
			Date:   day(t, "2025-06-01"),
			Counts: map[domain.Source]int{domain.SourceGitHub: 0, domain.SourceGitLab: 4},
			Total:  4,
		}},
		Errors:           []domain.SourceError{{Source: domain.SourceGitHub, Message: "upstream error"}},
		SourcesRequested: 2,
		SourcesSucceeded: 1,
	}}
	app := newApp(uc, nil)

	resp := doRequest(t, app, "/v1/contributions?from=2025-06-01&to=2025-06-01", map[string]string{
		"X-Github-Token": "gh", "X-Gitlab-Token": "gl",
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on partial failure, got %d", resp.StatusCode)
	}
	var body ContributionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Errors) != 1 || body.Errors[0].Source != "github" {
		t.Fatalf("expected the github error surfaced, got %+v", body.Errors)
	}
}

func TestGetContributions_MissingRange(t *testing.T) {
	app := newApp(&fakeUseCase{}, nil)

	resp := doRequest(t, app, "/v1/contributions?from=2025-06-01", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetContributions_MalformedDay(t *testing.T) {
	app := newApp(&fakeUseCase{}, nil)

	resp := doRequest(t, app, "/v1/contributions?from=June+1&to=2025-06-02", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetContributions_UseCaseErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{usecase.ErrInvalidRange, http.StatusBadRequest},
		{usecase.ErrNoSources, http.StatusBadRequest},
		{fmt.Errorf("github: %w", usecase.ErrInvalidCredential), http.StatusUnauthorized},
		{usecase.ErrAllSourcesFailed, http.StatusBadGateway},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		app := newApp(&fakeUseCase{err: tc.err}, nil)
		resp := doRequest(t, app, "/v1/contributions?from=2025-06-01&to=2025-06-02",
			map[string]string{"X-Github-Token": "gh"})
		if resp.StatusCode != tc.status {
			t.Errorf("error %v: expected %d, got %d", tc.err, tc.status, resp.StatusCode)
		}
	}
}

func TestGetContributions_RateLimited(t *testing.T) {
	uc := &fakeUseCase{}
	limiter := &fakeLimiter{allow: false}
	app := newApp(uc, limiter)

	resp := doRequest(t, app, "/v1/contributions?from=2025-06-01&to=2025-06-02",
		map[string]string{"X-Github-Token": "gh-token"})

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if len(uc.inputs) != 0 {
		t.Fatal("rate-limited request must not reach the use case")
	}
	// The limiter sees a fingerprint, never the raw token.
	for _, k := range limiter.keys {
		if k == "gh-token" {
			t.Fatal("raw token leaked to the rate limiter")
		}
	}
}

// ------------------------------------------------------------
// GET /v1/cache/stats
// ------------------------------------------------------------

type fakeStats struct{ stats cache.Stats }

func (f *fakeStats) Stats() cache.Stats { return f.stats }

func TestGetCacheStats(t *testing.T) {
	app := fiber.New()
	h := NewCacheStatsHandler(&fakeStats{stats: cache.Stats{
		Size: 2, Hits: 6, Misses: 2, Evictions: 1, HitRate: 0.75,
		Keys: []string{"a", "b"},
	}})
	app.Get("/v1/cache/stats", h.GetCacheStats)

	resp := doRequest(t, app, "/v1/cache/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body CacheStatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Size != 2 || body.Hits != 6 || body.HitRate != 0.75 {
		t.Fatalf("unexpected stats payload: %+v", body)
	}
}
