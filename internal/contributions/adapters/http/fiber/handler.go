package fiber

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"contrib-graph-service/internal/cache"
	"contrib-graph-service/internal/contributions/core/domain"
	"contrib-graph-service/internal/contributions/core/usecase"
	"contrib-graph-service/internal/token"
)

type FetchUnifiedUseCase interface {
	Execute(ctx context.Context, in usecase.FetchUnifiedInput) (usecase.FetchUnifiedResult, error)
}

// RateLimiter gates requests per credential fingerprint.
type RateLimiter interface {
	Allow(key string) bool
}

type ContributionsHandler struct {
	uc      FetchUnifiedUseCase
	limiter RateLimiter
	log     *log.Logger
}

func NewContributionsHandler(uc FetchUnifiedUseCase, limiter RateLimiter, logger *log.Logger) *ContributionsHandler {
	return &ContributionsHandler{uc: uc, limiter: limiter, log: logger}
}

// GetContributions godoc
// @Summary Unified daily contributions
// @Description Merges per-day contribution counts from GitHub and GitLab into one series
// @Tags Contributions
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD, inclusive)"
// @Param to query string true "Range end (YYYY-MM-DD, inclusive)"
// @Param github_user query string false "Pre-resolved GitHub login"
// @Param gitlab_user query string false "Pre-resolved GitLab user id"
// @Param X-Github-Token header string false "GitHub access token"
// @Param X-Gitlab-Token header string false "GitLab access token"
// @Success 200 {object} ContributionsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /v1/contributions [get]
func (h *ContributionsHandler) GetContributions(c *fiber.Ctx) error {
	fromStr := c.Query("from", "")
	toStr := c.Query("to", "")
	if fromStr == "" || toStr == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "from and to are required",
		})
	}

	from, err := domain.ParseDay(fromStr)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid 'from' day",
		})
	}
	to, err := domain.ParseDay(toStr)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid 'to' day",
		})
	}

	sources := map[domain.Source]usecase.SourceInput{
		domain.SourceGitHub: {
			Identity: c.Query("github_user", ""),
			Token:    c.Get("X-Github-Token"),
		},
		domain.SourceGitLab: {
			Identity: c.Query("gitlab_user", ""),
			Token:    c.Get("X-Gitlab-Token"),
		},
	}

	// Rate limiting groups by credential fingerprint, never by the raw
	// token.
	if h.limiter != nil {
		for _, src := range sources {
			if src.Token == "" {
				continue
			}
			if !h.limiter.Allow(token.Fingerprint(src.Token)) {
				return c.Status(http.StatusTooManyRequests).JSON(ErrorResponse{
					Error: "rate_limited",
				})
			}
		}
	}

	logger := h.log
	if logger != nil {
		logger = logger.With("request_id", uuid.NewString())
		logger.Debug("contributions request", "from", fromStr, "to", toStr)
	}

	res, err := h.uc.Execute(c.UserContext(), usecase.FetchUnifiedInput{
		From:    from,
		To:      to,
		Sources: sources,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidRange),
			errors.Is(err, usecase.ErrNoSources):
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_request",
				Message: err.Error(),
			})
		case errors.Is(err, usecase.ErrInvalidCredential):
			return c.Status(http.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "invalid_credential",
				Message: err.Error(),
			})
		case errors.Is(err, usecase.ErrAllSourcesFailed):
			return c.Status(http.StatusBadGateway).JSON(ErrorResponse{
				Error:  "all_sources_failed",
				Errors: toSourceErrors(res.Errors),
			})
		default:
			if logger != nil {
				logger.Error("contributions request failed", "err", err)
			}
			return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
				Error: "internal_server_error",
			})
		}
	}

	resp := ContributionsResponse{
		From:             fromStr,
		To:               toStr,
		Days:             make([]DayResponse, 0, len(res.Series)),
		SourcesRequested: res.SourcesRequested,
		SourcesSucceeded: res.SourcesSucceeded,
		Errors:           toSourceErrors(res.Errors),
	}
	for _, d := range res.Series {
		counts := make(map[string]int, len(d.Counts))
		for src, n := range d.Counts {
			counts[string(src)] = n
		}
		resp.Days = append(resp.Days, DayResponse{
			Date:   d.Date.Format(domain.DayFormat),
			Counts: counts,
			Total:  d.Total,
		})
	}

	return c.Status(http.StatusOK).JSON(resp)
}

func toSourceErrors(errs []domain.SourceError) []SourceErrorResponse {
	if len(errs) == 0 {
		return nil
	}
	out := make([]SourceErrorResponse, 0, len(errs))
	for _, e := range errs {
		out = append(out, SourceErrorResponse{Source: string(e.Source), Message: e.Message})
	}
	return out
}

// CacheStatsProvider exposes the series cache's stats snapshot.
type CacheStatsProvider interface {
	Stats() cache.Stats
}

type CacheStatsHandler struct {
	stats CacheStatsProvider
}

func NewCacheStatsHandler(stats CacheStatsProvider) *CacheStatsHandler {
	return &CacheStatsHandler{stats: stats}
}

// GetCacheStats godoc
// @Summary Series cache statistics
// @Tags Cache
// @Produce json
// @Success 200 {object} CacheStatsResponse
// @Router /v1/cache/stats [get]
func (h *CacheStatsHandler) GetCacheStats(c *fiber.Ctx) error {
	s := h.stats.Stats()
	return c.Status(http.StatusOK).JSON(CacheStatsResponse{
		Size:      s.Size,
		Hits:      s.Hits,
		Misses:    s.Misses,
		Evictions: s.Evictions,
		HitRate:   s.HitRate,
		Keys:      s.Keys,
	})
}
