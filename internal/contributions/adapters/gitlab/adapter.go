// Package gitlab adapts the GitLab REST API to the source adapter port.
// GitLab has no pre-aggregated contribution calendar, so daily counts are
// reconciled from the raw user event feed.
package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"contrib-graph-service/internal/contributions/core/domain"
	"contrib-graph-service/internal/contributions/core/ports"
)

const defaultBaseURL = "https://gitlab.com"

// perPage is the API's maximum page size.
const perPage = 100

// maxPages bounds pagination per action query so a runaway feed cannot
// stall a fetch.
const maxPages = 10

// contributionActions are the event feed queries issued per fetch. The
// feed does not reliably return every category in one unfiltered query,
// so each contribution-bearing action is queried on its own.
var contributionActions = []string{"pushed", "commented", "created", "updated", "merged", "approved"}

// Doer performs a single HTTP exchange. Tests inject fakes here.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Adapter struct {
	baseURL string
	client  Doer
}

var _ ports.SourceAdapter = (*Adapter)(nil)

func New(baseURL string, client Doer) *Adapter {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Adapter{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (a *Adapter) Source() domain.Source { return domain.SourceGitLab }

func (a *Adapter) ResolveIdentity(ctx context.Context, tok string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/v4/user", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("PRIVATE-TOKEN", tok)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gitlab: resolve identity: %w: %v", ports.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", fmt.Errorf("gitlab: resolve identity: %w: status %d", ports.ErrAuthentication, resp.StatusCode)
	default:
		return "", fmt.Errorf("gitlab: resolve identity: %w: status %d", ports.ErrUpstream, resp.StatusCode)
	}

	var user struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("gitlab: resolve identity: %w: decoding response: %v", ports.ErrUpstream, err)
	}
	if user.ID == 0 {
		return "", fmt.Errorf("gitlab: resolve identity: %w: missing user id", ports.ErrUpstream)
	}
	return strconv.FormatInt(user.ID, 10), nil
}

// FetchDailyActivity reconciles the paginated event feed into per-day
// counts. The feed's after/before bounds are exclusive, so the query is
// widened by one day on each side and clipped back afterwards.
func (a *Adapter) FetchDailyActivity(ctx context.Context, identity, tok string, from, to time.Time) (domain.SourceSeries, error) {
	from = domain.DayOf(from)
	to = domain.DayOf(to)
	after := from.AddDate(0, 0, -1)
	before := to.AddDate(0, 0, 1)

	// IDs accumulate across every action query for this fetch: the same
	// event can appear under more than one action filter.
	seen := make(map[int64]struct{})
	buckets := make(map[string]int)

	for _, action := range contributionActions {
		for page := 1; page <= maxPages; page++ {
			events, err := a.listEvents(ctx, identity, tok, action, after, before, page)
			if err != nil {
				return domain.SourceSeries{}, fmt.Errorf("gitlab: fetch daily activity: %w", err)
			}

			for _, ev := range events {
				if _, dup := seen[ev.ID]; dup {
					continue
				}
				seen[ev.ID] = struct{}{}

				weight := contributionWeight(ev)
				if weight == 0 {
					continue
				}

				day := domain.DayOf(ev.CreatedAt)
				if day.Before(from) || day.After(to) {
					continue
				}
				buckets[day.Format(domain.DayFormat)] += weight
			}

			if len(events) < perPage {
				break
			}
		}
	}

	return seriesFromBuckets(identity, buckets), nil
}

func (a *Adapter) listEvents(ctx context.Context, identity, tok, action string, after, before time.Time, page int) ([]event, error) {
	q := url.Values{}
	q.Set("action", action)
	q.Set("after", after.Format(domain.DayFormat))
	q.Set("before", before.Format(domain.DayFormat))
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))

	endpoint := fmt.Sprintf("%s/api/v4/users/%s/events?%s", a.baseURL, url.PathEscape(identity), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("PRIVATE-TOKEN", tok)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ports.ErrAuthentication, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: status %d", ports.ErrUpstream, resp.StatusCode)
	}

	var events []event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("%w: decoding events page: %v", ports.ErrUpstream, err)
	}
	return events, nil
}
