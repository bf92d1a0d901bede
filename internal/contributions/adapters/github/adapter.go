// Package github adapts the GitHub GraphQL API to the source adapter
// port. GitHub exposes a pre-aggregated contribution calendar, so no
// event reconciliation is needed on this side.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"contrib-graph-service/internal/contributions/core/domain"
	"contrib-graph-service/internal/contributions/core/ports"
)

const defaultBaseURL = "https://api.github.com"

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

func (a *Adapter) Source() domain.Source { return domain.SourceGitHub }

func (a *Adapter) ResolveIdentity(ctx context.Context, tok string) (string, error) {
	var out struct {
		Viewer struct {
			Login string `json:"login"`
		} `json:"viewer"`
	}

	if err := a.query(ctx, tok, `query { viewer { login } }`, nil, &out); err != nil {
		return "", fmt.Errorf("github: resolve identity: %w", err)
	}
	if out.Viewer.Login == "" {
		return "", fmt.Errorf("github: resolve identity: %w: empty viewer login", ports.ErrUpstream)
	}
	return out.Viewer.Login, nil
}

const calendarQuery = `query($login: String!, $from: DateTime!, $to: DateTime!) {
  user(login: $login) {
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        weeks {
          contributionDays {
            date
            contributionCount
          }
        }
      }
    }
  }
}`

func (a *Adapter) FetchDailyActivity(ctx context.Context, identity, tok string, from, to time.Time) (domain.SourceSeries, error) {
	from = domain.DayOf(from)
	to = domain.DayOf(to)

	vars := map[string]any{
		"login": identity,
		"from":  from.Format(time.RFC3339),
		"to":    to.Add(24*time.Hour - time.Second).Format(time.RFC3339),
	}

	var out struct {
		User struct {
			ContributionsCollection struct {
				ContributionCalendar struct {
					Weeks []struct {
						ContributionDays []struct {
							Date              string `json:"date"`
							ContributionCount int    `json:"contributionCount"`
						} `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	}

	if err := a.query(ctx, tok, calendarQuery, vars, &out); err != nil {
		return domain.SourceSeries{}, fmt.Errorf("github: fetch daily activity: %w", err)
	}

	series := domain.SourceSeries{Source: domain.SourceGitHub, Identity: identity}
	for _, week := range out.User.ContributionsCollection.ContributionCalendar.Weeks {
		for _, d := range week.ContributionDays {
			day, err := domain.ParseDay(d.Date)
			if err != nil {
				return domain.SourceSeries{}, fmt.Errorf("github: fetch daily activity: %w: bad day %q", ports.ErrUpstream, d.Date)
			}
			// The calendar pads to whole weeks; drop days outside the
			// requested range.
			if day.Before(from) || day.After(to) {
				continue
			}
			series.Days = append(series.Days, domain.DayCount{Date: day, Count: d.ContributionCount})
		}
	}

	sort.Slice(series.Days, func(i, j int) bool { return series.Days[i].Date.Before(series.Days[j].Date) })
	return series, nil
}

type graphQLError struct {
	Message string `json:"message"`
}

// query posts a GraphQL document and decodes the data envelope into out.
func (a *Adapter) query(ctx context.Context, tok, doc string, vars map[string]any, out any) error {
	body, err := json.Marshal(struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables,omitempty"`
	}{Query: doc, Variables: vars})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ports.ErrAuthentication, resp.StatusCode)
	default:
		return fmt.Errorf("%w: status %d", ports.ErrUpstream, resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ports.ErrUpstream, err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("%w: %s", ports.ErrUpstream, envelope.Errors[0].Message)
	}

	return json.Unmarshal(envelope.Data, out)
}
