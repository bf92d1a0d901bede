package ports

import (
	"context"
	"errors"
	"time"

	"contrib-graph-service/internal/contributions/core/domain"
)

// ErrAuthentication indicates the supplied token was rejected by the
// remote service while resolving the identity behind it.
var ErrAuthentication = errors.New("authentication failed")

// ErrUpstream indicates a non-recoverable transport or data-shape problem
// talking to the remote service after the identity was resolved.
var ErrUpstream = errors.New("upstream request failed")

// SourceAdapter is the capability boundary for one code-hosting service.
// The aggregator is written once against this interface and selects a
// concrete adapter per source; it never special-cases source identity
// beyond that selection.
type SourceAdapter interface {
	Source() domain.Source

	// ResolveIdentity turns an access token into the identity it belongs
	// to. Errors wrap ErrAuthentication when the token is invalid.
	ResolveIdentity(ctx context.Context, token string) (string, error)

	// FetchDailyActivity returns the identity's per-day contribution
	// counts over [from, to] inclusive, sorted ascending with at most one
	// entry per day. Errors wrap ErrUpstream.
	FetchDailyActivity(ctx context.Context, identity, token string, from, to time.Time) (domain.SourceSeries, error)
}

// SeriesCache stores fetched series keyed by fingerprinted token and day
// range. Implementations must be safe for concurrent use.
type SeriesCache interface {
	Get(key string) (domain.SourceSeries, bool)
	Set(key string, series domain.SourceSeries, ttl time.Duration) error
}
