package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"contrib-graph-service/internal/contributions/core/domain"
	"contrib-graph-service/internal/contributions/core/ports"
	"contrib-graph-service/internal/token"
)

var (
	ErrInvalidRange      = errors.New("invalid day range")
	ErrNoSources         = errors.New("no sources requested")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrAllSourcesFailed  = errors.New("all requested sources failed")
)

// defaultFetchTimeout bounds one source fetch on the cache-miss path.
const defaultFetchTimeout = 15 * time.Second

// SourceInput carries the per-source request parameters: an optional
// pre-resolved identity and the access token. A source without a token is
// not requested.
type SourceInput struct {
	Identity string
	Token    string
}

type FetchUnifiedInput struct {
	From    time.Time
	To      time.Time
	Sources map[domain.Source]SourceInput
}

type FetchUnifiedResult struct {
	Series           domain.UnifiedSeries
	Errors           []domain.SourceError
	SourcesRequested int
	SourcesSucceeded int
}

// Config holds the aggregator's tunables.
type Config struct {
	// CacheTTLs is the write-back TTL per source. A missing or zero entry
	// falls through to the cache's default TTL.
	CacheTTLs map[domain.Source]time.Duration

	// FetchTimeout bounds each source fetch; zero means the default.
	FetchTimeout time.Duration
}

// FetchUnifiedUseCase resolves identities, serves per-source series
// cache-first, fetches misses concurrently, and merges whatever succeeded
// into one gap-free daily series.
type FetchUnifiedUseCase struct {
	adapters     map[domain.Source]ports.SourceAdapter
	cache        ports.SeriesCache
	ttls         map[domain.Source]time.Duration
	fetchTimeout time.Duration
	log          *log.Logger
}

// NewFetchUnifiedUseCase wires the aggregator. The cache may be nil to
// disable caching (tests); adapters are selected by their Source().
func NewFetchUnifiedUseCase(cache ports.SeriesCache, cfg Config, logger *log.Logger, adapters ...ports.SourceAdapter) *FetchUnifiedUseCase {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	bySource := make(map[domain.Source]ports.SourceAdapter, len(adapters))
	for _, a := range adapters {
		bySource[a.Source()] = a
	}

	return &FetchUnifiedUseCase{
		adapters:     bySource,
		cache:        cache,
		ttls:         cfg.CacheTTLs,
		fetchTimeout: timeout,
		log:          logger,
	}
}

// request is one source's resolved fetch plan.
type request struct {
	source   domain.Source
	adapter  ports.SourceAdapter
	identity string
	token    string
	fp       string
}

func (uc *FetchUnifiedUseCase) Execute(ctx context.Context, in FetchUnifiedInput) (FetchUnifiedResult, error) {
	var res FetchUnifiedResult

	if in.From.IsZero() || in.To.IsZero() || in.To.Before(in.From) {
		return res, ErrInvalidRange
	}
	from := domain.DayOf(in.From)
	to := domain.DayOf(in.To)

	// Fixed source order keeps requested/succeeded accounting
	// deterministic; fetch order itself does not matter.
	var reqs []*request
	for _, src := range domain.Sources {
		q, ok := in.Sources[src]
		if !ok || q.Token == "" {
			continue
		}
		adapter, ok := uc.adapters[src]
		if !ok {
			uc.log.Warn("no adapter configured for requested source", "source", src)
			continue
		}
		reqs = append(reqs, &request{
			source:   src,
			adapter:  adapter,
			identity: q.Identity,
			token:    q.Token,
			fp:       token.Fingerprint(q.Token),
		})
	}
	if len(reqs) == 0 {
		return res, ErrNoSources
	}
	res.SourcesRequested = len(reqs)

	// Identity resolution. A token that cannot be resolved invalidates
	// the whole request; resolutions for different sources overlap.
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range reqs {
		if r.identity != "" {
			continue
		}
		r := r
		g.Go(func() error {
			id, err := r.adapter.ResolveIdentity(gctx, r.token)
			if err != nil {
				uc.log.Warn("identity resolution failed",
					"source", r.source, "token_fp", r.fp, "err", err)
				return fmt.Errorf("%s: %w", r.source, ErrInvalidCredential)
			}
			r.identity = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	var (
		mu      sync.Mutex
		series  []domain.SourceSeries
		srcErrs []domain.SourceError
		misses  []*request
	)

	// Cache-first, per source independently.
	for _, r := range reqs {
		if uc.cache == nil {
			misses = append(misses, r)
			continue
		}
		key := token.CacheKey(string(r.source), r.fp, from, to)
		if cached, ok := uc.cache.Get(key); ok {
			uc.log.Debug("cache hit", "source", r.source, "token_fp", r.fp)
			series = append(series, cached)
			continue
		}
		misses = append(misses, r)
	}

	// Fetch every miss concurrently. Failures become SourceErrors and do
	// not abort the siblings; the merge waits for all of them to settle.
	var wg sync.WaitGroup
	for _, r := range misses {
		wg.Add(1)
		go func(r *request) {
			defer wg.Done()

			fctx, cancel := context.WithTimeout(ctx, uc.fetchTimeout)
			defer cancel()

			ss, err := r.adapter.FetchDailyActivity(fctx, r.identity, r.token, from, to)
			if err != nil {
				uc.log.Warn("source fetch failed",
					"source", r.source, "token_fp", r.fp, "err", err)
				mu.Lock()
				srcErrs = append(srcErrs, domain.SourceError{Source: r.source, Message: err.Error()})
				mu.Unlock()
				return
			}

			// Only freshly fetched series are written back.
			if uc.cache != nil {
				key := token.CacheKey(string(r.source), r.fp, from, to)
				if err := uc.cache.Set(key, ss, uc.ttls[r.source]); err != nil {
					uc.log.Error("cache write failed", "source", r.source, "err", err)
				}
			}

			mu.Lock()
			series = append(series, ss)
			mu.Unlock()
		}(r)
	}
	wg.Wait()

	sort.Slice(srcErrs, func(i, j int) bool { return srcErrs[i].Source < srcErrs[j].Source })
	res.Errors = srcErrs
	res.SourcesSucceeded = len(series)

	if res.SourcesSucceeded == 0 {
		return res, ErrAllSourcesFailed
	}

	res.Series = domain.BuildUnifiedSeries(from, to, series)
	return res, nil
}
