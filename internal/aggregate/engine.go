// Package aggregate fans a search query out to every configured upstream
// adapter, substitutes fallback records for sources that fail, and returns
// one deduplicated, ranked list. The engine itself cannot fail: adapter
// errors are absorbed, and only a defect in the merge logic would surface.
package aggregate

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"jobpulse/internal/domain"
	"jobpulse/internal/fallback"
	"jobpulse/internal/source"
)

const defaultFallbackCount = 10

// Cache is the best-effort result cache; a nil Cache disables caching.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// AnalyticsReader derives a snapshot from recorded activity. Implementations
// return an error when no data is available; the engine then synthesizes.
type AnalyticsReader interface {
	Snapshot(ctx context.Context, userID string) (domain.AnalyticsSnapshot, error)
}

type Engine struct {
	adapters       []source.Adapter
	companyAPI     *source.CompanyAPIAdapter
	analytics      AnalyticsReader
	cache          Cache
	cacheTTL       time.Duration
	adapterTimeout time.Duration
	seedFn         func() int64
	logger         *log.Logger
}

type Option func(*Engine)

func WithCache(c Cache, ttl time.Duration) Option {
	return func(e *Engine) {
		e.cache = c
		if ttl > 0 {
			e.cacheTTL = ttl
		}
	}
}

func WithCompanyAPI(a *source.CompanyAPIAdapter) Option {
	return func(e *Engine) { e.companyAPI = a }
}

func WithAnalyticsReader(r AnalyticsReader) Option {
	return func(e *Engine) { e.analytics = r }
}

func WithAdapterTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.adapterTimeout = d
		}
	}
}

// WithSeedFn overrides the fallback seed source; tests pin it.
func WithSeedFn(fn func() int64) Option {
	return func(e *Engine) {
		if fn != nil {
			e.seedFn = fn
		}
	}
}

func New(adapters []source.Adapter, logger *log.Logger, opts ...Option) *Engine {
	e := &Engine{
		adapters:       adapters,
		cacheTTL:       5 * time.Minute,
		adapterTimeout: 5 * time.Second,
		seedFn:         func() int64 { return time.Now().UnixNano() },
		logger:         logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type adapterResult struct {
	idx  int
	jobs []domain.JobRecord
	err  error
}

// SearchJobs runs every adapter concurrently, fills in fallback records for
// sources that failed or are unconfigured, dedupes by identity key and sorts
// by relevance (query present) or recency. No limit is applied here; callers
// truncate the returned list.
func (e *Engine) SearchJobs(ctx context.Context, req domain.SearchRequest) []domain.JobRecord {
	if e == nil || len(e.adapters) == 0 {
		return []domain.JobRecord{}
	}

	if cached, ok := e.cachedSearch(ctx, req); ok {
		return cached
	}

	results := make([]adapterResult, len(e.adapters))
	var wg sync.WaitGroup
	wg.Add(len(e.adapters))
	for i, a := range e.adapters {
		go func(idx int, a source.Adapter) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, e.adapterTimeout)
			defer cancel()
			jobs, err := a.Fetch(fetchCtx, req)
			results[idx] = adapterResult{idx: idx, jobs: jobs, err: err}
		}(i, a)
	}
	wg.Wait()

	// One generator per request: sources substituted in the same aggregation
	// draw from a shared identity-pair pool and survive dedup together.
	gen := fallback.New(e.seedFn())
	substituteCount := req.Limit
	if substituteCount <= 0 {
		substituteCount = defaultFallbackCount
	}

	var flat []domain.JobRecord
	for i, a := range e.adapters {
		res := results[i]
		if res.err != nil || len(res.jobs) == 0 {
			if res.err != nil && e.logger != nil {
				e.logger.Printf("aggregate: source failed | source=%s err=%v", a.Name(), res.err)
			}
			flat = append(flat, gen.Jobs(a.Name(), req, substituteCount)...)
			continue
		}
		flat = append(flat, res.jobs...)
	}

	merged := dedupe(flat)
	sortJobs(merged, req.Query)

	e.storeSearch(ctx, req, merged)
	return merged
}

// dedupe keeps the first occurrence of each identity key, in input order.
func dedupe(jobs []domain.JobRecord) []domain.JobRecord {
	seen := make(map[string]struct{}, len(jobs))
	out := make([]domain.JobRecord, 0, len(jobs))
	for _, j := range jobs {
		key := j.IdentityKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, j)
	}
	return out
}

func sortJobs(jobs []domain.JobRecord, query string) {
	if query != "" {
		now := time.Now().UTC()
		sort.SliceStable(jobs, func(i, k int) bool {
			return relevanceScore(jobs[i], query, now) > relevanceScore(jobs[k], query, now)
		})
		return
	}
	sort.SliceStable(jobs, func(i, k int) bool {
		return jobs[i].PostedAt.After(jobs[k].PostedAt)
	})
}

// SourceJobs fetches from one named adapter only, with the same fallback
// substitution on failure. Backs POST /jobs/:source.
func (e *Engine) SourceJobs(ctx context.Context, tag domain.Source, req domain.SearchRequest) []domain.JobRecord {
	count := req.Limit
	if count <= 0 {
		count = defaultFallbackCount
	}

	for _, a := range e.adapters {
		if a.Name() != tag {
			continue
		}
		fetchCtx, cancel := context.WithTimeout(ctx, e.adapterTimeout)
		jobs, err := a.Fetch(fetchCtx, req)
		cancel()
		if err == nil && len(jobs) > 0 {
			return dedupe(jobs)
		}
		if err != nil && e.logger != nil {
			e.logger.Printf("aggregate: source fetch failed | source=%s err=%v", tag, err)
		}
		break
	}
	return fallback.New(e.seedFn()).Jobs(tag, req, count)
}

// CompanyData resolves a company profile through the company API when one is
// configured, synthesizing a record otherwise. Never returns an empty name.
func (e *Engine) CompanyData(ctx context.Context, name string) domain.CompanyRecord {
	if e != nil && e.companyAPI != nil && e.companyAPI.Configured() {
		lookupCtx, cancel := context.WithTimeout(ctx, e.adapterTimeout)
		rec, err := e.companyAPI.Lookup(lookupCtx, name)
		cancel()
		if err == nil {
			return rec
		}
		if e.logger != nil {
			e.logger.Printf("aggregate: company lookup failed | company=%q err=%v", name, err)
		}
	}
	return fallback.New(e.seed()).Company(name)
}

// Analytics derives a snapshot from recorded activity when a reader is
// wired, synthesizing one otherwise.
func (e *Engine) Analytics(ctx context.Context, userID string) domain.AnalyticsSnapshot {
	if e != nil && e.analytics != nil {
		snap, err := e.analytics.Snapshot(ctx, userID)
		if err == nil {
			return snap
		}
		if e.logger != nil {
			e.logger.Printf("aggregate: analytics read failed | user=%s err=%v", userID, err)
		}
	}
	return fallback.New(e.seed()).Analytics(userID)
}

func (e *Engine) seed() int64 {
	if e == nil || e.seedFn == nil {
		return time.Now().UnixNano()
	}
	return e.seedFn()
}

func (e *Engine) cachedSearch(ctx context.Context, req domain.SearchRequest) ([]domain.JobRecord, bool) {
	if e.cache == nil {
		return nil, false
	}
	var out []domain.JobRecord
	ok, err := e.cache.GetJSON(ctx, searchCacheKey(req), &out)
	if err != nil || !ok || len(out) == 0 {
		return nil, false
	}
	return out, true
}

func (e *Engine) storeSearch(ctx context.Context, req domain.SearchRequest, jobs []domain.JobRecord) {
	if e.cache == nil || len(jobs) == 0 {
		return
	}
	if err := e.cache.SetJSON(ctx, searchCacheKey(req), jobs, e.cacheTTL); err != nil && e.logger != nil {
		e.logger.Printf("aggregate: cache write failed | err=%v", err)
	}
}

// Sources lists the tags of the configured adapters, in registration order.
func (e *Engine) Sources() []domain.Source {
	if e == nil {
		return nil
	}
	out := make([]domain.Source, 0, len(e.adapters))
	for _, a := range e.adapters {
		out = append(out, a.Name())
	}
	return out
}

// ContributingSources returns the distinct source tags present in a result
// set, in first-appearance order.
func ContributingSources(jobs []domain.JobRecord) []string {
	seen := make(map[domain.Source]struct{}, 4)
	out := make([]string, 0, 4)
	for _, j := range jobs {
		if _, ok := seen[j.Source]; ok {
			continue
		}
		seen[j.Source] = struct{}{}
		out = append(out, string(j.Source))
	}
	return out
}
