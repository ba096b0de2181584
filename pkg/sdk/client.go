package prospector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	dbRedis "github.com/kailas-cloud/prospector/internal/db/redis"
	"github.com/kailas-cloud/prospector/internal/domain/bulk"
	"github.com/kailas-cloud/prospector/internal/domain/lookup"
	"github.com/kailas-cloud/prospector/internal/domain/search/filter"
	"github.com/kailas-cloud/prospector/internal/domain/search/result"
	"github.com/kailas-cloud/prospector/internal/repository/enrichcache"
	"github.com/kailas-cloud/prospector/internal/transport/pdl"
	enrichuc "github.com/kailas-cloud/prospector/internal/usecase/enrich"
	healthuc "github.com/kailas-cloud/prospector/internal/usecase/health"
	searchuc "github.com/kailas-cloud/prospector/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for mocks in tests.
type searchUseCase interface {
	SearchPeople(ctx context.Context, f filter.People, page searchuc.Page) (result.People, error)
	SearchCompanies(ctx context.Context, f filter.Companies, page searchuc.Page) (result.Companies, error)
	RunRawPeopleQuery(ctx context.Context, sql string, page searchuc.Page) (result.People, error)
	RunRawCompanyQuery(ctx context.Context, sql string, page searchuc.Page) (result.Companies, error)
}

type enrichUseCase interface {
	EnrichPerson(ctx context.Context, p lookup.Person) (enrichuc.PersonMatch, error)
	EnrichCompany(ctx context.Context, c lookup.Company) (enrichuc.CompanyMatch, error)
	IdentifyPerson(ctx context.Context, id lookup.Identity) (enrichuc.Identification, error)
	EnrichIP(ctx context.Context, ip string) (enrichuc.Passthrough, error)
	EnrichJobTitle(ctx context.Context, title string) (enrichuc.Passthrough, error)
	BulkEnrichPeople(ctx context.Context, params []bulk.Params) (enrichuc.BulkResult, error)
}

// Client is the prospector SDK entry point. It is safe for concurrent use.
type Client struct {
	cache     *dbRedis.Store
	searchSvc searchUseCase
	enrichSvc enrichUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client for the given upstream API key.
// With WithRedisCache it also connects to Redis and waits for it to answer.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("prospector: api key required")
	}
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	logger := zapLogger(cfg.logger)
	upstream := pdl.NewClient(&pdl.Config{
		BaseURL:    cfg.baseURL,
		APIKey:     apiKey,
		Timeout:    cfg.timeout,
		RateLimit:  cfg.rateLimit,
		Burst:      cfg.burst,
		HTTPClient: cfg.httpClient,
		Logger:     logger,
	})

	var (
		lookups enrichuc.Lookuper = upstream
		store   *dbRedis.Store
		pinger  healthuc.CachePinger
	)
	if len(cfg.cacheAddrs) > 0 {
		store, err = connectCache(cfg)
		if err != nil {
			return nil, err
		}
		lookups = enrichcache.New(upstream, store, cfg.cacheTTL, obs.cacheCounter(), logger)
		pinger = store
	}

	return &Client{
		cache:     store,
		searchSvc: searchuc.New(upstream, cfg.defaultSize),
		enrichSvc: enrichuc.New(lookups, upstream, upstream),
		healthSvc: healthuc.New(pinger, true),
		obs:       obs,
	}, nil
}

func connectCache(cfg *clientConfig) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.cacheAddrs,
		Password: cfg.cachePassword,
	})
	if err != nil {
		return nil, fmt.Errorf("prospector: create redis cache: %w", err)
	}
	if err := store.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("prospector: redis cache not ready: %w", err)
	}
	return store, nil
}

// Close releases the cache connection, if any.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}

// SearchPeople finds people matching f.
func (c *Client) SearchPeople(ctx context.Context, f PersonFilter, page Page) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search_people", start, err, "returned", len(res.Candidates)) }()

	return c.searchSvc.SearchPeople(ctx, f, page.toUseCase())
}

// SearchCompanies finds companies matching f.
func (c *Client) SearchCompanies(ctx context.Context, f CompanyFilter, page Page) (res CompanySearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search_companies", start, err, "returned", len(res.Companies)) }()

	return c.searchSvc.SearchCompanies(ctx, f, page.toUseCase())
}

// RunRawPeopleQuery runs sql against the person table verbatim.
// The SQL is not escaped or inspected.
func (c *Client) RunRawPeopleQuery(ctx context.Context, sql string, page Page) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("raw_people_query", start, err, "returned", len(res.Candidates)) }()

	return c.searchSvc.RunRawPeopleQuery(ctx, sql, page.toUseCase())
}

// RunRawCompanyQuery runs sql against the company table verbatim.
// The SQL is not escaped or inspected.
func (c *Client) RunRawCompanyQuery(ctx context.Context, sql string, page Page) (res CompanySearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("raw_company_query", start, err, "returned", len(res.Companies)) }()

	return c.searchSvc.RunRawCompanyQuery(ctx, sql, page.toUseCase())
}

// EnrichPerson looks up one person. A miss returns a nil Candidate, not an error.
func (c *Client) EnrichPerson(ctx context.Context, p PersonLookup) (m PersonMatch, err error) {
	start := time.Now()
	defer func() { c.obs.observe("enrich_person", start, err, "matched", m.Candidate != nil) }()

	return c.enrichSvc.EnrichPerson(ctx, p)
}

// EnrichCompany looks up one company. A miss returns a nil Company, not an error.
func (c *Client) EnrichCompany(ctx context.Context, l CompanyLookup) (m CompanyMatch, err error) {
	start := time.Now()
	defer func() { c.obs.observe("enrich_company", start, err, "matched", m.Company != nil) }()

	return c.enrichSvc.EnrichCompany(ctx, l)
}

// IdentifyPerson lists the people matching the identity signals.
func (c *Client) IdentifyPerson(ctx context.Context, id Identity) (res Identification, err error) {
	start := time.Now()
	defer func() { c.obs.observe("identify_person", start, err, "matches", len(res.Matches)) }()

	return c.enrichSvc.IdentifyPerson(ctx, id)
}

// EnrichIP returns the upstream record for an IP address.
func (c *Client) EnrichIP(ctx context.Context, ip string) (res Passthrough, err error) {
	start := time.Now()
	defer func() { c.obs.observe("enrich_ip", start, err) }()

	return c.enrichSvc.EnrichIP(ctx, ip)
}

// EnrichJobTitle returns the upstream record for a job title.
func (c *Client) EnrichJobTitle(ctx context.Context, title string) (res Passthrough, err error) {
	start := time.Now()
	defer func() { c.obs.observe("enrich_job_title", start, err) }()

	return c.enrichSvc.EnrichJobTitle(ctx, title)
}

// BulkEnrichPeople enriches up to MaxBulkSize people in one call.
// Entries past the limit are not sent and are counted in BulkResult.Dropped.
func (c *Client) BulkEnrichPeople(ctx context.Context, params []BulkParams) (res BulkResult, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("bulk_enrich_people", start, err, "results", len(res.Results), "dropped", res.Dropped)
	}()

	return c.enrichSvc.BulkEnrichPeople(ctx, params)
}
