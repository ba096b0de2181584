package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/kailas-cloud/prospector/internal/domain"
	"github.com/kailas-cloud/prospector/internal/domain/bulk"
	"github.com/kailas-cloud/prospector/internal/domain/candidate"
	"github.com/kailas-cloud/prospector/internal/domain/company"
	"github.com/kailas-cloud/prospector/internal/domain/lookup"
	"github.com/kailas-cloud/prospector/internal/domain/upstream"
)

// PersonMatch is the outcome of a person enrichment. Candidate is nil when nothing matched.
type PersonMatch struct {
	Candidate  *candidate.Candidate `json:"candidate"`
	Likelihood float64              `json:"likelihood"`
}

// CompanyMatch is the outcome of a company enrichment. Company is nil when nothing matched.
type CompanyMatch struct {
	Company    *company.Company `json:"company"`
	Likelihood float64          `json:"likelihood"`
}

// IdentifiedPerson is one identify match.
type IdentifiedPerson struct {
	Candidate  candidate.Candidate `json:"candidate"`
	MatchScore *float64            `json:"match_score,omitempty"`
}

// Identification lists the people matching a set of identity signals.
type Identification struct {
	Matches []IdentifiedPerson `json:"matches"`
}

// Passthrough carries an upstream record that is not normalized.
type Passthrough struct {
	Data       json.RawMessage `json:"data"`
	Likelihood *float64        `json:"likelihood,omitempty"`
}

// BulkResult holds one outcome per sent entry and the count of entries cut off.
type BulkResult struct {
	Results []bulk.Outcome `json:"results"`
	Dropped int            `json:"dropped"`
}

// Service runs single-record and bulk enrichments.
type Service struct {
	lookups  Lookuper
	identify Identifier
	bulk     BulkEnricher
}

// New creates an enrichment service.
func New(lookups Lookuper, identify Identifier, bulk BulkEnricher) *Service {
	return &Service{lookups: lookups, identify: identify, bulk: bulk}
}

// EnrichPerson looks up one person by profile, email, phone, or name with company.
// An upstream "not found" yields an empty match with likelihood 0.
func (s *Service) EnrichPerson(ctx context.Context, p lookup.Person) (PersonMatch, error) {
	if p.IsEmpty() {
		return PersonMatch{}, fmt.Errorf("%w: profile, email, phone, or name with company is required",
			domain.ErrInvalidRequest)
	}

	resp, found, err := s.lookup(ctx, lookup.PersonEndpoint, p.Query())
	if err != nil || !found {
		return PersonMatch{}, err
	}

	out := PersonMatch{Likelihood: likelihood(resp)}
	if raw, ok := resp.Record(); ok {
		c := candidate.Decode(raw)
		out.Candidate = &c
	}
	return out, nil
}

// EnrichCompany looks up one organization by website, name, ticker, or profile.
func (s *Service) EnrichCompany(ctx context.Context, c lookup.Company) (CompanyMatch, error) {
	if c.IsEmpty() {
		return CompanyMatch{}, fmt.Errorf("%w: website, name, ticker, or profile is required", domain.ErrInvalidRequest)
	}

	body, err := s.lookups.Lookup(ctx, lookup.CompanyEndpoint, c.Query())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return CompanyMatch{}, nil
		}
		return CompanyMatch{}, fmt.Errorf("enrich company: %w", err)
	}
	resp, err := upstream.DecodeResponse(body)
	if err != nil {
		return CompanyMatch{}, fmt.Errorf("enrich company: %w: %w", err, domain.ErrUpstreamError)
	}

	out := CompanyMatch{Likelihood: likelihood(resp)}
	if raw, ok := companyRecord(resp, body); ok {
		co := company.Decode(raw)
		out.Company = &co
	}
	return out, nil
}

// IdentifyPerson returns every person matching the identity signals, best match first
// as ordered by the service.
func (s *Service) IdentifyPerson(ctx context.Context, id lookup.Identity) (Identification, error) {
	if id.IsEmpty() {
		return Identification{}, fmt.Errorf("%w: at least one of ip, cookie, email, phone is required",
			domain.ErrInvalidRequest)
	}

	resp, err := s.identify.Identify(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Identification{Matches: []IdentifiedPerson{}}, nil
		}
		return Identification{}, fmt.Errorf("identify person: %w", err)
	}

	matches := resp.Matches()
	out := Identification{Matches: make([]IdentifiedPerson, 0, len(matches))}
	for _, m := range matches {
		out.Matches = append(out.Matches, IdentifiedPerson{
			Candidate:  candidate.Decode(m.Data),
			MatchScore: m.MatchScore,
		})
	}
	return out, nil
}

// EnrichIP returns the upstream record for an IP address.
func (s *Service) EnrichIP(ctx context.Context, ip string) (Passthrough, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return Passthrough{}, fmt.Errorf("%w: ip is required", domain.ErrInvalidRequest)
	}
	return s.passthrough(ctx, lookup.IPEndpoint, url.Values{"ip": {ip}})
}

// EnrichJobTitle returns the upstream record for a job title.
func (s *Service) EnrichJobTitle(ctx context.Context, title string) (Passthrough, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Passthrough{}, fmt.Errorf("%w: job_title is required", domain.ErrInvalidRequest)
	}
	return s.passthrough(ctx, lookup.JobTitleEndpoint, url.Values{"job_title": {title}})
}

// BulkEnrichPeople enriches up to bulk.MaxBatchSize people in one call.
// Entries past the limit are not sent; their count is reported in Dropped.
func (s *Service) BulkEnrichPeople(ctx context.Context, params []bulk.Params) (BulkResult, error) {
	if len(params) == 0 {
		return BulkResult{}, fmt.Errorf("%w: at least one request is required", domain.ErrInvalidRequest)
	}
	for i, p := range params[:min(len(params), bulk.MaxBatchSize)] {
		if p.IsEmpty() {
			return BulkResult{}, fmt.Errorf("%w: request %d has no profile, email, or phone", domain.ErrInvalidRequest, i)
		}
	}

	batch := bulk.NewBatch(params)
	items, err := s.bulk.BulkEnrich(ctx, batch.Body())
	if err != nil {
		return BulkResult{}, fmt.Errorf("bulk enrich: %w", err)
	}
	return BulkResult{Results: bulk.Outcomes(items), Dropped: batch.Dropped()}, nil
}

func (s *Service) passthrough(ctx context.Context, endpoint string, params url.Values) (Passthrough, error) {
	resp, found, err := s.lookup(ctx, endpoint, params)
	if err != nil || !found {
		return Passthrough{}, err
	}
	out := Passthrough{Likelihood: resp.Likelihood}
	if raw, ok := resp.Record(); ok {
		out.Data = raw
	}
	return out, nil
}

// lookup calls endpoint and decodes the envelope. found is false on an upstream 404.
func (s *Service) lookup(ctx context.Context, endpoint string, params url.Values) (upstream.Response, bool, error) {
	body, err := s.lookups.Lookup(ctx, endpoint, params)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return upstream.Response{}, false, nil
		}
		return upstream.Response{}, false, fmt.Errorf("enrich %s: %w", endpoint, err)
	}
	resp, err := upstream.DecodeResponse(body)
	if err != nil {
		return upstream.Response{}, false, fmt.Errorf("enrich %s: %w: %w", endpoint, err, domain.ErrUpstreamError)
	}
	return resp, true, nil
}

// companyRecord returns data when present; company enrichment also answers with the record at top level.
func companyRecord(resp upstream.Response, body []byte) (json.RawMessage, bool) {
	if raw, ok := resp.Record(); ok {
		return raw, true
	}
	top := upstream.ParseObject(body)
	if top.Has("id") || top.Has("name") {
		return body, true
	}
	return nil, false
}

func likelihood(r upstream.Response) float64 {
	if r.Likelihood == nil {
		return 0
	}
	return *r.Likelihood
}
