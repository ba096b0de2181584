package prospector

import (
	"context"

	"github.com/kailas-cloud/prospector/internal/domain"
	"github.com/kailas-cloud/prospector/internal/domain/bulk"
	"github.com/kailas-cloud/prospector/internal/domain/candidate"
	"github.com/kailas-cloud/prospector/internal/domain/company"
	"github.com/kailas-cloud/prospector/internal/domain/lookup"
	"github.com/kailas-cloud/prospector/internal/domain/search/filter"
	"github.com/kailas-cloud/prospector/internal/domain/search/result"
	enrichuc "github.com/kailas-cloud/prospector/internal/usecase/enrich"
	searchuc "github.com/kailas-cloud/prospector/internal/usecase/search"
)

// Canonical records.
type (
	Candidate = candidate.Candidate
	Company   = company.Company
)

// Search filters. Blank fields do not restrict the search.
type (
	PersonFilter  = filter.People
	CompanyFilter = filter.Companies
)

// Search results.
type (
	SearchResult        = result.People
	CompanySearchResult = result.Companies
)

// Enrichment inputs.
type (
	PersonLookup  = lookup.Person
	CompanyLookup = lookup.Company
	Identity      = lookup.Identity
	BulkParams    = bulk.Params
)

// Enrichment results.
type (
	PersonMatch      = enrichuc.PersonMatch
	CompanyMatch     = enrichuc.CompanyMatch
	Identification   = enrichuc.Identification
	IdentifiedPerson = enrichuc.IdentifiedPerson
	Passthrough      = enrichuc.Passthrough
	BulkResult       = enrichuc.BulkResult
	BulkOutcome      = bulk.Outcome
)

// MaxBulkSize is the number of bulk entries sent per call; the rest are dropped.
const MaxBulkSize = bulk.MaxBatchSize

// Page selects one page of a search.
type Page struct {
	Size        int    // 0 uses the client default; other values are clamped to [1, 100]
	ScrollToken string // from the previous page; "" starts a new search
}

func (p Page) toUseCase() searchuc.Page {
	out := searchuc.Page{ScrollToken: p.ScrollToken}
	if p.Size != 0 {
		n := float64(p.Size)
		out.Size = &n
	}
	return out
}

// Credits is the upstream credit balance reported on responses.
type Credits = domain.Credits

// WithCreditTracking returns a context that collects the credit balance of the calls made with it.
// Read the returned Credits after the call; Known is false until a response carried the balance.
func WithCreditTracking(ctx context.Context) (context.Context, *Credits) {
	return domain.NewContextWithCredits(ctx)
}
