// Package result builds the search envelopes returned to callers.
package result

import (
	"encoding/json"
	"math"

	"github.com/kailas-cloud/prospector/internal/domain/candidate"
	"github.com/kailas-cloud/prospector/internal/domain/company"
	"github.com/kailas-cloud/prospector/internal/domain/upstream"
)

// People is a page of normalized person records.
type People struct {
	Candidates  []candidate.Candidate `json:"candidates"`
	Total       int                   `json:"total"`
	ScrollToken *string               `json:"scroll_token,omitempty"`
}

// Companies is a page of normalized organization records.
type Companies struct {
	Companies   []company.Company `json:"companies"`
	Total       int               `json:"total"`
	ScrollToken *string           `json:"scroll_token,omitempty"`
}

// NewPeople normalizes every record of a person search response.
// Total falls back to the number of records when the upstream omits it,
// even if the page is one of many.
func NewPeople(r upstream.Response) People {
	records := records(r)
	out := People{
		Candidates:  make([]candidate.Candidate, 0, len(records)),
		ScrollToken: r.ScrollToken,
	}
	for _, raw := range records {
		out.Candidates = append(out.Candidates, candidate.Decode(raw))
	}
	out.Total = total(r, len(out.Candidates))
	return out
}

// NewCompanies normalizes every record of a company search response.
func NewCompanies(r upstream.Response) Companies {
	records := records(r)
	out := Companies{
		Companies:   make([]company.Company, 0, len(records)),
		ScrollToken: r.ScrollToken,
	}
	for _, raw := range records {
		out.Companies = append(out.Companies, company.Decode(raw))
	}
	out.Total = total(r, len(out.Companies))
	return out
}

func records(r upstream.Response) []json.RawMessage {
	items, ok := r.Records()
	if !ok {
		return nil
	}
	return items
}

// total prefers the upstream count. A negative count is ignored and a huge one saturates.
func total(r upstream.Response, n int) int {
	switch {
	case r.Total == nil || *r.Total < 0:
		return n
	case *r.Total >= math.MaxInt:
		return math.MaxInt
	default:
		return int(*r.Total)
	}
}
