// Package bulk builds bulk person-enrichment batches and normalizes their outcomes.
package bulk

import (
	"strings"

	"github.com/kailas-cloud/prospector/internal/domain/candidate"
	"github.com/kailas-cloud/prospector/internal/domain/upstream"
)

// MaxBatchSize is the upstream limit on requests per bulk call.
const MaxBatchSize = 100

// Params identifies one person to enrich. Empty fields are not sent.
type Params struct {
	Profile string `json:"profile,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// IsEmpty reports whether no identifying field is set.
func (p Params) IsEmpty() bool {
	return strings.TrimSpace(p.Profile) == "" &&
		strings.TrimSpace(p.Email) == "" &&
		strings.TrimSpace(p.Phone) == ""
}

// Entry is one element of the upstream requests array.
type Entry struct {
	Params Params `json:"params"`
}

// Batch is a bulk request truncated to MaxBatchSize entries.
type Batch struct {
	entries []Entry
	dropped int
}

// NewBatch keeps the first MaxBatchSize params in input order and drops the rest.
// It does not split input into several batches.
func NewBatch(params []Params) Batch {
	n := min(len(params), MaxBatchSize)
	entries := make([]Entry, 0, n)
	for _, p := range params[:n] {
		entries = append(entries, Entry{Params: Params{
			Profile: strings.TrimSpace(p.Profile),
			Email:   strings.TrimSpace(p.Email),
			Phone:   strings.TrimSpace(p.Phone),
		}})
	}
	return Batch{entries: entries, dropped: len(params) - n}
}

// Entries returns the batch entries.
func (b Batch) Entries() []Entry { return b.entries }

// Len returns the number of entries that will be sent.
func (b Batch) Len() int { return len(b.entries) }

// Dropped returns how many input params were cut off.
func (b Batch) Dropped() int { return b.dropped }

// Body is the upstream bulk request body.
type Body struct {
	Requests []Entry `json:"requests"`
}

// Body returns the upstream request body.
func (b Batch) Body() Body {
	return Body{Requests: b.entries}
}

// ItemStatus is the outcome of one bulk entry.
type ItemStatus string

// Item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Outcome is the normalized result of one bulk entry.
type Outcome struct {
	Status         ItemStatus           `json:"status"`
	UpstreamStatus int                  `json:"upstream_status"`
	Candidate      *candidate.Candidate `json:"candidate,omitempty"`
	Likelihood     float64              `json:"likelihood"`
	Error          string               `json:"error,omitempty"`
}

// Outcomes normalizes the upstream bulk response, one outcome per element.
// An element is successful only with status 200 and an object data field.
func Outcomes(items []upstream.BulkItem) []Outcome {
	out := make([]Outcome, 0, len(items))
	for _, item := range items {
		out = append(out, outcome(item))
	}
	return out
}

func outcome(item upstream.BulkItem) Outcome {
	o := Outcome{UpstreamStatus: item.Status}
	if item.Likelihood != nil {
		o.Likelihood = *item.Likelihood
	}
	if item.Status == 200 && isObject(item.Data) {
		c := candidate.Decode(item.Data)
		o.Status = StatusOK
		o.Candidate = &c
		return o
	}
	o.Status = StatusError
	o.Error = item.Error
	if o.Error == "" {
		o.Error = "no matching record"
	}
	return o
}

func isObject(raw []byte) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
