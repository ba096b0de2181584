package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/prospector/internal/domain/entity"
	"github.com/kailas-cloud/prospector/internal/domain/search/predicate"
)

// Result size limits.
const (
	DefaultSize = 10
	MinSize     = 1
	MaxSize     = 100
)

// Request is an assembled upstream search query.
type Request struct {
	kind        entity.Kind
	sql         string
	size        int
	scrollToken string
	raw         bool
}

// New assembles a query selecting kind rows that match p.
// An empty predicate selects every row of the kind.
func New(kind entity.Kind, p predicate.Predicate, size int, scrollToken string) (Request, error) {
	if !kind.IsValid() {
		return Request{}, fmt.Errorf("invalid entity kind: %q", kind)
	}
	sql := "SELECT * FROM " + string(kind)
	if !p.IsEmpty() {
		sql += " WHERE " + p.String()
	}
	return Request{
		kind:        kind,
		sql:         sql,
		size:        clampInt(size),
		scrollToken: scrollToken,
	}, nil
}

// NewRaw runs a caller-supplied query verbatim.
//
// The query is NOT escaped or inspected: the caller owns its safety. Use New
// for anything derived from end-user input.
func NewRaw(kind entity.Kind, sql string, size int, scrollToken string) (Request, error) {
	if !kind.IsValid() {
		return Request{}, fmt.Errorf("invalid entity kind: %q", kind)
	}
	if strings.TrimSpace(sql) == "" {
		return Request{}, fmt.Errorf("raw query is required")
	}
	return Request{
		kind:        kind,
		sql:         sql,
		size:        clampInt(size),
		scrollToken: scrollToken,
		raw:         true,
	}, nil
}

// Kind returns the target entity kind.
func (r Request) Kind() entity.Kind { return r.kind }

// SQL returns the query text sent upstream.
func (r Request) SQL() string { return r.sql }

// Size returns the clamped result-size bound.
func (r Request) Size() int { return r.size }

// ScrollToken returns the continuation token, "" when starting a new search.
func (r Request) ScrollToken() string { return r.scrollToken }

// IsRaw reports whether the query bypassed the predicate builder.
func (r Request) IsRaw() bool { return r.raw }

// Body is the upstream search request body.
type Body struct {
	SQL         string `json:"sql"`
	Size        int    `json:"size"`
	ScrollToken string `json:"scroll_token,omitempty"`
	Titlecase   bool   `json:"titlecase,omitempty"`
}

// Body returns the JSON body for the upstream search endpoint.
// Person searches ask the upstream for titlecased values.
func (r Request) Body() Body {
	return Body{
		SQL:         r.sql,
		Size:        r.size,
		ScrollToken: r.scrollToken,
		Titlecase:   r.kind == entity.Person,
	}
}

// ClampSize resolves a requested result size.
// nil, NaN and infinities fall back to def; the result is truncated to an
// integer and clamped into [MinSize, MaxSize]. def itself is clamped too.
func ClampSize(n *float64, def int) int {
	if n == nil || math.IsNaN(*n) || math.IsInf(*n, 0) {
		return clampInt(def)
	}
	v := math.Trunc(*n)
	if v < MinSize {
		return MinSize
	}
	if v > MaxSize {
		return MaxSize
	}
	return int(v)
}

func clampInt(n int) int {
	if n < MinSize {
		return MinSize
	}
	if n > MaxSize {
		return MaxSize
	}
	return n
}

// ParseSize reads a loosely-typed size value: a JSON number or a numeric string.
// Anything else (absent, null, bool, non-numeric string) yields nil.
func ParseSize(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}
