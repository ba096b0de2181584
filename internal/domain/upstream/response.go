package upstream

import (
	"encoding/json"
	"fmt"
)

// Response is the common upstream response envelope.
type Response struct {
	Status      int
	Data        json.RawMessage
	Total       *float64
	ScrollToken *string
	Likelihood  *float64
	Error       string
	obj         Object
}

// DecodeResponse decodes an upstream response body.
// Only a body that is not a JSON object is an error.
func DecodeResponse(body []byte) (Response, error) {
	var o Object
	if err := json.Unmarshal(body, &o); err != nil || o == nil {
		return Response{}, fmt.Errorf("decode upstream response: not a JSON object")
	}
	return responseFromObject(o), nil
}

func responseFromObject(o Object) Response {
	r := Response{
		Data:        o["data"],
		Total:       o.Number("total"),
		ScrollToken: o.Str("scroll_token"),
		Likelihood:  o.Number("likelihood"),
		Error:       errorMessage(o),
		obj:         o,
	}
	if s := o.Int("status"); s != nil {
		r.Status = *s
	}
	return r
}

// Records returns the elements of an array-valued data field.
// ok is false when data is absent or not an array.
func (r Response) Records() ([]json.RawMessage, bool) {
	if r.Data == nil {
		return nil, false
	}
	return asArray(r.Data)
}

// Record returns an object-valued data field.
func (r Response) Record() (json.RawMessage, bool) {
	if r.Data == nil || !isObject(r.Data) {
		return nil, false
	}
	return r.Data, true
}

// Match is one candidate returned by the identify endpoint.
type Match struct {
	Data       json.RawMessage
	MatchScore *float64
}

// Matches returns the identify matches, skipping elements that are not objects.
func (r Response) Matches() []Match {
	items, ok := r.obj.Array("matches")
	if !ok {
		return nil
	}
	out := make([]Match, 0, len(items))
	for _, item := range items {
		if !isObject(item) {
			continue
		}
		m := ParseObject(item)
		out = append(out, Match{Data: m["data"], MatchScore: m.Number("match_score")})
	}
	return out
}

// BulkItem is one element of a bulk enrichment response.
type BulkItem struct {
	Status     int
	Data       json.RawMessage
	Likelihood *float64
	Error      string
}

// DecodeBulk decodes a bulk enrichment response: a JSON array of envelopes.
func DecodeBulk(body []byte) ([]BulkItem, error) {
	items, ok := asArray(body)
	if !ok {
		return nil, fmt.Errorf("decode upstream bulk response: not a JSON array")
	}
	out := make([]BulkItem, 0, len(items))
	for _, item := range items {
		r := responseFromObject(ParseObject(item))
		out = append(out, BulkItem{
			Status:     r.Status,
			Data:       r.Data,
			Likelihood: r.Likelihood,
			Error:      r.Error,
		})
	}
	return out, nil
}

// ErrorMessage extracts the upstream error detail from a failure body.
// The service reports either "error": "text" or "error": {"message": "text"}.
func ErrorMessage(body []byte) string {
	return errorMessage(ParseObject(body))
}

func errorMessage(o Object) string {
	if s := o.Str("error"); s != nil {
		return *s
	}
	if nested, ok := o.Nested("error"); ok {
		if s := nested.Str("message"); s != nil {
			return *s
		}
		if s := nested.Str("type"); s != nil {
			return *s
		}
	}
	return ""
}
