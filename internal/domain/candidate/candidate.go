// Package candidate holds the canonical person record and its normalizer.
package candidate

import (
	"encoding/json"
	"strings"

	"github.com/kailas-cloud/prospector/internal/domain/identifier"
	"github.com/kailas-cloud/prospector/internal/domain/upstream"
)

// Candidate is the canonical person record. Slices are never nil.
type Candidate struct {
	ID             string            `json:"id"`
	FullName       string            `json:"full_name"`
	JobTitle       *string           `json:"job_title,omitempty"`
	JobCompanyName *string           `json:"job_company_name,omitempty"`
	LocationName   string            `json:"location_name"`
	LinkedInURL    *string           `json:"linkedin_url,omitempty"`
	GitHubURL      *string           `json:"github_url,omitempty"`
	TwitterURL     *string           `json:"twitter_url,omitempty"`
	FacebookURL    *string           `json:"facebook_url,omitempty"`
	Emails         []string          `json:"emails"`
	PhoneNumbers   []string          `json:"phone_numbers"`
	Experience     []json.RawMessage `json:"experience"`
	Skills         []string          `json:"skills"`
}

// FromUpstream normalizes an upstream person record. It never fails.
func FromUpstream(p upstream.Person) Candidate {
	return Candidate{
		ID:             id(p.ID),
		FullName:       fullName(p),
		JobTitle:       coalesce(p.JobTitle, p.JobTitleRole),
		JobCompanyName: p.JobCompanyName,
		LocationName:   locationName(p),
		LinkedInURL:    p.LinkedInURL,
		GitHubURL:      p.GitHubURL,
		TwitterURL:     p.TwitterURL,
		FacebookURL:    p.FacebookURL,
		Emails:         orEmpty(p.Emails),
		PhoneNumbers:   orEmpty(p.PhoneNumbers),
		Experience:     orEmpty(p.Experience),
		Skills:         orEmpty(p.Skills),
	}
}

// Decode decodes and normalizes one raw upstream person record.
func Decode(data []byte) Candidate {
	return FromUpstream(upstream.DecodePerson(data))
}

func id(v *string) string {
	if v != nil {
		return *v
	}
	return identifier.New()
}

func fullName(p upstream.Person) string {
	if p.FullName != nil {
		return *p.FullName
	}
	return strings.TrimSpace(deref(p.FirstName) + " " + deref(p.LastName))
}

func locationName(p upstream.Person) string {
	if p.LocationName != nil {
		return *p.LocationName
	}
	parts := make([]string, 0, 3)
	for _, v := range []*string{p.LocationLocality, p.LocationRegion, p.LocationCountry} {
		if v != nil {
			parts = append(parts, *v)
		}
	}
	return strings.Join(parts, ", ")
}

func coalesce(vals ...*string) *string {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
