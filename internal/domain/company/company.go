// Package company holds the canonical organization record and its normalizer.
package company

import (
	"github.com/kailas-cloud/prospector/internal/domain/identifier"
	"github.com/kailas-cloud/prospector/internal/domain/upstream"
)

// Company is the canonical organization record.
type Company struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Domain        *string `json:"domain,omitempty"`
	Industry      *string `json:"industry,omitempty"`
	Size          *string `json:"size,omitempty"`
	Location      *string `json:"location,omitempty"`
	LinkedInURL   *string `json:"linkedin_url,omitempty"`
	Description   *string `json:"description,omitempty"`
	Founded       *int    `json:"founded,omitempty"`
	EmployeeCount *int    `json:"employee_count,omitempty"`
}

// FromUpstream normalizes an upstream company record. It never fails.
// A missing name is passed through as an empty string.
func FromUpstream(c upstream.Company) Company {
	out := Company{
		Domain:        c.Website,
		Industry:      c.Industry,
		Size:          c.Size,
		Location:      c.Location,
		LinkedInURL:   c.LinkedInURL,
		Description:   c.Summary,
		Founded:       c.Founded,
		EmployeeCount: c.EmployeeCount,
	}
	if c.ID != nil {
		out.ID = *c.ID
	} else {
		out.ID = identifier.New()
	}
	if c.Name != nil {
		out.Name = *c.Name
	}
	return out
}

// Decode decodes and normalizes one raw upstream company record.
func Decode(data []byte) Company {
	return FromUpstream(upstream.DecodeCompany(data))
}
