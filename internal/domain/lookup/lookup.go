// Package lookup holds the parameters of single-record enrichment calls.
package lookup

import (
	"net/url"
	"strings"
)

// Upstream paths of the single-record enrichment lookups.
const (
	PersonEndpoint   = "/person/enrich"
	CompanyEndpoint  = "/company/enrich"
	IPEndpoint       = "/ip/enrich"
	JobTitleEndpoint = "/job_title/enrich"
)

// Person identifies one person to enrich.
// Name and Company are only sent together.
type Person struct {
	Profile string
	Email   string
	Phone   string
	Name    string
	Company string
}

// Query returns the upstream query parameters, omitting blank fields.
func (p Person) Query() url.Values {
	q := url.Values{}
	set(q, "profile", p.Profile)
	set(q, "email", p.Email)
	set(q, "phone", p.Phone)
	if blank(p.Name) || blank(p.Company) {
		return q
	}
	set(q, "name", p.Name)
	set(q, "company", p.Company)
	return q
}

// IsEmpty reports whether Query would carry no parameters.
func (p Person) IsEmpty() bool { return len(p.Query()) == 0 }

// Company identifies one organization to enrich.
type Company struct {
	Website string
	Name    string
	Ticker  string
	Profile string
}

// Query returns the upstream query parameters, omitting blank fields.
func (c Company) Query() url.Values {
	q := url.Values{}
	set(q, "website", c.Website)
	set(q, "name", c.Name)
	set(q, "ticker", c.Ticker)
	set(q, "profile", c.Profile)
	return q
}

// IsEmpty reports whether Query would carry no parameters.
func (c Company) IsEmpty() bool { return len(c.Query()) == 0 }

// Identity holds the signals for person identification.
type Identity struct {
	IP     string `json:"ip,omitempty"`
	Cookie string `json:"cookie,omitempty"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

// Trimmed returns a copy with surrounding whitespace removed.
func (i Identity) Trimmed() Identity {
	return Identity{
		IP:     strings.TrimSpace(i.IP),
		Cookie: strings.TrimSpace(i.Cookie),
		Email:  strings.TrimSpace(i.Email),
		Phone:  strings.TrimSpace(i.Phone),
	}
}

// IsEmpty reports whether no signal is set.
func (i Identity) IsEmpty() bool {
	return i.Trimmed() == Identity{}
}

func set(q url.Values, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		q.Set(key, v)
	}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
