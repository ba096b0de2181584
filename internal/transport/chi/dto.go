package chi

import (
	"encoding/json"
	"strings"

	"github.com/kailas-cloud/prospector/internal/domain/bulk"
	"github.com/kailas-cloud/prospector/internal/domain/lookup"
	"github.com/kailas-cloud/prospector/internal/domain/search/filter"
	"github.com/kailas-cloud/prospector/internal/domain/search/request"
	searchuc "github.com/kailas-cloud/prospector/internal/usecase/search"
)

// pageRequest carries the paging fields shared by both searches.
// Size is loosely typed: a number or a numeric string.
type pageRequest struct {
	SQL         string          `json:"sql" validate:"max=8192"`
	Size        json.RawMessage `json:"size"`
	ScrollToken string          `json:"scroll_token" validate:"max=4096"`
}

func (p pageRequest) page() searchuc.Page {
	return searchuc.Page{Size: request.ParseSize(p.Size), ScrollToken: strings.TrimSpace(p.ScrollToken)}
}

func (p pageRequest) isRaw() bool { return strings.TrimSpace(p.SQL) != "" }

type personSearchRequest struct {
	pageRequest
	Country       string   `json:"country" validate:"max=256"`
	Region        string   `json:"region" validate:"max=256"`
	Locality      string   `json:"locality" validate:"max=256"`
	Role          string   `json:"role" validate:"max=256"`
	Level         string   `json:"level" validate:"max=256"`
	MustHavePhone bool     `json:"must_have_phone"`
	MustHaveEmail bool     `json:"must_have_email"`
	Skills        []string `json:"skills" validate:"max=50,dive,max=256"`
	Companies     []string `json:"companies" validate:"max=50,dive,max=256"`
}

func (r personSearchRequest) filter() filter.People {
	return filter.People{
		Country:       r.Country,
		Region:        r.Region,
		Locality:      r.Locality,
		Role:          r.Role,
		Level:         r.Level,
		MustHavePhone: r.MustHavePhone,
		MustHaveEmail: r.MustHaveEmail,
		Skills:        r.Skills,
		Companies:     r.Companies,
	}
}

type companySearchRequest struct {
	pageRequest
	Name      string `json:"name" validate:"max=256"`
	Website   string `json:"website" validate:"max=256"`
	Industry  string `json:"industry" validate:"max=256"`
	Location  string `json:"location" validate:"max=256"`
	SizeRange string `json:"size_range" validate:"max=64"`
	Founded   string `json:"founded" validate:"max=16"`
}

func (r companySearchRequest) filter() filter.Companies {
	return filter.Companies{
		Name:     r.Name,
		Website:  r.Website,
		Industry: r.Industry,
		Location: r.Location,
		Size:     r.SizeRange,
		Founded:  r.Founded,
	}
}

// personParams identifies one person. linkedin is accepted as an alias of profile.
type personParams struct {
	Profile  string `json:"profile" validate:"max=512"`
	LinkedIn string `json:"linkedin" validate:"max=512"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"max=64"`
}

func (p personParams) profile() string {
	if strings.TrimSpace(p.Profile) != "" {
		return p.Profile
	}
	return p.LinkedIn
}

type personEnrichRequest struct {
	personParams
	Name    string `json:"name" validate:"max=256"`
	Company string `json:"company" validate:"max=256"`
}

func (r personEnrichRequest) lookup() lookup.Person {
	return lookup.Person{
		Profile: r.profile(),
		Email:   r.Email,
		Phone:   r.Phone,
		Name:    r.Name,
		Company: r.Company,
	}
}

type bulkEnrichRequest struct {
	Requests []personParams `json:"requests" validate:"required,min=1,dive"`
}

func (r bulkEnrichRequest) params() []bulk.Params {
	out := make([]bulk.Params, len(r.Requests))
	for i, p := range r.Requests {
		out[i] = bulk.Params{Profile: p.profile(), Email: p.Email, Phone: p.Phone}
	}
	return out
}

type companyEnrichRequest struct {
	Website string `json:"website" validate:"max=512"`
	Name    string `json:"name" validate:"max=256"`
	Ticker  string `json:"ticker" validate:"max=16"`
	Profile string `json:"profile" validate:"max=512"`
}

func (r companyEnrichRequest) lookup() lookup.Company {
	return lookup.Company{Website: r.Website, Name: r.Name, Ticker: r.Ticker, Profile: r.Profile}
}

type identifyRequest struct {
	IP     string `json:"ip" validate:"omitempty,ip"`
	Cookie string `json:"cookie" validate:"max=512"`
	Email  string `json:"email" validate:"omitempty,email"`
	Phone  string `json:"phone" validate:"max=64"`
}

func (r identifyRequest) identity() lookup.Identity {
	return lookup.Identity{IP: r.IP, Cookie: r.Cookie, Email: r.Email, Phone: r.Phone}
}

type ipEnrichRequest struct {
	IP string `json:"ip" validate:"omitempty,ip"`
}

type jobTitleEnrichRequest struct {
	JobTitle string `json:"job_title" validate:"max=256"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
