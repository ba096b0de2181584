package predicate

import (
	"strings"

	"github.com/kailas-cloud/prospector/internal/domain/search/filter"
)

// Person fields understood by the upstream query language.
const (
	FieldCountry      = "location_country"
	FieldRegion       = "location_region"
	FieldLocality     = "location_locality"
	FieldRole         = "job_title_role"
	FieldLevel        = "job_title_levels"
	FieldPhoneNumbers = "phone_numbers"
	FieldEmails       = "emails"
	FieldSkills       = "skills"
	FieldEmployer     = "job_company_name"
)

// Company fields understood by the upstream query language.
const (
	FieldCompanyName     = "name"
	FieldCompanyWebsite  = "website"
	FieldCompanyIndustry = "industry"
	FieldCompanyLocation = "location.name"
	FieldCompanySize     = "size"
	FieldCompanyFounded  = "founded"
)

type clauseKind int

const (
	kindEquals clauseKind = iota
	kindExists
	kindAnyOf
)

// Clause is one AND-ed term of a Predicate.
type Clause struct {
	kind   clauseKind
	field  string
	values []string
}

// Equals creates an equality test of field against one literal.
func Equals(field, value string) Clause {
	return Clause{kind: kindEquals, field: field, values: []string{value}}
}

// Exists creates an existence test on a multi-valued field.
func Exists(field string) Clause {
	return Clause{kind: kindExists, field: field}
}

// AnyOf creates an OR-group of equality tests of field against each value.
func AnyOf(field string, values ...string) Clause {
	return Clause{kind: kindAnyOf, field: field, values: values}
}

// Field returns the field the clause tests.
func (c Clause) Field() string { return c.field }

// Values returns the literals the clause compares against (nil for Exists).
func (c Clause) Values() []string { return c.values }

// String renders the clause in the upstream query language.
func (c Clause) String() string {
	switch c.kind {
	case kindExists:
		return "EXISTS " + c.field
	case kindAnyOf:
		parts := make([]string, 0, len(c.values))
		for _, v := range c.values {
			parts = append(parts, equality(c.field, v))
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	default:
		if len(c.values) == 0 {
			return ""
		}
		return equality(c.field, c.values[0])
	}
}

// Predicate is an ordered conjunction of clauses.
type Predicate struct {
	clauses []Clause
}

// New creates a Predicate from clauses. Clauses without a literal to compare are dropped.
func New(clauses ...Clause) Predicate {
	p := Predicate{}
	for _, c := range clauses {
		p = p.And(c)
	}
	return p
}

// And returns a copy of p with c appended.
func (p Predicate) And(c Clause) Predicate {
	if c.kind != kindExists && len(c.values) == 0 {
		return p
	}
	clauses := make([]Clause, len(p.clauses), len(p.clauses)+1)
	copy(clauses, p.clauses)
	return Predicate{clauses: append(clauses, c)}
}

// Clauses returns the clauses in order.
func (p Predicate) Clauses() []Clause { return p.clauses }

// IsEmpty reports whether the predicate has no clauses.
func (p Predicate) IsEmpty() bool { return len(p.clauses) == 0 }

// String renders the predicate for a WHERE clause. Empty predicate renders "".
func (p Predicate) String() string {
	parts := make([]string, 0, len(p.clauses))
	for _, c := range p.clauses {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " AND ")
}

// ForPeople builds the person predicate. Clause order is fixed:
// location, role and level, required contact methods, skills, employers.
func ForPeople(f filter.People) Predicate {
	var p Predicate
	p = equalsIfSet(p, FieldCountry, f.Country)
	p = equalsIfSet(p, FieldRegion, f.Region)
	p = equalsIfSet(p, FieldLocality, f.Locality)
	p = equalsIfSet(p, FieldRole, f.Role)
	p = equalsIfSet(p, FieldLevel, f.Level)
	if f.MustHavePhone {
		p = p.And(Exists(FieldPhoneNumbers))
	}
	if f.MustHaveEmail {
		p = p.And(Exists(FieldEmails))
	}
	p = p.And(AnyOf(FieldSkills, filter.Values(f.Skills)...))
	p = p.And(AnyOf(FieldEmployer, filter.Values(f.Companies)...))
	return p
}

// ForCompanies builds the company predicate.
func ForCompanies(f filter.Companies) Predicate {
	var p Predicate
	p = equalsIfSet(p, FieldCompanyName, f.Name)
	p = equalsIfSet(p, FieldCompanyWebsite, f.Website)
	p = equalsIfSet(p, FieldCompanyIndustry, f.Industry)
	p = equalsIfSet(p, FieldCompanyLocation, f.Location)
	p = equalsIfSet(p, FieldCompanySize, f.Size)
	p = equalsIfSet(p, FieldCompanyFounded, f.Founded)
	return p
}

func equalsIfSet(p Predicate, field, value string) Predicate {
	if value = strings.TrimSpace(value); value == "" {
		return p
	}
	return p.And(Equals(field, value))
}

func equality(field, value string) string {
	return field + "=" + Quote(value)
}

// Quote renders s as a single-quoted literal.
func Quote(s string) string {
	return "'" + Escape(s) + "'"
}

// Escape doubles single quotes so s cannot terminate a quoted literal early.
func Escape(s string) string {
	return literalEscaper.Replace(s)
}

var literalEscaper = strings.NewReplacer("'", "''")
