package upstream

// Company is an upstream company record. Pointer fields are nil when absent.
type Company struct {
	ID            *string
	Name          *string
	Website       *string
	Industry      *string
	Size          *string
	LinkedInURL   *string
	Summary       *string
	Location      *string // nested location.name, or a flat location string
	Founded       *int
	EmployeeCount *int
}

// DecodeCompany decodes one upstream company record. It never fails.
func DecodeCompany(data []byte) Company {
	return CompanyFromObject(ParseObject(data))
}

// CompanyFromObject reads a company record from an already parsed object.
func CompanyFromObject(o Object) Company {
	return Company{
		ID:            o.Str("id"),
		Name:          o.Str("name"),
		Website:       o.Str("website"),
		Industry:      o.Str("industry"),
		Size:          o.Str("size"),
		LinkedInURL:   o.Str("linkedin_url"),
		Summary:       o.Str("summary"),
		Location:      location(o),
		Founded:       o.Int("founded"),
		EmployeeCount: o.Int("employee_count"),
	}
}

// location reads either {"location": {"name": ...}} or {"location": "..."}.
func location(o Object) *string {
	if nested, ok := o.Nested("location"); ok {
		return nested.Str("name")
	}
	return o.Str("location")
}
