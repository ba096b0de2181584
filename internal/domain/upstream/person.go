package upstream

import "encoding/json"

// Person is an upstream person record. Pointer fields are nil when absent.
type Person struct {
	ID               *string
	FullName         *string
	FirstName        *string
	LastName         *string
	JobTitle         *string
	JobTitleRole     *string
	JobCompanyName   *string
	LocationName     *string
	LocationLocality *string
	LocationRegion   *string
	LocationCountry  *string
	LinkedInURL      *string
	GitHubURL        *string
	TwitterURL       *string
	FacebookURL      *string
	Emails           []string
	PhoneNumbers     []string
	Experience       []json.RawMessage
	Skills           []string
}

// DecodePerson decodes one upstream person record. It never fails.
func DecodePerson(data []byte) Person {
	return PersonFromObject(ParseObject(data))
}

// PersonFromObject reads a person record from an already parsed object.
func PersonFromObject(o Object) Person {
	p := Person{
		ID:               o.Str("id"),
		FullName:         o.Str("full_name"),
		FirstName:        o.Str("first_name"),
		LastName:         o.Str("last_name"),
		JobTitle:         o.Str("job_title"),
		JobTitleRole:     o.Str("job_title_role"),
		JobCompanyName:   o.Str("job_company_name"),
		LocationName:     o.Str("location_name"),
		LocationLocality: o.Str("location_locality"),
		LocationRegion:   o.Str("location_region"),
		LocationCountry:  o.Str("location_country"),
		LinkedInURL:      o.Str("linkedin_url"),
		GitHubURL:        o.Str("github_url"),
		TwitterURL:       o.Str("twitter_url"),
		FacebookURL:      o.Str("facebook_url"),
		Emails:           emails(o),
		PhoneNumbers:     o.Strings("phone_numbers"),
		Skills:           o.Strings("skills"),
	}
	if items, ok := o.Array("experience"); ok {
		p.Experience = items
	}
	return p
}

// emails accepts both plain strings and {address, type} objects.
func emails(o Object) []string {
	items, ok := o.Array("emails")
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			if s != "" {
				out = append(out, s)
			}
			continue
		}
		if obj := ParseObject(item); obj.Str("address") != nil {
			out = append(out, *obj.Str("address"))
		}
	}
	return out
}
