package filter

import "strings"

// People is the structured filter for person searches.
// Every field is optional; the zero value selects all people.
type People struct {
	Country       string
	Region        string
	Locality      string
	Role          string
	Level         string
	MustHavePhone bool
	MustHaveEmail bool
	Skills        []string
	Companies     []string
}

// IsEmpty reports whether the filter restricts nothing.
func (f People) IsEmpty() bool {
	return blank(f.Country) && blank(f.Region) && blank(f.Locality) &&
		blank(f.Role) && blank(f.Level) &&
		!f.MustHavePhone && !f.MustHaveEmail &&
		len(Values(f.Skills)) == 0 && len(Values(f.Companies)) == 0
}

// Companies is the structured filter for company searches.
// Every field is optional; the zero value selects all companies.
type Companies struct {
	Name     string
	Website  string
	Industry string
	Location string
	Size     string
	Founded  string
}

// IsEmpty reports whether the filter restricts nothing.
func (f Companies) IsEmpty() bool {
	return blank(f.Name) && blank(f.Website) && blank(f.Industry) &&
		blank(f.Location) && blank(f.Size) && blank(f.Founded)
}

// Values returns the trimmed non-empty entries of a list, preserving order.
func Values(list []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
