package entity

// Kind is the upstream entity type a query targets.
type Kind string

// Entity kind constants. The values double as the upstream table names.
const (
	Person  Kind = "person"
	Company Kind = "company"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == Person || k == Company
}
