// Package filter builds the remote catalog's native search filters from
// discount condition groups.
package filter

// Filter is one node of the catalog's search filter tree. Leaf filters carry
// Field and Value; a "multi" filter combines Queries with Operator.
type Filter struct {
	Type     string   `json:"type"`
	Field    string   `json:"field,omitempty"`
	Value    any      `json:"value,omitempty"`
	Operator string   `json:"operator,omitempty"`
	Queries  []Filter `json:"queries,omitempty"`
}

// Query is the top-level filter list. The catalog ANDs its entries.
type Query []Filter

const (
	TypeEquals   = "equals"
	TypeContains = "contains"
	TypeMulti    = "multi"
)

// Catalog fields conditions are compiled against.
const (
	FieldManufacturerID = "product.manufacturerId"
	FieldCategoryTree   = "product.categoryTree"
	FieldTagIDs         = "product.tagIds"
)

// Equals matches field == value.
func Equals(field string, value any) Filter {
	return Filter{Type: TypeEquals, Field: field, Value: value}
}

// Contains matches when field (a list) contains value.
func Contains(field string, value any) Filter {
	return Filter{Type: TypeContains, Field: field, Value: value}
}

// Or matches when any of the given filters matches.
func Or(filters ...Filter) Filter {
	return Filter{Type: TypeMulti, Operator: "OR", Queries: filters}
}

// IsEmpty reports whether the query would match the whole catalog.
func (q Query) IsEmpty() bool {
	return len(q) == 0
}
