package filter

import (
	"strings"

	"github.com/Cheertaboi/catalog-discount-service/internal/models"
)

// Compile translates condition groups into a catalog filter query.
//
// Groups are ANDed. Inside an OR group with more than one usable condition the
// filters are wrapped in a disjunction; every other group is appended flat.
// Conditions with an empty value contribute nothing.
func Compile(groups []models.ConditionGroup) Query {
	q := Query{}
	for _, g := range groups {
		filters := make([]Filter, 0, len(g.Conditions))
		for _, c := range g.Conditions {
			f, ok := compileCondition(c)
			if !ok {
				continue
			}
			filters = append(filters, f)
		}

		if g.Operator == models.OperatorOr && len(filters) > 1 {
			q = append(q, Or(filters...))
			continue
		}
		q = append(q, filters...)
	}
	return q
}

func compileCondition(c models.Condition) (Filter, bool) {
	value := strings.TrimSpace(c.Value)
	if value == "" {
		return Filter{}, false
	}

	switch c.Type {
	case models.ConditionManufacturer:
		return Equals(FieldManufacturerID, value), true
	case models.ConditionCategory:
		return Equals(FieldCategoryTree, value), true
	case models.ConditionTag:
		return Contains(FieldTagIDs, []string{value}), true
	}
	return Filter{}, false
}
