package filter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/catalog-discount-service/internal/models"
)

func cond(t models.ConditionType, v string) models.Condition {
	return models.Condition{Type: t, Operator: "equals", Value: v}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name   string
		groups []models.ConditionGroup
		want   Query
	}{
		{
			name: "single manufacturer",
			groups: []models.ConditionGroup{
				{Operator: models.OperatorAnd, Conditions: []models.Condition{cond(models.ConditionManufacturer, "M1")}},
			},
			want: Query{Equals(FieldManufacturerID, "M1")},
		},
		{
			name: "and group is flat",
			groups: []models.ConditionGroup{
				{Operator: models.OperatorAnd, Conditions: []models.Condition{
					cond(models.ConditionCategory, "C1"),
					cond(models.ConditionTag, "T1"),
				}},
			},
			want: Query{
				Equals(FieldCategoryTree, "C1"),
				Contains(FieldTagIDs, []string{"T1"}),
			},
		},
		{
			name: "or group is wrapped",
			groups: []models.ConditionGroup{
				{Operator: models.OperatorOr, Conditions: []models.Condition{
					cond(models.ConditionManufacturer, "M1"),
					cond(models.ConditionManufacturer, "M2"),
				}},
			},
			want: Query{Or(
				Equals(FieldManufacturerID, "M1"),
				Equals(FieldManufacturerID, "M2"),
			)},
		},
		{
			name: "or group with one usable condition is flat",
			groups: []models.ConditionGroup{
				{Operator: models.OperatorOr, Conditions: []models.Condition{
					cond(models.ConditionManufacturer, "M1"),
					cond(models.ConditionManufacturer, ""),
				}},
			},
			want: Query{Equals(FieldManufacturerID, "M1")},
		},
		{
			name: "empty values are dropped",
			groups: []models.ConditionGroup{
				{Operator: models.OperatorAnd, Conditions: []models.Condition{
					cond(models.ConditionTag, ""),
					cond(models.ConditionCategory, "  "),
				}},
				{Operator: models.OperatorOr, Conditions: []models.Condition{cond(models.ConditionTag, "T9")}},
			},
			want: Query{Contains(FieldTagIDs, []string{"T9"})},
		},
		{
			name: "groups are anded",
			groups: []models.ConditionGroup{
				{Operator: models.OperatorOr, Conditions: []models.Condition{
					cond(models.ConditionTag, "T1"),
					cond(models.ConditionTag, "T2"),
				}},
				{Operator: models.OperatorAnd, Conditions: []models.Condition{cond(models.ConditionManufacturer, "M1")}},
			},
			want: Query{
				Or(Contains(FieldTagIDs, []string{"T1"}), Contains(FieldTagIDs, []string{"T2"})),
				Equals(FieldManufacturerID, "M1"),
			},
		},
		{
			name:   "no groups",
			groups: nil,
			want:   Query{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compile(tt.groups))
		})
	}
}

func TestCompileAllEmptyIsEmpty(t *testing.T) {
	q := Compile([]models.ConditionGroup{
		{Operator: models.OperatorOr, Conditions: []models.Condition{cond(models.ConditionTag, "")}},
	})
	assert.True(t, q.IsEmpty())
}

func TestQueryWireFormat(t *testing.T) {
	q := Compile([]models.ConditionGroup{
		{Operator: models.OperatorOr, Conditions: []models.Condition{
			cond(models.ConditionManufacturer, "M1"),
			cond(models.ConditionTag, "T1"),
		}},
	})

	b, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"multi","operator":"OR","queries":[
		{"type":"equals","field":"product.manufacturerId","value":"M1"},
		{"type":"contains","field":"product.tagIds","value":["T1"]}
	]}]`, string(b))
}
