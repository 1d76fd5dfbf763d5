package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ConditionType is the product attribute a condition matches on.
type ConditionType string

const (
	ConditionManufacturer ConditionType = "manufacturer"
	ConditionCategory     ConditionType = "category"
	ConditionTag          ConditionType = "tag"
)

// ConditionTypes lists the supported types in display order.
var ConditionTypes = []ConditionType{ConditionManufacturer, ConditionCategory, ConditionTag}

// ParseConditionType accepts the wire name of a condition type.
func ParseConditionType(s string) (ConditionType, error) {
	switch ConditionType(strings.ToLower(strings.TrimSpace(s))) {
	case ConditionManufacturer:
		return ConditionManufacturer, nil
	case ConditionCategory:
		return ConditionCategory, nil
	case ConditionTag:
		return ConditionTag, nil
	}
	return "", &ValidationError{Field: "type", Message: fmt.Sprintf("unknown condition type %q", s)}
}

func (t *ConditionType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &ValidationError{Field: "type", Message: "condition type must be a string"}
	}
	parsed, err := ParseConditionType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// GroupOperator combines the conditions inside one group.
type GroupOperator string

const (
	OperatorAnd GroupOperator = "AND"
	OperatorOr  GroupOperator = "OR"
)

func (o *GroupOperator) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &ValidationError{Field: "operator", Message: "group operator must be a string"}
	}
	switch GroupOperator(strings.ToUpper(strings.TrimSpace(s))) {
	case OperatorAnd, "":
		*o = OperatorAnd
	case OperatorOr:
		*o = OperatorOr
	default:
		return &ValidationError{Field: "operator", Message: fmt.Sprintf("unknown group operator %q", s)}
	}
	return nil
}

// DefaultConditionOperator applies when a condition arrives without one.
const DefaultConditionOperator = "equals"

// Condition matches products whose attribute of Type equals (or contains) Value.
type Condition struct {
	Type     ConditionType `json:"type"`
	Operator string        `json:"operator,omitempty"`
	Value    string        `json:"value"`
	// Name is filled in for display only and never persisted.
	Name string `json:"name,omitempty"`
}

func (c *Condition) UnmarshalJSON(b []byte) error {
	type plain Condition
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	p.Operator = strings.TrimSpace(p.Operator)
	if p.Operator == "" {
		p.Operator = DefaultConditionOperator
	}
	*c = Condition(p)
	return nil
}

// WithoutNames returns a deep copy of groups with display names cleared,
// which is the form conditions are stored in.
func WithoutNames(groups []ConditionGroup) []ConditionGroup {
	if groups == nil {
		return nil
	}
	out := make([]ConditionGroup, len(groups))
	for i, g := range groups {
		out[i] = ConditionGroup{Operator: g.Operator}
		if g.Conditions != nil {
			out[i].Conditions = make([]Condition, len(g.Conditions))
			for j, c := range g.Conditions {
				c.Name = ""
				out[i].Conditions[j] = c
			}
		}
	}
	return out
}

// ConditionGroup is a set of conditions joined by one operator.
// Groups of a discount are ANDed together.
type ConditionGroup struct {
	Operator   GroupOperator `json:"operator"`
	Conditions []Condition   `json:"conditions"`
}

// HasValue reports whether the condition contributes to a filter.
func (c Condition) HasValue() bool {
	return strings.TrimSpace(c.Value) != ""
}

// AttributeValue is a selectable manufacturer, category or tag.
type AttributeValue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
