package models

import "time"

type Discount struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	Percentage       float64          `json:"percentage"`
	Conditions       []ConditionGroup `json:"conditions"`
	AffectedProducts int              `json:"affected_products"`
	Active           bool             `json:"active"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// CreateDiscountResult is what a create returns: the stored record plus the
// per-product outcome of the price push.
type CreateDiscountResult struct {
	Discount
	Matched  int             `json:"matched"`
	Skipped  int             `json:"skipped"`
	Failures []ProductResult `json:"failures"`
}

type DeleteDiscountResult struct {
	ID       int64           `json:"id"`
	Restored int             `json:"restored"`
	Skipped  int             `json:"skipped"`
	Failures []ProductResult `json:"failures"`
}

// Preview of a condition set against the live catalog. Nothing is mutated.
type Preview struct {
	Count      int              `json:"count"`
	TotalValue float64          `json:"total_value"`
	Sample     []PreviewProduct `json:"sample"`
}

type PreviewProduct struct {
	ID            string   `json:"id"`
	Name          string   `json:"name,omitempty"`
	ProductNumber string   `json:"product_number,omitempty"`
	Gross         *float64 `json:"gross"`
}
