package models

// Product is the part of a remote catalog product this service reads.
type Product struct {
	ID            string      `json:"id"`
	Name          string      `json:"name,omitempty"`
	ProductNumber string      `json:"productNumber,omitempty"`
	Price         []PriceTier `json:"price"`
}

type PriceTier struct {
	CurrencyID string     `json:"currencyId,omitempty"`
	Gross      *float64   `json:"gross"`
	Net        *float64   `json:"net,omitempty"`
	Linked     bool       `json:"linked"`
	ListPrice  *ListPrice `json:"listPrice,omitempty"`
}

type ListPrice struct {
	CurrencyID string   `json:"currencyId,omitempty"`
	Gross      *float64 `json:"gross"`
	Net        *float64 `json:"net,omitempty"`
	Linked     bool     `json:"linked"`
}

// FirstTier returns price[0], or nil when the product carries no price.
func (p Product) FirstTier() *PriceTier {
	if len(p.Price) == 0 {
		return nil
	}
	return &p.Price[0]
}

// CurrentGross returns the gross of the first price tier if present.
func (p Product) CurrentGross() (float64, bool) {
	t := p.FirstTier()
	if t == nil || t.Gross == nil {
		return 0, false
	}
	return *t.Gross, true
}

// OriginalGross returns the pre-discount gross remembered in the list price.
func (p Product) OriginalGross() (float64, bool) {
	t := p.FirstTier()
	if t == nil || t.ListPrice == nil || t.ListPrice.Gross == nil {
		return 0, false
	}
	return *t.ListPrice.Gross, true
}

type ProductStatus string

const (
	ProductUpdated  ProductStatus = "updated"
	ProductRestored ProductStatus = "restored"
	ProductSkipped  ProductStatus = "skipped"
	ProductFailed   ProductStatus = "failed"
)

// ProductResult is the outcome of one price mutation. Failures are carried
// here instead of being returned as errors so a batch never aborts.
type ProductResult struct {
	ProductID  string        `json:"product_id"`
	Status     ProductStatus `json:"status"`
	Message    string        `json:"message,omitempty"`
	HTTPStatus int           `json:"http_status,omitempty"`
	Err        error         `json:"-"`
}

func (r ProductResult) OK() bool {
	return r.Status == ProductUpdated || r.Status == ProductRestored
}
