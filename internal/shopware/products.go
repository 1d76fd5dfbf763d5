package shopware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/catalog-discount-service/internal/models"
)

// vatFactor turns gross into net. A flat 21% rate is assumed for every product.
var vatFactor = decimal.RequireFromString("1.21")

// NetFromGross returns gross / 1.21 rounded to 4 places.
func NetFromGross(gross float64) float64 {
	return decimal.NewFromFloat(gross).Div(vatFactor).Round(4).InexactFloat64()
}

// PriceUpdate describes a PATCH of a product's first price tier.
//
// ListPrice nil leaves the list price out of the payload; ClearListPrice
// sends an explicit null so the platform drops it.
type PriceUpdate struct {
	ProductID      string
	CurrencyID     string
	Gross          float64
	ListPrice      *float64
	ClearListPrice bool
}

type pricePayload struct {
	Price []priceEntry `json:"price"`
}

type priceEntry struct {
	CurrencyID string          `json:"currencyId"`
	Gross      float64         `json:"gross"`
	Net        float64         `json:"net"`
	Linked     bool            `json:"linked"`
	ListPrice  json.RawMessage `json:"listPrice,omitempty"`
}

type listPriceEntry struct {
	CurrencyID string  `json:"currencyId"`
	Gross      float64 `json:"gross"`
	Net        float64 `json:"net"`
	Linked     bool    `json:"linked"`
}

type productResponse struct {
	Data models.Product `json:"data"`
}

func (c *Client) GetProduct(ctx context.Context, id string) (models.Product, error) {
	status, body, err := c.do(ctx, opGetProduct, http.MethodGet, "/api/product/"+url.PathEscape(id), nil)
	if err != nil {
		return models.Product{}, err
	}
	if status != http.StatusOK {
		return models.Product{}, parseUpstreamError(opGetProduct, status, body)
	}

	var resp productResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.Product{}, fmt.Errorf("%s %s: decode: %w", opGetProduct, id, err)
	}
	return resp.Data, nil
}

// PatchProductPrice writes price[0] of one product. It never returns an
// error: every outcome, including transport failures, lands in the result.
func (c *Client) PatchProductPrice(ctx context.Context, u PriceUpdate) models.ProductResult {
	res := models.ProductResult{ProductID: u.ProductID}

	payload, err := c.pricePayload(u)
	if err != nil {
		res.Status = models.ProductFailed
		res.Message = err.Error()
		res.Err = err
		return res
	}

	status, body, err := c.do(ctx, opPatchPrice, http.MethodPatch, "/api/product/"+url.PathEscape(u.ProductID), payload)
	if err != nil {
		res.Status = models.ProductFailed
		res.Message = err.Error()
		res.Err = err
		return res
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		uerr := parseUpstreamError(opPatchPrice, status, body)
		res.Status = models.ProductFailed
		res.HTTPStatus = status
		res.Message = uerr.Body
		res.Err = uerr
		return res
	}

	res.Status = models.ProductUpdated
	res.HTTPStatus = status
	return res
}

// RestorePrice puts back the gross remembered in price[0].listPrice and
// clears the list price. A product without a list price is skipped.
func (c *Client) RestorePrice(ctx context.Context, id string) models.ProductResult {
	p, err := c.GetProduct(ctx, id)
	if err != nil {
		return models.ProductResult{ProductID: id, Status: models.ProductFailed, Message: err.Error(), Err: err}
	}

	original, ok := p.OriginalGross()
	if !ok {
		return models.ProductResult{ProductID: id, Status: models.ProductSkipped, Message: "no list price to restore"}
	}

	res := c.PatchProductPrice(ctx, PriceUpdate{
		ProductID:      id,
		CurrencyID:     p.FirstTier().CurrencyID,
		Gross:          original,
		ClearListPrice: true,
	})
	if res.Status == models.ProductUpdated {
		res.Status = models.ProductRestored
	}
	return res
}

func (c *Client) pricePayload(u PriceUpdate) (pricePayload, error) {
	currency := u.CurrencyID
	if currency == "" {
		currency = c.currencyID
	}

	entry := priceEntry{
		CurrencyID: currency,
		Gross:      u.Gross,
		Net:        NetFromGross(u.Gross),
		Linked:     true,
	}

	switch {
	case u.ClearListPrice:
		entry.ListPrice = json.RawMessage("null")
	case u.ListPrice != nil:
		b, err := json.Marshal(listPriceEntry{
			CurrencyID: currency,
			Gross:      *u.ListPrice,
			Net:        NetFromGross(*u.ListPrice),
			Linked:     true,
		})
		if err != nil {
			return pricePayload{}, fmt.Errorf("encode list price: %w", err)
		}
		entry.ListPrice = b
	}

	return pricePayload{Price: []priceEntry{entry}}, nil
}
