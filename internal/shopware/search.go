package shopware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Cheertaboi/catalog-discount-service/internal/filter"
	"github.com/Cheertaboi/catalog-discount-service/internal/models"
)

type searchRequest struct {
	Limit        int                 `json:"limit"`
	Page         int                 `json:"page"`
	Filter       filter.Query        `json:"filter,omitempty"`
	Associations map[string]struct{} `json:"associations,omitempty"`
}

type searchResponse struct {
	Total int              `json:"total"`
	Data  []models.Product `json:"data"`
}

var productAssociations = map[string]struct{}{
	"categories":   {},
	"tags":         {},
	"manufacturer": {},
}

// SearchProducts returns every product matching q. Pages are fetched until a
// short page or until the page cap; hitting the cap is logged as truncation.
// An empty query matches the whole catalog.
func (c *Client) SearchProducts(ctx context.Context, q filter.Query) ([]models.Product, error) {
	out := make([]models.Product, 0, c.pageSize)

	for page := 1; page <= c.maxPages; page++ {
		req := searchRequest{
			Limit:        c.pageSize,
			Page:         page,
			Filter:       q,
			Associations: productAssociations,
		}

		status, body, err := c.do(ctx, opSearch, http.MethodPost, "/api/search/product", req)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, parseUpstreamError(opSearch, status, body)
		}

		var resp searchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%s: decode page %d: %w", opSearch, page, err)
		}
		out = append(out, resp.Data...)

		if len(resp.Data) < c.pageSize {
			return out, nil
		}
	}

	c.log.Warn("product search truncated at page cap",
		zap.Int("max_pages", c.maxPages),
		zap.Int("page_size", c.pageSize),
		zap.Int("kept", len(out)),
	)
	return out, nil
}
