package shopware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Cheertaboi/catalog-discount-service/internal/models"
)

var attributePaths = map[models.ConditionType]string{
	models.ConditionManufacturer: "/api/product-manufacturer",
	models.ConditionCategory:     "/api/category",
	models.ConditionTag:          "/api/tag",
}

type attributeItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Active     *bool  `json:"active"`
	Translated struct {
		Name string `json:"name"`
	} `json:"translated"`
}

type attributeResponse struct {
	Data []attributeItem `json:"data"`
}

// ListAttributeValues lists every manufacturer, category or tag. Inactive
// categories are dropped; a category without an active flag counts as active.
func (c *Client) ListAttributeValues(ctx context.Context, kind models.ConditionType) ([]models.AttributeValue, error) {
	path, ok := attributePaths[kind]
	if !ok {
		return nil, models.NewValidationError("type", "unknown attribute kind %q", kind)
	}

	out := make([]models.AttributeValue, 0)
	for page := 1; page <= c.maxPages; page++ {
		q := fmt.Sprintf("%s?limit=%d&page=%d", path, c.pageSize, page)

		status, body, err := c.do(ctx, opListValues, http.MethodGet, q, nil)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, parseUpstreamError(opListValues, status, body)
		}

		var resp attributeResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%s %s: decode: %w", opListValues, kind, err)
		}

		for _, it := range resp.Data {
			if kind == models.ConditionCategory && it.Active != nil && !*it.Active {
				continue
			}
			name := it.Name
			if name == "" {
				name = it.Translated.Name
			}
			out = append(out, models.AttributeValue{ID: it.ID, Name: name})
		}

		if len(resp.Data) < c.pageSize {
			return out, nil
		}
	}

	c.log.Warn("attribute listing truncated at page cap",
		zap.String("kind", string(kind)),
		zap.Int("kept", len(out)),
	)
	return out, nil
}
