package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Cheertaboi/catalog-discount-service/internal/api/respond"
	"github.com/Cheertaboi/catalog-discount-service/internal/models"
)

type PreviewRequest struct {
	Conditions []models.ConditionGroup `json:"conditions"`
}

type CatalogHandler struct {
	svc Discounts
	log *zap.Logger
}

func NewCatalogHandler(svc Discounts, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: log}
}

// Attributes returns a handler listing the remote values for one condition type.
func (h *CatalogHandler) Attributes(kind models.ConditionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := h.svc.ListAttributes(r.Context(), kind)
		if err != nil {
			fail(w, h.log, "list_"+string(kind), err)
			return
		}
		if values == nil {
			values = []models.AttributeValue{}
		}
		respond.Success(w, http.StatusOK, values)
	}
}

// PreviewMatchingProducts handles POST /preview-matching-products
func (h *CatalogHandler) PreviewMatchingProducts(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Err(w, err)
		return
	}

	p, err := h.svc.Preview(r.Context(), req.Conditions)
	if err != nil {
		fail(w, h.log, "preview", err)
		return
	}
	respond.Success(w, http.StatusOK, p)
}
