package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Cheertaboi/catalog-discount-service/internal/api/respond"
	"github.com/Cheertaboi/catalog-discount-service/internal/models"
	"github.com/Cheertaboi/catalog-discount-service/internal/service"
)

type CreateDiscountRequest struct {
	Name       string                  `json:"name"`
	Percentage *float64                `json:"percentage"`
	Conditions []models.ConditionGroup `json:"conditions"`
}

type DiscountHandler struct {
	svc Discounts
	log *zap.Logger
}

func NewDiscountHandler(svc Discounts, log *zap.Logger) *DiscountHandler {
	return &DiscountHandler{svc: svc, log: log}
}

// CreateDiscount handles POST /discounts
func (h *DiscountHandler) CreateDiscount(w http.ResponseWriter, r *http.Request) {
	var req CreateDiscountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Err(w, err)
		return
	}

	res, err := h.svc.Create(r.Context(), service.CreateDiscountInput{
		Name:       req.Name,
		Percentage: req.Percentage,
		Conditions: req.Conditions,
	})
	if err != nil {
		fail(w, h.log, "create_discount", err)
		return
	}
	respond.Success(w, http.StatusOK, res)
}

// ListDiscounts handles GET /discounts
func (h *DiscountHandler) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		fail(w, h.log, "list_discounts", err)
		return
	}
	if list == nil {
		list = []models.Discount{}
	}
	respond.Success(w, http.StatusOK, list)
}

// DeleteDiscount handles DELETE /discounts/{id}
func (h *DiscountHandler) DeleteDiscount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Err(w, models.NewValidationError("id", "must be a positive integer, got %q", chi.URLParam(r, "id")))
		return
	}

	res, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		fail(w, h.log, "delete_discount", err)
		return
	}
	respond.Success(w, http.StatusOK, res)
}
