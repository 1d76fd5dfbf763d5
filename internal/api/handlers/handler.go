package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Cheertaboi/catalog-discount-service/internal/api/respond"
	"github.com/Cheertaboi/catalog-discount-service/internal/models"
	"github.com/Cheertaboi/catalog-discount-service/internal/service"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = models.NewValidationError("body", "request body is empty")

// Discounts is the slice of the discount engine the HTTP layer drives.
type Discounts interface {
	Create(ctx context.Context, in service.CreateDiscountInput) (*models.CreateDiscountResult, error)
	Delete(ctx context.Context, id int64) (*models.DeleteDiscountResult, error)
	List(ctx context.Context) ([]models.Discount, error)
	Preview(ctx context.Context, groups []models.ConditionGroup) (*models.Preview, error)
	ListAttributes(ctx context.Context, kind models.ConditionType) ([]models.AttributeValue, error)
}

type Credentials interface {
	Save(ctx context.Context, in models.Credentials) error
	Get(ctx context.Context) (models.Credentials, error)
	Connect(ctx context.Context, in models.Credentials) error
}

// decodeJSON reads one JSON value from a size-limited body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return models.NewValidationError("body", "request body larger than %d bytes", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return errEmptyBody
		default:
			return models.NewValidationError("body", "invalid JSON: %v", err)
		}
	}
	if dec.More() {
		return models.NewValidationError("body", "unexpected data after JSON value")
	}
	return nil
}

// fail writes err and logs anything that is not the client's fault.
func fail(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	code := respond.Err(w, err)
	if code >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("op", op), zap.Int("status", code), zap.Error(err))
	}
}

