package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Cheertaboi/catalog-discount-service/internal/concurrency"
	"github.com/Cheertaboi/catalog-discount-service/internal/filter"
	"github.com/Cheertaboi/catalog-discount-service/internal/metrics"
	"github.com/Cheertaboi/catalog-discount-service/internal/models"
	"github.com/Cheertaboi/catalog-discount-service/internal/shopware"
)

// DiscountStore persists discount records (use interfaces to allow mocking).
type DiscountStore interface {
	Create(ctx context.Context, d *models.Discount) error
	GetActive(ctx context.Context, id int64) (*models.Discount, error)
	ListActive(ctx context.Context) ([]models.Discount, error)
	UpdateAffected(ctx context.Context, id int64, affected int) error
	Deactivate(ctx context.Context, id int64) error
}

// Catalog is the remote catalog as the engine sees it.
type Catalog interface {
	SearchProducts(ctx context.Context, q filter.Query) ([]models.Product, error)
	PatchProductPrice(ctx context.Context, u shopware.PriceUpdate) models.ProductResult
	RestorePrice(ctx context.Context, id string) models.ProductResult
	ListAttributeValues(ctx context.Context, kind models.ConditionType) ([]models.AttributeValue, error)
}

type DiscountOptions struct {
	Workers int
	// Timeout bounds one create or delete, remote calls included.
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// CreateDiscountInput mirrors the create request. Nil fields were absent.
type CreateDiscountInput struct {
	Name       string
	Percentage *float64
	Conditions []models.ConditionGroup
}

type DiscountService struct {
	store   DiscountStore
	catalog Catalog
	log     *zap.Logger
	metrics *metrics.Metrics
	workers int
	timeout time.Duration
}

func NewDiscountService(store DiscountStore, catalog Catalog, opts DiscountOptions) *DiscountService {
	s := &DiscountService{
		store:   store,
		catalog: catalog,
		log:     opts.Logger,
		metrics: opts.Metrics,
		workers: opts.Workers,
		timeout: opts.Timeout,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.workers < 1 {
		s.workers = 1
	}
	if s.timeout <= 0 {
		s.timeout = 5 * time.Minute
	}
	return s
}

// persistTimeout bounds record writes made after the batch, which run even
// when the batch used up the request deadline.
const persistTimeout = 10 * time.Second

// Create applies a percentage discount to every product the conditions match.
// Per-product failures are reported in the result and never fail the call.
func (s *DiscountService) Create(ctx context.Context, in CreateDiscountInput) (*models.CreateDiscountResult, error) {
	// 1) validate
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("name", "missing required field")
	}
	if in.Percentage == nil {
		return nil, models.NewValidationError("percentage", "missing required field")
	}
	pct := *in.Percentage
	if pct <= 0 || pct > 100 {
		return nil, models.NewValidationError("percentage", "must be greater than 0 and at most 100, got %v", pct)
	}
	if !hasCentPrecision(pct) {
		return nil, models.NewValidationError("percentage", "at most 2 decimal places allowed, got %v", pct)
	}
	if in.Conditions == nil {
		return nil, models.NewValidationError("conditions", "missing required field")
	}
	q := filter.Compile(in.Conditions)
	if q.IsEmpty() {
		return nil, models.NewValidationError("conditions", "at least one condition with a value is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// 2) resolve the matching set
	products, err := s.catalog.SearchProducts(ctx, q)
	if err != nil {
		s.log.Error("search failed", zap.String("op", "create_discount"), zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("search products: %w", err)
	}

	// 3) persist before touching prices so a partial run is still on record
	d := &models.Discount{
		Name:             name,
		Percentage:       pct,
		Conditions:       in.Conditions,
		AffectedProducts: len(products),
	}
	if err := s.store.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create discount: %w", err)
	}
	log := s.log.With(zap.Int64("discount_id", d.ID))
	log.Info("discount created", zap.String("name", name), zap.Float64("percentage", pct), zap.Int("matched", len(products)))

	// 4) push discounted prices
	results, err := concurrency.Map(ctx, s.workers, products, func(ctx context.Context, p models.Product) models.ProductResult {
		return s.applyOne(ctx, log, p, pct)
	})
	if err != nil {
		log.Warn("discount batch interrupted", zap.Error(err))
	}
	fillUnscheduled(results, products, err)

	// 5) aggregate and store the real count
	out := &models.CreateDiscountResult{Matched: len(products), Failures: []models.ProductResult{}}
	updated := 0
	for _, r := range results {
		s.metrics.ProductResult("apply", string(r.Status))
		switch {
		case r.OK():
			updated++
		case r.Status == models.ProductSkipped:
			out.Skipped++
		default:
			out.Failures = append(out.Failures, r)
		}
	}
	sortResults(out.Failures)

	if updated != d.AffectedProducts {
		pctx, pcancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer pcancel()
		if err := s.store.UpdateAffected(pctx, d.ID, updated); err != nil {
			log.Error("could not store affected count", zap.Int("affected", updated), zap.Error(err))
		}
	}
	d.AffectedProducts = updated
	out.Discount = *d

	log.Info("discount applied",
		zap.Int("updated", updated),
		zap.Int("skipped", out.Skipped),
		zap.Int("failed", len(out.Failures)),
	)
	return out, nil
}

func (s *DiscountService) applyOne(ctx context.Context, log *zap.Logger, p models.Product, pct float64) models.ProductResult {
	current, ok := p.CurrentGross()
	if !ok {
		log.Warn("product has no gross price, skipped", zap.String("product_id", p.ID))
		return models.ProductResult{ProductID: p.ID, Status: models.ProductSkipped, Message: "no price"}
	}

	res := s.catalog.PatchProductPrice(ctx, shopware.PriceUpdate{
		ProductID:  p.ID,
		CurrencyID: p.FirstTier().CurrencyID,
		Gross:      DiscountedGross(current, pct),
		ListPrice:  &current,
	})
	if !res.OK() {
		log.Warn("price update failed",
			zap.String("product_id", p.ID),
			zap.Int("http_status", res.HTTPStatus),
			zap.Error(res.Err),
		)
	}
	return res
}

// Delete restores the prices of the discount's current matches and
// soft-deletes the record. Restoration is best effort.
func (s *DiscountService) Delete(ctx context.Context, id int64) (*models.DeleteDiscountResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// 1) find
	d, err := s.store.GetActive(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get discount: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("discount %d: %w", id, models.ErrNotFound)
	}
	log := s.log.With(zap.Int64("discount_id", id))

	// 2) re-derive the affected set from the stored conditions
	var products []models.Product
	q := filter.Compile(d.Conditions)
	if q.IsEmpty() {
		log.Warn("stored conditions compile to an empty filter, nothing to restore")
	} else {
		products, err = s.catalog.SearchProducts(ctx, q)
		if err != nil {
			log.Error("search failed", zap.String("op", "delete_discount"), zap.Error(err))
			return nil, fmt.Errorf("search products: %w", err)
		}
	}

	// 3) restore
	results, err := concurrency.Map(ctx, s.workers, products, func(ctx context.Context, p models.Product) models.ProductResult {
		res := s.catalog.RestorePrice(ctx, p.ID)
		if res.Status == models.ProductFailed {
			log.Warn("price restore failed", zap.String("product_id", p.ID), zap.Error(res.Err))
		}
		return res
	})
	if err != nil {
		log.Warn("restore batch interrupted", zap.Error(err))
	}
	fillUnscheduled(results, products, err)

	out := &models.DeleteDiscountResult{ID: id, Failures: []models.ProductResult{}}
	for _, r := range results {
		s.metrics.ProductResult("restore", string(r.Status))
		switch {
		case r.OK():
			out.Restored++
		case r.Status == models.ProductSkipped:
			out.Skipped++
		default:
			out.Failures = append(out.Failures, r)
		}
	}
	sortResults(out.Failures)

	// 4) remove regardless of restore outcome
	pctx, pcancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer pcancel()
	if err := s.store.Deactivate(pctx, id); err != nil {
		return nil, fmt.Errorf("deactivate discount: %w", err)
	}

	log.Info("discount deleted",
		zap.Int("restored", out.Restored),
		zap.Int("skipped", out.Skipped),
		zap.Int("failed", len(out.Failures)),
	)
	return out, nil
}

// List returns active discounts, newest first, with condition names resolved.
func (s *DiscountService) List(ctx context.Context) ([]models.Discount, error) {
	discounts, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}

	for i := range discounts {
		for g := range discounts[i].Conditions {
			conds := discounts[i].Conditions[g].Conditions
			for c := range conds {
				conds[c].Name = s.resolveConditionName(ctx, conds[c])
			}
		}
	}
	return discounts, nil
}

// resolveConditionName looks the value up in a full attribute listing and
// falls back to the raw value.
// TODO: share one listing per kind across a List call instead of one per condition.
func (s *DiscountService) resolveConditionName(ctx context.Context, c models.Condition) string {
	values, err := s.catalog.ListAttributeValues(ctx, c.Type)
	if err != nil {
		s.log.Warn("could not resolve condition name",
			zap.String("type", string(c.Type)),
			zap.String("value", c.Value),
			zap.Error(err),
		)
		return c.Value
	}
	for _, v := range values {
		if v.ID == c.Value {
			return v.Name
		}
	}
	return c.Value
}

const previewSampleSize = 5

// Preview reports what a condition set matches without changing anything.
// An empty condition set previews the whole catalog.
func (s *DiscountService) Preview(ctx context.Context, groups []models.ConditionGroup) (*models.Preview, error) {
	products, err := s.catalog.SearchProducts(ctx, filter.Compile(groups))
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	grosses := make([]float64, 0, len(products))
	sample := make([]models.PreviewProduct, 0, previewSampleSize)
	for i, p := range products {
		var gross *float64
		if g, ok := p.CurrentGross(); ok {
			grosses = append(grosses, g)
			gross = &g
		}
		if i < previewSampleSize {
			sample = append(sample, models.PreviewProduct{
				ID:            p.ID,
				Name:          p.Name,
				ProductNumber: p.ProductNumber,
				Gross:         gross,
			})
		}
	}

	return &models.Preview{
		Count:      len(products),
		TotalValue: sumGross(grosses),
		Sample:     sample,
	}, nil
}

func (s *DiscountService) ListAttributes(ctx context.Context, kind models.ConditionType) ([]models.AttributeValue, error) {
	values, err := s.catalog.ListAttributeValues(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return values, nil
}

// fillUnscheduled marks products the pool never reached as failed.
func fillUnscheduled(results []models.ProductResult, products []models.Product, cause error) {
	if cause == nil {
		cause = errors.New("not processed")
	}
	for i := range results {
		if results[i].ProductID == "" {
			results[i] = models.ProductResult{
				ProductID: products[i].ID,
				Status:    models.ProductFailed,
				Message:   cause.Error(),
				Err:       cause,
			}
		}
	}
}

func sortResults(rs []models.ProductResult) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].ProductID < rs[j].ProductID })
}
