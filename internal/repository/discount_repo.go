package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Cheertaboi/catalog-discount-service/internal/models"
)

type DiscountRepo struct {
	db *sql.DB
}

func NewDiscountRepo(db *sql.DB) *DiscountRepo {
	return &DiscountRepo{db: db}
}

const discountColumns = `id, name, percentage, conditions, affected_products, active, created_at, updated_at`

// Create inserts d and fills in its id and timestamps.
func (r *DiscountRepo) Create(ctx context.Context, d *models.Discount) error {
	conditions, err := json.Marshal(models.WithoutNames(d.Conditions))
	if err != nil {
		return fmt.Errorf("encode conditions: %w", err)
	}

	query := `
		INSERT INTO discounts (name, percentage, conditions, affected_products, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
		RETURNING id, active, created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query, d.Name, d.Percentage, conditions, d.AffectedProducts).
		Scan(&d.ID, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert discount: %w", err)
	}
	return nil
}

// GetActive returns nil, nil when no active discount has this id.
func (r *DiscountRepo) GetActive(ctx context.Context, id int64) (*models.Discount, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts WHERE id = $1 AND active = TRUE`

	d, err := scanDiscount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get discount %d: %w", id, err)
	}
	return d, nil
}

// ListActive returns active discounts, newest first.
func (r *DiscountRepo) ListActive(ctx context.Context) ([]models.Discount, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts WHERE active = TRUE ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}
	defer rows.Close()

	out := []models.Discount{}
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan discount: %w", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}
	return out, nil
}

func (r *DiscountRepo) UpdateAffected(ctx context.Context, id int64, affected int) error {
	query := `UPDATE discounts SET affected_products = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, affected)
	if err != nil {
		return fmt.Errorf("update discount %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

// Deactivate soft-deletes the discount; the row stays for audit.
func (r *DiscountRepo) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE discounts SET active = FALSE, updated_at = NOW() WHERE id = $1 AND active = TRUE`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate discount %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDiscount(row rowScanner) (*models.Discount, error) {
	var (
		d          models.Discount
		conditions []byte
	)
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Percentage,
		&conditions,
		&d.AffectedProducts,
		&d.Active,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Conditions = []models.ConditionGroup{}
	if len(conditions) > 0 {
		if err := json.Unmarshal(conditions, &d.Conditions); err != nil {
			return nil, fmt.Errorf("decode conditions of discount %d: %w", d.ID, err)
		}
	}
	return &d, nil
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("discount %d: %w", id, models.ErrNotFound)
	}
	return nil
}
