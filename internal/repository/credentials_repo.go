package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CredentialsRow is the stored singleton; the client secret stays sealed.
type CredentialsRow struct {
	ShopURL      string
	ClientID     string
	SealedSecret []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CredentialsRepo struct {
	db *sql.DB
}

func NewCredentialsRepo(db *sql.DB) *CredentialsRepo {
	return &CredentialsRepo{db: db}
}

// Save creates or replaces the single credentials row.
func (r *CredentialsRepo) Save(ctx context.Context, c CredentialsRow) error {
	query := `
		INSERT INTO credentials (id, shop_url, client_id, client_secret_sealed, created_at, updated_at)
		VALUES (1, $1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET shop_url = EXCLUDED.shop_url,
		    client_id = EXCLUDED.client_id,
		    client_secret_sealed = EXCLUDED.client_secret_sealed,
		    updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, c.ShopURL, c.ClientID, c.SealedSecret); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Get returns nil, nil when nothing is stored yet.
func (r *CredentialsRepo) Get(ctx context.Context) (*CredentialsRow, error) {
	query := `
		SELECT shop_url, client_id, client_secret_sealed, created_at, updated_at
		FROM credentials
		WHERE id = 1
	`
	var c CredentialsRow
	err := r.db.QueryRowContext(ctx, query).Scan(&c.ShopURL, &c.ClientID, &c.SealedSecret, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	return &c, nil
}
