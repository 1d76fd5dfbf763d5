package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/catalog-discount-service/internal/models"
)

var columns = []string{"id", "name", "percentage", "conditions", "affected_products", "active", "created_at", "updated_at"}

const summerConditions = `[{"operator":"AND","conditions":[{"type":"manufacturer","operator":"equals","value":"M1"}]}]`

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestDiscountRepoCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiscountRepo(db)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO discounts`).
		WithArgs("Summer", 20.0, sqlmock.AnyArg(), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "active", "created_at", "updated_at"}).AddRow(7, true, now, now))

	d := &models.Discount{
		Name:       "Summer",
		Percentage: 20,
		Conditions: []models.ConditionGroup{{
			Operator:   models.OperatorAnd,
			Conditions: []models.Condition{{Type: models.ConditionManufacturer, Operator: "equals", Value: "M1"}},
		}},
		AffectedProducts: 1,
	}
	require.NoError(t, repo.Create(context.Background(), d))

	assert.Equal(t, int64(7), d.ID)
	assert.True(t, d.Active)
	assert.Equal(t, now, d.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscountRepoCreateDropsConditionNames(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiscountRepo(db)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO discounts`).
		WithArgs("Summer", 20.0, []byte(summerConditions), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "active", "created_at", "updated_at"}).AddRow(8, true, now, now))

	d := &models.Discount{
		Name:       "Summer",
		Percentage: 20,
		Conditions: []models.ConditionGroup{{
			Operator:   models.OperatorAnd,
			Conditions: []models.Condition{{Type: models.ConditionManufacturer, Operator: "equals", Value: "M1", Name: "Acme"}},
		}},
		AffectedProducts: 1,
	}
	require.NoError(t, repo.Create(context.Background(), d))

	assert.Equal(t, "Acme", d.Conditions[0].Conditions[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscountRepoGetActive(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiscountRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM discounts WHERE id = \$1 AND active = TRUE`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(7, "Summer", 20.0, []byte(summerConditions), 1, true, now, now))

	d, err := repo.GetActive(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "Summer", d.Name)
	require.Len(t, d.Conditions, 1)
	assert.Equal(t, models.ConditionManufacturer, d.Conditions[0].Conditions[0].Type)
	assert.Equal(t, "M1", d.Conditions[0].Conditions[0].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscountRepoGetActiveMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiscountRepo(db)

	mock.ExpectQuery(`SELECT (.+) FROM discounts`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	d, err := repo.GetActive(context.Background(), 9)
	assert.NoError(t, err)
	assert.Nil(t, d)
}

func TestDiscountRepoListActive(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiscountRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM discounts WHERE active = TRUE ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(2, "Winter", 10.0, []byte(`[]`), 0, true, now, now).
			AddRow(1, "Summer", 20.0, []byte(summerConditions), 1, true, now.Add(-time.Hour), now))

	list, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Winter", list[0].Name)
	assert.Empty(t, list[0].Conditions)
	assert.Equal(t, "Summer", list[1].Name)
}

func TestDiscountRepoListActiveEmpty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiscountRepo(db)

	mock.ExpectQuery(`SELECT (.+) FROM discounts`).WillReturnRows(sqlmock.NewRows(columns))

	list, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestDiscountRepoUpdateAffected(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiscountRepo(db)

	mock.ExpectExec(`UPDATE discounts SET affected_products = \$2`).
		WithArgs(int64(7), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateAffected(context.Background(), 7, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscountRepoDeactivate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiscountRepo(db)

	mock.ExpectExec(`UPDATE discounts SET active = FALSE`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE discounts SET active = FALSE`).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Deactivate(context.Background(), 7))
	err := repo.Deactivate(context.Background(), 8)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
