package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Cheertaboi/catalog-discount-service/internal/filter"
	"github.com/Cheertaboi/catalog-discount-service/internal/models"
	"github.com/Cheertaboi/catalog-discount-service/internal/repository"
	"github.com/Cheertaboi/catalog-discount-service/internal/shopware"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, d *models.Discount) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *mockStore) GetActive(ctx context.Context, id int64) (*models.Discount, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*models.Discount)
	return d, args.Error(1)
}

func (m *mockStore) ListActive(ctx context.Context) ([]models.Discount, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.Discount)
	return list, args.Error(1)
}

func (m *mockStore) UpdateAffected(ctx context.Context, id int64, affected int) error {
	args := m.Called(ctx, id, affected)
	return args.Error(0)
}

func (m *mockStore) Deactivate(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) SearchProducts(ctx context.Context, q filter.Query) ([]models.Product, error) {
	args := m.Called(ctx, q)
	list, _ := args.Get(0).([]models.Product)
	return list, args.Error(1)
}

func (m *mockCatalog) PatchProductPrice(ctx context.Context, u shopware.PriceUpdate) models.ProductResult {
	args := m.Called(ctx, u)
	return args.Get(0).(models.ProductResult)
}

func (m *mockCatalog) RestorePrice(ctx context.Context, id string) models.ProductResult {
	args := m.Called(ctx, id)
	return args.Get(0).(models.ProductResult)
}

func (m *mockCatalog) ListAttributeValues(ctx context.Context, kind models.ConditionType) ([]models.AttributeValue, error) {
	args := m.Called(ctx, kind)
	list, _ := args.Get(0).([]models.AttributeValue)
	return list, args.Error(1)
}

// memStore is an in-memory DiscountStore for end-to-end engine tests.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.Discount
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[int64]*models.Discount)}
}

func (s *memStore) Create(_ context.Context, d *models.Discount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	d.ID = s.nextID
	d.Active = true
	d.CreatedAt = time.Now().Add(time.Duration(s.nextID) * time.Millisecond)
	d.UpdatedAt = d.CreatedAt
	cp := *d
	s.rows[d.ID] = &cp
	return nil
}

func (s *memStore) GetActive(_ context.Context, id int64) (*models.Discount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.rows[id]
	if !ok || !d.Active {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (s *memStore) ListActive(_ context.Context) ([]models.Discount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Discount{}
	for id := s.nextID; id > 0; id-- {
		if d, ok := s.rows[id]; ok && d.Active {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *memStore) UpdateAffected(_ context.Context, id int64, affected int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.rows[id]
	if !ok {
		return models.ErrNotFound
	}
	d.AffectedProducts = affected
	return nil
}

func (s *memStore) Deactivate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.rows[id]
	if !ok || !d.Active {
		return models.ErrNotFound
	}
	d.Active = false
	return nil
}

func (s *memStore) get(id int64) models.Discount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.rows[id]
}

type mockCredentialsStore struct {
	mock.Mock
}

func (m *mockCredentialsStore) Save(ctx context.Context, c repository.CredentialsRow) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCredentialsStore) Get(ctx context.Context) (*repository.CredentialsRow, error) {
	args := m.Called(ctx)
	row, _ := args.Get(0).(*repository.CredentialsRow)
	return row, args.Error(1)
}

type mockConnector struct {
	mock.Mock
}

func (m *mockConnector) TestConnection(ctx context.Context, creds models.Credentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

func (m *mockConnector) InvalidateToken() {
	m.Called()
}
