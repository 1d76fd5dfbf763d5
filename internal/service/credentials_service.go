package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/Cheertaboi/catalog-discount-service/internal/models"
	"github.com/Cheertaboi/catalog-discount-service/internal/repository"
	"github.com/Cheertaboi/catalog-discount-service/internal/secret"
)

type CredentialsStore interface {
	Save(ctx context.Context, c repository.CredentialsRow) error
	Get(ctx context.Context) (*repository.CredentialsRow, error)
}

// Connector is the part of the catalog client credential changes affect.
type Connector interface {
	TestConnection(ctx context.Context, creds models.Credentials) error
	InvalidateToken()
}

type CredentialsService struct {
	store     CredentialsStore
	sealer    *secret.Sealer
	connector Connector
	log       *zap.Logger
}

func NewCredentialsService(store CredentialsStore, sealer *secret.Sealer, connector Connector, log *zap.Logger) *CredentialsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CredentialsService{store: store, sealer: sealer, connector: connector, log: log}
}

// Save validates and stores the credentials, sealing the secret, and drops
// any token issued for the previous ones.
func (s *CredentialsService) Save(ctx context.Context, in models.Credentials) error {
	creds, err := normalizeCredentials(in)
	if err != nil {
		return err
	}

	sealed, err := s.sealer.Seal([]byte(creds.ClientSecret))
	if err != nil {
		return fmt.Errorf("seal client secret: %w", err)
	}

	if err := s.store.Save(ctx, repository.CredentialsRow{
		ShopURL:      creds.ShopURL,
		ClientID:     creds.ClientID,
		SealedSecret: sealed,
	}); err != nil {
		return err
	}

	s.connector.InvalidateToken()
	s.log.Info("credentials saved", zap.String("shop_url", creds.ShopURL), zap.String("client_id", creds.ClientID))
	return nil
}

// Get returns the stored credentials with the secret unsealed.
func (s *CredentialsService) Get(ctx context.Context) (models.Credentials, error) {
	row, err := s.store.Get(ctx)
	if err != nil {
		return models.Credentials{}, err
	}
	if row == nil {
		return models.Credentials{}, models.ErrNoCredentials
	}

	plain, err := s.sealer.Open(row.SealedSecret)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("open client secret: %w", err)
	}
	return models.Credentials{
		ShopURL:      row.ShopURL,
		ClientID:     row.ClientID,
		ClientSecret: string(plain),
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

// Credentials lets the service act as the catalog client's credential source.
func (s *CredentialsService) Credentials(ctx context.Context) (models.Credentials, error) {
	return s.Get(ctx)
}

// Connect tests the given credentials, or the stored ones when in is empty.
func (s *CredentialsService) Connect(ctx context.Context, in models.Credentials) error {
	var (
		creds models.Credentials
		err   error
	)
	if in.ShopURL == "" && in.ClientID == "" && in.ClientSecret == "" {
		creds, err = s.Get(ctx)
	} else {
		creds, err = normalizeCredentials(in)
	}
	if err != nil {
		return err
	}

	if err := s.connector.TestConnection(ctx, creds); err != nil {
		s.log.Warn("connection test failed", zap.String("shop_url", creds.ShopURL), zap.Error(err))
		if errors.Is(err, models.ErrAuthentication) {
			return err
		}
		return fmt.Errorf("%w: %w", models.ErrAuthentication, err)
	}
	return nil
}

func normalizeCredentials(in models.Credentials) (models.Credentials, error) {
	out := models.Credentials{
		ShopURL:      strings.TrimRight(strings.TrimSpace(in.ShopURL), "/"),
		ClientID:     strings.TrimSpace(in.ClientID),
		ClientSecret: strings.TrimSpace(in.ClientSecret),
	}
	switch {
	case out.ShopURL == "":
		return out, models.NewValidationError("url", "missing required field")
	case out.ClientID == "":
		return out, models.NewValidationError("client_id", "missing required field")
	case out.ClientSecret == "":
		return out, models.NewValidationError("client_secret", "missing required field")
	}

	u, err := url.Parse(out.ShopURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return out, models.NewValidationError("url", "must be an absolute http(s) URL")
	}
	return out, nil
}
