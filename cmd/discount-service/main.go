package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Cheertaboi/catalog-discount-service/internal/api"
	"github.com/Cheertaboi/catalog-discount-service/internal/config"
	"github.com/Cheertaboi/catalog-discount-service/internal/logger"
	"github.com/Cheertaboi/catalog-discount-service/internal/metrics"
	"github.com/Cheertaboi/catalog-discount-service/internal/models"
	"github.com/Cheertaboi/catalog-discount-service/internal/repository"
	"github.com/Cheertaboi/catalog-discount-service/internal/secret"
	"github.com/Cheertaboi/catalog-discount-service/internal/service"
	"github.com/Cheertaboi/catalog-discount-service/internal/shopware"
	"github.com/Cheertaboi/catalog-discount-service/pkg/db"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "discount-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	conn, err := db.NewPostgresConnection(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer conn.Close()

	if err := db.Migrate(conn); err != nil {
		return err
	}

	sealer, err := secret.NewSealer(cfg.SecretKey)
	if err != nil {
		return fmt.Errorf("secret key: %w", err)
	}

	discountRepo := repository.NewDiscountRepo(conn)
	credentialsRepo := repository.NewCredentialsRepo(conn)
	m := metrics.New(nil)

	// the client reads credentials through the service, which in turn
	// invalidates the client's token when they change
	var credentials *service.CredentialsService
	client := shopware.New(shopware.Options{
		Doer: &http.Client{Timeout: cfg.Shopware.Timeout},
		Credentials: shopware.CredentialsFunc(func(ctx context.Context) (models.Credentials, error) {
			return credentials.Credentials(ctx)
		}),
		Logger:      log.Named("shopware"),
		Metrics:     m,
		PageSize:    cfg.Shopware.PageSize,
		MaxPages:    cfg.Shopware.MaxPages,
		TokenMargin: cfg.Shopware.TokenMargin,
		CurrencyID:  cfg.Shopware.CurrencyID,
	})
	credentials = service.NewCredentialsService(credentialsRepo, sealer, client, log.Named("credentials"))

	discounts := service.NewDiscountService(discountRepo, client, service.DiscountOptions{
		Workers: cfg.Engine.Workers,
		Timeout: cfg.Engine.Timeout,
		Logger:  log.Named("engine"),
		Metrics: m,
	})

	handler := api.NewRouter(api.Deps{
		Discounts:   discounts,
		Credentials: credentials,
		Logger:      log,
		Metrics:     m,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		sig := <-c
		log.Info("shutting down", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("http server shutdown", zap.Error(err))
		}
		close(idleConnsClosed)
	}()

	log.Info("starting discount-service", zap.String("addr", cfg.HTTP.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	<-idleConnsClosed
	log.Info("server stopped")
	return nil
}
