// Package app wires configuration, storage and domain services for the
// command binaries.
package app

import (
	"context"

	"dcolumn/internal/choices"
	"dcolumn/internal/config"
	"dcolumn/internal/domain/auth"
	"dcolumn/internal/domain/books"
	"dcolumn/internal/domain/collection"
	"dcolumn/internal/domain/dcolumn"
	"dcolumn/internal/domain/record"
	"dcolumn/internal/infrastructure/storage/postgres"
	"dcolumn/pkg/logger"
)

// App holds the wired service graph.
type App struct {
	Cfg      *config.Config
	Log      *logger.Logger
	Pool     *postgres.Pool
	TxM      *postgres.TxManager
	Registry *choices.Registry

	Columns     *dcolumn.Service
	Collections *collection.Service
	Store       *record.Store
	Books       *books.Service
	Auth        *auth.Service
	Users       auth.Repository
}

// New builds the full service graph and populates the choice registry.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, err
	}

	txm := postgres.NewTxManager(pool)

	auditSvc, err := postgres.NewAuditService(txm)
	if err != nil {
		pool.Close()
		return nil, err
	}

	registry := choices.NewRegistry()

	columnRepo := postgres.NewDynamicColumnRepo(txm)
	collectionRepo := postgres.NewColumnCollectionRepo(txm)
	valueRepo := postgres.NewKeyValueRepo(txm, ValueTables())
	userRepo := postgres.NewUserRepo(txm)

	columnSvc := dcolumn.NewService(columnRepo, registry, log).WithAuditor(auditSvc)
	collectionSvc := collection.NewService(collectionRepo, columnRepo, registry, txm, log).WithAuditor(auditSvc)
	store := record.NewStore(collectionSvc, valueRepo, registry, txm, log).WithAuditor(auditSvc)

	booksSvc := books.NewService(
		postgres.NewBookRepo(txm),
		postgres.NewAuthorRepo(txm),
		postgres.NewPublisherRepo(txm),
		postgres.NewPromotionRepo(txm),
		store, txm, log,
	)
	authSvc := auth.NewService(userRepo, cfg.JWTSecret, log)

	if err := SetupChoiceRegistry(registry, booksSvc); err != nil {
		pool.Close()
		return nil, err
	}

	return &App{
		Cfg:         cfg,
		Log:         log,
		Pool:        pool,
		TxM:         txm,
		Registry:    registry,
		Columns:     columnSvc,
		Collections: collectionSvc,
		Store:       store,
		Books:       booksSvc,
		Auth:        authSvc,
		Users:       userRepo,
	}, nil
}

// Close releases held resources.
func (a *App) Close() {
	a.Pool.Close()
}
