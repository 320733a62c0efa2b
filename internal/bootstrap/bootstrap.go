// Package bootstrap arma los casos de uso a partir de la configuración; lo comparten cmd/api y cmd/syncer.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/portal-inventario/internal/application/access"
	"github.com/jhoicas/portal-inventario/internal/application/inventory"
	"github.com/jhoicas/portal-inventario/internal/application/ports"
	domaininv "github.com/jhoicas/portal-inventario/internal/domain/inventory"
	"github.com/jhoicas/portal-inventario/internal/domain/repository"
	"github.com/jhoicas/portal-inventario/internal/infrastructure/docstore"
	"github.com/jhoicas/portal-inventario/internal/infrastructure/identity"
	"github.com/jhoicas/portal-inventario/internal/infrastructure/metrics"
	"github.com/jhoicas/portal-inventario/internal/infrastructure/notify"
	"github.com/jhoicas/portal-inventario/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/portal-inventario/internal/infrastructure/redis"
	"github.com/jhoicas/portal-inventario/internal/infrastructure/sqlite"
	"github.com/jhoicas/portal-inventario/pkg/config"
	"github.com/jhoicas/portal-inventario/pkg/logger"
)

// Services casos de uso y recursos compartidos por los binarios.
type Services struct {
	Store    repository.DocumentStore
	Registry *prometheus.Registry
	Ledger   *inventory.LedgerUseCase
	Stock    *inventory.StockUseCase
	Sync     *inventory.SyncUseCase
	Master   *inventory.MasterDataUseCase
	Coverage *inventory.CoverageUseCase
	Access   *access.EditAccessUseCase

	closers []func()
}

// Close libera conexiones en orden inverso a su apertura.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Build abre el almacén de documentos y el canal de notificaciones y construye los casos de uso.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Services, error) {
	s := &Services{Registry: prometheus.NewRegistry()}
	s.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := metrics.New(s.Registry)

	snapshots, err := s.openStore(ctx, cfg, log)
	if err != nil {
		s.Close()
		return nil, err
	}
	notifier, err := s.openNotifier(ctx, cfg, log)
	if err != nil {
		s.Close()
		return nil, err
	}

	cat, err := config.LoadCatalog(cfg.Ledger.CatalogFile)
	if err != nil {
		s.Close()
		return nil, err
	}
	types, settings, err := inventory.BuildCatalog(cat, cfg.Ledger.SyncStartDate)
	if err != nil {
		s.Close()
		return nil, err
	}

	movements := docstore.NewMovementRepository(s.Store)
	master := docstore.NewMasterDataRepository(s.Store)
	directory := identity.NewStaticDirectory(cfg.Access.ApproverIDs, cfg.Ledger.ReviewerID)

	s.Access = access.NewEditAccessUseCase(
		docstore.NewEditAccessRepository(s.Store), directory, notifier,
		time.Duration(cfg.Access.GrantHours)*time.Hour, log,
	)
	s.Sync = inventory.NewSyncUseCase(movements, domaininv.NewSynchronizer(settings, types), prom, log)
	s.Stock = inventory.NewStockUseCase(movements, master, types, snapshots, log)
	s.Master = inventory.NewMasterDataUseCase(master, log)
	s.Ledger = inventory.NewLedgerUseCase(movements, master, types, s.Access, s.Sync, notifier, directory, prom, log)
	s.Coverage = inventory.NewCoverageUseCase(s.Stock, master, domaininv.NewCoverageClassifier(domaininv.CoverageThresholds{
		Critical: decimal.NewFromInt(int64(cfg.Coverage.CriticalMonths)),
		Warning:  decimal.NewFromInt(int64(cfg.Coverage.WarningMonths)),
	}), notifier, directory, prom, log)
	return s, nil
}

// openStore selecciona el almacén según STORE_DRIVER. Solo PostgreSQL materializa saldos.
func (s *Services) openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.StockSnapshotRepository, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return nil, err
		}
		s.Store = postgres.NewDocumentStore(pool)
		log.Info().Str("driver", cfg.Store.Driver).Msg("almacén de documentos listo")
		return postgres.NewStockSnapshotRepository(pool), nil
	case config.StoreDriverSQLite:
		db, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("abrir SQLite: %w", err)
		}
		s.closers = append(s.closers, func() { _ = db.Close() })
		s.Store = db
		log.Info().Str("driver", cfg.Store.Driver).Str("path", cfg.Store.SQLitePath).Msg("almacén de documentos listo")
		return nil, nil
	case config.StoreDriverMemory:
		s.Store = docstore.NewMemoryStore()
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		return nil, nil
	}
	return nil, errors.New("driver de almacén desconocido: " + cfg.Store.Driver)
}

// openNotifier usa el stream de Redis si está configurado; si no, registra los avisos en el log.
func (s *Services) openNotifier(ctx context.Context, cfg *config.Config, log *logger.Logger) (ports.Notifier, error) {
	if !cfg.Redis.Enabled() {
		return notify.NewLogNotifier(log), nil
	}
	rdb, err := infraredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("conexión a Redis: %w", err)
	}
	s.closers = append(s.closers, func() { _ = rdb.Close() })
	return infraredis.NewStreamNotifier(rdb, cfg.Redis.Stream), nil
}
