// Comando syncer: vigila los documentos de movimientos de ambas plantas y, ante cualquier cambio,
// reconcilia las filas derivadas, materializa saldos y publica alertas de cobertura.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/portal-inventario/internal/bootstrap"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
	"github.com/jhoicas/portal-inventario/internal/domain/repository"
	"github.com/jhoicas/portal-inventario/internal/infrastructure/docstore"
	"github.com/jhoicas/portal-inventario/pkg/config"
	"github.com/jhoicas/portal-inventario/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Fatal().Msg("el syncer necesita un almacén compartido (postgres o sqlite)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar servicios")
	}
	defer svc.Close()

	keys := make([]string, 0, 4)
	for _, f := range entity.Facilities() {
		keys = append(keys, repository.MovementsKey(string(f)), repository.LotsKey(string(f)))
	}
	interval := time.Duration(cfg.Ledger.PollSeconds) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}
	changes := docstore.Watch(ctx, svc.Store, keys, interval, func(err error) {
		log.Warn().Err(err).Msg("consulta de versiones")
	})

	log.Info().Dur("interval", interval).Msg("syncer iniciado")
	reconcile(ctx, svc, log)
	for range changes {
		// Agrupa los avisos de una misma consulta en una sola pasada.
		drain(changes)
		reconcile(ctx, svc, log)
	}
	log.Info().Msg("syncer detenido")
}

func drain(ch <-chan docstore.Change) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// reconcile sincroniza ambas plantas, materializa saldos y publica alertas de cobertura.
func reconcile(ctx context.Context, svc *bootstrap.Services, log *logger.Logger) {
	if _, err := svc.Sync.SyncAll(ctx); err != nil {
		log.Error().Err(err).Msg("sincronización entre plantas")
	}
	now := time.Now().UTC()
	for _, f := range entity.Facilities() {
		if err := svc.Stock.Snapshot(ctx, f, now); err != nil {
			log.Error().Err(err).Str("facility", string(f)).Msg("materializar saldos")
		}
		if _, err := svc.Coverage.PublishAlerts(ctx, f); err != nil {
			log.Error().Err(err).Str("facility", string(f)).Msg("alertas de cobertura")
		}
	}
}
