package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/portal-inventario/internal/application/ports"
	"github.com/jhoicas/portal-inventario/internal/domain"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
	"github.com/jhoicas/portal-inventario/internal/domain/inventory"
	"github.com/jhoicas/portal-inventario/internal/domain/repository"
	"github.com/jhoicas/portal-inventario/pkg/logger"
)

// maxSaveAttempts reintentos de lectura-modificación-escritura ante ErrConflict.
const maxSaveAttempts = 3

// SyncReport resultado de una pasada de sincronización hacia la planta contraria.
type SyncReport struct {
	Origin  entity.Facility           `json:"origin"`
	Target  entity.Facility           `json:"target"`
	Upserts int                       `json:"upserts"`
	Deletes int                       `json:"deletes"`
	Skipped []inventory.SkippedOrigin `json:"skipped,omitempty"`
	Written bool                      `json:"written"`
}

// SyncUseCase adaptador que aplica los planes del sincronizador sobre el almacén de movimientos.
// El cálculo es puro (domain/inventory.Synchronizer); aquí solo se lee, se compara y se escribe.
type SyncUseCase struct {
	movements repository.MovementRepository
	sync      *inventory.Synchronizer
	metrics   ports.Metrics
	log       *logger.Logger
}

// NewSyncUseCase construye el caso de uso. metrics puede ser nil.
func NewSyncUseCase(movements repository.MovementRepository, sync *inventory.Synchronizer, metrics ports.Metrics, log *logger.Logger) *SyncUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &SyncUseCase{movements: movements, sync: sync, metrics: metrics, log: log}
}

// SyncOrigin reconcilia las filas derivadas de un único movimiento de origin. Si el movimiento
// ya no existe en el documento de origen se eliminan sus derivadas.
func (uc *SyncUseCase) SyncOrigin(ctx context.Context, origin entity.Facility, originID int64) (*SyncReport, error) {
	src, err := uc.movements.Load(ctx, origin)
	if err != nil {
		return nil, err
	}
	var mov *entity.Movement
	if i := src.Find(originID); i >= 0 && !src.Movements[i].Source.IsDerived() {
		m := src.Movements[i]
		mov = &m
	}
	return uc.apply(ctx, origin, func(target []entity.Movement) inventory.SyncPlan {
		return uc.sync.PlanOrigin(origin, originID, mov, target)
	})
}

// SyncFacility reconcilia desde cero todos los movimientos de origin contra la planta contraria.
func (uc *SyncUseCase) SyncFacility(ctx context.Context, origin entity.Facility) (*SyncReport, error) {
	src, err := uc.movements.Load(ctx, origin)
	if err != nil {
		return nil, err
	}
	return uc.apply(ctx, origin, func(target []entity.Movement) inventory.SyncPlan {
		return uc.sync.Plan(origin, src.Movements, target)
	})
}

// SyncAll reconcilia ambas direcciones. Un fallo en una dirección no impide la otra.
func (uc *SyncUseCase) SyncAll(ctx context.Context) ([]SyncReport, error) {
	var reports []SyncReport
	var errs []error
	for _, f := range entity.Facilities() {
		r, err := uc.SyncFacility(ctx, f)
		if err != nil {
			errs = append(errs, fmt.Errorf("sync %s: %w", f, err))
			continue
		}
		reports = append(reports, *r)
	}
	return reports, errors.Join(errs...)
}

// apply lee el destino, calcula el plan y lo escribe solo si cambia algo. Reintenta ante
// conflicto de versión con el documento destino releído.
func (uc *SyncUseCase) apply(ctx context.Context, origin entity.Facility, plan func([]entity.Movement) inventory.SyncPlan) (*SyncReport, error) {
	target := origin.Counterpart()
	for attempt := 1; ; attempt++ {
		ledger, err := uc.movements.Load(ctx, target)
		if err != nil {
			return nil, err
		}
		p := plan(ledger.Movements)
		report := &SyncReport{
			Origin: origin, Target: target,
			Upserts: len(p.Upserts), Deletes: len(p.Deletes), Skipped: p.Skipped,
		}
		for _, s := range p.Skipped {
			uc.log.Warn().Str("facility", string(origin)).Int64("origin_id", s.OriginID).
				Str("reason", s.Reason).Msg("movimiento omitido de la sincronización")
		}
		if p.Empty() {
			uc.metrics.SyncPass(string(origin), string(target), 0, 0, len(p.Skipped))
			return report, nil
		}

		ledger.Movements = inventory.ApplyPlan(ledger.Movements, p)
		err = uc.movements.Save(ctx, ledger)
		if errors.Is(err, domain.ErrConflict) && attempt < maxSaveAttempts {
			uc.log.Debug().Str("facility", string(target)).Int("attempt", attempt).Msg("conflicto de versión, reintentando sincronización")
			continue
		}
		if err != nil {
			return nil, err
		}
		report.Written = true
		uc.metrics.SyncPass(string(origin), string(target), report.Upserts, report.Deletes, len(p.Skipped))
		uc.log.Info().Str("origin", string(origin)).Str("target", string(target)).
			Int("upserts", report.Upserts).Int("deletes", report.Deletes).Msg("filas derivadas actualizadas")
		return report, nil
	}
}
