package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/portal-inventario/internal/domain/entity"
	"github.com/jhoicas/portal-inventario/internal/domain/inventory"
	"github.com/jhoicas/portal-inventario/internal/domain/repository"
	"github.com/jhoicas/portal-inventario/pkg/logger"
)

// MovementFilter filtros del listado de movimientos; los vacíos no filtran.
type MovementFilter struct {
	Source  entity.MovementSource
	Product string
	From    *time.Time
	To      *time.Time
}

// StockUseCase lado de lectura del libro: saldos, listado de movimientos y resolución de lotes.
type StockUseCase struct {
	movements repository.MovementRepository
	master    repository.MasterDataRepository
	types     *inventory.MovementTypeRegistry
	snapshots repository.StockSnapshotRepository
	log       *logger.Logger
}

// NewStockUseCase construye el caso de uso. snapshots puede ser nil.
func NewStockUseCase(
	movements repository.MovementRepository,
	master repository.MasterDataRepository,
	types *inventory.MovementTypeRegistry,
	snapshots repository.StockSnapshotRepository,
	log *logger.Logger,
) *StockUseCase {
	return &StockUseCase{movements: movements, master: master, types: types, snapshots: snapshots, log: log}
}

func (uc *StockUseCase) resolver(ctx context.Context, facility entity.Facility) (*inventory.LotResolver, error) {
	lots, err := uc.master.Lots(ctx, facility)
	if err != nil {
		return nil, err
	}
	return inventory.NewLotResolver(lots), nil
}

// Balances proyecta los saldos de la planta con lotes canonizados en lectura.
func (uc *StockUseCase) Balances(ctx context.Context, facility entity.Facility, f inventory.StockFilter) (inventory.Projection, error) {
	ledger, err := uc.movements.Load(ctx, facility)
	if err != nil {
		return inventory.Projection{}, err
	}
	resolver, err := uc.resolver(ctx, facility)
	if err != nil {
		return inventory.Projection{}, err
	}
	return inventory.NewProjector(uc.types, resolver).Project(ledger.Movements, f), nil
}

// Unresolved movimientos cuyo lote no pudo canonizarse (cola de revisión).
func (uc *StockUseCase) Unresolved(ctx context.Context, facility entity.Facility) ([]entity.UnresolvedLot, error) {
	p, err := uc.Balances(ctx, facility, inventory.StockFilter{})
	if err != nil {
		return nil, err
	}
	return p.Unresolved, nil
}

// MovementTypes catálogo de tipos de movimiento, ordenado por nombre.
func (uc *StockUseCase) MovementTypes() []inventory.MovementTypeDef {
	return uc.types.All()
}

// Movements lista los movimientos de la planta, del más reciente al más antiguo.
func (uc *StockUseCase) Movements(ctx context.Context, facility entity.Facility, f MovementFilter) ([]entity.Movement, error) {
	ledger, err := uc.movements.Load(ctx, facility)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Movement, 0, len(ledger.Movements))
	for _, m := range ledger.Movements {
		if f.Source != "" && m.Source != f.Source {
			continue
		}
		if f.Product != "" && !inventory.SameText(m.Product, f.Product) {
			continue
		}
		if f.From != nil || f.To != nil {
			d, ok := m.Day()
			if !ok {
				continue
			}
			if f.From != nil && d.Before(*f.From) {
				continue
			}
			if f.To != nil && d.After(*f.To) {
				continue
			}
		}
		out = append(out, m)
	}
	inventory.SortForReplay(out)
	reverse(out)
	return out, nil
}

func reverse(movs []entity.Movement) {
	for i, j := 0, len(movs)-1; i < j; i, j = i+1, j-1 {
		movs[i], movs[j] = movs[j], movs[i]
	}
}

// ResolveLot canoniza un token de lote contra la tabla maestra de la planta.
func (uc *StockUseCase) ResolveLot(ctx context.Context, facility entity.Facility, product, token string) (inventory.LotResolution, error) {
	resolver, err := uc.resolver(ctx, facility)
	if err != nil {
		return inventory.LotResolution{}, err
	}
	return resolver.Resolve(product, token), nil
}

// Snapshot materializa los saldos actuales de la planta para informes externos.
func (uc *StockUseCase) Snapshot(ctx context.Context, facility entity.Facility, at time.Time) error {
	if uc.snapshots == nil {
		return nil
	}
	p, err := uc.Balances(ctx, facility, inventory.StockFilter{})
	if err != nil {
		return err
	}
	if err := uc.snapshots.Replace(ctx, facility, p.Balances, at); err != nil {
		return err
	}
	uc.log.Debug().Str("facility", string(facility)).Int("rows", len(p.Balances)).Msg("saldos materializados")
	return nil
}
