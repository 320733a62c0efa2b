package repository

import (
	"context"

	"github.com/jhoicas/portal-inventario/internal/domain/entity"
)

// MasterDataRepository tablas maestras de lotes y consumos por planta.
type MasterDataRepository interface {
	Lots(ctx context.Context, facility entity.Facility) ([]entity.LotMasterEntry, error)
	SaveLots(ctx context.Context, facility entity.Facility, lots []entity.LotMasterEntry) error
	ConsumptionRates(ctx context.Context, facility entity.Facility) ([]entity.ConsumptionRate, error)
	SaveConsumptionRates(ctx context.Context, facility entity.Facility, rates []entity.ConsumptionRate) error
}
