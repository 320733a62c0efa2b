package inventory_test

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
	"github.com/jhoicas/portal-inventario/internal/domain/inventory"
)

var testTypes = inventory.NewMovementTypeRegistry(inventory.DefaultMovementTypes())

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// mov construye un movimiento manual con el signo del registro por defecto.
func mov(id int64, date, typ, product, lot, wh string, q int64) entity.Movement {
	m := entity.Movement{
		ID:           id,
		Facility:     entity.FacilityCanet,
		Date:         date,
		MovementType: typ,
		Product:      product,
		Lot:          lot,
		Warehouse:    wh,
		Quantity:     qty(q),
		Source:       entity.SourceManual,
	}
	m.ApplySign(testTypes.Sign(typ))
	return m
}

func syncSettings() inventory.SyncSettings {
	return inventory.SyncSettings{
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Profiles: map[entity.Facility]entity.FacilityProfile{
			entity.FacilityCanet:  {ID: entity.FacilityCanet, Name: "Canet", Aliases: []string{"CANET"}, ReceivingWarehouse: "CANET"},
			entity.FacilityHuarte: {ID: entity.FacilityHuarte, Name: "Huarte", Aliases: []string{"HUARTE"}, ReceivingWarehouse: "HUARTE"},
		},
	}
}
