package repository

import (
	"context"

	"github.com/jhoicas/portal-inventario/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del libro de movimientos por planta.
type MovementRepository interface {
	Load(ctx context.Context, facility entity.Facility) (*entity.MovementLedger, error)
	// Save reemplaza el documento si ledger.Version sigue vigente y actualiza ledger.Version.
	Save(ctx context.Context, ledger *entity.MovementLedger) error
}
