package repository

import (
	"context"
	"time"

	"github.com/jhoicas/portal-inventario/internal/domain/entity"
)

// StockSnapshotRepository tabla materializada de saldos para el colaborador de informes.
// Se reemplaza completa por planta en cada pasada de sincronización.
type StockSnapshotRepository interface {
	Replace(ctx context.Context, facility entity.Facility, balances []entity.StockBalance, at time.Time) error
}
