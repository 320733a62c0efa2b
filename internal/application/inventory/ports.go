package inventory

import (
	"context"

	"github.com/jhoicas/portal-inventario/internal/domain/entity"
)

// EditGuard decide si el actor puede modificar el libro en este momento
// (permiso por rol o concesión temporal vigente).
type EditGuard interface {
	CanEditNow(ctx context.Context, actor entity.Actor) (bool, error)
}
