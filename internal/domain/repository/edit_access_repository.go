package repository

import (
	"context"

	"github.com/jhoicas/portal-inventario/internal/domain/entity"
)

// EditAccessRepository documento de solicitudes y concesiones de edición.
type EditAccessRepository interface {
	Load(ctx context.Context) (*entity.EditAccessState, error)
	Save(ctx context.Context, state *entity.EditAccessState) error
}
