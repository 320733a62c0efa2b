package dto

import (
	"time"

	"github.com/jhoicas/portal-inventario/internal/domain/entity"
)

// AccessStatusResponse permisos de edición del usuario autenticado.
type AccessStatusResponse struct {
	UserID         string              `json:"user_id"`
	CanEdit        bool                `json:"can_edit"`
	DefaultRights  bool                `json:"default_rights"`
	GrantExpiresAt *time.Time          `json:"grant_expires_at,omitempty"`
	Pending        *entity.EditRequest `json:"pending,omitempty"`
}

// EditRequestListResponse solicitudes pendientes.
type EditRequestListResponse struct {
	Total    int                  `json:"total"`
	Requests []entity.EditRequest `json:"requests"`
}
