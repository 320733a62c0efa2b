package entity

import "time"

// Estados de una solicitud de edición.
const (
	EditRequestPending  = "pending"
	EditRequestApproved = "approved"
	EditRequestDenied   = "denied"
)

// EditRequest solicitud de permiso temporal de edición del libro.
type EditRequest struct {
	ID          string     `json:"id"`
	RequesterID string     `json:"requester_id"`
	RequestedAt time.Time  `json:"requested_at"`
	Status      string     `json:"status"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy  string     `json:"resolved_by,omitempty"`
}

// EditGrant autorización temporal; a lo sumo una activa por usuario.
type EditGrant struct {
	UserID     string    `json:"user_id"`
	ApprovedBy string    `json:"approved_by"`
	ApprovedAt time.Time `json:"approved_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Active informa si la concesión sigue vigente en now.
func (g EditGrant) Active(now time.Time) bool {
	return !now.After(g.ExpiresAt)
}

// EditAccessState documento con solicitudes y concesiones.
type EditAccessState struct {
	Version  int64         `json:"-"`
	Requests []EditRequest `json:"requests"`
	Grants   []EditGrant   `json:"grants"`
}
