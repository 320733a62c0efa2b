package entity

// Roles del portal.
const (
	RoleAdmin       = "admin"       // edita sin permiso y aprueba solicitudes
	RoleResponsable = "responsable" // edita sin permiso
	RoleOperario    = "operario"    // necesita permiso temporal
)

// Actor usuario que ejecuta la acción (proporcionado por el colaborador de identidad).
type Actor struct {
	ID   string
	Name string
	Role string
}

// HasDefaultEditRights informa si el rol permite editar sin flujo de permisos.
func (a Actor) HasDefaultEditRights() bool {
	return a.Role == RoleAdmin || a.Role == RoleResponsable
}

// IsApprover informa si el actor puede resolver solicitudes de edición.
func (a Actor) IsApprover() bool {
	return a.Role == RoleAdmin
}
