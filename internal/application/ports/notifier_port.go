package ports

import "context"

// Tipos de notificación emitidos por el núcleo de inventario.
const (
	NotifyMovementCreated = "movement_created"
	NotifyMovementEdited  = "movement_edited"
	NotifyMovementDeleted = "movement_deleted"
	NotifyCoverageAlert   = "coverage_alert"
	NotifyEditRequested   = "edit_requested"
	NotifyEditApproved    = "edit_approved"
	NotifyEditDenied      = "edit_denied"
)

// Notifier puerto hacia el servicio externo de notificaciones push.
// La entrega es responsabilidad del adaptador; el núcleo solo publica.
type Notifier interface {
	Notify(ctx context.Context, userID, message, kind string) error
}

// Directory colaborador de identidad: quién aprueba solicitudes y quién revisa movimientos.
type Directory interface {
	Approvers(ctx context.Context) ([]string, error)
	Reviewer(ctx context.Context) (string, error)
}
