package notify

import (
	"context"

	"github.com/jhoicas/portal-inventario/internal/application/ports"
	"github.com/jhoicas/portal-inventario/pkg/logger"
)

var _ ports.Notifier = (*LogNotifier)(nil)

// LogNotifier escribe las notificaciones en el log cuando no hay Redis configurado.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el adaptador.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify registra la notificación.
func (n *LogNotifier) Notify(_ context.Context, userID, message, kind string) error {
	n.log.Info().Str("user_id", userID).Str("type", kind).Msg(message)
	return nil
}
