package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/portal-inventario/internal/application/ports"
)

var _ ports.Notifier = (*StreamNotifier)(nil)

// DefaultStream stream donde el servicio de push consume las notificaciones.
const DefaultStream = "inventory:notifications"

// StreamNotifier publica cada notificación como entrada de un stream de Redis (XADD).
type StreamNotifier struct {
	rdb    redis.Cmdable
	stream string
	maxLen int64
	now    func() time.Time
}

// NewStreamNotifier construye el adaptador; stream vacío usa DefaultStream.
func NewStreamNotifier(rdb redis.Cmdable, stream string) *StreamNotifier {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamNotifier{rdb: rdb, stream: stream, maxLen: 10000, now: time.Now}
}

// Notify añade la notificación al stream recortando a las últimas maxLen entradas.
func (n *StreamNotifier) Notify(ctx context.Context, userID, message, kind string) error {
	err := n.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		MaxLen: n.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"user_id": userID,
			"message": message,
			"type":    kind,
			"sent_at": n.now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", n.stream, err)
	}
	return nil
}
