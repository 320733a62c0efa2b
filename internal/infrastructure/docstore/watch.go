package docstore

import (
	"context"
	"time"

	"github.com/jhoicas/portal-inventario/internal/domain/repository"
)

// Change aviso de que un documento cambió de versión.
type Change struct {
	Key     string
	Version int64
}

// Watch consulta periódicamente las versiones de keys y emite un Change por cada clave que
// avanzó desde la consulta anterior. La primera consulta solo fija la línea base.
// El canal se cierra al cancelar ctx.
func Watch(ctx context.Context, store repository.DocumentStore, keys []string, interval time.Duration, onError func(error)) <-chan Change {
	out := make(chan Change, len(keys))
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var last map[string]int64
		for {
			current, err := store.Versions(ctx, keys)
			if err != nil {
				if onError != nil && ctx.Err() == nil {
					onError(err)
				}
			} else {
				if last != nil {
					for _, k := range keys {
						if current[k] != last[k] {
							select {
							case out <- Change{Key: k, Version: current[k]}:
							case <-ctx.Done():
								return
							}
						}
					}
				}
				last = current
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out
}
