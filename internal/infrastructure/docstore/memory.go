package docstore

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/portal-inventario/internal/domain"
	"github.com/jhoicas/portal-inventario/internal/domain/repository"
)

var _ repository.DocumentStore = (*MemoryStore)(nil)

// MemoryStore almacén de documentos en memoria (tests y STORE_DRIVER=memory).
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]repository.Document
}

// NewMemoryStore construye un almacén vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]repository.Document)}
}

// Load devuelve una copia del documento o nil si no existe.
func (s *MemoryStore) Load(_ context.Context, key string) (*repository.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[key]
	if !ok {
		return nil, nil
	}
	d.Payload = append([]byte(nil), d.Payload...)
	return &d, nil
}

// Save reemplaza el documento si expectedVersion coincide con la versión actual.
func (s *MemoryStore) Save(_ context.Context, key string, payload []byte, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.docs[key]
	if cur.Version != expectedVersion {
		return cur.Version, domain.ErrConflict
	}
	next := repository.Document{
		Key:       key,
		Version:   cur.Version + 1,
		Payload:   append([]byte(nil), payload...),
		UpdatedAt: time.Now().UTC(),
	}
	s.docs[key] = next
	return next.Version, nil
}

// Versions devuelve la versión de cada clave (0 si no existe).
func (s *MemoryStore) Versions(_ context.Context, keys []string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int64, len(keys))
	for _, k := range keys {
		out[k] = s.docs[k].Version
	}
	return out, nil
}
