package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/portal-inventario/internal/domain"
	"github.com/jhoicas/portal-inventario/internal/domain/repository"
)

var _ repository.DocumentStore = (*DocumentStore)(nil)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	key        TEXT PRIMARY KEY,
	version    BIGINT      NOT NULL,
	payload    JSONB       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// DocumentStore almacén de documentos versionados sobre PostgreSQL (una fila por clave).
type DocumentStore struct {
	q Querier
}

// NewDocumentStore construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentStore(q Querier) *DocumentStore {
	return &DocumentStore{q: q}
}

// EnsureSchema crea la tabla de documentos si no existe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, documentsSchema); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	if _, err := pool.Exec(ctx, stockSnapshotSchema); err != nil {
		return fmt.Errorf("create stock_snapshots table: %w", err)
	}
	return nil
}

// Load obtiene un documento por clave.
func (s *DocumentStore) Load(ctx context.Context, key string) (*repository.Document, error) {
	query := `SELECT key, version, payload, updated_at FROM documents WHERE key = $1`
	var d repository.Document
	err := s.q.QueryRow(ctx, query, key).Scan(&d.Key, &d.Version, &d.Payload, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &d, nil
}

// Save inserta (expectedVersion 0) o actualiza si la versión coincide; si no, ErrConflict.
func (s *DocumentStore) Save(ctx context.Context, key string, payload []byte, expectedVersion int64) (int64, error) {
	if expectedVersion == 0 {
		query := `
			INSERT INTO documents (key, version, payload, updated_at)
			VALUES ($1, 1, $2, now())`
		if _, err := s.q.Exec(ctx, query, key, payload); err != nil {
			if isUniqueViolation(err) {
				return 0, domain.ErrConflict
			}
			return 0, fmt.Errorf("insert document: %w", err)
		}
		return 1, nil
	}
	query := `
		UPDATE documents SET version = version + 1, payload = $2, updated_at = now()
		WHERE key = $1 AND version = $3
		RETURNING version`
	var next int64
	err := s.q.QueryRow(ctx, query, key, payload, expectedVersion).Scan(&next)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrConflict
		}
		return 0, fmt.Errorf("update document: %w", err)
	}
	return next, nil
}

// Versions devuelve la versión de cada clave (0 si no existe).
func (s *DocumentStore) Versions(ctx context.Context, keys []string) (map[string]int64, error) {
	out := make(map[string]int64, len(keys))
	for _, k := range keys {
		out[k] = 0
	}
	rows, err := s.q.Query(ctx, `SELECT key, version FROM documents WHERE key = ANY($1)`, keys)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var v int64
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}
