package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // driver sqlite en Go puro

	"github.com/jhoicas/portal-inventario/internal/domain"
	"github.com/jhoicas/portal-inventario/internal/domain/repository"
)

var _ repository.DocumentStore = (*DocumentStore)(nil)

// DocumentStore almacén de documentos versionados en un fichero SQLite (despliegues de una planta
// sin PostgreSQL y entornos de desarrollo).
type DocumentStore struct {
	db *sql.DB
}

// Open abre (o crea) la base en path y asegura el esquema.
func Open(path string) (*DocumentStore, error) {
	if path == "" {
		path = "portal-inventario.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Un único escritor: SQLite serializa igualmente las escrituras.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		key        TEXT PRIMARY KEY,
		version    INTEGER NOT NULL,
		payload    BLOB    NOT NULL,
		updated_at TEXT    NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &DocumentStore{db: db}, nil
}

// Close cierra la base.
func (s *DocumentStore) Close() error {
	return s.db.Close()
}

// Load obtiene un documento por clave.
func (s *DocumentStore) Load(ctx context.Context, key string) (*repository.Document, error) {
	var d repository.Document
	var updated string
	err := s.db.QueryRowContext(ctx, `SELECT key, version, payload, updated_at FROM documents WHERE key = ?`, key).
		Scan(&d.Key, &d.Version, &d.Payload, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	d.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &d, nil
}

// Save inserta o actualiza con control optimista de versión.
func (s *DocumentStore) Save(ctx context.Context, key string, payload []byte, expectedVersion int64) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	var res sql.Result
	var err error
	if expectedVersion == 0 {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO documents (key, version, payload, updated_at) VALUES (?, 1, ?, ?) ON CONFLICT(key) DO NOTHING`,
			key, payload, now)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE documents SET version = version + 1, payload = ?, updated_at = ? WHERE key = ? AND version = ?`,
			payload, now, key, expectedVersion)
	}
	if err != nil {
		return 0, fmt.Errorf("save document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return 0, domain.ErrConflict
	}
	return expectedVersion + 1, nil
}

// Versions devuelve la versión de cada clave (0 si no existe).
func (s *DocumentStore) Versions(ctx context.Context, keys []string) (map[string]int64, error) {
	out := make(map[string]int64, len(keys))
	for _, k := range keys {
		var v int64
		err := s.db.QueryRowContext(ctx, `SELECT version FROM documents WHERE key = ?`, k).Scan(&v)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get version: %w", err)
		}
		out[k] = v
	}
	return out, nil
}
