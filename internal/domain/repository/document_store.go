package repository

import (
	"context"
	"time"
)

// Document documento versionado del almacén compartido (un documento por clave).
type Document struct {
	Key       string
	Version   int64
	Payload   []byte
	UpdatedAt time.Time
}

// DocumentStore puerto de persistencia: cada escritura reemplaza el documento completo.
// Save exige la versión observada y devuelve domain.ErrConflict si otro cliente escribió antes;
// expectedVersion 0 significa "el documento no existe todavía".
type DocumentStore interface {
	Load(ctx context.Context, key string) (*Document, error) // nil, nil si no existe
	Save(ctx context.Context, key string, payload []byte, expectedVersion int64) (int64, error)
	Versions(ctx context.Context, keys []string) (map[string]int64, error)
}

// Claves de documentos.
const (
	KeyEditAccess = "edit-access"
)

// MovementsKey clave del documento de movimientos de una planta.
func MovementsKey(facility string) string { return "movements/" + facility }

// LotsKey clave de la tabla maestra de lotes de una planta.
func LotsKey(facility string) string { return "lots/" + facility }

// ConsumptionKey clave de los consumos mensuales maestros de una planta.
func ConsumptionKey(facility string) string { return "consumption/" + facility }
