package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/portal-inventario/internal/domain/entity"
	"github.com/jhoicas/portal-inventario/internal/domain/repository"
)

var (
	_ repository.MovementRepository   = (*MovementRepo)(nil)
	_ repository.MasterDataRepository = (*MasterDataRepo)(nil)
	_ repository.EditAccessRepository = (*EditAccessRepo)(nil)
)

func load[T any](ctx context.Context, store repository.DocumentStore, key string, into *T) (int64, error) {
	doc, err := store.Load(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", key, err)
	}
	if doc == nil || len(doc.Payload) == 0 {
		return 0, nil
	}
	if err := json.Unmarshal(doc.Payload, into); err != nil {
		return 0, fmt.Errorf("decode %s: %w", key, err)
	}
	return doc.Version, nil
}

func save(ctx context.Context, store repository.DocumentStore, key string, v any, version int64) (int64, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", key, err)
	}
	next, err := store.Save(ctx, key, payload, version)
	if err != nil {
		return 0, fmt.Errorf("save %s: %w", key, err)
	}
	return next, nil
}

// MovementRepo libro de movimientos de cada planta como documento JSON.
type MovementRepo struct {
	store repository.DocumentStore
}

// NewMovementRepository construye el adaptador.
func NewMovementRepository(store repository.DocumentStore) *MovementRepo {
	return &MovementRepo{store: store}
}

// Load lee el documento de movimientos de la planta (vacío si no existe).
func (r *MovementRepo) Load(ctx context.Context, facility entity.Facility) (*entity.MovementLedger, error) {
	var movs []entity.Movement
	version, err := load(ctx, r.store, repository.MovementsKey(string(facility)), &movs)
	if err != nil {
		return nil, err
	}
	return &entity.MovementLedger{Facility: facility, Version: version, Movements: movs}, nil
}

// Save reemplaza el documento completo con control de versión.
func (r *MovementRepo) Save(ctx context.Context, ledger *entity.MovementLedger) error {
	movs := ledger.Movements
	if movs == nil {
		movs = []entity.Movement{}
	}
	next, err := save(ctx, r.store, repository.MovementsKey(string(ledger.Facility)), movs, ledger.Version)
	if err != nil {
		return err
	}
	ledger.Version = next
	return nil
}

// MasterDataRepo tablas maestras por planta. Son documentos de lectura mayoritaria: la
// escritura reemplaza la tabla con la última versión observada.
type MasterDataRepo struct {
	store repository.DocumentStore
}

// NewMasterDataRepository construye el adaptador.
func NewMasterDataRepository(store repository.DocumentStore) *MasterDataRepo {
	return &MasterDataRepo{store: store}
}

// Lots devuelve la tabla maestra de lotes.
func (r *MasterDataRepo) Lots(ctx context.Context, facility entity.Facility) ([]entity.LotMasterEntry, error) {
	var lots []entity.LotMasterEntry
	if _, err := load(ctx, r.store, repository.LotsKey(string(facility)), &lots); err != nil {
		return nil, err
	}
	return lots, nil
}

// SaveLots reemplaza la tabla maestra de lotes.
func (r *MasterDataRepo) SaveLots(ctx context.Context, facility entity.Facility, lots []entity.LotMasterEntry) error {
	return r.replace(ctx, repository.LotsKey(string(facility)), lots)
}

// ConsumptionRates devuelve los consumos mensuales maestros.
func (r *MasterDataRepo) ConsumptionRates(ctx context.Context, facility entity.Facility) ([]entity.ConsumptionRate, error) {
	var rates []entity.ConsumptionRate
	if _, err := load(ctx, r.store, repository.ConsumptionKey(string(facility)), &rates); err != nil {
		return nil, err
	}
	return rates, nil
}

// SaveConsumptionRates reemplaza los consumos mensuales.
func (r *MasterDataRepo) SaveConsumptionRates(ctx context.Context, facility entity.Facility, rates []entity.ConsumptionRate) error {
	return r.replace(ctx, repository.ConsumptionKey(string(facility)), rates)
}

func (r *MasterDataRepo) replace(ctx context.Context, key string, v any) error {
	versions, err := r.store.Versions(ctx, []string{key})
	if err != nil {
		return fmt.Errorf("versions %s: %w", key, err)
	}
	_, err = save(ctx, r.store, key, v, versions[key])
	return err
}

// EditAccessRepo documento de solicitudes y concesiones de edición.
type EditAccessRepo struct {
	store repository.DocumentStore
}

// NewEditAccessRepository construye el adaptador.
func NewEditAccessRepository(store repository.DocumentStore) *EditAccessRepo {
	return &EditAccessRepo{store: store}
}

// Load lee el estado (vacío si no existe).
func (r *EditAccessRepo) Load(ctx context.Context) (*entity.EditAccessState, error) {
	var st entity.EditAccessState
	version, err := load(ctx, r.store, repository.KeyEditAccess, &st)
	if err != nil {
		return nil, err
	}
	st.Version = version
	return &st, nil
}

// Save reemplaza el estado con control de versión.
func (r *EditAccessRepo) Save(ctx context.Context, state *entity.EditAccessState) error {
	next, err := save(ctx, r.store, repository.KeyEditAccess, state, state.Version)
	if err != nil {
		return err
	}
	state.Version = next
	return nil
}
