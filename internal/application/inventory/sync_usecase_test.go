package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/portal-inventario/internal/domain/entity"
)

func seedMovements(t *testing.T, f *fixture, facility entity.Facility, movs ...entity.Movement) {
	t.Helper()
	ledger, err := f.movements.Load(context.Background(), facility)
	require.NoError(t, err)
	ledger.Movements = append(ledger.Movements, movs...)
	require.NoError(t, f.movements.Save(context.Background(), ledger))
}

func manual(id int64, date, typ, wh, dest string, q int64) entity.Movement {
	m := entity.Movement{
		ID: id, Date: date, MovementType: typ, Product: "SV", Lot: "SV-24A", Warehouse: wh,
		Destination: dest, Quantity: qty(q), Source: entity.SourceManual,
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	sign := 1
	if typ == "traspaso" || typ == "venta" {
		sign = -1
	}
	m.ApplySign(sign)
	return m
}

func TestSyncAll_IdempotenteYConvergente(t *testing.T) {
	f := newFixture(t, fixedGuard{allow: true})
	ctx := context.Background()

	seedMovements(t, f, entity.FacilityCanet,
		manual(1, "2026-02-01", "entrada", "CANET", "", 1000),
		manual(2, "2026-03-01", "traspaso", "CANET", "HUARTE", 500),
		manual(3, "2025-12-01", "entrada", "CANET", "", 7), // anterior al inicio
		entity.Movement{ID: 4, Date: "2026-03-02", MovementType: "entrada", Product: "SV", Source: entity.SourceManual},
	)
	seedMovements(t, f, entity.FacilityHuarte,
		manual(1, "2026-02-15", "traspaso", "HUARTE", "Planta Canet", 20),
	)

	reports, err := f.sync.SyncAll(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	canetToHuarte := reports[0]
	assert.Equal(t, entity.FacilityCanet, canetToHuarte.Origin)
	assert.Equal(t, 3, canetToHuarte.Upserts, "dos espejos y una entrada automática")
	require.Len(t, canetToHuarte.Skipped, 1)
	assert.Equal(t, int64(4), canetToHuarte.Skipped[0].OriginID)
	assert.True(t, canetToHuarte.Written)

	huarteToCanet := reports[1]
	assert.Equal(t, 2, huarteToCanet.Upserts)

	canet := f.load(t, entity.FacilityCanet)
	autos := bySource(canet, entity.SourceAutoTransferIn)
	require.Len(t, autos, 1)
	assert.Equal(t, "CANET", autos[0].Warehouse)
	assert.Equal(t, entity.FacilityCanet, autos[0].Facility)

	versions, err := f.store.Versions(ctx, []string{"movements/canet", "movements/huarte"})
	require.NoError(t, err)

	again, err := f.sync.SyncAll(ctx)
	require.NoError(t, err)
	for _, r := range again {
		assert.False(t, r.Written, "segunda pasada sin escrituras (%s)", r.Origin)
		assert.Zero(t, r.Upserts)
		assert.Zero(t, r.Deletes)
	}
	after, err := f.store.Versions(ctx, []string{"movements/canet", "movements/huarte"})
	require.NoError(t, err)
	assert.Equal(t, versions, after)
}

func TestSyncOrigin_BorradoRetiraDerivadas(t *testing.T) {
	f := newFixture(t, fixedGuard{allow: true})
	ctx := context.Background()

	seedMovements(t, f, entity.FacilityCanet, manual(2, "2026-03-01", "traspaso", "CANET", "HUARTE", 500))
	_, err := f.sync.SyncOrigin(ctx, entity.FacilityCanet, 2)
	require.NoError(t, err)
	assert.Len(t, f.load(t, entity.FacilityHuarte), 2)

	ledger, err := f.movements.Load(ctx, entity.FacilityCanet)
	require.NoError(t, err)
	ledger.Movements = nil
	require.NoError(t, f.movements.Save(ctx, ledger))

	report, err := f.sync.SyncOrigin(ctx, entity.FacilityCanet, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Deletes)
	assert.Empty(t, f.load(t, entity.FacilityHuarte))
}
