package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/portal-inventario/internal/application/inventory"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
	"github.com/jhoicas/portal-inventario/internal/domain/inventory"
)

func TestStock_BalancesYListado(t *testing.T) {
	f := newFixture(t, fixedGuard{allow: true})
	ctx := context.Background()

	legacy := manual(1, "", "entrada", "HUARTE", "", 40) // saldo inicial sin fecha
	legacy.Lot = "24A"
	seedMovements(t, f, entity.FacilityHuarte,
		legacy,
		manual(2, "2026-01-10", "entrada", "HUARTE", "", 100),
		manual(3, "2026-02-10", "venta", "HUARTE", "", 30),
		manual(4, "2026-04-10", "venta", "HUARTE", "", 50),
	)

	p, err := f.stock.Balances(ctx, entity.FacilityHuarte, inventory.StockFilter{})
	require.NoError(t, err)
	require.Len(t, p.Balances, 1)
	assert.Equal(t, "SV-24A", p.Balances[0].Lot)
	assert.True(t, qty(60).Equal(p.Balances[0].Balance))

	cutoff := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	p, err = f.stock.Balances(ctx, entity.FacilityHuarte, inventory.StockFilter{Cutoff: &cutoff})
	require.NoError(t, err)
	assert.True(t, qty(110).Equal(p.Balances[0].Balance), "corte a fin de febrero incluye el saldo inicial")

	movs, err := f.stock.Movements(ctx, entity.FacilityHuarte, appinv.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, movs, 4)
	assert.Equal(t, int64(4), movs[0].ID, "más reciente primero")
	assert.Equal(t, int64(1), movs[3].ID)

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	movs, err = f.stock.Movements(ctx, entity.FacilityHuarte, appinv.MovementFilter{From: &from, Source: entity.SourceManual})
	require.NoError(t, err)
	assert.Len(t, movs, 2)

	res, err := f.stock.ResolveLot(ctx, entity.FacilityHuarte, "SV", "24-a")
	require.NoError(t, err)
	assert.Equal(t, inventory.ResolvedSuffix, res.Status)
	assert.Equal(t, "SV-24A", res.Lot)
}

func TestStock_Unresolved(t *testing.T) {
	f := newFixture(t, fixedGuard{allow: true})
	ctx := context.Background()

	m := manual(1, "2026-01-10", "entrada", "HUARTE", "", 5)
	m.Product = "P"
	m.Lot = "001"
	seedMovements(t, f, entity.FacilityHuarte, m)

	un, err := f.stock.Unresolved(ctx, entity.FacilityHuarte)
	require.NoError(t, err)
	require.Len(t, un, 1)
	assert.Equal(t, "001", un[0].Token)
	assert.Equal(t, string(inventory.ResolvedAmbiguous), un[0].Reason)
}

func TestStock_TextoPlegadoEnSaldosYListado(t *testing.T) {
	f := newFixture(t, fixedGuard{allow: true})
	ctx := context.Background()

	a := manual(1, "2026-01-10", "entrada", "HUARTE", "", 100)
	b := manual(2, "2026-01-12", "entrada", "Huarte", "", 20)
	b.Product = "sv"
	seedMovements(t, f, entity.FacilityHuarte, a, b)

	p, err := f.stock.Balances(ctx, entity.FacilityHuarte, inventory.StockFilter{})
	require.NoError(t, err)
	require.Len(t, p.Balances, 1, "mayúsculas y tildes no separan claves")
	assert.Equal(t, "SV", p.Balances[0].Product)
	assert.Equal(t, "HUARTE", p.Balances[0].Warehouse)
	assert.True(t, qty(120).Equal(p.Balances[0].Balance))

	movs, err := f.stock.Movements(ctx, entity.FacilityHuarte, appinv.MovementFilter{Product: "sv"})
	require.NoError(t, err)
	assert.Len(t, movs, 2)
}
