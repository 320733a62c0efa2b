package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
	"github.com/jhoicas/portal-inventario/internal/domain/inventory"
)

func balance(product, lot, wh string, v int64) entity.StockBalance {
	return entity.StockBalance{Product: product, Lot: lot, Warehouse: wh, Balance: qty(v), Raw: qty(v)}
}

func TestTier_Umbrales(t *testing.T) {
	c := inventory.NewCoverageClassifier(inventory.DefaultCoverageThresholds())
	cases := []struct {
		name    string
		stock   int64
		monthly int64
		months  string
		tier    entity.RiskTier
	}{
		{"sin consumo no se clasifica", 100, 0, "0", entity.RiskNone},
		{"agotado", 0, 10, "0", entity.RiskExhausted},
		{"crítico", 15, 10, "1.5", entity.RiskCritical},
		{"aviso en el límite inferior", 20, 10, "2", entity.RiskWarning},
		{"aviso", 39, 10, "3.9", entity.RiskWarning},
		{"ok en el límite", 40, 10, "4", entity.RiskOK},
		{"crítico justo bajo el límite aunque redondee a 2", 1999, 1000, "2", entity.RiskCritical},
		{"aviso justo bajo el límite aunque redondee a 4", 3999, 1000, "4", entity.RiskWarning},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			months, tier := c.Tier(qty(tc.stock), qty(tc.monthly))
			assert.Equal(t, tc.tier, tier)
			assert.True(t, decimal.RequireFromString(tc.months).Equal(months), "got %s", months)
		})
	}
}

func TestClassify_PorProductoOrdenaPorGravedad(t *testing.T) {
	c := inventory.NewCoverageClassifier(inventory.DefaultCoverageThresholds())
	balances := []entity.StockBalance{
		balance("SV", "SV-24A", "CANET", 300),
		balance("SV", "SV-25B", "HUARTE", 100),
		balance("GEL", "GL-2401", "HUARTE", 5),
		balance("SIN-CONSUMO", "X", "CANET", 50),
	}
	rates := []entity.ConsumptionRate{
		{Product: "SV", MonthlyConsumption: qty(100)},
		{Product: "GEL", MonthlyConsumption: qty(10)},
		{Product: "CREMA", MonthlyConsumption: qty(3)},
	}
	rows := c.Classify(balances, rates, false)
	require.Len(t, rows, 4)

	assert.Equal(t, "CREMA", rows[0].Product)
	assert.Equal(t, entity.RiskExhausted, rows[0].RiskTier)
	assert.Equal(t, "GEL", rows[1].Product)
	assert.Equal(t, entity.RiskCritical, rows[1].RiskTier)
	assert.Equal(t, "SV", rows[2].Product)
	assert.Equal(t, entity.RiskOK, rows[2].RiskTier)
	assert.True(t, qty(400).Equal(rows[2].StockBalance))
	assert.Equal(t, "SIN-CONSUMO", rows[3].Product)
	assert.Equal(t, entity.RiskNone, rows[3].RiskTier)
	assert.True(t, rows[3].CoverageMonths.IsZero())

	alerts := inventory.Alerts(rows)
	require.Len(t, alerts, 2)
}

func TestClassify_PorLote(t *testing.T) {
	c := inventory.NewCoverageClassifier(inventory.DefaultCoverageThresholds())
	rows := c.Classify([]entity.StockBalance{
		balance("SV", "SV-24A", "CANET", 300),
		balance("SV", "SV-24A", "HUARTE", 50),
		balance("SV", "SV-25B", "HUARTE", 100),
	}, []entity.ConsumptionRate{{Product: "SV", MonthlyConsumption: qty(100)}}, true)

	require.Len(t, rows, 2)
	assert.Equal(t, "SV-25B", rows[0].Lot)
	assert.Equal(t, entity.RiskCritical, rows[0].RiskTier)
	assert.Equal(t, "SV-24A", rows[1].Lot)
	assert.True(t, decimal.RequireFromString("3.5").Equal(rows[1].CoverageMonths))
}

func TestClassify_CoberturaPotencialDeEnsamblados(t *testing.T) {
	c := inventory.NewCoverageClassifier(inventory.DefaultCoverageThresholds())
	rows := c.Classify([]entity.StockBalance{
		balance("KIT", "K1", "CANET", 10),
		balance("CAJA", "C1", "CANET", 250),
	}, []entity.ConsumptionRate{{
		Product:            "KIT",
		MonthlyConsumption: qty(20),
		Accumulation:       entity.AccumulationAssembled,
		ComponentProduct:   "CAJA",
		UnitsPerAssembly:   qty(4),
	}}, false)

	var kit entity.CoverageRow
	for _, r := range rows {
		if r.Product == "KIT" {
			kit = r
		}
	}
	require.NotNil(t, kit.PotentialUnits)
	assert.True(t, qty(62).Equal(*kit.PotentialUnits), "250/4 = 62 ensamblajes completos")
	require.NotNil(t, kit.PotentialCoverage)
	assert.True(t, decimal.RequireFromString("3.1").Equal(*kit.PotentialCoverage))
	assert.Equal(t, entity.RiskCritical, kit.RiskTier, "el saldo principal no se mezcla con el potencial")
}
