package inventory

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
)

// CoverageThresholds límites en meses: < Critical es CRITICAL, < Warning es WARNING.
type CoverageThresholds struct {
	Critical decimal.Decimal
	Warning  decimal.Decimal
}

// DefaultCoverageThresholds 2 y 4 meses.
func DefaultCoverageThresholds() CoverageThresholds {
	return CoverageThresholds{Critical: decimal.NewFromInt(2), Warning: decimal.NewFromInt(4)}
}

// CoverageClassifier calcula meses de cobertura y nivel de riesgo por producto o por lote.
type CoverageClassifier struct {
	th CoverageThresholds
}

// NewCoverageClassifier construye el clasificador.
func NewCoverageClassifier(th CoverageThresholds) *CoverageClassifier {
	return &CoverageClassifier{th: th}
}

// Tier clasifica un saldo frente a un consumo mensual y devuelve los meses redondeados a dos
// decimales. Con consumo <= 0 la cobertura no es calculable: devuelve 0 sin nivel.
func (c *CoverageClassifier) Tier(stock, monthly decimal.Decimal) (decimal.Decimal, entity.RiskTier) {
	if !monthly.IsPositive() {
		return decimal.Zero, entity.RiskNone
	}
	if !stock.IsPositive() {
		return decimal.Zero, entity.RiskExhausted
	}
	// El nivel se decide con el cociente exacto; solo se redondea el valor informado.
	exact := stock.Div(monthly)
	months := exact.Round(2)
	switch {
	case exact.LessThan(c.th.Critical):
		return months, entity.RiskCritical
	case exact.LessThan(c.th.Warning):
		return months, entity.RiskWarning
	}
	return months, entity.RiskOK
}

type coverageKey struct {
	product string
	lot     string
}

// Classify agrega los saldos por producto (o producto/lote si byLot) y los cruza con el
// consumo maestro. Los productos ensamblados reciben además una cobertura potencial
// calculada con los componentes sin ensamblar, como serie aparte.
func (c *CoverageClassifier) Classify(balances []entity.StockBalance, rates []entity.ConsumptionRate, byLot bool) []entity.CoverageRow {
	rateByProduct := make(map[string]entity.ConsumptionRate, len(rates))
	for _, r := range rates {
		rateByProduct[FoldKey(r.Product)] = r
	}

	stock := make(map[coverageKey]decimal.Decimal)
	names := make(map[coverageKey]string)
	productStock := make(map[string]decimal.Decimal)
	for _, b := range balances {
		k := coverageKey{product: FoldKey(b.Product)}
		if byLot {
			k.lot = b.Lot
		}
		stock[k] = stock[k].Add(b.Balance)
		if _, ok := names[k]; !ok {
			names[k] = b.Product
		}
		productStock[k.product] = productStock[k.product].Add(b.Balance)
	}
	// Productos con consumo y sin ningún saldo: agotados.
	for pk, r := range rateByProduct {
		if _, ok := productStock[pk]; ok {
			continue
		}
		k := coverageKey{product: pk}
		stock[k] = decimal.Zero
		names[k] = r.Product
	}

	rows := make([]entity.CoverageRow, 0, len(stock))
	for k, qty := range stock {
		rate := rateByProduct[k.product]
		months, tier := c.Tier(qty, rate.MonthlyConsumption)
		row := entity.CoverageRow{
			Product:            names[k],
			Lot:                k.lot,
			StockBalance:       qty,
			MonthlyConsumption: rate.MonthlyConsumption,
			CoverageMonths:     months,
			RiskTier:           tier,
		}
		if strings.EqualFold(rate.Accumulation, entity.AccumulationAssembled) && rate.ComponentProduct != "" &&
			rate.UnitsPerAssembly.IsPositive() && k.lot == "" {
			units := productStock[FoldKey(rate.ComponentProduct)].Div(rate.UnitsPerAssembly).Floor()
			row.PotentialUnits = &units
			if rate.MonthlyConsumption.IsPositive() {
				pc := units.Div(rate.MonthlyConsumption).Round(2)
				row.PotentialCoverage = &pc
			}
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.RiskTier.Severity() != b.RiskTier.Severity() {
			return a.RiskTier.Severity() < b.RiskTier.Severity()
		}
		if !a.CoverageMonths.Equal(b.CoverageMonths) {
			return a.CoverageMonths.LessThan(b.CoverageMonths)
		}
		if a.Product != b.Product {
			return a.Product < b.Product
		}
		return a.Lot < b.Lot
	})
	return rows
}

// Alerts filas que deben notificarse (EXHAUSTED y CRITICAL).
func Alerts(rows []entity.CoverageRow) []entity.CoverageRow {
	var out []entity.CoverageRow
	for _, r := range rows {
		if r.RiskTier == entity.RiskExhausted || r.RiskTier == entity.RiskCritical {
			out = append(out, r)
		}
	}
	return out
}
