package entity

import "github.com/shopspring/decimal"

// RiskTier nivel de riesgo de abastecimiento, de más a menos grave.
type RiskTier string

const (
	RiskExhausted RiskTier = "EXHAUSTED"
	RiskCritical  RiskTier = "CRITICAL"
	RiskWarning   RiskTier = "WARNING"
	RiskOK        RiskTier = "OK"
	RiskNone      RiskTier = ""
)

// Severity orden de gravedad (0 = más grave). Las filas sin clasificar van al final.
func (t RiskTier) Severity() int {
	switch t {
	case RiskExhausted:
		return 0
	case RiskCritical:
		return 1
	case RiskWarning:
		return 2
	case RiskOK:
		return 3
	}
	return 4
}

// Modos de acumulación de stock de un producto.
const (
	AccumulationDirect    = "direct"
	AccumulationAssembled = "assembled"
)

// ConsumptionRate consumo mensual maestro de un producto.
// Para productos ensamblados, ComponentProduct y UnitsPerAssembly permiten estimar
// la cobertura potencial a partir de componentes sin ensamblar.
type ConsumptionRate struct {
	Product            string          `json:"product"`
	MonthlyConsumption decimal.Decimal `json:"monthly_consumption"`
	Accumulation       string          `json:"accumulation,omitempty"`
	ComponentProduct   string          `json:"component_product,omitempty"`
	UnitsPerAssembly   decimal.Decimal `json:"units_per_assembly,omitempty"`
}

// CoverageRow cobertura de un producto (o producto/lote) en meses de consumo.
type CoverageRow struct {
	Product            string           `json:"product"`
	Lot                string           `json:"lot,omitempty"`
	StockBalance       decimal.Decimal  `json:"stock_balance"`
	MonthlyConsumption decimal.Decimal  `json:"monthly_consumption"`
	CoverageMonths     decimal.Decimal  `json:"coverage_months"`
	RiskTier           RiskTier         `json:"risk_tier,omitempty"`
	PotentialUnits     *decimal.Decimal `json:"potential_units,omitempty"`
	PotentialCoverage  *decimal.Decimal `json:"potential_coverage_months,omitempty"`
}
