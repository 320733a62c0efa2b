package entity

import "github.com/shopspring/decimal"

// Estados de un lote maestro.
const (
	LotStatusActive = "active"
	LotStatusClosed = "closed"
)

// LotMasterEntry lote canónico de un producto en la tabla maestra de una planta.
type LotMasterEntry struct {
	Product       string           `json:"product"`
	Lot           string           `json:"lot"`
	Warehouse     string           `json:"warehouse,omitempty"`
	Status        string           `json:"status"`
	ReceivedUnits *decimal.Decimal `json:"received_units,omitempty"`
	ExpiryDate    string           `json:"expiry_date,omitempty"`
}
