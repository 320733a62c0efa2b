package entity

import "github.com/shopspring/decimal"

// StockKey clave de agregación del saldo.
type StockKey struct {
	Product   string
	Lot       string
	Warehouse string
}

// StockBalance saldo derivado de los movimientos (no se persiste).
// Balance es el valor informado (nunca negativo); Raw conserva la suma sin recortar.
type StockBalance struct {
	Product   string          `json:"product"`
	Lot       string          `json:"lot"`
	Warehouse string          `json:"warehouse"`
	Balance   decimal.Decimal `json:"balance"`
	Raw       decimal.Decimal `json:"-"`
}

// Key devuelve la clave del saldo.
func (b StockBalance) Key() StockKey {
	return StockKey{Product: b.Product, Lot: b.Lot, Warehouse: b.Warehouse}
}

// UnresolvedLot token de lote que no pudo canonizarse; queda para revisión del operador.
type UnresolvedLot struct {
	MovementID int64  `json:"movement_id"`
	Product    string `json:"product"`
	Token      string `json:"token"`
	Reason     string `json:"reason"`
}
