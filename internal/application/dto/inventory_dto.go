package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/portal-inventario/internal/domain/entity"
)

// MovementRequest alta o edición de un movimiento de usuario. El signo lo decide el tipo.
type MovementRequest struct {
	Date               string          `json:"date" validate:"omitempty,max=32"`
	MovementType       string          `json:"movement_type" validate:"required,max=64"`
	Product            string          `json:"product" validate:"required,max=128"`
	Lot                string          `json:"lot" validate:"required,max=64"`
	Warehouse          string          `json:"warehouse" validate:"required,max=64"`
	Quantity           decimal.Decimal `json:"quantity"`
	CounterpartyClient string          `json:"counterparty_client" validate:"max=128"`
	Destination        string          `json:"destination" validate:"max=128"`
	DocumentRef        string          `json:"document_ref" validate:"max=128"`
	Note               string          `json:"note" validate:"max=512"`
}

// SyncSummary resultado de la sincronización tras una escritura.
type SyncSummary struct {
	Target  string `json:"target"`
	Upserts int    `json:"upserts"`
	Deletes int    `json:"deletes"`
	Written bool   `json:"written"`
}

// MovementWriteResponse movimiento guardado, avisos de lote pendientes de revisión y sincronización.
type MovementWriteResponse struct {
	Movement entity.Movement        `json:"movement"`
	Warnings []entity.UnresolvedLot `json:"warnings,omitempty"`
	Sync     *SyncSummary           `json:"sync,omitempty"`
}

// MovementListResponse página del listado de movimientos de una planta.
type MovementListResponse struct {
	Facility  string            `json:"facility"`
	Total     int               `json:"total"`
	Page      PageResponse      `json:"page"`
	Movements []entity.Movement `json:"movements"`
}

// StockResponse saldos proyectados y tokens de lote sin resolver.
type StockResponse struct {
	Facility   string                 `json:"facility"`
	Cutoff     string                 `json:"cutoff,omitempty"`
	Balances   []entity.StockBalance  `json:"balances"`
	Unresolved []entity.UnresolvedLot `json:"unresolved,omitempty"`
}

// CoverageResponse filas de cobertura ordenadas por gravedad.
type CoverageResponse struct {
	Facility string               `json:"facility"`
	Rows     []entity.CoverageRow `json:"rows"`
}

// LotsRequest reemplazo de la tabla maestra de lotes.
type LotsRequest struct {
	Lots []entity.LotMasterEntry `json:"lots"`
}

// ConsumptionRequest reemplazo de los consumos mensuales.
type ConsumptionRequest struct {
	Rates []entity.ConsumptionRate `json:"rates"`
}

// MovementTypeResponse tipo de movimiento del catálogo configurado.
type MovementTypeResponse struct {
	Name         string `json:"name"`
	Sign         int    `json:"sign"`
	AffectsStock bool   `json:"affects_stock"`
	Transfer     bool   `json:"transfer"`
}
