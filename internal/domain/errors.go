package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrValidation           = errors.New("datos del movimiento inválidos")
	ErrLotMismatch          = errors.New("el lote no existe para el producto en la tabla maestra")
	ErrNegativeStock        = errors.New("el movimiento deja el stock en negativo")
	ErrUnauthorizedEdit     = errors.New("sin permiso de edición vigente")
	ErrDerivedReadOnly      = errors.New("los movimientos generados por sincronización no se editan")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrPendingRequestExists = errors.New("ya existe una solicitud pendiente")
	ErrRequestNotPending    = errors.New("la solicitud ya fue resuelta")
	ErrDefaultEditRights    = errors.New("el usuario ya tiene permiso de edición por rol")
	ErrUnknownFacility      = errors.New("planta desconocida")
)

// FieldError error de validación de un campo concreto.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is permite errors.Is(err, ErrValidation).
func (e *FieldError) Is(target error) bool { return target == ErrValidation }

// NegativeStockError detalla qué clave quedaría en negativo.
type NegativeStockError struct {
	Product   string
	Lot       string
	Warehouse string
	Date      string          // fecha en la que el saldo acumulado queda negativo
	Balance   decimal.Decimal // saldo sin recortar antes del movimiento
	Result    decimal.Decimal // saldo resultante
}

func (e *NegativeStockError) Error() string {
	msg := fmt.Sprintf("stock insuficiente de %s lote %s en %s: saldo %s, resultado %s",
		e.Product, e.Lot, e.Warehouse, e.Balance.String(), e.Result.String())
	if e.Date != "" {
		msg += " al " + e.Date
	}
	return msg
}

// Is permite errors.Is(err, ErrNegativeStock).
func (e *NegativeStockError) Is(target error) bool { return target == ErrNegativeStock }

// LotMismatchError indica el par producto/lote rechazado.
type LotMismatchError struct {
	Product string
	Lot     string
}

func (e *LotMismatchError) Error() string {
	return fmt.Sprintf("el lote %s no existe para el producto %s", e.Lot, e.Product)
}

// Is permite errors.Is(err, ErrLotMismatch).
func (e *LotMismatchError) Is(target error) bool { return target == ErrLotMismatch }
