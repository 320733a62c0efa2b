package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/portal-inventario/internal/domain"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
	"github.com/jhoicas/portal-inventario/internal/domain/repository"
	"github.com/jhoicas/portal-inventario/pkg/logger"
)

// MasterDataUseCase lectura y reemplazo de las tablas maestras de lotes y consumos.
type MasterDataUseCase struct {
	master repository.MasterDataRepository
	log    *logger.Logger
}

// NewMasterDataUseCase construye el caso de uso.
func NewMasterDataUseCase(master repository.MasterDataRepository, log *logger.Logger) *MasterDataUseCase {
	return &MasterDataUseCase{master: master, log: log}
}

// Lots devuelve la tabla maestra de lotes.
func (uc *MasterDataUseCase) Lots(ctx context.Context, facility entity.Facility) ([]entity.LotMasterEntry, error) {
	return uc.master.Lots(ctx, facility)
}

// ConsumptionRates devuelve los consumos mensuales.
func (uc *MasterDataUseCase) ConsumptionRates(ctx context.Context, facility entity.Facility) ([]entity.ConsumptionRate, error) {
	return uc.master.ConsumptionRates(ctx, facility)
}

// ReplaceLots reemplaza la tabla de lotes. Solo aprobadores.
func (uc *MasterDataUseCase) ReplaceLots(ctx context.Context, actor entity.Actor, facility entity.Facility, lots []entity.LotMasterEntry) error {
	if !actor.IsApprover() {
		return domain.ErrForbidden
	}
	for i, l := range lots {
		if strings.TrimSpace(l.Product) == "" || strings.TrimSpace(l.Lot) == "" {
			return &domain.FieldError{Field: fmt.Sprintf("lots[%d]", i), Reason: "producto y lote obligatorios"}
		}
		if l.Status == "" {
			lots[i].Status = entity.LotStatusActive
		} else if l.Status != entity.LotStatusActive && l.Status != entity.LotStatusClosed {
			return &domain.FieldError{Field: fmt.Sprintf("lots[%d].status", i), Reason: "debe ser active o closed"}
		}
	}
	if err := uc.master.SaveLots(ctx, facility, lots); err != nil {
		return err
	}
	uc.log.Info().Str("facility", string(facility)).Int("lots", len(lots)).Str("user_id", actor.ID).Msg("tabla de lotes reemplazada")
	return nil
}

// ReplaceConsumptionRates reemplaza los consumos mensuales. Solo aprobadores.
func (uc *MasterDataUseCase) ReplaceConsumptionRates(ctx context.Context, actor entity.Actor, facility entity.Facility, rates []entity.ConsumptionRate) error {
	if !actor.IsApprover() {
		return domain.ErrForbidden
	}
	for i, r := range rates {
		if strings.TrimSpace(r.Product) == "" {
			return &domain.FieldError{Field: fmt.Sprintf("rates[%d].product", i), Reason: "obligatorio"}
		}
		if r.MonthlyConsumption.IsNegative() {
			return &domain.FieldError{Field: fmt.Sprintf("rates[%d].monthly_consumption", i), Reason: "no puede ser negativo"}
		}
		if strings.EqualFold(r.Accumulation, entity.AccumulationAssembled) &&
			(r.ComponentProduct == "" || !r.UnitsPerAssembly.IsPositive()) {
			return &domain.FieldError{Field: fmt.Sprintf("rates[%d]", i), Reason: "un producto ensamblado necesita componente y unidades por ensamblaje"}
		}
	}
	if err := uc.master.SaveConsumptionRates(ctx, facility, rates); err != nil {
		return err
	}
	uc.log.Info().Str("facility", string(facility)).Int("rates", len(rates)).Str("user_id", actor.ID).Msg("consumos mensuales reemplazados")
	return nil
}
