package inventory

import (
	"fmt"

	"github.com/jhoicas/portal-inventario/internal/domain"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
	"github.com/jhoicas/portal-inventario/internal/domain/inventory"
	"github.com/jhoicas/portal-inventario/pkg/config"
)

// DefaultFacilityProfiles plantas usadas cuando el catálogo no declara ninguna.
func DefaultFacilityProfiles() map[entity.Facility]entity.FacilityProfile {
	return map[entity.Facility]entity.FacilityProfile{
		entity.FacilityCanet: {
			ID: entity.FacilityCanet, Name: "Canet",
			Aliases: []string{"Planta Canet"}, ReceivingWarehouse: "CANET",
		},
		entity.FacilityHuarte: {
			ID: entity.FacilityHuarte, Name: "Huarte",
			Aliases: []string{"Planta Huarte"}, ReceivingWarehouse: "HUARTE",
		},
	}
}

// BuildCatalog convierte el catálogo de configuración en el registro de tipos y los
// parámetros de sincronización. syncStart vacío sincroniza todos los movimientos fechados.
func BuildCatalog(cat *config.Catalog, syncStart string) (*inventory.MovementTypeRegistry, inventory.SyncSettings, error) {
	defs := inventory.DefaultMovementTypes()
	if cat != nil && len(cat.MovementTypes) > 0 {
		defs = make([]inventory.MovementTypeDef, 0, len(cat.MovementTypes))
		for _, t := range cat.MovementTypes {
			affects := true
			if t.AffectsStock != nil {
				affects = *t.AffectsStock
			}
			defs = append(defs, inventory.MovementTypeDef{Name: t.Name, Sign: t.Sign, AffectsStock: affects, Transfer: t.Transfer})
		}
	}
	types := inventory.NewMovementTypeRegistry(defs)

	settings := inventory.SyncSettings{Profiles: DefaultFacilityProfiles()}
	if cat != nil {
		settings.AutoTransferType = cat.AutoTransferType
		for _, f := range cat.Facilities {
			id, ok := entity.ParseFacility(f.ID)
			if !ok {
				return nil, inventory.SyncSettings{}, fmt.Errorf("catálogo: %w: %q", domain.ErrUnknownFacility, f.ID)
			}
			p := entity.FacilityProfile{ID: id, Name: f.Name, Aliases: f.Aliases, ReceivingWarehouse: f.ReceivingWarehouse}
			if p.Name == "" {
				p.Name = string(id)
			}
			if p.ReceivingWarehouse == "" {
				p.ReceivingWarehouse = settings.Profiles[id].ReceivingWarehouse
			}
			settings.Profiles[id] = p
		}
	}
	if syncStart != "" {
		d, ok := entity.ParseMovementDate(syncStart)
		if !ok {
			return nil, inventory.SyncSettings{}, fmt.Errorf("fecha de inicio de sincronización inválida: %q", syncStart)
		}
		settings.StartDate = d
	}
	return types, settings, nil
}
