package entity

import "strings"

// FacilityProfile describe una planta: nombre visible, alias con los que aparece en
// destinos/clientes y el almacén que recibe los traspasos entrantes.
type FacilityProfile struct {
	ID                 Facility
	Name               string
	Aliases            []string
	ReceivingWarehouse string
}

// Matches informa si el texto nombra a la planta (nombre, id o alias; sin distinguir mayúsculas).
func (p FacilityProfile) Matches(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if strings.EqualFold(s, string(p.ID)) || strings.EqualFold(s, p.Name) || strings.EqualFold(s, p.ReceivingWarehouse) {
		return true
	}
	for _, a := range p.Aliases {
		if strings.EqualFold(s, a) {
			return true
		}
	}
	return false
}
