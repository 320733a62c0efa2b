package inventory

import "sort"

// MovementTypeDef entrada del registro de tipos de movimiento.
type MovementTypeDef struct {
	Name         string
	Sign         int
	AffectsStock bool
	Transfer     bool
}

// MovementTypeRegistry tabla tipo -> {signo, afecta stock, traspaso}, cargada como configuración.
// Los tipos no registrados son positivos y afectan al stock.
type MovementTypeRegistry struct {
	defs map[string]MovementTypeDef
}

// NewMovementTypeRegistry construye el registro; los nombres se comparan sin tildes ni mayúsculas.
func NewMovementTypeRegistry(defs []MovementTypeDef) *MovementTypeRegistry {
	r := &MovementTypeRegistry{defs: make(map[string]MovementTypeDef, len(defs))}
	for _, d := range defs {
		if d.Sign < 0 {
			d.Sign = -1
		} else {
			d.Sign = 1
		}
		r.defs[FoldKey(d.Name)] = d
	}
	return r
}

// DefaultMovementTypes tipos usados por ambas plantas cuando no hay catálogo configurado.
func DefaultMovementTypes() []MovementTypeDef {
	return []MovementTypeDef{
		{Name: "entrada", Sign: 1, AffectsStock: true},
		{Name: "compra", Sign: 1, AffectsStock: true},
		{Name: "producción", Sign: 1, AffectsStock: true},
		{Name: "devolución", Sign: 1, AffectsStock: true},
		{Name: "abono", Sign: 1, AffectsStock: true},
		{Name: "ajuste positivo", Sign: 1, AffectsStock: true},
		{Name: "venta", Sign: -1, AffectsStock: true},
		{Name: "envío", Sign: -1, AffectsStock: true},
		{Name: "consumo", Sign: -1, AffectsStock: true},
		{Name: "muestra", Sign: -1, AffectsStock: true},
		{Name: "ajuste negativo", Sign: -1, AffectsStock: true},
		{Name: "traspaso", Sign: -1, AffectsStock: true, Transfer: true},
		{Name: "entrada traspaso", Sign: 1, AffectsStock: true},
		{Name: "reserva", Sign: 1, AffectsStock: false},
	}
}

// Lookup devuelve la definición registrada.
func (r *MovementTypeRegistry) Lookup(name string) (MovementTypeDef, bool) {
	d, ok := r.defs[FoldKey(name)]
	return d, ok
}

// Sign signo del tipo (+1 por defecto).
func (r *MovementTypeRegistry) Sign(name string) int {
	if d, ok := r.Lookup(name); ok {
		return d.Sign
	}
	return 1
}

// AffectsStock informa si el tipo suma en el saldo (true por defecto).
func (r *MovementTypeRegistry) AffectsStock(name string) bool {
	if d, ok := r.Lookup(name); ok {
		return d.AffectsStock
	}
	return true
}

// IsTransfer informa si el tipo es un traspaso entre plantas.
func (r *MovementTypeRegistry) IsTransfer(name string) bool {
	d, ok := r.Lookup(name)
	return ok && d.Transfer
}

// All devuelve las definiciones ordenadas por nombre.
func (r *MovementTypeRegistry) All() []MovementTypeDef {
	out := make([]MovementTypeDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
