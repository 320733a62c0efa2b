package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
)

// StockFilter filtros de proyección; los vacíos no filtran.
type StockFilter struct {
	Product   string
	Lot       string
	Warehouse string
	Cutoff    *time.Time // se incluyen movimientos hasta fin del mes de Cutoff
}

// Projection saldos resultantes y tokens de lote que no pudieron canonizarse.
type Projection struct {
	Balances   []entity.StockBalance
	Unresolved []entity.UnresolvedLot
}

// Projector pliega movimientos en saldos por (producto, lote, almacén).
type Projector struct {
	types *MovementTypeRegistry
	lots  *LotResolver
}

// NewProjector construye el proyector. lots puede ser nil (sin canonización en lectura).
func NewProjector(types *MovementTypeRegistry, lots *LotResolver) *Projector {
	return &Projector{types: types, lots: lots}
}

// MonthEnd devuelve el último día del mes de t (00:00 UTC).
func MonthEnd(t time.Time) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1)
}

// replayLess orden de reproducción: fecha ascendente (filas sin fecha primero), id y origen.
func replayLess(a, b entity.Movement) bool {
	da, oka := a.Day()
	db, okb := b.Day()
	if oka != okb {
		return !oka
	}
	if oka && !da.Equal(db) {
		return da.Before(db)
	}
	if a.ID != b.ID {
		return a.ID < b.ID
	}
	return a.Source < b.Source
}

// samePosition informa si dos filas ocupan el mismo punto de la reproducción (fecha e id).
func samePosition(a, b entity.Movement) bool {
	da, oka := a.Day()
	db, okb := b.Day()
	return oka == okb && (!oka || da.Equal(db)) && a.ID == b.ID
}

// SortForReplay ordena por fecha ascendente (filas sin fecha primero) y luego por id.
func SortForReplay(movs []entity.Movement) {
	sort.SliceStable(movs, func(i, j int) bool { return replayLess(movs[i], movs[j]) })
}

// canonicalLot resuelve el lote en lectura; devuelve además si quedó sin resolver.
func (p *Projector) canonicalLot(m entity.Movement) (string, *entity.UnresolvedLot) {
	if p.lots == nil {
		return m.Lot, nil
	}
	res := p.lots.Resolve(m.Product, m.Lot)
	if res.Resolved() {
		return res.Lot, nil
	}
	return m.Lot, &entity.UnresolvedLot{MovementID: m.ID, Product: m.Product, Token: m.Lot, Reason: string(res.Status)}
}

// Project filtra los movimientos que afectan al stock, aplica filtros y corte, ordena de forma
// determinista y acumula SignedQuantity por clave. Balance se recorta a cero; Raw no.
func (p *Projector) Project(movs []entity.Movement, f StockFilter) Projection {
	var cutoff time.Time
	if f.Cutoff != nil {
		cutoff = MonthEnd(*f.Cutoff)
	}

	rows := make([]entity.Movement, 0, len(movs))
	var out Projection
	for _, m := range movs {
		if !p.types.AffectsStock(m.MovementType) {
			continue
		}
		if f.Product != "" && !SameText(m.Product, f.Product) {
			continue
		}
		if f.Warehouse != "" && !SameText(m.Warehouse, f.Warehouse) {
			continue
		}
		if f.Cutoff != nil {
			if d, ok := m.Day(); ok && d.After(cutoff) {
				continue
			}
		}
		lot, unresolved := p.canonicalLot(m)
		if f.Lot != "" && lot != f.Lot && m.Lot != f.Lot {
			continue
		}
		if unresolved != nil {
			out.Unresolved = append(out.Unresolved, *unresolved)
		}
		m.Lot = lot
		rows = append(rows, m)
	}

	SortForReplay(rows)

	// Producto y almacén se agrupan plegados; se muestra el primer texto visto.
	sums := make(map[entity.StockKey]decimal.Decimal)
	shown := make(map[entity.StockKey]entity.StockKey)
	order := make([]entity.StockKey, 0)
	for _, m := range rows {
		k := entity.StockKey{Product: FoldKey(m.Product), Lot: m.Lot, Warehouse: FoldKey(m.Warehouse)}
		cur, ok := sums[k]
		if !ok {
			order = append(order, k)
			shown[k] = entity.StockKey{Product: m.Product, Lot: m.Lot, Warehouse: m.Warehouse}
		}
		sums[k] = cur.Add(m.SignedQuantity)
	}

	out.Balances = make([]entity.StockBalance, 0, len(order))
	for _, k := range order {
		raw := sums[k]
		bal := raw
		if bal.IsNegative() {
			bal = decimal.Zero
		}
		d := shown[k]
		out.Balances = append(out.Balances, entity.StockBalance{
			Product: d.Product, Lot: d.Lot, Warehouse: d.Warehouse, Balance: bal, Raw: raw,
		})
	}
	sort.Slice(out.Balances, func(i, j int) bool {
		a, b := out.Balances[i], out.Balances[j]
		if a.Product != b.Product {
			return a.Product < b.Product
		}
		if a.Lot != b.Lot {
			return a.Lot < b.Lot
		}
		return a.Warehouse < b.Warehouse
	})
	sort.Slice(out.Unresolved, func(i, j int) bool { return out.Unresolved[i].MovementID < out.Unresolved[j].MovementID })
	return out
}

// matchesKey informa si el movimiento suma en la clave; producto y almacén se comparan
// plegados y el lote ya canonizado.
func (p *Projector) matchesKey(m entity.Movement, key entity.StockKey) bool {
	if !p.types.AffectsStock(m.MovementType) {
		return false
	}
	if !SameText(m.Product, key.Product) || !SameText(m.Warehouse, key.Warehouse) {
		return false
	}
	lot, _ := p.canonicalLot(m)
	return lot == key.Lot
}

// BalancePoint saldo sin recortar de una clave en un punto de la reproducción, antes y después
// de un cambio.
type BalancePoint struct {
	Date   string
	Before decimal.Decimal
	After  decimal.Decimal
}

// FirstWorsened reproduce before y after sobre la misma clave en orden de fecha y devuelve el
// primer punto en que after queda negativo y por debajo de before. El último punto es el saldo
// final, así que también cubre la suma total.
func (p *Projector) FirstWorsened(before, after []entity.Movement, key entity.StockKey) (BalancePoint, bool) {
	type step struct {
		m     entity.Movement
		after bool
	}
	var steps []step
	for _, m := range before {
		if p.matchesKey(m, key) {
			steps = append(steps, step{m: m})
		}
	}
	for _, m := range after {
		if p.matchesKey(m, key) {
			steps = append(steps, step{m: m, after: true})
		}
	}
	sort.SliceStable(steps, func(i, j int) bool { return replayLess(steps[i].m, steps[j].m) })

	prev, next := decimal.Zero, decimal.Zero
	for i, st := range steps {
		if st.after {
			next = next.Add(st.m.SignedQuantity)
		} else {
			prev = prev.Add(st.m.SignedQuantity)
		}
		// Se evalúa al cerrar cada posición: la copia previa y la nueva de una misma fila van juntas.
		if i+1 < len(steps) && samePosition(st.m, steps[i+1].m) {
			continue
		}
		if next.IsNegative() && next.LessThan(prev) {
			return BalancePoint{Date: st.m.Date, Before: prev, After: next}, true
		}
	}
	return BalancePoint{Before: prev, After: next}, false
}
