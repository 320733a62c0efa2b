package inventory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/portal-inventario/internal/domain/entity"
)

// Rangos de ids de las filas derivadas (id de origen + desplazamiento).
const (
	DefaultMirrorIDOffset       int64 = 1_000_000_000
	DefaultAutoTransferIDOffset int64 = 2_000_000_000
)

// SyncSettings parámetros de la sincronización entre plantas.
type SyncSettings struct {
	StartDate            time.Time
	Profiles             map[entity.Facility]entity.FacilityProfile
	MirrorIDOffset       int64
	AutoTransferIDOffset int64
	AutoTransferType     string
}

// Derived fila generada por la sincronización. Solo se construye en este paquete y
// Movement() devuelve una copia: no hay forma de mutarla desde fuera.
type Derived struct {
	row entity.Movement
}

// Kind mirror o auto-transfer-in.
func (d Derived) Kind() entity.MovementSource { return d.row.Source }

// OriginID id del movimiento de origen.
func (d Derived) OriginID() int64 { return *d.row.OriginID }

// Movement copia de la fila derivada lista para persistir.
func (d Derived) Movement() entity.Movement {
	m := d.row
	id := *d.row.OriginID
	m.OriginID = &id
	return m
}

// DerivedKey identifica una fila derivada: a lo sumo una por (tipo, origen).
type DerivedKey struct {
	Kind     entity.MovementSource
	OriginID int64
}

// SkippedOrigin movimiento de origen que no se sincronizó.
type SkippedOrigin struct {
	OriginID int64  `json:"origin_id"`
	Reason   string `json:"reason"`
}

// SyncPlan cambios necesarios en la planta destino. Un plan vacío no requiere escritura.
type SyncPlan struct {
	Origin  entity.Facility
	Target  entity.Facility
	Upserts []Derived
	Deletes []DerivedKey
	Skipped []SkippedOrigin
}

// Empty informa si el plan no modifica la planta destino.
func (p SyncPlan) Empty() bool {
	return len(p.Upserts) == 0 && len(p.Deletes) == 0
}

// Synchronizer calcula, sin efectos, el conjunto derivado deseado en la planta contraria.
type Synchronizer struct {
	settings SyncSettings
	types    *MovementTypeRegistry
}

// NewSynchronizer construye el sincronizador aplicando desplazamientos por defecto.
func NewSynchronizer(settings SyncSettings, types *MovementTypeRegistry) *Synchronizer {
	if settings.MirrorIDOffset == 0 {
		settings.MirrorIDOffset = DefaultMirrorIDOffset
	}
	if settings.AutoTransferIDOffset == 0 {
		settings.AutoTransferIDOffset = DefaultAutoTransferIDOffset
	}
	if settings.AutoTransferType == "" {
		settings.AutoTransferType = "entrada traspaso"
	}
	return &Synchronizer{settings: settings, types: types}
}

// Signature firma de contenido usada para detectar cambios reales.
func Signature(m entity.Movement) string {
	return strings.Join([]string{
		m.Date, m.MovementType, m.Product, m.Lot, m.Warehouse,
		m.SignedQuantity.String(), m.CounterpartyClient, m.Destination, m.Note,
	}, "|")
}

func (s *Synchronizer) profile(f entity.Facility) entity.FacilityProfile {
	if p, ok := s.settings.Profiles[f]; ok {
		return p
	}
	return entity.FacilityProfile{ID: f, Name: string(f), ReceivingWarehouse: strings.ToUpper(string(f))}
}

func malformed(m entity.Movement) string {
	var missing []string
	if strings.TrimSpace(m.Product) == "" {
		missing = append(missing, "product")
	}
	if strings.TrimSpace(m.Lot) == "" {
		missing = append(missing, "lot")
	}
	if strings.TrimSpace(m.Warehouse) == "" {
		missing = append(missing, "warehouse")
	}
	if len(missing) == 0 {
		return ""
	}
	return "faltan campos: " + strings.Join(missing, ", ")
}

// inWindow informa si la fecha del movimiento es igual o posterior al inicio de sincronización.
func (s *Synchronizer) inWindow(m entity.Movement) bool {
	d, ok := m.Day()
	if !ok {
		return false
	}
	return !d.Before(s.settings.StartDate)
}

// QualifiesForAutoTransfer informa si el movimiento es un traspaso que sale de origin hacia la otra planta.
func (s *Synchronizer) QualifiesForAutoTransfer(origin entity.Facility, m entity.Movement) bool {
	if !s.types.IsTransfer(m.MovementType) {
		return false
	}
	dest := s.profile(origin.Counterpart())
	if !dest.Matches(m.Destination) && !dest.Matches(m.CounterpartyClient) {
		return false
	}
	return !dest.Matches(m.Warehouse)
}

// Desired filas derivadas que debe tener la planta contraria para el movimiento m.
// Devuelve error si el movimiento está mal formado; en ese caso no se genera nada.
func (s *Synchronizer) Desired(origin entity.Facility, m entity.Movement) ([]Derived, error) {
	if m.Source.IsDerived() {
		return nil, nil
	}
	if reason := malformed(m); reason != "" {
		return nil, fmt.Errorf("movimiento %d: %s", m.ID, reason)
	}
	if !s.inWindow(m) {
		return nil, nil
	}
	originID := m.ID

	mirror := m
	mirror.ID = originID + s.settings.MirrorIDOffset
	mirror.Source = entity.SourceMirror
	mirror.OriginID = &originID
	mirror.Facility = origin
	mirror.NeedsReview = false
	out := []Derived{{row: mirror}}

	if s.QualifiesForAutoTransfer(origin, m) {
		target := origin.Counterpart()
		src := s.profile(origin)
		auto := entity.Movement{
			ID:                 originID + s.settings.AutoTransferIDOffset,
			Facility:           target,
			Date:               m.Date,
			MovementType:       s.settings.AutoTransferType,
			Product:            m.Product,
			Lot:                m.Lot,
			Warehouse:          s.profile(target).ReceivingWarehouse,
			Quantity:           m.SignedQuantity.Abs(),
			CounterpartyClient: m.Warehouse,
			DocumentRef:        m.DocumentRef,
			Note:               fmt.Sprintf("Entrada automática por traspaso desde %s (mov. #%d)", src.Name, originID),
			Source:             entity.SourceAutoTransferIn,
			OriginID:           &originID,
			CreatedAt:          m.CreatedAt,
			UpdatedAt:          m.UpdatedAt,
			UpdatedBy:          m.UpdatedBy,
		}
		auto.ApplySign(1)
		if m.Note != "" {
			auto.Note += ": " + m.Note
		}
		out = append(out, Derived{row: auto})
	}
	return out, nil
}

func indexDerived(target []entity.Movement, origin entity.Facility) map[DerivedKey][]entity.Movement {
	idx := make(map[DerivedKey][]entity.Movement)
	for _, t := range target {
		if !t.Source.IsDerived() || t.OriginID == nil {
			continue
		}
		if t.Source == entity.SourceMirror && t.Facility != "" && t.Facility != origin {
			continue
		}
		k := DerivedKey{Kind: t.Source, OriginID: *t.OriginID}
		idx[k] = append(idx[k], t)
	}
	return idx
}

// diff compara lo deseado contra lo existente para un conjunto de orígenes.
func diff(plan *SyncPlan, desired map[DerivedKey]Derived, existing map[DerivedKey][]entity.Movement, owned func(int64) bool) {
	for k, d := range desired {
		rows := existing[k]
		want := d.Movement()
		if len(rows) == 1 && rows[0].ID == want.ID && Signature(rows[0]) == Signature(want) {
			continue
		}
		plan.Upserts = append(plan.Upserts, d)
	}
	for k := range existing {
		if _, ok := desired[k]; ok {
			continue
		}
		if owned(k.OriginID) {
			plan.Deletes = append(plan.Deletes, k)
		}
	}
	sortPlan(plan)
}

// Plan reconcilia desde cero: todos los movimientos de usuario de origin contra las filas
// derivadas de target. Los orígenes mal formados se omiten y sus derivadas no se tocan.
func (s *Synchronizer) Plan(origin entity.Facility, originMovs, targetMovs []entity.Movement) SyncPlan {
	plan := SyncPlan{Origin: origin, Target: origin.Counterpart()}
	desired := make(map[DerivedKey]Derived)
	skipped := make(map[int64]bool)
	for _, m := range originMovs {
		if m.Source.IsDerived() {
			continue
		}
		ds, err := s.Desired(origin, m)
		if err != nil {
			skipped[m.ID] = true
			plan.Skipped = append(plan.Skipped, SkippedOrigin{OriginID: m.ID, Reason: err.Error()})
			continue
		}
		for _, d := range ds {
			desired[DerivedKey{Kind: d.Kind(), OriginID: d.OriginID()}] = d
		}
	}
	diff(&plan, desired, indexDerived(targetMovs, origin), func(id int64) bool { return !skipped[id] })
	return plan
}

// PlanOrigin reconcilia un único origen. origin == nil significa que el movimiento se eliminó.
func (s *Synchronizer) PlanOrigin(facility entity.Facility, originID int64, origin *entity.Movement, targetMovs []entity.Movement) SyncPlan {
	plan := SyncPlan{Origin: facility, Target: facility.Counterpart()}
	desired := make(map[DerivedKey]Derived)
	if origin != nil {
		ds, err := s.Desired(facility, *origin)
		if err != nil {
			plan.Skipped = append(plan.Skipped, SkippedOrigin{OriginID: originID, Reason: err.Error()})
			return plan
		}
		for _, d := range ds {
			desired[DerivedKey{Kind: d.Kind(), OriginID: d.OriginID()}] = d
		}
	}
	existing := make(map[DerivedKey][]entity.Movement)
	for k, rows := range indexDerived(targetMovs, facility) {
		if k.OriginID == originID {
			existing[k] = rows
		}
	}
	diff(&plan, desired, existing, func(int64) bool { return true })
	return plan
}

func sortPlan(p *SyncPlan) {
	less := func(a, b DerivedKey) bool {
		if a.OriginID != b.OriginID {
			return a.OriginID < b.OriginID
		}
		return a.Kind < b.Kind
	}
	sort.Slice(p.Upserts, func(i, j int) bool {
		return less(DerivedKey{p.Upserts[i].Kind(), p.Upserts[i].OriginID()}, DerivedKey{p.Upserts[j].Kind(), p.Upserts[j].OriginID()})
	})
	sort.Slice(p.Deletes, func(i, j int) bool { return less(p.Deletes[i], p.Deletes[j]) })
}

// ApplyPlan devuelve el documento destino con el plan aplicado. Las filas actualizadas se
// reemplazan en su posición; las nuevas se añaden al final; los duplicados se eliminan.
func ApplyPlan(target []entity.Movement, plan SyncPlan) []entity.Movement {
	upserts := make(map[DerivedKey]entity.Movement, len(plan.Upserts))
	for _, d := range plan.Upserts {
		upserts[DerivedKey{Kind: d.Kind(), OriginID: d.OriginID()}] = d.Movement()
	}
	deletes := make(map[DerivedKey]bool, len(plan.Deletes))
	for _, k := range plan.Deletes {
		deletes[k] = true
	}

	out := make([]entity.Movement, 0, len(target)+len(upserts))
	placed := make(map[DerivedKey]bool, len(upserts))
	for _, t := range target {
		if !t.Source.IsDerived() || t.OriginID == nil ||
			(t.Source == entity.SourceMirror && t.Facility != "" && t.Facility != plan.Origin) {
			out = append(out, t)
			continue
		}
		k := DerivedKey{Kind: t.Source, OriginID: *t.OriginID}
		if deletes[k] {
			continue
		}
		if m, ok := upserts[k]; ok {
			if placed[k] {
				continue
			}
			placed[k] = true
			if !t.CreatedAt.IsZero() {
				m.CreatedAt = t.CreatedAt
			}
			out = append(out, m)
			continue
		}
		out = append(out, t)
	}
	for _, d := range plan.Upserts {
		k := DerivedKey{Kind: d.Kind(), OriginID: d.OriginID()}
		if !placed[k] {
			out = append(out, upserts[k])
			placed[k] = true
		}
	}
	return out
}
