package inventory

import (
	"sort"

	"github.com/jhoicas/portal-inventario/internal/domain/entity"
)

// ResolutionStatus resultado de canonizar un token de lote.
type ResolutionStatus string

const (
	ResolvedExact     ResolutionStatus = "exact"
	ResolvedSuffix    ResolutionStatus = "suffix"
	ResolvedGlobal    ResolutionStatus = "global"
	ResolvedAmbiguous ResolutionStatus = "ambiguous"
	ResolvedNotFound  ResolutionStatus = "not_found"
)

// LotResolution lote canónico (o el token original si no se resolvió) y candidatos evaluados.
type LotResolution struct {
	Lot        string           `json:"lot"`
	Status     ResolutionStatus `json:"status"`
	Candidates []string         `json:"candidates,omitempty"`
}

// Resolved informa si Lot es un código canónico de la tabla maestra.
func (r LotResolution) Resolved() bool {
	return r.Status == ResolvedExact || r.Status == ResolvedSuffix || r.Status == ResolvedGlobal
}

type lotRef struct {
	product string
	lot     string
	key     string // alnumKey(lot)
}

// LotResolver canoniza códigos de lote abreviados o heredados contra la tabla maestra de una planta.
type LotResolver struct {
	byProduct map[string][]lotRef
	all       []lotRef
}

// NewLotResolver indexa la tabla maestra de lotes de una planta.
func NewLotResolver(entries []entity.LotMasterEntry) *LotResolver {
	r := &LotResolver{byProduct: make(map[string][]lotRef)}
	seen := make(map[[2]string]bool, len(entries))
	for _, e := range entries {
		if e.Product == "" || e.Lot == "" {
			continue
		}
		id := [2]string{FoldKey(e.Product), e.Lot}
		if seen[id] {
			continue
		}
		seen[id] = true
		ref := lotRef{product: e.Product, lot: e.Lot, key: alnumKey(e.Lot)}
		r.byProduct[id[0]] = append(r.byProduct[id[0]], ref)
		r.all = append(r.all, ref)
	}
	return r
}

// Resolve devuelve el código canónico del token: coincidencia exacta, sufijo único dentro del
// producto o sufijo único global. Si no hay un candidato único el token se devuelve sin cambios.
// Resolver un código ya canónico lo devuelve igual.
func (r *LotResolver) Resolve(product, token string) LotResolution {
	scoped := r.byProduct[FoldKey(product)]
	for _, ref := range scoped {
		if ref.lot == token {
			return LotResolution{Lot: token, Status: ResolvedExact}
		}
	}
	key := alnumKey(token)
	if key == "" {
		return LotResolution{Lot: token, Status: ResolvedNotFound}
	}

	if lot, cands, ok := uniqueSuffix(scoped, key); ok {
		return LotResolution{Lot: lot, Status: ResolvedSuffix}
	} else if len(cands) > 1 {
		// Ambiguo dentro del producto: el global también lo será.
		return LotResolution{Lot: token, Status: ResolvedAmbiguous, Candidates: cands}
	}

	lot, cands, ok := uniqueSuffix(r.all, key)
	switch {
	case ok:
		return LotResolution{Lot: lot, Status: ResolvedGlobal}
	case len(cands) > 1:
		return LotResolution{Lot: token, Status: ResolvedAmbiguous, Candidates: cands}
	}
	return LotResolution{Lot: token, Status: ResolvedNotFound}
}

// uniqueSuffix busca los códigos cuyo alnumKey termina en key. Hay resolución única cuando todos
// los candidatos se normalizan al mismo código; entonces gana el de texto más largo.
func uniqueSuffix(refs []lotRef, key string) (string, []string, bool) {
	var matches []lotRef
	distinct := make(map[string]bool)
	for _, ref := range refs {
		if len(ref.key) >= len(key) && ref.key[len(ref.key)-len(key):] == key {
			matches = append(matches, ref)
			distinct[ref.key] = true
		}
	}
	if len(matches) == 0 {
		return "", nil, false
	}
	cands := make([]string, 0, len(matches))
	for _, m := range matches {
		cands = append(cands, m.lot)
	}
	sort.Strings(cands)
	cands = dedupSorted(cands)
	if len(distinct) != 1 {
		return "", cands, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if len(c) > len(best) {
			best = c
		}
	}
	return best, cands, true
}

func dedupSorted(s []string) []string {
	out := s[:0]
	for i, v := range s {
		if i == 0 || v != s[i-1] {
			out = append(out, v)
		}
	}
	return out
}
