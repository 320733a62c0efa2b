package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/portal-inventario/internal/application/ports"
	"github.com/jhoicas/portal-inventario/internal/domain"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
	"github.com/jhoicas/portal-inventario/internal/domain/inventory"
	"github.com/jhoicas/portal-inventario/internal/domain/repository"
	"github.com/jhoicas/portal-inventario/pkg/logger"
)

// Operaciones del libro (etiqueta de métricas y notificaciones).
const (
	OpCreate = "create"
	OpEdit   = "edit"
	OpDelete = "delete"
)

// MovementInput datos editables de un movimiento de usuario.
// Date vacío usa el día actual; Quantity es siempre positiva y el signo lo da el tipo.
type MovementInput struct {
	Date               string
	MovementType       string
	Product            string
	Lot                string
	Warehouse          string
	Quantity           decimal.Decimal
	CounterpartyClient string
	Destination        string
	DocumentRef        string
	Note               string
}

// WriteResult movimiento persistido, avisos de lote y resultado de la sincronización.
type WriteResult struct {
	Movement entity.Movement
	Warnings []entity.UnresolvedLot
	Sync     *SyncReport
}

// LedgerUseCase ruta de escritura del libro: alta, edición y baja de movimientos de usuario.
// Cada escritura reemplaza el documento completo de la planta con la versión observada.
type LedgerUseCase struct {
	movements repository.MovementRepository
	master    repository.MasterDataRepository
	types     *inventory.MovementTypeRegistry
	guard     EditGuard
	sync      *SyncUseCase
	notifier  ports.Notifier
	directory ports.Directory
	metrics   ports.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewLedgerUseCase construye el caso de uso. metrics puede ser nil.
func NewLedgerUseCase(
	movements repository.MovementRepository,
	master repository.MasterDataRepository,
	types *inventory.MovementTypeRegistry,
	guard EditGuard,
	sync *SyncUseCase,
	notifier ports.Notifier,
	directory ports.Directory,
	metrics ports.Metrics,
	log *logger.Logger,
) *LedgerUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &LedgerUseCase{
		movements: movements,
		master:    master,
		types:     types,
		guard:     guard,
		sync:      sync,
		notifier:  notifier,
		directory: directory,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *LedgerUseCase) SetClock(now func() time.Time) { uc.now = now }

// Post registra un movimiento nuevo con id max(ids de usuario)+1.
func (uc *LedgerUseCase) Post(ctx context.Context, actor entity.Actor, facility entity.Facility, in MovementInput) (*WriteResult, error) {
	res, err := uc.write(ctx, actor, facility, OpCreate, func(ledger *entity.MovementLedger, resolver *inventory.LotResolver) (*WriteResult, int64, error) {
		mov, warn, err := uc.build(facility, in, resolver)
		if err != nil {
			return nil, 0, err
		}
		now := uc.now().UTC()
		mov.ID = ledger.NextID()
		mov.Source = entity.SourceManual
		mov.CreatedAt = now
		mov.UpdatedAt = now
		mov.UpdatedBy = actor.ID

		after := append(append([]entity.Movement(nil), ledger.Movements...), mov)
		if err := uc.checkBalances(resolver, ledger.Movements, after, mov); err != nil {
			return nil, 0, err
		}
		ledger.Movements = after
		return &WriteResult{Movement: mov, Warnings: warn}, mov.ID, nil
	})
	return res, err
}

// Edit reemplaza los datos de un movimiento de usuario; queda marcado como edited.
func (uc *LedgerUseCase) Edit(ctx context.Context, actor entity.Actor, facility entity.Facility, id int64, in MovementInput) (*WriteResult, error) {
	return uc.write(ctx, actor, facility, OpEdit, func(ledger *entity.MovementLedger, resolver *inventory.LotResolver) (*WriteResult, int64, error) {
		i, err := findOwned(ledger, id)
		if err != nil {
			return nil, 0, err
		}
		orig := ledger.Movements[i]
		mov, warn, err := uc.build(facility, in, resolver)
		if err != nil {
			return nil, 0, err
		}
		mov.ID = orig.ID
		mov.Source = entity.SourceEdited
		mov.CreatedAt = orig.CreatedAt
		mov.UpdatedAt = uc.now().UTC()
		mov.UpdatedBy = actor.ID

		after := append([]entity.Movement(nil), ledger.Movements...)
		after[i] = mov
		if err := uc.checkBalances(resolver, ledger.Movements, after, orig, mov); err != nil {
			return nil, 0, err
		}
		ledger.Movements = after
		return &WriteResult{Movement: mov, Warnings: warn}, mov.ID, nil
	})
}

// Delete elimina un movimiento de usuario y retira sus filas derivadas en la otra planta.
func (uc *LedgerUseCase) Delete(ctx context.Context, actor entity.Actor, facility entity.Facility, id int64) (*WriteResult, error) {
	return uc.write(ctx, actor, facility, OpDelete, func(ledger *entity.MovementLedger, resolver *inventory.LotResolver) (*WriteResult, int64, error) {
		i, err := findOwned(ledger, id)
		if err != nil {
			return nil, 0, err
		}
		orig := ledger.Movements[i]
		after := make([]entity.Movement, 0, len(ledger.Movements)-1)
		after = append(after, ledger.Movements[:i]...)
		after = append(after, ledger.Movements[i+1:]...)
		if err := uc.checkBalances(resolver, ledger.Movements, after, orig); err != nil {
			return nil, 0, err
		}
		ledger.Movements = after
		return &WriteResult{Movement: orig}, orig.ID, nil
	})
}

type mutation func(ledger *entity.MovementLedger, resolver *inventory.LotResolver) (*WriteResult, int64, error)

// write aplica la mutación sobre la última versión del documento y reintenta ante conflicto.
// Después sincroniza el movimiento afectado y avisa al revisor.
func (uc *LedgerUseCase) write(ctx context.Context, actor entity.Actor, facility entity.Facility, op string, mutate mutation) (*WriteResult, error) {
	ok, err := uc.guard.CanEditNow(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		uc.reject(facility, op, actor, domain.ErrUnauthorizedEdit)
		return nil, domain.ErrUnauthorizedEdit
	}

	lots, err := uc.master.Lots(ctx, facility)
	if err != nil {
		return nil, err
	}
	resolver := inventory.NewLotResolver(lots)

	var res *WriteResult
	var id int64
	for attempt := 1; ; attempt++ {
		ledger, err := uc.movements.Load(ctx, facility)
		if err != nil {
			return nil, err
		}
		res, id, err = mutate(ledger, resolver)
		if err != nil {
			uc.reject(facility, op, actor, err)
			return nil, err
		}
		err = uc.movements.Save(ctx, ledger)
		if errors.Is(err, domain.ErrConflict) && attempt < maxSaveAttempts {
			uc.log.Debug().Str("facility", string(facility)).Int("attempt", attempt).Msg("conflicto de versión, reintentando escritura")
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}

	uc.metrics.MovementWritten(string(facility), op)
	uc.log.Info().Str("facility", string(facility)).Str("op", op).Int64("movement_id", id).
		Str("user_id", actor.ID).Msg("movimiento guardado")

	if uc.sync != nil {
		report, err := uc.sync.SyncOrigin(ctx, facility, id)
		if err != nil {
			// El vigilante de cambios vuelve a reconciliar en la siguiente pasada.
			uc.log.Warn().Err(err).Str("facility", string(facility)).Int64("movement_id", id).Msg("sincronización pendiente")
		} else {
			res.Sync = report
		}
	}
	uc.notifyReviewer(ctx, actor, facility, op, res.Movement)
	return res, nil
}

// build valida la entrada y construye el movimiento con lote canónico y signo del registro.
func (uc *LedgerUseCase) build(facility entity.Facility, in MovementInput, resolver *inventory.LotResolver) (entity.Movement, []entity.UnresolvedLot, error) {
	in.MovementType = strings.TrimSpace(in.MovementType)
	in.Product = strings.TrimSpace(in.Product)
	in.Lot = strings.TrimSpace(in.Lot)
	in.Warehouse = strings.TrimSpace(in.Warehouse)
	in.Date = strings.TrimSpace(in.Date)

	switch {
	case in.MovementType == "":
		return entity.Movement{}, nil, &domain.FieldError{Field: "movement_type", Reason: "obligatorio"}
	case in.Product == "":
		return entity.Movement{}, nil, &domain.FieldError{Field: "product", Reason: "obligatorio"}
	case in.Lot == "":
		return entity.Movement{}, nil, &domain.FieldError{Field: "lot", Reason: "obligatorio"}
	case in.Warehouse == "":
		return entity.Movement{}, nil, &domain.FieldError{Field: "warehouse", Reason: "obligatorio"}
	case !in.Quantity.IsPositive():
		return entity.Movement{}, nil, &domain.FieldError{Field: "quantity", Reason: "debe ser mayor que cero"}
	}
	date := in.Date
	if date == "" {
		date = uc.now().UTC().Format(entity.DateLayout)
	} else if d, ok := entity.ParseMovementDate(date); ok {
		date = d.Format(entity.DateLayout)
	} else {
		return entity.Movement{}, nil, &domain.FieldError{Field: "date", Reason: "formato de fecha inválido"}
	}

	mov := entity.Movement{
		Facility:           facility,
		Date:               date,
		MovementType:       in.MovementType,
		Product:            in.Product,
		Lot:                in.Lot,
		Warehouse:          in.Warehouse,
		Quantity:           in.Quantity,
		CounterpartyClient: strings.TrimSpace(in.CounterpartyClient),
		Destination:        strings.TrimSpace(in.Destination),
		DocumentRef:        strings.TrimSpace(in.DocumentRef),
		Note:               strings.TrimSpace(in.Note),
	}

	var warnings []entity.UnresolvedLot
	res := resolver.Resolve(in.Product, in.Lot)
	switch res.Status {
	case inventory.ResolvedExact, inventory.ResolvedSuffix:
		mov.Lot = res.Lot
	case inventory.ResolvedAmbiguous:
		// Se acepta tal cual y queda pendiente de revisión.
		mov.NeedsReview = true
		warnings = append(warnings, entity.UnresolvedLot{
			Product: in.Product, Token: in.Lot,
			Reason: fmt.Sprintf("%s: %s", res.Status, strings.Join(res.Candidates, ", ")),
		})
	default:
		return entity.Movement{}, nil, &domain.LotMismatchError{Product: in.Product, Lot: in.Lot}
	}

	mov.ApplySign(uc.types.Sign(in.MovementType))
	return mov, warnings, nil
}

// checkBalances reproduce, para cada clave afectada, el saldo sin recortar acumulado por fecha
// antes y después del cambio. Se rechaza si en algún punto queda negativo y el cambio lo empeora.
func (uc *LedgerUseCase) checkBalances(resolver *inventory.LotResolver, before, after []entity.Movement, touched ...entity.Movement) error {
	proj := inventory.NewProjector(uc.types, resolver)
	seen := make(map[entity.StockKey]bool, len(touched))
	for _, m := range touched {
		if !uc.types.AffectsStock(m.MovementType) {
			continue
		}
		lot := m.Lot
		if r := resolver.Resolve(m.Product, m.Lot); r.Resolved() {
			lot = r.Lot
		}
		key := entity.StockKey{Product: m.Product, Lot: lot, Warehouse: m.Warehouse}
		folded := entity.StockKey{Product: inventory.FoldKey(m.Product), Lot: lot, Warehouse: inventory.FoldKey(m.Warehouse)}
		if seen[folded] {
			continue
		}
		seen[folded] = true

		if pt, bad := proj.FirstWorsened(before, after, key); bad {
			return &domain.NegativeStockError{
				Product: key.Product, Lot: key.Lot, Warehouse: key.Warehouse,
				Date: pt.Date, Balance: pt.Before, Result: pt.After,
			}
		}
	}
	return nil
}

// findOwned localiza un movimiento editable por usuarios.
func findOwned(ledger *entity.MovementLedger, id int64) (int, error) {
	i := ledger.Find(id)
	if i < 0 {
		return -1, domain.ErrNotFound
	}
	if ledger.Movements[i].Source.IsDerived() {
		return -1, domain.ErrDerivedReadOnly
	}
	return i, nil
}

func (uc *LedgerUseCase) reject(facility entity.Facility, op string, actor entity.Actor, err error) {
	uc.metrics.MovementRejected(string(facility), RejectionReason(err))
	uc.log.Warn().Err(err).Str("facility", string(facility)).Str("op", op).Str("user_id", actor.ID).Msg("movimiento rechazado")
}

// RejectionReason código estable del motivo de rechazo (métricas y respuestas HTTP).
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "VALIDATION"
	case errors.Is(err, domain.ErrLotMismatch):
		return "LOT_MISMATCH"
	case errors.Is(err, domain.ErrNegativeStock):
		return "NEGATIVE_STOCK"
	case errors.Is(err, domain.ErrUnauthorizedEdit):
		return "UNAUTHORIZED_EDIT"
	case errors.Is(err, domain.ErrDerivedReadOnly):
		return "DERIVED_READ_ONLY"
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		return "CONFLICT"
	}
	return "INTERNAL"
}

func (uc *LedgerUseCase) notifyReviewer(ctx context.Context, actor entity.Actor, facility entity.Facility, op string, m entity.Movement) {
	if uc.notifier == nil || uc.directory == nil {
		return
	}
	reviewer, err := uc.directory.Reviewer(ctx)
	if err != nil || reviewer == "" || reviewer == actor.ID {
		return
	}
	kind, verb := ports.NotifyMovementCreated, "registró"
	switch op {
	case OpEdit:
		kind, verb = ports.NotifyMovementEdited, "editó"
	case OpDelete:
		kind, verb = ports.NotifyMovementDeleted, "eliminó"
	}
	name := actor.Name
	if name == "" {
		name = actor.ID
	}
	msg := fmt.Sprintf("%s %s el movimiento #%d en %s: %s %s lote %s (%s)",
		name, verb, m.ID, facility, m.MovementType, m.Product, m.Lot, m.SignedQuantity.String())
	if err := uc.notifier.Notify(ctx, reviewer, msg, kind); err != nil {
		uc.log.Warn().Err(err).Str("user_id", reviewer).Msg("no se pudo notificar al revisor")
	}
}
