package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/portal-inventario/internal/application/ports"
	"github.com/jhoicas/portal-inventario/internal/domain"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
	"github.com/jhoicas/portal-inventario/internal/domain/repository"
	"github.com/jhoicas/portal-inventario/pkg/logger"
)

// DefaultGrantTTL vigencia de una concesión de edición.
const DefaultGrantTTL = 6 * time.Hour

const maxSaveAttempts = 3

// Status situación de permisos de un usuario.
type Status struct {
	CanEdit       bool
	DefaultRights bool
	Grant         *entity.EditGrant
	Pending       *entity.EditRequest
}

// EditAccessUseCase flujo de solicitudes y concesiones temporales de edición.
// Estados por usuario: sin solicitud -> pending -> approved | denied.
type EditAccessUseCase struct {
	repo      repository.EditAccessRepository
	directory ports.Directory
	notifier  ports.Notifier
	ttl       time.Duration
	log       *logger.Logger
	now       func() time.Time
}

// NewEditAccessUseCase construye el caso de uso. ttl <= 0 usa DefaultGrantTTL.
func NewEditAccessUseCase(repo repository.EditAccessRepository, directory ports.Directory, notifier ports.Notifier, ttl time.Duration, log *logger.Logger) *EditAccessUseCase {
	if ttl <= 0 {
		ttl = DefaultGrantTTL
	}
	return &EditAccessUseCase{repo: repo, directory: directory, notifier: notifier, ttl: ttl, log: log, now: time.Now}
}

// SetClock reemplaza el reloj (tests).
func (uc *EditAccessUseCase) SetClock(now func() time.Time) { uc.now = now }

// CanEditNow permiso por rol o concesión vigente. Las concesiones vencidas se podan
// de forma oportunista; un fallo al podar no cambia la respuesta.
func (uc *EditAccessUseCase) CanEditNow(ctx context.Context, actor entity.Actor) (bool, error) {
	if actor.HasDefaultEditRights() {
		return true, nil
	}
	st, err := uc.repo.Load(ctx)
	if err != nil {
		return false, err
	}
	now := uc.now()
	if pruneExpired(st, now) {
		if err := uc.repo.Save(ctx, st); err != nil {
			uc.log.Debug().Err(err).Msg("no se pudieron podar concesiones vencidas")
		}
	}
	return activeGrant(st, actor.ID, now) != nil, nil
}

// Status describe permisos, concesión vigente y solicitud pendiente del actor.
func (uc *EditAccessUseCase) Status(ctx context.Context, actor entity.Actor) (*Status, error) {
	out := &Status{DefaultRights: actor.HasDefaultEditRights()}
	st, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	if g := activeGrant(st, actor.ID, now); g != nil {
		cp := *g
		out.Grant = &cp
	}
	if r := pendingRequest(st, actor.ID); r != nil {
		cp := *r
		out.Pending = &cp
	}
	out.CanEdit = out.DefaultRights || out.Grant != nil
	return out, nil
}

// Pending solicitudes pendientes, para aprobadores.
func (uc *EditAccessUseCase) Pending(ctx context.Context, actor entity.Actor) ([]entity.EditRequest, error) {
	if !actor.IsApprover() {
		return nil, domain.ErrForbidden
	}
	st, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	var out []entity.EditRequest
	for _, r := range st.Requests {
		if r.Status == entity.EditRequestPending {
			out = append(out, r)
		}
	}
	return out, nil
}

// RequestAccess crea una solicitud pendiente y avisa a los aprobadores.
func (uc *EditAccessUseCase) RequestAccess(ctx context.Context, actor entity.Actor) (*entity.EditRequest, error) {
	if actor.HasDefaultEditRights() {
		return nil, domain.ErrDefaultEditRights
	}
	var req entity.EditRequest
	err := uc.mutate(ctx, func(st *entity.EditAccessState, now time.Time) error {
		if pendingRequest(st, actor.ID) != nil {
			return domain.ErrPendingRequestExists
		}
		req = entity.EditRequest{
			ID:          uuid.New().String(),
			RequesterID: actor.ID,
			RequestedAt: now,
			Status:      entity.EditRequestPending,
		}
		st.Requests = append(st.Requests, req)
		return nil
	})
	if err != nil {
		return nil, err
	}

	name := actor.Name
	if name == "" {
		name = actor.ID
	}
	if approvers, err := uc.directory.Approvers(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo obtener la lista de aprobadores")
	} else {
		for _, id := range approvers {
			uc.notify(ctx, id, fmt.Sprintf("%s solicita permiso de edición del inventario", name), ports.NotifyEditRequested)
		}
	}
	uc.log.Info().Str("request_id", req.ID).Str("user_id", actor.ID).Msg("solicitud de edición creada")
	return &req, nil
}

// Approve aprueba una solicitud pendiente y crea (o reemplaza) la concesión del solicitante.
func (uc *EditAccessUseCase) Approve(ctx context.Context, approver entity.Actor, requestID string) (*entity.EditGrant, error) {
	if !approver.IsApprover() {
		return nil, domain.ErrForbidden
	}
	var grant entity.EditGrant
	err := uc.mutate(ctx, func(st *entity.EditAccessState, now time.Time) error {
		req, err := resolvable(st, requestID)
		if err != nil {
			return err
		}
		req.Status = entity.EditRequestApproved
		resolved := now
		req.ResolvedAt = &resolved
		req.ResolvedBy = approver.ID

		grant = entity.EditGrant{
			UserID:     req.RequesterID,
			ApprovedBy: approver.ID,
			ApprovedAt: now,
			ExpiresAt:  now.Add(uc.ttl),
		}
		grants := st.Grants[:0]
		for _, g := range st.Grants {
			if g.UserID != grant.UserID {
				grants = append(grants, g)
			}
		}
		st.Grants = append(grants, grant)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.notify(ctx, grant.UserID, fmt.Sprintf("Permiso de edición aprobado hasta %s", grant.ExpiresAt.Format("02/01/2006 15:04")), ports.NotifyEditApproved)
	uc.log.Info().Str("request_id", requestID).Str("user_id", grant.UserID).Str("approved_by", approver.ID).
		Time("expires_at", grant.ExpiresAt).Msg("permiso de edición concedido")
	return &grant, nil
}

// Deny rechaza una solicitud pendiente sin crear concesión.
func (uc *EditAccessUseCase) Deny(ctx context.Context, approver entity.Actor, requestID string) (*entity.EditRequest, error) {
	if !approver.IsApprover() {
		return nil, domain.ErrForbidden
	}
	var out entity.EditRequest
	err := uc.mutate(ctx, func(st *entity.EditAccessState, now time.Time) error {
		req, err := resolvable(st, requestID)
		if err != nil {
			return err
		}
		req.Status = entity.EditRequestDenied
		resolved := now
		req.ResolvedAt = &resolved
		req.ResolvedBy = approver.ID
		out = *req
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.notify(ctx, out.RequesterID, "Solicitud de permiso de edición denegada", ports.NotifyEditDenied)
	uc.log.Info().Str("request_id", requestID).Str("denied_by", approver.ID).Msg("solicitud de edición denegada")
	return &out, nil
}

// mutate lectura-modificación-escritura del documento de permisos con reintento ante conflicto.
func (uc *EditAccessUseCase) mutate(ctx context.Context, fn func(st *entity.EditAccessState, now time.Time) error) error {
	for attempt := 1; ; attempt++ {
		st, err := uc.repo.Load(ctx)
		if err != nil {
			return err
		}
		now := uc.now()
		pruneExpired(st, now)
		if err := fn(st, now); err != nil {
			return err
		}
		err = uc.repo.Save(ctx, st)
		if errors.Is(err, domain.ErrConflict) && attempt < maxSaveAttempts {
			continue
		}
		return err
	}
}

func (uc *EditAccessUseCase) notify(ctx context.Context, userID, msg, kind string) {
	if uc.notifier == nil || userID == "" {
		return
	}
	if err := uc.notifier.Notify(ctx, userID, msg, kind); err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID).Str("type", kind).Msg("no se pudo enviar la notificación")
	}
}

func resolvable(st *entity.EditAccessState, id string) (*entity.EditRequest, error) {
	for i := range st.Requests {
		if st.Requests[i].ID == id {
			if st.Requests[i].Status != entity.EditRequestPending {
				return nil, domain.ErrRequestNotPending
			}
			return &st.Requests[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func pendingRequest(st *entity.EditAccessState, userID string) *entity.EditRequest {
	for i := range st.Requests {
		if st.Requests[i].RequesterID == userID && st.Requests[i].Status == entity.EditRequestPending {
			return &st.Requests[i]
		}
	}
	return nil
}

func activeGrant(st *entity.EditAccessState, userID string, now time.Time) *entity.EditGrant {
	for i := range st.Grants {
		if st.Grants[i].UserID == userID && st.Grants[i].Active(now) {
			return &st.Grants[i]
		}
	}
	return nil
}

// pruneExpired elimina las concesiones vencidas; informa si hubo cambios.
func pruneExpired(st *entity.EditAccessState, now time.Time) bool {
	kept := st.Grants[:0]
	for _, g := range st.Grants {
		if g.Active(now) {
			kept = append(kept, g)
		}
	}
	changed := len(kept) != len(st.Grants)
	st.Grants = kept
	return changed
}
