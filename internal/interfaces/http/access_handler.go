package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/portal-inventario/internal/application/access"
	"github.com/jhoicas/portal-inventario/internal/application/dto"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
)

// AccessHandler maneja las solicitudes de permiso temporal de edición (protegido).
type AccessHandler struct {
	uc *access.EditAccessUseCase
}

// NewAccessHandler construye el handler.
func NewAccessHandler(uc *access.EditAccessUseCase) *AccessHandler {
	return &AccessHandler{uc: uc}
}

// Me godoc
// @Summary      Estado de mis permisos de edición
// @Tags         access
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AccessStatusResponse
// @Router       /api/access/me [get]
func (h *AccessHandler) Me(c *fiber.Ctx) error {
	actor := GetActor(c)
	st, err := h.uc.Status(c.UserContext(), actor)
	if err != nil {
		return writeError(c, err)
	}
	resp := dto.AccessStatusResponse{
		UserID:        actor.ID,
		CanEdit:       st.CanEdit,
		DefaultRights: st.DefaultRights,
		Pending:       st.Pending,
	}
	if st.Grant != nil {
		exp := st.Grant.ExpiresAt
		resp.GrantExpiresAt = &exp
	}
	return c.JSON(resp)
}

// RequestAccess godoc
// @Summary      Solicitar permiso de edición
// @Description  Crea una solicitud pendiente y avisa a los aprobadores.
// @Tags         access
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  entity.EditRequest
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/access/requests [post]
func (h *AccessHandler) RequestAccess(c *fiber.Ctx) error {
	req, err := h.uc.RequestAccess(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

// ListPending godoc
// @Summary      Solicitudes pendientes
// @Tags         access
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.EditRequestListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/access/requests [get]
func (h *AccessHandler) ListPending(c *fiber.Ctx) error {
	reqs, err := h.uc.Pending(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	if reqs == nil {
		reqs = []entity.EditRequest{}
	}
	return c.JSON(dto.EditRequestListResponse{Total: len(reqs), Requests: reqs})
}

// Approve godoc
// @Summary      Aprobar solicitud
// @Tags         access
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Id de la solicitud"
// @Success      200  {object}  entity.EditGrant
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/access/requests/{id}/approve [post]
func (h *AccessHandler) Approve(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return badRequest(c, "INVALID_ID", "id de solicitud requerido")
	}
	grant, err := h.uc.Approve(c.UserContext(), GetActor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(grant)
}

// Deny godoc
// @Summary      Denegar solicitud
// @Tags         access
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Id de la solicitud"
// @Success      200  {object}  entity.EditRequest
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/access/requests/{id}/deny [post]
func (h *AccessHandler) Deny(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return badRequest(c, "INVALID_ID", "id de solicitud requerido")
	}
	req, err := h.uc.Deny(c.UserContext(), GetActor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(req)
}
