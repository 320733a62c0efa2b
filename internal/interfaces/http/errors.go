package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/portal-inventario/internal/application/dto"
	"github.com/jhoicas/portal-inventario/internal/domain"
)

// writeError traduce errores de dominio a respuestas HTTP con código estable.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrValidation):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrLotMismatch):
		status, code = fiber.StatusUnprocessableEntity, "LOT_MISMATCH"
	case errors.Is(err, domain.ErrNegativeStock):
		status, code = fiber.StatusConflict, "NEGATIVE_STOCK"
	case errors.Is(err, domain.ErrUnauthorizedEdit):
		status, code = fiber.StatusForbidden, "UNAUTHORIZED_EDIT"
	case errors.Is(err, domain.ErrDerivedReadOnly):
		status, code = fiber.StatusForbidden, "DERIVED_READ_ONLY"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrPendingRequestExists):
		status, code = fiber.StatusConflict, "PENDING_REQUEST_EXISTS"
	case errors.Is(err, domain.ErrRequestNotPending):
		status, code = fiber.StatusConflict, "REQUEST_NOT_PENDING"
	case errors.Is(err, domain.ErrDefaultEditRights):
		status, code = fiber.StatusConflict, "DEFAULT_EDIT_RIGHTS"
	case errors.Is(err, domain.ErrUnknownFacility):
		status, code = fiber.StatusNotFound, "UNKNOWN_FACILITY"
	}
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
