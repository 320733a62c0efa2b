package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/portal-inventario/internal/application/dto"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
)

// LocalFacility key de la planta resuelta desde la ruta.
const LocalFacility = "facility"

// RequireFacility valida el parámetro :facility (canet | huarte, sin distinguir mayúsculas)
// y lo deja normalizado en c.Locals.
//   - 404 Not Found → planta desconocida.
func RequireFacility() fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, ok := entity.ParseFacility(c.Params("facility"))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Code:    "UNKNOWN_FACILITY",
				Message: "la planta '" + c.Params("facility") + "' no existe",
			})
		}
		c.Locals(LocalFacility, f)
		return c.Next()
	}
}

// GetFacility devuelve la planta validada por RequireFacility.
func GetFacility(c *fiber.Ctx) entity.Facility {
	f, _ := c.Locals(LocalFacility).(entity.Facility)
	return f
}
