package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/portal-inventario/internal/application/access"
	"github.com/jhoicas/portal-inventario/internal/application/inventory"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *inventory.LedgerUseCase
	Stock     *inventory.StockUseCase
	Sync      *inventory.SyncUseCase
	Master    *inventory.MasterDataUseCase
	Coverage  *inventory.CoverageUseCase
	Access    *access.EditAccessUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token del portal.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Permisos de edición
	accessHandler := NewAccessHandler(deps.Access)
	acc := api.Group("/access")
	acc.Get("/me", accessHandler.Me)
	acc.Post("/requests", accessHandler.RequestAccess)
	acc.Get("/requests", RequireRole(entity.RoleAdmin), accessHandler.ListPending)
	acc.Post("/requests/:id/approve", RequireRole(entity.RoleAdmin), accessHandler.Approve)
	acc.Post("/requests/:id/deny", RequireRole(entity.RoleAdmin), accessHandler.Deny)

	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Stock, deps.Sync, deps.Master, deps.Coverage)
	inv := api.Group("/inventory")
	// Antes del grupo por planta: "sync" y "movement-types" no son plantas.
	inv.Post("/sync", RequireRole(entity.RoleAdmin), inventoryHandler.SyncAll)
	inv.Get("/movement-types", inventoryHandler.ListMovementTypes)

	fac := inv.Group("/:facility", RequireFacility())
	fac.Get("/movements", inventoryHandler.ListMovements)
	fac.Post("/movements", inventoryHandler.PostMovement)
	fac.Put("/movements/:id", inventoryHandler.EditMovement)
	fac.Delete("/movements/:id", inventoryHandler.DeleteMovement)
	fac.Get("/stock", inventoryHandler.GetStock)
	fac.Get("/lots/resolve", inventoryHandler.ResolveLot)
	fac.Get("/lots/unresolved", inventoryHandler.ListUnresolved)
	fac.Get("/lots", inventoryHandler.ListLots)
	fac.Put("/lots", inventoryHandler.ReplaceLots)
	fac.Get("/consumption", inventoryHandler.ListConsumption)
	fac.Put("/consumption", inventoryHandler.ReplaceConsumption)
	fac.Get("/coverage", inventoryHandler.GetCoverage)
}
