package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/portal-inventario/internal/application/dto"
	appinv "github.com/jhoicas/portal-inventario/internal/application/inventory"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
	"github.com/jhoicas/portal-inventario/internal/domain/inventory"
)

// InventoryHandler maneja las peticiones HTTP del libro de movimientos de cada planta (protegido).
type InventoryHandler struct {
	ledger   *appinv.LedgerUseCase
	stock    *appinv.StockUseCase
	sync     *appinv.SyncUseCase
	master   *appinv.MasterDataUseCase
	coverage *appinv.CoverageUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	ledger *appinv.LedgerUseCase,
	stock *appinv.StockUseCase,
	sync *appinv.SyncUseCase,
	master *appinv.MasterDataUseCase,
	coverage *appinv.CoverageUseCase,
) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, stock: stock, sync: sync, master: master, coverage: coverage}
}

// parseDay acepta YYYY-MM-DD, YYYY-MM o los formatos heredados del libro. Vacío devuelve nil.
func parseDay(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	if t, err := time.Parse("2006-01", s); err == nil {
		return &t, true
	}
	t, ok := entity.ParseMovementDate(s)
	if !ok {
		return nil, false
	}
	return &t, true
}

func toInput(r dto.MovementRequest) appinv.MovementInput {
	return appinv.MovementInput{
		Date:               r.Date,
		MovementType:       r.MovementType,
		Product:            r.Product,
		Lot:                r.Lot,
		Warehouse:          r.Warehouse,
		Quantity:           r.Quantity,
		CounterpartyClient: r.CounterpartyClient,
		Destination:        r.Destination,
		DocumentRef:        r.DocumentRef,
		Note:               r.Note,
	}
}

func toWriteResponse(res *appinv.WriteResult) dto.MovementWriteResponse {
	out := dto.MovementWriteResponse{Movement: res.Movement, Warnings: res.Warnings}
	if res.Sync != nil {
		out.Sync = &dto.SyncSummary{
			Target:  string(res.Sync.Target),
			Upserts: res.Sync.Upserts,
			Deletes: res.Sync.Deletes,
			Written: res.Sync.Written,
		}
	}
	return out
}

func movementID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

// parseMovement decodifica y valida el cuerpo. Si falla devuelve la respuesta de error a enviar.
func parseMovement(c *fiber.Ctx) (dto.MovementRequest, *dto.ErrorResponse) {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return in, &dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"}
	}
	if err := validateStruct(in); err != nil {
		return in, &dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	}
	return in, nil
}

// PostMovement godoc
// @Summary      Registrar movimiento
// @Description  Valida lote y saldo, guarda el movimiento y sincroniza la planta contraria.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        facility  path  string               true  "canet | huarte"
// @Param        body      body  dto.MovementRequest  true  "Movimiento (cantidad positiva; el signo lo da el tipo)"
// @Success      201  {object}  dto.MovementWriteResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/{facility}/movements [post]
func (h *InventoryHandler) PostMovement(c *fiber.Ctx) error {
	in, bad := parseMovement(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	res, err := h.ledger.Post(c.UserContext(), GetActor(c), GetFacility(c), toInput(in))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toWriteResponse(res))
}

// EditMovement godoc
// @Summary      Editar movimiento de usuario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        facility  path  string               true  "canet | huarte"
// @Param        id        path  int                  true  "Id del movimiento"
// @Param        body      body  dto.MovementRequest  true  "Nuevos datos"
// @Success      200  {object}  dto.MovementWriteResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/{facility}/movements/{id} [put]
func (h *InventoryHandler) EditMovement(c *fiber.Ctx) error {
	id, ok := movementID(c)
	if !ok {
		return badRequest(c, "INVALID_ID", "id de movimiento inválido")
	}
	in, bad := parseMovement(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	res, err := h.ledger.Edit(c.UserContext(), GetActor(c), GetFacility(c), id, toInput(in))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toWriteResponse(res))
}

// DeleteMovement godoc
// @Summary      Eliminar movimiento de usuario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        facility  path  string  true  "canet | huarte"
// @Param        id        path  int     true  "Id del movimiento"
// @Success      200  {object}  dto.MovementWriteResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/{facility}/movements/{id} [delete]
func (h *InventoryHandler) DeleteMovement(c *fiber.Ctx) error {
	id, ok := movementID(c)
	if !ok {
		return badRequest(c, "INVALID_ID", "id de movimiento inválido")
	}
	res, err := h.ledger.Delete(c.UserContext(), GetActor(c), GetFacility(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toWriteResponse(res))
}

// ListMovements godoc
// @Summary      Listar movimientos
// @Description  Más recientes primero. source filtra manual, edited, mirror o auto-transfer-in.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        facility  path   string  true   "canet | huarte"
// @Param        source    query  string  false  "Origen de la fila"
// @Param        product   query  string  false  "Producto"
// @Param        from      query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to        query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit     query  int     false  "Tamaño de página (1-100, por defecto 20)"
// @Param        offset    query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/{facility}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	from, ok := parseDay(c.Query("from"))
	if !ok {
		return badRequest(c, "VALIDATION", "from: fecha inválida")
	}
	to, ok := parseDay(c.Query("to"))
	if !ok {
		return badRequest(c, "VALIDATION", "to: fecha inválida")
	}
	f := appinv.MovementFilter{
		Source:  entity.MovementSource(c.Query("source")),
		Product: c.Query("product"),
		From:    from,
		To:      to,
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "VALIDATION", "limit/offset inválidos")
	}
	page.DefaultPage()
	if err := validateStruct(page); err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}

	facility := GetFacility(c)
	movs, err := h.stock.Movements(c.UserContext(), facility, f)
	if err != nil {
		return writeError(c, err)
	}
	total := len(movs)
	start := min(page.Offset, total)
	end := min(start+page.Limit, total)
	return c.JSON(dto.MovementListResponse{
		Facility:  string(facility),
		Total:     total,
		Page:      dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
		Movements: append([]entity.Movement{}, movs[start:end]...),
	})
}

// GetStock godoc
// @Summary      Saldos por producto, lote y almacén
// @Description  cutoff incluye los movimientos hasta fin de ese mes. Los saldos negativos se muestran en cero.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        facility   path   string  true   "canet | huarte"
// @Param        product    query  string  false  "Producto"
// @Param        lot        query  string  false  "Lote canónico"
// @Param        warehouse  query  string  false  "Almacén"
// @Param        cutoff     query  string  false  "Mes de corte (YYYY-MM)"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/{facility}/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	cutoff, ok := parseDay(c.Query("cutoff"))
	if !ok {
		return badRequest(c, "VALIDATION", "cutoff: fecha inválida")
	}
	facility := GetFacility(c)
	proj, err := h.stock.Balances(c.UserContext(), facility, inventory.StockFilter{
		Product:   c.Query("product"),
		Lot:       c.Query("lot"),
		Warehouse: c.Query("warehouse"),
		Cutoff:    cutoff,
	})
	if err != nil {
		return writeError(c, err)
	}
	resp := dto.StockResponse{Facility: string(facility), Balances: proj.Balances, Unresolved: proj.Unresolved}
	if resp.Balances == nil {
		resp.Balances = []entity.StockBalance{}
	}
	if cutoff != nil {
		resp.Cutoff = inventory.MonthEnd(*cutoff).Format("2006-01-02")
	}
	return c.JSON(resp)
}

// ListMovementTypes godoc
// @Summary      Catálogo de tipos de movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.MovementTypeResponse
// @Router       /api/inventory/movement-types [get]
func (h *InventoryHandler) ListMovementTypes(c *fiber.Ctx) error {
	defs := h.stock.MovementTypes()
	out := make([]dto.MovementTypeResponse, 0, len(defs))
	for _, d := range defs {
		out = append(out, dto.MovementTypeResponse{Name: d.Name, Sign: d.Sign, AffectsStock: d.AffectsStock, Transfer: d.Transfer})
	}
	return c.JSON(out)
}

// ResolveLot godoc
// @Summary      Resolver código de lote
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        facility  path   string  true  "canet | huarte"
// @Param        product   query  string  true  "Producto"
// @Param        lot       query  string  true  "Token de lote (abreviado o heredado)"
// @Success      200  {object}  inventory.LotResolution
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/{facility}/lots/resolve [get]
func (h *InventoryHandler) ResolveLot(c *fiber.Ctx) error {
	product, token := strings.TrimSpace(c.Query("product")), strings.TrimSpace(c.Query("lot"))
	if product == "" || token == "" {
		return badRequest(c, "VALIDATION", "product y lot son obligatorios")
	}
	res, err := h.stock.ResolveLot(c.UserContext(), GetFacility(c), product, token)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// ListUnresolved godoc
// @Summary      Movimientos con lote sin resolver
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        facility  path  string  true  "canet | huarte"
// @Success      200  {array}  entity.UnresolvedLot
// @Router       /api/inventory/{facility}/lots/unresolved [get]
func (h *InventoryHandler) ListUnresolved(c *fiber.Ctx) error {
	rows, err := h.stock.Unresolved(c.UserContext(), GetFacility(c))
	if err != nil {
		return writeError(c, err)
	}
	if rows == nil {
		rows = []entity.UnresolvedLot{}
	}
	return c.JSON(rows)
}

// ListLots godoc
// @Summary      Tabla maestra de lotes
// @Tags         master-data
// @Security     Bearer
// @Produce      json
// @Param        facility  path  string  true  "canet | huarte"
// @Success      200  {array}  entity.LotMasterEntry
// @Router       /api/inventory/{facility}/lots [get]
func (h *InventoryHandler) ListLots(c *fiber.Ctx) error {
	lots, err := h.master.Lots(c.UserContext(), GetFacility(c))
	if err != nil {
		return writeError(c, err)
	}
	if lots == nil {
		lots = []entity.LotMasterEntry{}
	}
	return c.JSON(lots)
}

// ReplaceLots godoc
// @Summary      Reemplazar tabla maestra de lotes
// @Tags         master-data
// @Security     Bearer
// @Accept       json
// @Param        facility  path  string           true  "canet | huarte"
// @Param        body      body  dto.LotsRequest  true  "Lotes"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/{facility}/lots [put]
func (h *InventoryHandler) ReplaceLots(c *fiber.Ctx) error {
	var in dto.LotsRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := h.master.ReplaceLots(c.UserContext(), GetActor(c), GetFacility(c), in.Lots); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListConsumption godoc
// @Summary      Consumos mensuales
// @Tags         master-data
// @Security     Bearer
// @Produce      json
// @Param        facility  path  string  true  "canet | huarte"
// @Success      200  {array}  entity.ConsumptionRate
// @Router       /api/inventory/{facility}/consumption [get]
func (h *InventoryHandler) ListConsumption(c *fiber.Ctx) error {
	rates, err := h.master.ConsumptionRates(c.UserContext(), GetFacility(c))
	if err != nil {
		return writeError(c, err)
	}
	if rates == nil {
		rates = []entity.ConsumptionRate{}
	}
	return c.JSON(rates)
}

// ReplaceConsumption godoc
// @Summary      Reemplazar consumos mensuales
// @Tags         master-data
// @Security     Bearer
// @Accept       json
// @Param        facility  path  string                  true  "canet | huarte"
// @Param        body      body  dto.ConsumptionRequest  true  "Consumos"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/{facility}/consumption [put]
func (h *InventoryHandler) ReplaceConsumption(c *fiber.Ctx) error {
	var in dto.ConsumptionRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := h.master.ReplaceConsumptionRates(c.UserContext(), GetActor(c), GetFacility(c), in.Rates); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCoverage godoc
// @Summary      Cobertura y riesgo de abastecimiento
// @Tags         coverage
// @Security     Bearer
// @Produce      json
// @Param        facility  path   string  true   "canet | huarte"
// @Param        by_lot    query  bool    false  "Desglosar por lote"
// @Param        cutoff    query  string  false  "Mes de corte (YYYY-MM)"
// @Success      200  {object}  dto.CoverageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/{facility}/coverage [get]
func (h *InventoryHandler) GetCoverage(c *fiber.Ctx) error {
	cutoff, ok := parseDay(c.Query("cutoff"))
	if !ok {
		return badRequest(c, "VALIDATION", "cutoff: fecha inválida")
	}
	facility := GetFacility(c)
	rows, err := h.coverage.Classify(c.UserContext(), facility, c.QueryBool("by_lot", false), cutoff)
	if err != nil {
		return writeError(c, err)
	}
	if rows == nil {
		rows = []entity.CoverageRow{}
	}
	return c.JSON(dto.CoverageResponse{Facility: string(facility), Rows: rows})
}

// SyncAll godoc
// @Summary      Reconciliar ambas plantas
// @Description  Pasada completa de sincronización en ambos sentidos. Idempotente.
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   appinv.SyncReport
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/sync [post]
func (h *InventoryHandler) SyncAll(c *fiber.Ctx) error {
	reports, err := h.sync.SyncAll(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(reports)
}
