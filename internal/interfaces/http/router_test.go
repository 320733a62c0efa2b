package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/portal-inventario/internal/application/access"
	"github.com/jhoicas/portal-inventario/internal/application/dto"
	appinv "github.com/jhoicas/portal-inventario/internal/application/inventory"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
	"github.com/jhoicas/portal-inventario/internal/domain/inventory"
	"github.com/jhoicas/portal-inventario/internal/infrastructure/docstore"
	"github.com/jhoicas/portal-inventario/internal/infrastructure/identity"
	"github.com/jhoicas/portal-inventario/internal/infrastructure/notify"
	apphttp "github.com/jhoicas/portal-inventario/internal/interfaces/http"
	"github.com/jhoicas/portal-inventario/pkg/logger"
)

// newAPI arma la API completa sobre el almacén en memoria con lotes de prueba en ambas plantas.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	log := logger.Nop()
	store := docstore.NewMemoryStore()
	movements := docstore.NewMovementRepository(store)
	master := docstore.NewMasterDataRepository(store)
	dir := identity.NewStaticDirectory([]string{"adm"}, "adm")
	notifier := notify.NewLogNotifier(log)

	types, settings, err := appinv.BuildCatalog(nil, "2026-01-01")
	require.NoError(t, err)

	accessUC := access.NewEditAccessUseCase(docstore.NewEditAccessRepository(store), dir, notifier, 0, log)
	syncUC := appinv.NewSyncUseCase(movements, inventory.NewSynchronizer(settings, types), nil, log)
	stockUC := appinv.NewStockUseCase(movements, master, types, nil, log)
	deps := apphttp.RouterDeps{
		Ledger:    appinv.NewLedgerUseCase(movements, master, types, accessUC, syncUC, notifier, dir, nil, log),
		Stock:     stockUC,
		Sync:      syncUC,
		Master:    appinv.NewMasterDataUseCase(master, log),
		Coverage:  appinv.NewCoverageUseCase(stockUC, master, inventory.NewCoverageClassifier(inventory.DefaultCoverageThresholds()), notifier, dir, nil, log),
		Access:    accessUC,
		JWTSecret: testJWTSecret,
	}

	lots := []entity.LotMasterEntry{{Product: "SV", Lot: "SV-24A", Status: entity.LotStatusActive}}
	for _, f := range entity.Facilities() {
		require.NoError(t, master.SaveLots(context.Background(), f, lots))
	}

	app := fiber.New()
	apphttp.Router(app, deps)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, auth string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, into interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func movement(typ, wh string, q int, dest string) fiber.Map {
	return fiber.Map{
		"date": "2026-03-01", "movement_type": typ, "product": "SV", "lot": "SV-24A",
		"warehouse": wh, "quantity": q, "destination": dest,
	}
}

func TestRouter_TraspasoYSaldos(t *testing.T) {
	app := newAPI(t)
	auth := tokenFor(t, "u1", entity.RoleResponsable)

	resp := call(t, app, http.MethodPost, "/api/inventory/canet/movements", auth, movement("entrada", "CANET", 1000, ""))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/inventory/CANET/movements", auth, movement("traspaso", "CANET", 500, "HUARTE"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var wr dto.MovementWriteResponse
	decode(t, resp, &wr)
	assert.Equal(t, int64(2), wr.Movement.ID)
	require.NotNil(t, wr.Sync)
	assert.Equal(t, "huarte", wr.Sync.Target)
	assert.True(t, wr.Sync.Written)

	resp = call(t, app, http.MethodGet, "/api/inventory/huarte/stock?product=SV", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stock dto.StockResponse
	decode(t, resp, &stock)
	byWh := map[string]string{}
	for _, b := range stock.Balances {
		byWh[b.Warehouse] = b.Balance.String()
	}
	assert.Equal(t, "500", byWh["CANET"])
	assert.Equal(t, "500", byWh["HUARTE"])

	// más salida de la disponible
	resp = call(t, app, http.MethodPost, "/api/inventory/canet/movements", auth, movement("venta", "CANET", 800, ""))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var e dto.ErrorResponse
	decode(t, resp, &e)
	assert.Equal(t, "NEGATIVE_STOCK", e.Code)

	// las derivadas no se editan
	resp = call(t, app, http.MethodGet, "/api/inventory/huarte/movements?source=auto-transfer-in", auth, nil)
	var list dto.MovementListResponse
	decode(t, resp, &list)
	require.Equal(t, 1, list.Total)
	path := "/api/inventory/huarte/movements/" + strconv.FormatInt(list.Movements[0].ID, 10)
	resp = call(t, app, http.MethodDelete, path, auth, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	decode(t, resp, &e)
	assert.Equal(t, "DERIVED_READ_ONLY", e.Code)
}

func TestRouter_ValidacionYLote(t *testing.T) {
	app := newAPI(t)
	auth := tokenFor(t, "u1", entity.RoleResponsable)

	body := movement("entrada", "CANET", 10, "")
	delete(body, "product")
	resp := call(t, app, http.MethodPost, "/api/inventory/canet/movements", auth, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e dto.ErrorResponse
	decode(t, resp, &e)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Message, "product")

	body = movement("entrada", "CANET", 10, "")
	body["lot"] = "ZZ-99"
	resp = call(t, app, http.MethodPost, "/api/inventory/canet/movements", auth, body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	decode(t, resp, &e)
	assert.Equal(t, "LOT_MISMATCH", e.Code)

	resp = call(t, app, http.MethodGet, "/api/inventory/canet/lots/resolve?product=SV&lot=24a", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res inventory.LotResolution
	decode(t, resp, &res)
	assert.Equal(t, "SV-24A", res.Lot)
}

func TestRouter_PlantaDesconocida(t *testing.T) {
	app := newAPI(t)
	resp := call(t, app, http.MethodGet, "/api/inventory/madrid/stock", tokenFor(t, "u1", entity.RoleResponsable), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var e dto.ErrorResponse
	decode(t, resp, &e)
	assert.Equal(t, "UNKNOWN_FACILITY", e.Code)
}

func TestRouter_FlujoPermisoDeEdicion(t *testing.T) {
	app := newAPI(t)
	operario := tokenFor(t, "op1", entity.RoleOperario)
	admin := tokenFor(t, "adm", entity.RoleAdmin)

	resp := call(t, app, http.MethodPost, "/api/inventory/canet/movements", operario, movement("entrada", "CANET", 10, ""))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	var e dto.ErrorResponse
	decode(t, resp, &e)
	assert.Equal(t, "UNAUTHORIZED_EDIT", e.Code)

	resp = call(t, app, http.MethodPost, "/api/access/requests", operario, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var req entity.EditRequest
	decode(t, resp, &req)
	assert.Equal(t, entity.EditRequestPending, req.Status)

	resp = call(t, app, http.MethodPost, "/api/access/requests", operario, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// el operario no puede aprobar
	resp = call(t, app, http.MethodPost, "/api/access/requests/"+req.ID+"/approve", operario, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/access/requests", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pending dto.EditRequestListResponse
	decode(t, resp, &pending)
	require.Equal(t, 1, pending.Total)

	resp = call(t, app, http.MethodPost, "/api/access/requests/"+req.ID+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/access/me", operario, nil)
	var st dto.AccessStatusResponse
	decode(t, resp, &st)
	assert.True(t, st.CanEdit)
	assert.False(t, st.DefaultRights)
	assert.NotNil(t, st.GrantExpiresAt)

	resp = call(t, app, http.MethodPost, "/api/inventory/canet/movements", operario, movement("entrada", "CANET", 10, ""))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestRouter_SyncSoloAdmin(t *testing.T) {
	app := newAPI(t)

	resp := call(t, app, http.MethodPost, "/api/inventory/sync", tokenFor(t, "u1", entity.RoleResponsable), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/inventory/sync", tokenFor(t, "adm", entity.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reports []appinv.SyncReport
	decode(t, resp, &reports)
	assert.Len(t, reports, 2)
	for _, r := range reports {
		assert.False(t, r.Written)
	}
}

func TestRouter_ListadoPaginado(t *testing.T) {
	app := newAPI(t)
	auth := tokenFor(t, "u1", entity.RoleResponsable)
	for _, q := range []int{100, 50, 25} {
		resp := call(t, app, http.MethodPost, "/api/inventory/canet/movements", auth, movement("entrada", "CANET", q, ""))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := call(t, app, http.MethodGet, "/api/inventory/canet/movements?limit=2&offset=1", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.MovementListResponse
	decode(t, resp, &list)
	assert.Equal(t, 3, list.Total)
	assert.Equal(t, 2, list.Page.Limit)
	require.Len(t, list.Movements, 2)
	// más recientes primero: ids 3, 2, 1
	assert.Equal(t, int64(2), list.Movements[0].ID)
	assert.Equal(t, int64(1), list.Movements[1].ID)

	resp = call(t, app, http.MethodGet, "/api/inventory/canet/movements?limit=500", auth, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRouter_TiposDeMovimiento(t *testing.T) {
	app := newAPI(t)
	resp := call(t, app, http.MethodGet, "/api/inventory/movement-types", tokenFor(t, "op1", entity.RoleOperario), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var types []dto.MovementTypeResponse
	decode(t, resp, &types)
	require.Len(t, types, len(inventory.DefaultMovementTypes()))
	assert.Equal(t, "abono", types[0].Name)

	byName := make(map[string]dto.MovementTypeResponse, len(types))
	for _, mt := range types {
		byName[mt.Name] = mt
	}
	assert.Equal(t, -1, byName["traspaso"].Sign)
	assert.True(t, byName["traspaso"].Transfer)
	assert.False(t, byName["reserva"].AffectsStock)
}
