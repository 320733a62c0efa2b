package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/portal-inventario/internal/application/inventory"
	"github.com/jhoicas/portal-inventario/internal/domain"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
	"github.com/jhoicas/portal-inventario/internal/domain/inventory"
	"github.com/jhoicas/portal-inventario/internal/domain/repository"
	"github.com/jhoicas/portal-inventario/internal/infrastructure/docstore"
	"github.com/jhoicas/portal-inventario/internal/infrastructure/identity"
	"github.com/jhoicas/portal-inventario/pkg/logger"
)

type fixedGuard struct{ allow bool }

func (g fixedGuard) CanEditNow(context.Context, entity.Actor) (bool, error) { return g.allow, nil }

type notification struct{ user, message, kind string }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) Notify(_ context.Context, userID, message, kind string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{userID, message, kind})
	return nil
}

func (n *recordingNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.kind)
	}
	return out
}

// conflictOnce falla el primer Save con ErrConflict tras escribir por otro cliente.
type conflictOnce struct {
	repository.MovementRepository
	mu    sync.Mutex
	fired bool
}

func (c *conflictOnce) Save(ctx context.Context, l *entity.MovementLedger) error {
	c.mu.Lock()
	fire := !c.fired
	c.fired = true
	c.mu.Unlock()
	if fire {
		return domain.ErrConflict
	}
	return c.MovementRepository.Save(ctx, l)
}

var (
	writer   = entity.Actor{ID: "u1", Name: "Marta", Role: entity.RoleResponsable}
	approver = entity.Actor{ID: "adm", Name: "Admin", Role: entity.RoleAdmin}
)

type fixture struct {
	store     *docstore.MemoryStore
	movements repository.MovementRepository
	master    *docstore.MasterDataRepo
	types     *inventory.MovementTypeRegistry
	sync      *appinv.SyncUseCase
	ledger    *appinv.LedgerUseCase
	stock     *appinv.StockUseCase
	notifier  *recordingNotifier
}

func newFixture(t *testing.T, guard appinv.EditGuard) *fixture {
	t.Helper()
	store := docstore.NewMemoryStore()
	f := &fixture{
		store:     store,
		movements: docstore.NewMovementRepository(store),
		master:    docstore.NewMasterDataRepository(store),
		notifier:  &recordingNotifier{},
	}
	types, settings, err := appinv.BuildCatalog(nil, "2026-01-01")
	require.NoError(t, err)
	f.types = types

	log := logger.Nop()
	dir := identity.NewStaticDirectory([]string{"adm"}, "rev")
	f.sync = appinv.NewSyncUseCase(f.movements, inventory.NewSynchronizer(settings, types), nil, log)
	f.ledger = appinv.NewLedgerUseCase(f.movements, f.master, types, guard, f.sync, f.notifier, dir, nil, log)
	f.ledger.SetClock(func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) })
	f.stock = appinv.NewStockUseCase(f.movements, f.master, types, nil, log)

	ctx := context.Background()
	lots := []entity.LotMasterEntry{
		{Product: "SV", Lot: "SV-24A", Status: entity.LotStatusActive},
		{Product: "P", Lot: "A-001", Status: entity.LotStatusActive},
		{Product: "P", Lot: "B-001", Status: entity.LotStatusActive},
		{Product: "P", Lot: "L1", Status: entity.LotStatusActive},
	}
	require.NoError(t, f.master.SaveLots(ctx, entity.FacilityCanet, lots))
	require.NoError(t, f.master.SaveLots(ctx, entity.FacilityHuarte, lots))
	return f
}

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func input(typ, product, lot, wh string, q int64) appinv.MovementInput {
	return appinv.MovementInput{Date: "2026-03-01", MovementType: typ, Product: product, Lot: lot, Warehouse: wh, Quantity: qty(q)}
}

func (f *fixture) load(t *testing.T, facility entity.Facility) []entity.Movement {
	t.Helper()
	l, err := f.movements.Load(context.Background(), facility)
	require.NoError(t, err)
	return l.Movements
}

func bySource(movs []entity.Movement, src entity.MovementSource) []entity.Movement {
	var out []entity.Movement
	for _, m := range movs {
		if m.Source == src {
			out = append(out, m)
		}
	}
	return out
}
