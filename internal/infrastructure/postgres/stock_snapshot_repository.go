package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/portal-inventario/internal/domain/entity"
	"github.com/jhoicas/portal-inventario/internal/domain/repository"
)

var _ repository.StockSnapshotRepository = (*StockSnapshotRepo)(nil)

const stockSnapshotSchema = `
CREATE TABLE IF NOT EXISTS stock_snapshots (
	facility    TEXT          NOT NULL,
	product     TEXT          NOT NULL,
	lot         TEXT          NOT NULL,
	warehouse   TEXT          NOT NULL,
	balance     NUMERIC(18,4) NOT NULL,
	raw_balance NUMERIC(18,4) NOT NULL,
	computed_at TIMESTAMPTZ   NOT NULL,
	PRIMARY KEY (facility, product, lot, warehouse)
)`

// StockSnapshotRepo saldos materializados por planta (NUMERIC -> shopspring/decimal).
type StockSnapshotRepo struct {
	pool *pgxpool.Pool
}

// NewStockSnapshotRepository construye el adaptador.
func NewStockSnapshotRepository(pool *pgxpool.Pool) *StockSnapshotRepo {
	return &StockSnapshotRepo{pool: pool}
}

// Replace borra e inserta los saldos de la planta en una sola transacción.
func (r *StockSnapshotRepo) Replace(ctx context.Context, facility entity.Facility, balances []entity.StockBalance, at time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM stock_snapshots WHERE facility = $1`, string(facility)); err != nil {
		return fmt.Errorf("delete stock snapshot: %w", err)
	}
	batch := &pgx.Batch{}
	for _, b := range balances {
		batch.Queue(`
			INSERT INTO stock_snapshots (facility, product, lot, warehouse, balance, raw_balance, computed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			string(facility), b.Product, b.Lot, b.Warehouse, b.Balance, b.Raw, at)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert stock snapshot: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
