package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
)

var _ repository.SyncRunRepository = (*SyncRunRepo)(nil)

// SyncRunRepo implementación de SyncRunRepository sobre PostgreSQL.
type SyncRunRepo struct {
	q Querier
}

// NewSyncRunRepository construye el adaptador del historial de sincronización.
func NewSyncRunRepository(q Querier) *SyncRunRepo {
	return &SyncRunRepo{q: q}
}

const syncRunColumns = `id, shop_id, status, product_cursor, resumed_from, locations_mapped, products_synced, variants_synced,
	inventory_rows, skipped_rows, failed_rows, products_updated, message, started_at, finished_at`

func scanSyncRun(row pgx.Row) (*entity.SyncRun, error) {
	var s entity.SyncRun
	err := row.Scan(
		&s.ID, &s.ShopID, &s.Status, &s.ProductCursor, &s.ResumedFrom, &s.LocationsMapped, &s.ProductsSynced, &s.VariantsSynced,
		&s.InventoryRows, &s.SkippedRows, &s.FailedRows, &s.ProductsUpdated, &s.Message, &s.StartedAt, &s.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste una corrida nueva (normalmente en estado running).
func (r *SyncRunRepo) Create(ctx context.Context, run *entity.SyncRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sync_runs (id, shop_id, status, product_cursor, resumed_from, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, run.ID, run.ShopID, run.Status, run.ProductCursor, run.ResumedFrom, run.StartedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sync run: %w", err)
	}
	return nil
}

// SaveCursor guarda el cursor de la última página de productos confirmada.
func (r *SyncRunRepo) SaveCursor(ctx context.Context, runID, cursor string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE sync_runs SET product_cursor = $2 WHERE id = $1`, runID, cursor)
	if err != nil {
		return fmt.Errorf("save sync cursor: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Finish guarda estado, contadores y fecha de fin.
func (r *SyncRunRepo) Finish(ctx context.Context, run *entity.SyncRun) error {
	query := `
		UPDATE sync_runs
		SET status = $2, product_cursor = $3, locations_mapped = $4, products_synced = $5,
		    variants_synced = $6, inventory_rows = $7, skipped_rows = $8, failed_rows = $9,
		    products_updated = $10, message = $11, finished_at = $12
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		run.ID, run.Status, run.ProductCursor, run.LocationsMapped, run.ProductsSynced,
		run.VariantsSynced, run.InventoryRows, run.SkippedRows, run.FailedRows,
		run.ProductsUpdated, run.Message, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("finish sync run: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// LastResumable devuelve la corrida más reciente si no terminó con éxito y dejó cursor.
func (r *SyncRunRepo) LastResumable(ctx context.Context, shopID string) (*entity.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + `
		FROM sync_runs WHERE shop_id = $1
		ORDER BY started_at DESC LIMIT 1`
	run, err := scanSyncRun(r.q.QueryRow(ctx, query, shopID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last sync run: %w", err)
	}
	if run.Status == entity.SyncRunStatusSuccess || run.ProductCursor == "" {
		return nil, nil
	}
	return run, nil
}

// ListByShop lista las últimas corridas de una tienda.
func (r *SyncRunRepo) ListByShop(ctx context.Context, shopID string, limit int) ([]*entity.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + `
		FROM sync_runs WHERE shop_id = $1
		ORDER BY started_at DESC LIMIT $2`
	rows, err := r.q.Query(ctx, query, shopID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	defer rows.Close()
	var list []*entity.SyncRun
	for rows.Next() {
		s, err := scanSyncRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
