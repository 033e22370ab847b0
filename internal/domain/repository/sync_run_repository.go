package repository

import (
	"context"

	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// SyncRunRepository define el puerto para el historial de corridas de sincronización (DIP).
type SyncRunRepository interface {
	Create(ctx context.Context, run *entity.SyncRun) error
	// SaveCursor guarda el cursor de productos después de confirmar una página.
	SaveCursor(ctx context.Context, runID, cursor string) error
	Finish(ctx context.Context, run *entity.SyncRun) error
	// LastResumable devuelve la última corrida sin terminar con éxito que dejó cursor, o nil.
	LastResumable(ctx context.Context, shopID string) (*entity.SyncRun, error)
	ListByShop(ctx context.Context, shopID string, limit int) ([]*entity.SyncRun, error)
}
