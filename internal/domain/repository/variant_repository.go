package repository

import (
	"context"

	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// VariantRepository define el puerto de persistencia para Variant (DIP).
type VariantRepository interface {
	// Upsert crea o actualiza por ExternalID y devuelve el ID local.
	Upsert(ctx context.Context, variant *entity.Variant) (string, error)
}
