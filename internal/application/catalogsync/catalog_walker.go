package catalogsync

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-sync/internal/domain/catalog"
	"github.com/rs/zerolog"
)

// CatalogWalker recorre los tres niveles del catálogo: páginas de productos, variantes restantes
// de cada producto e inventario restante de cada ítem. Todo es secuencial y en orden.
type CatalogWalker struct {
	source CatalogSource
	log    zerolog.Logger
}

// NewCatalogWalker construye el walker sobre la fuente de una tienda.
func NewCatalogWalker(source CatalogSource, log zerolog.Logger) *CatalogWalker {
	return &CatalogWalker{source: source, log: log}
}

// Walk pide las páginas de productos a partir de startCursor, completa cada una y la entrega a fn.
// Cuando fn termina sin error, el cursor avanza. Devuelve el cursor de la última página confirmada.
// Un error en una página anidada aborta antes de entregar la página: nunca se aplica una página parcial.
func (w *CatalogWalker) Walk(ctx context.Context, startCursor string, fn func(ctx context.Context, page catalog.Page[catalog.Product]) error) (string, error) {
	pager := NewPager("products", w.source.FetchProducts, startCursor, w.log)
	err := pager.Each(ctx, func(ctx context.Context, page catalog.Page[catalog.Product]) error {
		if err := w.Expand(ctx, page.Items); err != nil {
			return err
		}
		return fn(ctx, page)
	})
	return pager.Cursor(), err
}

// Expand completa en sitio las variantes e inventario de los productos que traen más páginas.
func (w *CatalogWalker) Expand(ctx context.Context, products []catalog.Product) error {
	for i := range products {
		p := &products[i]
		if p.Variants.HasNextPage {
			productID := p.ExternalID
			fetch := func(ctx context.Context, after string) (catalog.Page[catalog.Variant], error) {
				return w.source.FetchProductVariants(ctx, productID, after)
			}
			rest, err := ContinueFrom("variants", fetch, p.Variants, w.log).Collect(ctx)
			if err != nil {
				return fmt.Errorf("product %s: %w", productID, err)
			}
			p.Variants.Items = append(p.Variants.Items, rest...)
			p.Variants.HasNextPage = false
		}
		for j := range p.Variants.Items {
			if err := w.expandLevels(ctx, &p.Variants.Items[j]); err != nil {
				return fmt.Errorf("product %s: %w", p.ExternalID, err)
			}
		}
	}
	return nil
}

func (w *CatalogWalker) expandLevels(ctx context.Context, v *catalog.Variant) error {
	item := v.InventoryItem
	if item == nil || !item.Levels.HasNextPage {
		return nil
	}
	itemID := item.ExternalID
	fetch := func(ctx context.Context, after string) (catalog.Page[catalog.InventoryLevel], error) {
		return w.source.FetchInventoryLevels(ctx, itemID, after)
	}
	rest, err := ContinueFrom("inventoryLevels", fetch, item.Levels, w.log).Collect(ctx)
	if err != nil {
		return fmt.Errorf("variant %s: %w", v.ExternalID, err)
	}
	item.Levels.Items = append(item.Levels.Items, rest...)
	item.Levels.HasNextPage = false
	return nil
}
