package shopify

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-sync/internal/application/catalogsync"
	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/catalog"
)

var _ catalogsync.CatalogSource = (*Client)(nil)

func pageVars(first int, after string) map[string]any {
	vars := map[string]any{"first": first}
	if after != "" {
		vars["after"] = after
	}
	return vars
}

// FetchLocations devuelve una página de ubicaciones.
func (c *Client) FetchLocations(ctx context.Context, after string) (catalog.Page[catalog.Location], error) {
	var data struct {
		Locations *locationConnection `json:"locations"`
	}
	if err := c.Query(ctx, locationsQuery, pageVars(LocationsPageSize, after), &data); err != nil {
		return catalog.Page[catalog.Location]{}, fmt.Errorf("fetch locations: %w", err)
	}
	return data.Locations.toPage()
}

// FetchProducts devuelve una página de productos con variantes y niveles embebidos.
func (c *Client) FetchProducts(ctx context.Context, after string) (catalog.Page[catalog.Product], error) {
	var data struct {
		Products *productConnection `json:"products"`
	}
	if err := c.Query(ctx, productsQuery, pageVars(ProductsPageSize, after), &data); err != nil {
		return catalog.Page[catalog.Product]{}, fmt.Errorf("fetch products: %w", err)
	}
	return data.Products.toPage()
}

// FetchProductVariants devuelve la página de variantes de un producto a partir de after.
func (c *Client) FetchProductVariants(ctx context.Context, productID, after string) (catalog.Page[catalog.Variant], error) {
	vars := pageVars(VariantsPageSize, after)
	vars["id"] = productID
	var data struct {
		Product *struct {
			Variants *variantConnection `json:"variants"`
		} `json:"product"`
	}
	if err := c.Query(ctx, productVariantsQuery, vars, &data); err != nil {
		return catalog.Page[catalog.Variant]{}, fmt.Errorf("fetch variants %s: %w", productID, err)
	}
	if data.Product == nil {
		return catalog.Page[catalog.Variant]{}, fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
	}
	return data.Product.Variants.toPage()
}

// FetchInventoryLevels devuelve la página de niveles de un ítem de inventario a partir de after.
func (c *Client) FetchInventoryLevels(ctx context.Context, inventoryItemID, after string) (catalog.Page[catalog.InventoryLevel], error) {
	vars := pageVars(LevelsPageSize, after)
	vars["id"] = inventoryItemID
	var data struct {
		InventoryItem *struct {
			InventoryLevels *levelConnection `json:"inventoryLevels"`
		} `json:"inventoryItem"`
	}
	if err := c.Query(ctx, inventoryLevelsQuery, vars, &data); err != nil {
		return catalog.Page[catalog.InventoryLevel]{}, fmt.Errorf("fetch inventory levels %s: %w", inventoryItemID, err)
	}
	if data.InventoryItem == nil {
		return catalog.Page[catalog.InventoryLevel]{}, fmt.Errorf("%w: inventory item %s", domain.ErrNotFound, inventoryItemID)
	}
	return data.InventoryItem.InventoryLevels.toPage()
}
