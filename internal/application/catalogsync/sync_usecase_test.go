package catalogsync_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jhoicas/inventario-sync/internal/application/catalogsync"
	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/catalog"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncShop_TiendaInexistente(t *testing.T) {
	h := newHarness(t)

	summary, err := h.sync.SyncShop(context.Background(), "no-existe", catalogsync.SyncOptions{})

	require.ErrorIs(t, err, domain.ErrShopNotFound)
	assert.Nil(t, summary)
	assert.Empty(t, h.store.Runs())
	assert.Empty(t, h.source.Calls())
}

func TestSyncShop_CorridaCompleta(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	h.source.productPageSize = 2

	summary, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})

	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, entity.SyncRunStatusSuccess, summary.Status)
	assert.Equal(t, 2, summary.LocationsMapped)
	assert.Equal(t, 3, summary.ProductsSynced)
	assert.Equal(t, 4, summary.VariantsSynced)
	assert.Equal(t, 5, summary.InventoryRows)
	assert.Zero(t, summary.SkippedRows)
	assert.Zero(t, summary.FailedRows)
	assert.Equal(t, 3, summary.ProductsUpdatedCount)
	assert.NotNil(t, summary.FinishedAt)

	runs := h.store.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, summary.RunID, runs[0].ID)
	assert.Equal(t, entity.SyncRunStatusSuccess, runs[0].Status)
	assert.Empty(t, runs[0].ProductCursor, "una corrida completa no deja cursor para reanudar")

	assert.Equal(t, []string{"products:", "products:o:2"}, h.source.CallsWithPrefix("products:"))

	p := h.store.Product(testShopID, productGID("1"))
	assert.Equal(t, 12, p.CurrentTotalInventory)
	assert.True(t, entity.IsPersistableStatus(p.Status), "las métricas se recalculan al final")
}

func TestSyncShop_Idempotente(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()

	first, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})
	require.NoError(t, err)
	before := h.store.Snapshot()

	second, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})
	require.NoError(t, err)
	after := h.store.Snapshot()

	assert.Equal(t, before, after)
	assert.Equal(t, first.InventoryRows, second.InventoryRows)
	assert.Equal(t, first.ProductsSynced, second.ProductsSynced)
	assert.Len(t, h.store.Runs(), 2)
}

func TestSyncShop_UbicacionSinMapeoSeAutocorrige(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	h.store.FailLocation[locID(2)] = errors.New("fallo transitorio")

	first, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})
	require.NoError(t, err)
	assert.True(t, first.Success, "una corrida parcial sigue siendo exitosa")
	assert.Equal(t, entity.SyncRunStatusPartial, first.Status)
	assert.Equal(t, 2, first.SkippedRows)
	assert.Equal(t, 3, first.InventoryRows)
	assert.Len(t, h.store.InventoryRows(), 3)

	delete(h.store.FailLocation, locID(2))

	second, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, entity.SyncRunStatusSuccess, second.Status)
	assert.Zero(t, second.SkippedRows)
	assert.Len(t, h.store.InventoryRows(), 5)

	third, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, entity.SyncRunStatusSuccess, third.Status)
	assert.Len(t, h.store.InventoryRows(), 5, "la tercera corrida no duplica filas")
}

func TestSyncShop_PaginasAnidadas(t *testing.T) {
	h := newHarness(t)
	h.source.locations = []catalog.Location{location(1), location(2), location(3)}
	h.source.products = []catalog.Product{
		product("1",
			variant("11", level(1, 1), level(2, 2), level(3, 3)),
			variant("12", level(1, 4)),
			variant("13", level(2, 5), level(3, 6)),
		),
	}
	h.source.variantPageSize = 1
	h.source.levelPageSize = 1

	summary, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})

	require.NoError(t, err)
	assert.Equal(t, entity.SyncRunStatusSuccess, summary.Status)
	assert.Equal(t, 3, summary.VariantsSynced)
	assert.Equal(t, 6, summary.InventoryRows)
	assert.Equal(t, []string{
		"variants:" + productGID("1") + ":o:1",
		"variants:" + productGID("1") + ":o:2",
	}, h.source.CallsWithPrefix("variants:"))
	assert.Len(t, h.source.CallsWithPrefix("levels:gid://shopify/InventoryItem/11:"), 2)
	assert.Len(t, h.source.CallsWithPrefix("levels:gid://shopify/InventoryItem/13:"), 1)
	assert.Equal(t, 21, h.store.Product(testShopID, productGID("1")).CurrentTotalInventory)
}

func TestSyncShop_ErrorAnidadoNoAplicaPaginaParcial(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	h.source.productPageSize = 2
	h.source.variantPageSize = 1
	h.source.fail["variants:"+productGID("1")+":o:1"] = errors.New("HTTP 503")

	summary, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})

	require.NoError(t, err)
	assert.False(t, summary.Success)
	assert.Equal(t, entity.SyncRunStatusFailed, summary.Status)
	assert.Zero(t, summary.ProductsSynced)
	assert.Nil(t, h.store.Product(testShopID, productGID("1")))
	assert.Nil(t, h.store.Product(testShopID, productGID("2")), "ningún producto de la página se aplica")
	assert.Len(t, h.source.CallsWithPrefix("products:"), 1)
}

func TestSyncShop_ReanudaDesdeElUltimoCursor(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	h.source.products = append(h.source.products, product("4", variant("41", level(1, 9))))
	h.source.productPageSize = 2
	transport := errors.New("HTTP 502")
	h.source.fail["products:o:2"] = transport

	failed, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{Resume: true})
	require.NoError(t, err)
	assert.Equal(t, entity.SyncRunStatusFailed, failed.Status)
	assert.Equal(t, 2, failed.ProductsSynced)
	assert.Contains(t, failed.Message, "API externa")
	runs := h.store.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "o:2", runs[0].ProductCursor, "el cursor apunta a la última página confirmada")

	delete(h.source.fail, "products:o:2")
	h.source.calls = nil

	resumed, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{Resume: true})
	require.NoError(t, err)
	assert.Equal(t, entity.SyncRunStatusSuccess, resumed.Status)
	assert.Equal(t, 2, resumed.ProductsSynced, "solo se piden las páginas pendientes")
	assert.Equal(t, []string{"products:o:2"}, h.source.CallsWithPrefix("products:"))
	assert.Equal(t, 4, resumed.ProductsUpdatedCount, "las métricas cubren todo el catálogo local")

	h.source.calls = nil
	fresh, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{Resume: true})
	require.NoError(t, err)
	assert.Equal(t, 4, fresh.ProductsSynced, "tras una corrida exitosa se empieza desde el inicio")
	assert.Equal(t, []string{"products:", "products:o:2"}, h.source.CallsWithPrefix("products:"))
}

func TestSyncShop_ReanudacionSinAvanceVuelveAlInicio(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	h.source.productPageSize = 2
	h.source.fail["products:o:2"] = fmt.Errorf("%w: falta pageInfo", domain.ErrMalformedPage)
	opts := catalogsync.SyncOptions{Resume: true}

	first, err := h.sync.SyncShop(context.Background(), testShopID, opts)
	require.NoError(t, err)
	assert.Equal(t, entity.SyncRunStatusFailed, first.Status)
	assert.Equal(t, 2, first.ProductsSynced)
	assert.Equal(t, []string{"products:", "products:o:2"}, h.source.CallsWithPrefix("products:"))

	h.source.calls = nil
	second, err := h.sync.SyncShop(context.Background(), testShopID, opts)
	require.NoError(t, err)
	assert.Equal(t, entity.SyncRunStatusFailed, second.Status)
	assert.Zero(t, second.ProductsSynced)
	assert.Equal(t, []string{"products:o:2"}, h.source.CallsWithPrefix("products:"), "la segunda corrida reanuda")

	h.source.calls = nil
	third, err := h.sync.SyncShop(context.Background(), testShopID, opts)
	require.NoError(t, err)
	assert.Equal(t, entity.SyncRunStatusFailed, third.Status)
	assert.Equal(t, 2, third.ProductsSynced, "las páginas previas se vuelven a sincronizar")
	assert.Equal(t, []string{"products:", "products:o:2"}, h.source.CallsWithPrefix("products:"))

	runs := h.store.Runs()
	require.Len(t, runs, 3)
	assert.Empty(t, runs[0].ResumedFrom)
	assert.Equal(t, "o:2", runs[1].ResumedFrom)
	assert.True(t, runs[1].Stalled())
	assert.Empty(t, runs[2].ResumedFrom)
	assert.False(t, runs[2].Stalled())
}

func TestSyncShop_SinResumeIgnoraElCursor(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	h.source.productPageSize = 2
	h.source.fail["products:o:2"] = errors.New("HTTP 502")
	_, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})
	require.NoError(t, err)

	delete(h.source.fail, "products:o:2")
	h.source.calls = nil
	summary, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})

	require.NoError(t, err)
	assert.Equal(t, 3, summary.ProductsSynced)
	assert.Equal(t, "products:", h.source.CallsWithPrefix("products:")[0])
}

func TestSyncShop_PaginaMalformadaDetieneLaCorrida(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	h.source.productPageSize = 1
	h.source.fail["products:o:1"] = fmt.Errorf("%w: falta pageInfo", domain.ErrMalformedPage)

	summary, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})

	require.NoError(t, err)
	assert.False(t, summary.Success)
	assert.Equal(t, entity.SyncRunStatusFailed, summary.Status)
	assert.Contains(t, summary.Message, "forma inesperada")
	assert.Equal(t, 1, summary.ProductsSynced)
	assert.Len(t, h.source.CallsWithPrefix("products:"), 2, "no se reintenta la página malformada")
}

func TestSyncShop_LimiteDeLaAPIQuedaEnElMensaje(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	h.source.productPageSize = 2
	h.source.fail["products:o:2"] = fmt.Errorf("shopify status 429: %w", domain.ErrRateLimited)

	summary, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})

	require.NoError(t, err)
	assert.Equal(t, entity.SyncRunStatusFailed, summary.Status)
	assert.Contains(t, summary.Message, "límite de uso")
	assert.Equal(t, 2, summary.ProductsSynced)
}

func TestSyncShop_ErrorDeUbicacionesMarcaParcial(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	h.source.locationPageSize = 1
	h.source.fail["locations:o:1"] = errors.New("HTTP 500")

	summary, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})

	require.NoError(t, err)
	assert.Equal(t, entity.SyncRunStatusPartial, summary.Status)
	assert.Equal(t, 1, summary.LocationsMapped)
	assert.Equal(t, 3, summary.ProductsSynced)
	assert.Equal(t, 2, summary.SkippedRows)
}

func TestSyncShop_SkipMetrics(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()

	summary, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{SkipMetrics: true})

	require.NoError(t, err)
	assert.Equal(t, entity.SyncRunStatusSuccess, summary.Status)
	assert.Zero(t, summary.ProductsUpdatedCount)
	assert.Equal(t, entity.ProductStatusUnknown, h.store.Product(testShopID, productGID("1")).Status)
}

func TestSyncShop_CancelacionRegistraLaCorrida(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	h.source.productPageSize = 1
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.source.onFetch = func(key string) {
		if key == "products:o:1" {
			cancel()
		}
	}

	summary, err := h.sync.SyncShop(ctx, testShopID, catalogsync.SyncOptions{})

	require.NoError(t, err)
	assert.Equal(t, entity.SyncRunStatusFailed, summary.Status)
	assert.Contains(t, summary.Message, "reanudar")
	assert.Zero(t, summary.ProductsUpdatedCount, "sin métricas tras cancelar")

	runs := h.store.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, entity.SyncRunStatusFailed, runs[0].Status, "la corrida se cierra aunque ctx esté cancelado")
	assert.Equal(t, "o:1", runs[0].ProductCursor)
	assert.NotNil(t, runs[0].FinishedAt)
}

func TestListRuns_MasRecientesPrimero(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	for i := 0; i < 3; i++ {
		_, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{SkipMetrics: true})
		require.NoError(t, err)
	}

	list, err := h.sync.ListRuns(context.Background(), testShopID, 2)

	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	runs := h.store.Runs()
	assert.Equal(t, runs[2].ID, list.Items[0].RunID)
	assert.Equal(t, runs[1].ID, list.Items[1].RunID)
}
