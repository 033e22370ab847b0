package catalogsync_test

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/jhoicas/inventario-sync/internal/application/catalogsync"
	appmetrics "github.com/jhoicas/inventario-sync/internal/application/metrics"
	"github.com/jhoicas/inventario-sync/internal/domain/catalog"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/internal/testutil/memstore"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const testShopID = "shop-1"

// ── fuente de catálogo en memoria ────────────────────────────────────────────

// fakeSource sirve un catálogo completo en páginas del tamaño configurado. Los cursores son
// offsets ("o:<n>") y cada llamada queda registrada como "<conexión>:<id>:<after>".
type fakeSource struct {
	mu sync.Mutex

	locations []catalog.Location
	products  []catalog.Product

	locationPageSize int
	productPageSize  int
	variantPageSize  int
	levelPageSize    int

	fail    map[string]error
	onFetch func(key string)
	calls   []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		locationPageSize: 50,
		productPageSize:  20,
		variantPageSize:  20,
		levelPageSize:    10,
		fail:             map[string]error{},
	}
}

func (f *fakeSource) record(key string) error {
	f.mu.Lock()
	f.calls = append(f.calls, key)
	hook := f.onFetch
	err := f.fail[key]
	f.mu.Unlock()
	if hook != nil {
		hook(key)
	}
	return err
}

func (f *fakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSource) CallsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func offset(after string) int {
	if after == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(after, "o:"))
	if err != nil {
		panic(fmt.Sprintf("cursor inválido %q", after))
	}
	return n
}

func window[T any](items []T, after string, size int) catalog.Page[T] {
	start := offset(after)
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	page := catalog.Page[T]{Items: append([]T(nil), items[start:end]...), HasNextPage: end < len(items)}
	if end > start {
		page.EndCursor = fmt.Sprintf("o:%d", end)
	}
	return page
}

func (f *fakeSource) FetchLocations(ctx context.Context, after string) (catalog.Page[catalog.Location], error) {
	if err := f.record("locations:" + after); err != nil {
		return catalog.Page[catalog.Location]{}, err
	}
	return window(f.locations, after, f.locationPageSize), ctx.Err()
}

func (f *fakeSource) FetchProducts(ctx context.Context, after string) (catalog.Page[catalog.Product], error) {
	if err := f.record("products:" + after); err != nil {
		return catalog.Page[catalog.Product]{}, err
	}
	if err := ctx.Err(); err != nil {
		return catalog.Page[catalog.Product]{}, err
	}
	page := window(f.products, after, f.productPageSize)
	for i := range page.Items {
		page.Items[i] = f.serveProduct(page.Items[i])
	}
	return page, nil
}

func (f *fakeSource) FetchProductVariants(ctx context.Context, productID, after string) (catalog.Page[catalog.Variant], error) {
	if err := f.record("variants:" + productID + ":" + after); err != nil {
		return catalog.Page[catalog.Variant]{}, err
	}
	for _, p := range f.products {
		if p.ExternalID == productID {
			page := window(p.Variants.Items, after, f.variantPageSize)
			for i := range page.Items {
				page.Items[i] = f.serveVariant(page.Items[i])
			}
			return page, ctx.Err()
		}
	}
	return catalog.Page[catalog.Variant]{}, fmt.Errorf("producto %s no existe", productID)
}

func (f *fakeSource) FetchInventoryLevels(ctx context.Context, itemID, after string) (catalog.Page[catalog.InventoryLevel], error) {
	if err := f.record("levels:" + itemID + ":" + after); err != nil {
		return catalog.Page[catalog.InventoryLevel]{}, err
	}
	for _, p := range f.products {
		for _, v := range p.Variants.Items {
			if v.InventoryItem != nil && v.InventoryItem.ExternalID == itemID {
				return window(v.InventoryItem.Levels.Items, after, f.levelPageSize), ctx.Err()
			}
		}
	}
	return catalog.Page[catalog.InventoryLevel]{}, fmt.Errorf("ítem %s no existe", itemID)
}

// serveProduct copia el producto con solo la primera página de variantes embebida.
func (f *fakeSource) serveProduct(p catalog.Product) catalog.Product {
	out := p
	out.Tags = append([]string(nil), p.Tags...)
	out.InventoryLevels = append([]catalog.InventoryLevel(nil), p.InventoryLevels...)
	out.Variants = window(p.Variants.Items, "", f.variantPageSize)
	for i := range out.Variants.Items {
		out.Variants.Items[i] = f.serveVariant(out.Variants.Items[i])
	}
	return out
}

func (f *fakeSource) serveVariant(v catalog.Variant) catalog.Variant {
	out := v
	if v.InventoryItem != nil {
		item := *v.InventoryItem
		item.Levels = window(v.InventoryItem.Levels.Items, "", f.levelPageSize)
		out.InventoryItem = &item
	}
	return out
}

// ── builders de catálogo ─────────────────────────────────────────────────────

func qty(n int) *int { return &n }

func locID(n int) string { return fmt.Sprintf("gid://shopify/Location/%d", n) }

func location(n int) catalog.Location {
	return catalog.Location{ExternalID: locID(n), Name: fmt.Sprintf("Bodega %d", n)}
}

func level(loc, available int) catalog.InventoryLevel {
	return catalog.InventoryLevel{LocationExternalID: locID(loc), Available: qty(available)}
}

func variant(id string, levels ...catalog.InventoryLevel) catalog.Variant {
	return catalog.Variant{
		ExternalID:        "gid://shopify/ProductVariant/" + id,
		Title:             "Variante " + id,
		SKU:               "SKU-" + id,
		Price:             decimal.RequireFromString("19.90"),
		InventoryQuantity: 0,
		InventoryItem: &catalog.InventoryItem{
			ExternalID: "gid://shopify/InventoryItem/" + id,
			Levels:     catalog.Page[catalog.InventoryLevel]{Items: levels},
		},
	}
}

func product(id string, variants ...catalog.Variant) catalog.Product {
	return catalog.Product{
		ExternalID:  productGID(id),
		Title:       "Producto " + id,
		Vendor:      "Acme",
		ProductType: "General",
		Tags:        []string{"tag-" + id},
		Variants:    catalog.Page[catalog.Variant]{Items: variants},
	}
}

func productGID(id string) string { return "gid://shopify/Product/" + id }

// ── harness ──────────────────────────────────────────────────────────────────

type harness struct {
	store    *memstore.Store
	source   *fakeSource
	throttle *catalogsync.WriteThrottle
	resolver *catalogsync.LocationResolver
	writer   *catalogsync.ReconciliationWriter
	metrics  *appmetrics.ShopMetricsOrchestrator
	sync     *catalogsync.SyncUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zerolog.Nop()
	store := memstore.New()
	store.AddShop(&entity.Shop{ID: testShopID, Domain: "demo.myshopify.com", AccessToken: "shpat_test"})

	source := newFakeSource()
	throttle := catalogsync.NewWriteThrottle(4)
	resolver := catalogsync.NewLocationResolver(store.Warehouses(), throttle, log)
	writer := catalogsync.NewReconciliationWriter(store.Products(), store.Variants(), store.Inventory(), throttle, log)
	orchestrator := appmetrics.NewShopMetricsOrchestrator(store.Shops(), store.Products(), throttle, 2, log)
	sources := func(*entity.Shop) catalogsync.CatalogSource { return source }
	uc := catalogsync.NewSyncUseCase(store.Shops(), store.SyncRuns(), sources, resolver, writer, orchestrator, throttle, log)

	return &harness{
		store:    store,
		source:   source,
		throttle: throttle,
		resolver: resolver,
		writer:   writer,
		metrics:  orchestrator,
		sync:     uc,
	}
}

// seedCatalog carga un catálogo con dos ubicaciones, tres productos y cuatro variantes.
func (h *harness) seedCatalog() {
	h.source.locations = []catalog.Location{location(1), location(2)}
	h.source.products = []catalog.Product{
		product("1", variant("11", level(1, 5), level(2, 7)), variant("12", level(1, 0))),
		product("2", variant("21", level(2, 40))),
		product("3", variant("31", level(1, 3))),
	}
}
