// Package memstore implementa los repositorios de dominio en memoria para tests de casos de uso.
// Replica las claves de upsert y las restricciones del esquema PostgreSQL.
package memstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// Store estado compartido por los repositorios en memoria.
type Store struct {
	mu sync.Mutex

	shops      map[string]*entity.Shop
	settings   map[string]*entity.ShopSettings
	warehouses map[string]*entity.Warehouse
	products   map[string]*entity.Product
	variants   map[string]*entity.Variant
	inventory  map[string]*entity.InventoryLevel
	runs       map[string]*entity.SyncRun
	runOrder   []string
	seq        int

	// Inyección de fallos por ID externo / ID local.
	FailProduct       map[string]error
	FailVariant       map[string]error
	FailLevelLocation map[string]error
	FailMetrics       map[string]error
	FailLocation      map[string]error

	// Writes cuenta mutaciones (upserts, updates, runs).
	Writes int
	Now    func() time.Time
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		shops:             map[string]*entity.Shop{},
		settings:          map[string]*entity.ShopSettings{},
		warehouses:        map[string]*entity.Warehouse{},
		products:          map[string]*entity.Product{},
		variants:          map[string]*entity.Variant{},
		inventory:         map[string]*entity.InventoryLevel{},
		runs:              map[string]*entity.SyncRun{},
		FailProduct:       map[string]error{},
		FailVariant:       map[string]error{},
		FailLevelLocation: map[string]error{},
		FailMetrics:       map[string]error{},
		FailLocation:      map[string]error{},
		Now:               time.Now,
	}
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%06d", prefix, s.seq)
}

// AddShop registra una tienda (simula la instalación).
func (s *Store) AddShop(shop *entity.Shop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *shop
	s.shops[shop.ID] = &c
}

// SetSettings registra overrides de umbrales.
func (s *Store) SetSettings(settings *entity.ShopSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *settings
	s.settings[settings.ShopID] = &c
}

// AddLocalWarehouse crea una bodega sin mapeo externo (o con mapeo si extID no es vacío).
func (s *Store) AddLocalWarehouse(shopID, name, extID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := &entity.Warehouse{ID: s.nextID("wh"), ShopID: shopID, Name: name, Location: name}
	if extID != "" {
		w.ExternalLocationID = &extID
	}
	s.warehouses[w.ID] = w
	return w.ID
}

// SetSalesVelocity fija la velocidad de venta de un producto por ID externo.
func (s *Store) SetSalesVelocity(shopID, externalID string, v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ShopID == shopID && p.ExternalID == externalID {
			p.SalesVelocity = mustDecimal(v)
		}
	}
}

// Product devuelve una copia del producto por ID externo, o nil.
func (s *Store) Product(shopID, externalID string) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ShopID == shopID && p.ExternalID == externalID {
			c := *p
			return &c
		}
	}
	return nil
}

// Variant devuelve una copia de la variante por ID externo, o nil.
func (s *Store) Variant(externalID string) *entity.Variant {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.variants {
		if v.ExternalID == externalID {
			c := *v
			return &c
		}
	}
	return nil
}

// WarehouseByExternal devuelve la bodega mapeada a la ubicación externa, o nil.
func (s *Store) WarehouseByExternal(extID string) *entity.Warehouse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warehouseByExternal(extID)
}

func (s *Store) warehouseByExternal(extID string) *entity.Warehouse {
	for _, w := range s.warehouses {
		if w.ExternalLocationID != nil && *w.ExternalLocationID == extID {
			c := *w
			return &c
		}
	}
	return nil
}

// MapWarehouse asigna una ubicación externa a una bodega local existente.
func (s *Store) MapWarehouse(warehouseID, extID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.warehouses[warehouseID]; ok {
		w.ExternalLocationID = &extID
	}
}

// InventoryRows devuelve copias de todas las filas de inventario.
func (s *Store) InventoryRows() []entity.InventoryLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.InventoryLevel, 0, len(s.inventory))
	for _, l := range s.inventory {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Runs devuelve las corridas en orden de creación.
func (s *Store) Runs() []entity.SyncRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.SyncRun, 0, len(s.runOrder))
	for _, id := range s.runOrder {
		out = append(out, *s.runs[id])
	}
	return out
}

// Snapshot copia de productos, variantes, inventario y bodegas sin timestamps, para comparar
// dos corridas.
type Snapshot struct {
	Warehouses []entity.Warehouse
	Products   []entity.Product
	Variants   []entity.Variant
	Inventory  []entity.InventoryLevel
}

// Snapshot toma el estado actual.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var snap Snapshot
	for _, w := range s.warehouses {
		c := *w
		c.CreatedAt, c.UpdatedAt = time.Time{}, time.Time{}
		snap.Warehouses = append(snap.Warehouses, c)
	}
	for _, p := range s.products {
		c := *p
		c.CreatedAt, c.UpdatedAt, c.MetricsUpdatedAt = time.Time{}, time.Time{}, nil
		snap.Products = append(snap.Products, c)
	}
	for _, v := range s.variants {
		c := *v
		c.CreatedAt, c.UpdatedAt = time.Time{}, time.Time{}
		snap.Variants = append(snap.Variants, c)
	}
	for _, l := range s.inventory {
		c := *l
		c.UpdatedAt = time.Time{}
		snap.Inventory = append(snap.Inventory, c)
	}
	sort.Slice(snap.Warehouses, func(i, j int) bool { return snap.Warehouses[i].ID < snap.Warehouses[j].ID })
	sort.Slice(snap.Products, func(i, j int) bool { return snap.Products[i].ID < snap.Products[j].ID })
	sort.Slice(snap.Variants, func(i, j int) bool { return snap.Variants[i].ID < snap.Variants[j].ID })
	sort.Slice(snap.Inventory, func(i, j int) bool { return snap.Inventory[i].ID < snap.Inventory[j].ID })
	return snap
}
