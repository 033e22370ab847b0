package shopify

import (
	"fmt"

	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// Estructuras de la respuesta GraphQL. Los punteros distinguen un campo ausente de uno vacío:
// una conexión o pageInfo ausente es una página malformada.

type pageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

type locationConnection struct {
	Nodes []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"nodes"`
	PageInfo *pageInfo `json:"pageInfo"`
}

type productConnection struct {
	Nodes    []productNode `json:"nodes"`
	PageInfo *pageInfo     `json:"pageInfo"`
}

type productNode struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Vendor      string             `json:"vendor"`
	ProductType string             `json:"productType"`
	Tags        []string           `json:"tags"`
	Variants    *variantConnection `json:"variants"`
}

type variantConnection struct {
	Nodes    []variantNode `json:"nodes"`
	PageInfo *pageInfo     `json:"pageInfo"`
}

type variantNode struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	SKU               *string            `json:"sku"`
	Price             string             `json:"price"`
	InventoryQuantity *int               `json:"inventoryQuantity"`
	InventoryItem     *inventoryItemNode `json:"inventoryItem"`
}

type inventoryItemNode struct {
	ID              string           `json:"id"`
	InventoryLevels *levelConnection `json:"inventoryLevels"`
}

type levelConnection struct {
	Nodes []struct {
		Location *struct {
			ID string `json:"id"`
		} `json:"location"`
		Quantities []struct {
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
		} `json:"quantities"`
	} `json:"nodes"`
	PageInfo *pageInfo `json:"pageInfo"`
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedPage, fmt.Sprintf(format, args...))
}

func toPageInfo(pi *pageInfo, what string) (hasNext bool, cursor string, err error) {
	if pi == nil {
		return false, "", malformed("%s sin pageInfo", what)
	}
	if pi.EndCursor != nil {
		cursor = *pi.EndCursor
	}
	return pi.HasNextPage, cursor, nil
}

func (c *locationConnection) toPage() (catalog.Page[catalog.Location], error) {
	var page catalog.Page[catalog.Location]
	if c == nil {
		return page, malformed("locations ausente")
	}
	hasNext, cursor, err := toPageInfo(c.PageInfo, "locations")
	if err != nil {
		return page, err
	}
	page.HasNextPage, page.EndCursor = hasNext, cursor
	for _, n := range c.Nodes {
		if n.ID == "" {
			return page, malformed("location sin id")
		}
		page.Items = append(page.Items, catalog.Location{ExternalID: n.ID, Name: n.Name})
	}
	return page, nil
}

func (c *productConnection) toPage() (catalog.Page[catalog.Product], error) {
	var page catalog.Page[catalog.Product]
	if c == nil {
		return page, malformed("products ausente")
	}
	hasNext, cursor, err := toPageInfo(c.PageInfo, "products")
	if err != nil {
		return page, err
	}
	page.HasNextPage, page.EndCursor = hasNext, cursor
	for _, n := range c.Nodes {
		if n.ID == "" {
			return page, malformed("product sin id")
		}
		variants, err := n.Variants.toPage()
		if err != nil {
			return page, fmt.Errorf("product %s: %w", n.ID, err)
		}
		page.Items = append(page.Items, catalog.Product{
			ExternalID:  n.ID,
			Title:       n.Title,
			Vendor:      n.Vendor,
			ProductType: n.ProductType,
			Tags:        n.Tags,
			Variants:    variants,
		})
	}
	return page, nil
}

func (c *variantConnection) toPage() (catalog.Page[catalog.Variant], error) {
	var page catalog.Page[catalog.Variant]
	if c == nil {
		return page, malformed("variants ausente")
	}
	hasNext, cursor, err := toPageInfo(c.PageInfo, "variants")
	if err != nil {
		return page, err
	}
	page.HasNextPage, page.EndCursor = hasNext, cursor
	for _, n := range c.Nodes {
		v, err := n.toVariant()
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, v)
	}
	return page, nil
}

func (n variantNode) toVariant() (catalog.Variant, error) {
	if n.ID == "" {
		return catalog.Variant{}, malformed("variant sin id")
	}
	price := decimal.Zero
	if n.Price != "" {
		p, err := decimal.NewFromString(n.Price)
		if err != nil {
			return catalog.Variant{}, malformed("variant %s con precio %q", n.ID, n.Price)
		}
		price = p
	}
	v := catalog.Variant{ExternalID: n.ID, Title: n.Title, Price: price}
	if n.SKU != nil {
		v.SKU = *n.SKU
	}
	if n.InventoryQuantity != nil {
		v.InventoryQuantity = *n.InventoryQuantity
	}
	if n.InventoryItem != nil {
		if n.InventoryItem.ID == "" {
			return catalog.Variant{}, malformed("variant %s con inventoryItem sin id", n.ID)
		}
		levels, err := n.InventoryItem.InventoryLevels.toPage()
		if err != nil {
			return catalog.Variant{}, fmt.Errorf("variant %s: %w", n.ID, err)
		}
		v.InventoryItem = &catalog.InventoryItem{ExternalID: n.InventoryItem.ID, Levels: levels}
	}
	return v, nil
}

func (c *levelConnection) toPage() (catalog.Page[catalog.InventoryLevel], error) {
	var page catalog.Page[catalog.InventoryLevel]
	if c == nil {
		return page, malformed("inventoryLevels ausente")
	}
	hasNext, cursor, err := toPageInfo(c.PageInfo, "inventoryLevels")
	if err != nil {
		return page, err
	}
	page.HasNextPage, page.EndCursor = hasNext, cursor
	for _, n := range c.Nodes {
		if n.Location == nil || n.Location.ID == "" {
			return page, malformed("inventoryLevel sin location")
		}
		level := catalog.InventoryLevel{LocationExternalID: n.Location.ID}
		for _, q := range n.Quantities {
			if q.Name == catalog.QuantityAvailable {
				qty := q.Quantity
				level.Available = &qty
				break
			}
		}
		page.Items = append(page.Items, level)
	}
	return page, nil
}
