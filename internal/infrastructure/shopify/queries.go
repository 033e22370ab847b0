package shopify

// Tamaños de página. Los productos traen variantes y niveles embebidos; el costo de la query
// crece con el producto de los tres, así que se mantienen bajos.
const (
	LocationsPageSize = 50
	ProductsPageSize  = 20
	VariantsPageSize  = 20
	LevelsPageSize    = 10
)

const pageInfoFragment = `pageInfo { hasNextPage endCursor }`

const levelFields = `
	nodes {
		location { id }
		quantities(names: ["available"]) { name quantity }
	}
	` + pageInfoFragment

const variantFields = `
	nodes {
		id
		title
		sku
		price
		inventoryQuantity
		inventoryItem {
			id
			inventoryLevels(first: 10) {` + levelFields + `}
		}
	}
	` + pageInfoFragment

const locationsQuery = `
query Locations($first: Int!, $after: String) {
	locations(first: $first, after: $after) {
		nodes { id name }
		` + pageInfoFragment + `
	}
}`

const productsQuery = `
query Products($first: Int!, $after: String) {
	products(first: $first, after: $after) {
		nodes {
			id
			title
			vendor
			productType
			tags
			variants(first: 20) {` + variantFields + `}
		}
		` + pageInfoFragment + `
	}
}`

const productVariantsQuery = `
query ProductVariants($id: ID!, $first: Int!, $after: String) {
	product(id: $id) {
		variants(first: $first, after: $after) {` + variantFields + `}
	}
}`

const inventoryLevelsQuery = `
query InventoryLevels($id: ID!, $first: Int!, $after: String) {
	inventoryItem(id: $id) {
		inventoryLevels(first: $first, after: $after) {` + levelFields + `}
	}
}`
