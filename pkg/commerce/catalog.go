package commerce

import "context"

// searchLimit caps free-text search results.
const searchLimit = 10

const productFields = `
	id
	databaseId
	slug
	name
	type
	onSale
	averageRating
	image { sourceUrl }
	productCategories { nodes { id name slug } }
	attributes { nodes { name options } }
	... on SimpleProduct {
		price
		stockStatus
		stockQuantity
	}
	... on VariableProduct {
		price
		variations(first: 100) {
			nodes {
				id
				databaseId
				name
				stockStatus
				stockQuantity
				attributes { nodes { name value } }
			}
		}
	}`

const productsQuery = `
query Products($first: Int!, $after: String, $field: ProductsOrderByEnum!, $order: OrderEnum!, $categories: [String]) {
	products(first: $first, after: $after, where: {orderby: {field: $field, order: $order}, categoryIn: $categories, visibility: VISIBLE}) {
		pageInfo { hasNextPage endCursor }
		nodes {` + productFields + `
		}
	}
}`

const categoriesQuery = `
query Categories {
	productCategories(first: 100) {
		nodes { id name slug }
	}
}`

const searchQuery = `
query Search($term: String!, $first: Int!) {
	products(first: $first, where: {search: $term, visibility: VISIBLE}) {
		nodes {` + productFields + `
		}
	}
}`

// GetProducts fetches one catalog page for the given sort/category selection.
// An empty After means the first page.
func (c *Client) GetProducts(ctx context.Context, q ProductsQuery) (*ProductsPage, error) {
	vars := map[string]any{
		"first": q.First,
		"field": string(q.OrderField),
		"order": string(q.Order),
	}
	if q.After != "" {
		vars["after"] = q.After
	}
	if len(q.Categories) > 0 {
		vars["categories"] = q.Categories
	}

	var out struct {
		Products ProductsPage `json:"products"`
	}
	if err := c.doGraphQL(ctx, productsQuery, vars, &out); err != nil {
		return nil, err
	}
	return &out.Products, nil
}

// GetCategories returns all product categories, excluding the reserved
// "uncategorized" slug.
func (c *Client) GetCategories(ctx context.Context) ([]CategoryNode, error) {
	var out struct {
		ProductCategories struct {
			Nodes []CategoryNode `json:"nodes"`
		} `json:"productCategories"`
	}
	if err := c.doGraphQL(ctx, categoriesQuery, nil, &out); err != nil {
		return nil, err
	}

	cats := make([]CategoryNode, 0, len(out.ProductCategories.Nodes))
	for _, cat := range out.ProductCategories.Nodes {
		if cat.Slug == "uncategorized" {
			continue
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

// SearchProducts runs a free-text search against product name/content.
// The result set is capped at 10.
func (c *Client) SearchProducts(ctx context.Context, term string) ([]ProductNode, error) {
	var out struct {
		Products struct {
			Nodes []ProductNode `json:"nodes"`
		} `json:"products"`
	}
	vars := map[string]any{"term": term, "first": searchLimit}
	if err := c.doGraphQL(ctx, searchQuery, vars, &out); err != nil {
		return nil, err
	}
	return out.Products.Nodes, nil
}

// Ping issues a minimal query to verify the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		GeneralSettings struct {
			Title string `json:"title"`
		} `json:"generalSettings"`
	}
	return c.doGraphQL(ctx, `query { generalSettings { title } }`, nil, &out)
}
