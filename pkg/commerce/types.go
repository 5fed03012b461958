package commerce

// OrderField enumerates catalog sort fields supported by the backend.
type OrderField string

const (
	OrderFieldDate   OrderField = "DATE"
	OrderFieldPrice  OrderField = "PRICE"
	OrderFieldRating OrderField = "RATING"
)

// SortOrder enumerates sort directions.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// PageInfo carries cursor pagination state for a connection.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// ImageNode is a product or variation image reference.
type ImageNode struct {
	SourceURL string `json:"sourceUrl"`
}

// CategoryNode is a product category as returned by the backend.
type CategoryNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// AttributeNode is a declared product attribute with its option list.
type AttributeNode struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// VariationAttributeNode is one attribute-value pair on a variation.
type VariationAttributeNode struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// VariationNode is a purchasable variation under a variable product.
type VariationNode struct {
	ID            string `json:"id"`
	DatabaseID    int64  `json:"databaseId"`
	Name          string `json:"name"`
	StockStatus   string `json:"stockStatus"`
	StockQuantity *int   `json:"stockQuantity"`
	Attributes    struct {
		Nodes []VariationAttributeNode `json:"nodes"`
	} `json:"attributes"`
}

// ProductNode is a catalog product. The Type field is the backend's union
// tag: "SIMPLE" products carry StockStatus/StockQuantity, "VARIABLE"
// products carry Variations.
type ProductNode struct {
	ID            string    `json:"id"`
	DatabaseID    int64     `json:"databaseId"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Price         string    `json:"price"`
	OnSale        bool      `json:"onSale"`
	AverageRating float64   `json:"averageRating"`
	Image         ImageNode `json:"image"`
	StockStatus   string    `json:"stockStatus"`
	StockQuantity *int      `json:"stockQuantity"`

	ProductCategories struct {
		Nodes []CategoryNode `json:"nodes"`
	} `json:"productCategories"`
	Attributes struct {
		Nodes []AttributeNode `json:"nodes"`
	} `json:"attributes"`
	Variations struct {
		Nodes []VariationNode `json:"nodes"`
	} `json:"variations"`
}

// ProductsPage is one page of the products connection.
type ProductsPage struct {
	PageInfo PageInfo      `json:"pageInfo"`
	Nodes    []ProductNode `json:"nodes"`
}

// ProductsQuery holds the request parameters for a catalog page fetch.
// The cursor is only valid for one fixed combination of field/order/
// categories; callers must restart pagination when those change.
type ProductsQuery struct {
	First      int
	After      string
	OrderField OrderField
	Order      SortOrder
	Categories []string
}
