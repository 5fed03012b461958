package service

import (
	"strconv"
	"strings"

	"github.com/veldshoe/storefront_api/internal/models"
	"github.com/veldshoe/storefront_api/pkg/commerce"
)

// mapProduct converts a backend product node into the domain model. The
// backend's union tag ("SIMPLE"/"VARIABLE") becomes the Kind discriminator;
// unknown kinds are treated as simple.
func mapProduct(node commerce.ProductNode) models.Product {
	p := models.Product{
		ID:            nodeID(node.ID, node.DatabaseID),
		Slug:          node.Slug,
		Name:          node.Name,
		Kind:          mapKind(node.Type),
		Price:         node.Price,
		OnSale:        node.OnSale,
		AverageRating: node.AverageRating,
		Image:         node.Image.SourceURL,
		StockStatus:   models.StockStatus(node.StockStatus),
	}
	if node.StockQuantity != nil {
		qty := *node.StockQuantity
		p.StockQuantity = &qty
	}

	for _, cat := range node.ProductCategories.Nodes {
		p.Categories = append(p.Categories, models.Category{ID: cat.ID, Name: cat.Name, Slug: cat.Slug})
	}
	for _, attr := range node.Attributes.Nodes {
		p.Attributes = append(p.Attributes, models.Attribute{Name: attr.Name, Options: attr.Options})
	}
	for _, v := range node.Variations.Nodes {
		p.Variations = append(p.Variations, mapVariation(node.ID, v))
	}
	return p
}

func mapVariation(productID string, node commerce.VariationNode) models.Variation {
	v := models.Variation{
		ID:          nodeID(node.ID, node.DatabaseID),
		ProductID:   productID,
		Name:        node.Name,
		StockStatus: models.StockStatus(node.StockStatus),
		Attributes:  make(map[string]string, len(node.Attributes.Nodes)),
	}
	if node.StockQuantity != nil {
		qty := *node.StockQuantity
		v.StockQuantity = &qty
	}
	for _, attr := range node.Attributes.Nodes {
		v.Attributes[attr.Name] = attr.Value
	}
	return v
}

// nodeID prefers the backend's numeric database id, serialized, over the
// opaque global id. Cart lines and order line items are keyed by it.
func nodeID(globalID string, databaseID int64) string {
	if databaseID > 0 {
		return strconv.FormatInt(databaseID, 10)
	}
	return globalID
}

func mapKind(raw string) models.ProductKind {
	if strings.EqualFold(raw, "VARIABLE") {
		return models.KindVariable
	}
	return models.KindSimple
}

// mapProducts converts a slice of backend nodes.
func mapProducts(nodes []commerce.ProductNode) []models.Product {
	out := make([]models.Product, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, mapProduct(n))
	}
	return out
}
