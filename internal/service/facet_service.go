package service

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/veldshoe/storefront_api/internal/models"
)

// FilterSelection holds the user's current facet selections. Empty slices
// and nil bounds pass everything.
type FilterSelection struct {
	Categories []string
	Colors     []string
	Sizes      []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

// Facets are the derived filter dimensions of a loaded product set.
type Facets struct {
	Colors   []string `json:"colors"`
	Sizes    []string `json:"sizes"`
	MinPrice int64    `json:"minPrice"`
	MaxPrice int64    `json:"maxPrice"`
}

// FacetEngine derives facets and evaluates filter predicates. All methods
// are pure functions of their inputs; the engine itself only carries the
// price-compat flag.
type FacetEngine struct {
	// priceCompat treats missing/unparsable prices as zero when a price
	// filter is evaluated; the default strict mode fails them instead.
	priceCompat bool
}

// NewFacetEngine constructs a FacetEngine.
func NewFacetEngine(priceCompat bool) *FacetEngine {
	return &FacetEngine{priceCompat: priceCompat}
}

// normalizeAttribute lowercases an attribute name and strips the backend's
// taxonomy prefix so "pa_colour" and "Color" both normalize cleanly.
func normalizeAttribute(name string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "pa_")
}

func isColorAttribute(name string) bool {
	n := normalizeAttribute(name)
	return n == "color" || n == "colour"
}

func isSizeAttribute(name string) bool {
	return normalizeAttribute(name) == "size"
}

// ParsePrice strips currency symbols and thousand separators and parses the
// remainder as a decimal. "R 1,234.50" parses to 1234.50. The boolean is
// false when the string contains no parsable number.
func ParsePrice(raw string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// DeriveFacets computes the color and size sets plus price bounds for the
// accumulated product set, applying cross-facet narrowing for the current
// selection: when colors are selected, only sizes that co-occur with a
// selected color in some in-stock variation are offered, and symmetrically
// for sizes. Simple products carry no variation-level pairing and do not
// participate in narrowing.
func (e *FacetEngine) DeriveFacets(products []models.Product, sel FilterSelection) Facets {
	colorSet := map[string]struct{}{}
	sizeSet := map[string]struct{}{}

	narrowColors := len(sel.Sizes) > 0
	narrowSizes := len(sel.Colors) > 0

	if !narrowColors || !narrowSizes {
		for i := range products {
			p := &products[i]
			for _, attr := range p.Attributes {
				if isColorAttribute(attr.Name) && !narrowColors {
					addAll(colorSet, attr.Options)
				}
				if isSizeAttribute(attr.Name) && !narrowSizes {
					addAll(sizeSet, attr.Options)
				}
			}
			for j := range p.Variations {
				v := &p.Variations[j]
				for name, value := range v.Attributes {
					if isColorAttribute(name) && !narrowColors {
						colorSet[value] = struct{}{}
					}
					if isSizeAttribute(name) && !narrowSizes {
						sizeSet[value] = struct{}{}
					}
				}
			}
		}
	}

	// Cross-facet narrowing over in-stock variation pairings only.
	if narrowSizes || narrowColors {
		for i := range products {
			p := &products[i]
			if p.Kind != models.KindVariable {
				continue
			}
			for _, v := range p.AvailableVariations() {
				color, size := variationPair(v)
				if narrowSizes && color != "" && size != "" && containsFold(sel.Colors, color) {
					sizeSet[size] = struct{}{}
				}
				if narrowColors && color != "" && size != "" && containsFold(sel.Sizes, size) {
					colorSet[color] = struct{}{}
				}
			}
		}
	}

	facets := Facets{
		Colors: sortedColors(colorSet),
		Sizes:  sortedSizes(sizeSet),
	}
	facets.MinPrice, facets.MaxPrice = e.PriceBounds(products)
	return facets
}

// PriceBounds returns the floor of the smallest and the ceiling of the
// largest parsed positive price across the product set. Both are zero when
// no product carries a parsable positive price.
func (e *FacetEngine) PriceBounds(products []models.Product) (int64, int64) {
	var min, max decimal.Decimal
	found := false
	for i := range products {
		price, ok := ParsePrice(products[i].Price)
		if !ok || !price.IsPositive() {
			continue
		}
		if !found || price.LessThan(min) {
			min = price
		}
		if !found || price.GreaterThan(max) {
			max = price
		}
		found = true
	}
	if !found {
		return 0, 0
	}
	return min.Floor().IntPart(), max.Ceil().IntPart()
}

// ApplyFilters returns the subset of products passing every selected
// filter. The result is always a subset of the input and the function is
// idempotent for a fixed selection.
func (e *FacetEngine) ApplyFilters(products []models.Product, sel FilterSelection) []models.Product {
	out := make([]models.Product, 0, len(products))
	for i := range products {
		p := &products[i]
		if !p.Purchasable() {
			continue
		}
		if !e.matchesCategory(p, sel.Categories) {
			continue
		}
		if !e.matchesPrice(p, sel.MinPrice, sel.MaxPrice) {
			continue
		}
		if !e.matchesAttributes(p, sel.Colors, sel.Sizes) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// matchesCategory passes when no category is selected, or when the product
// belongs to at least one selected category (case-insensitive slug match).
func (e *FacetEngine) matchesCategory(p *models.Product, slugs []string) bool {
	if len(slugs) == 0 {
		return true
	}
	for _, cat := range p.Categories {
		if containsFold(slugs, cat.Slug) {
			return true
		}
	}
	return false
}

// matchesPrice evaluates the inclusive [min,max] range against the parsed
// product price. In strict mode a product without a parsable price fails
// any active price filter; in compat mode it is treated as price zero.
func (e *FacetEngine) matchesPrice(p *models.Product, min, max *decimal.Decimal) bool {
	if min == nil && max == nil {
		return true
	}
	price, ok := ParsePrice(p.Price)
	if !ok {
		if !e.priceCompat {
			return false
		}
		price = decimal.Zero
	}
	if min != nil && price.LessThan(*min) {
		return false
	}
	if max != nil && price.GreaterThan(*max) {
		return false
	}
	return true
}

// matchesAttributes evaluates color/size selections. A variable product
// must have an available variation satisfying the selected color and size
// together; a simple product matches on its declared options regardless of
// per-option stock, since none exists.
func (e *FacetEngine) matchesAttributes(p *models.Product, colors, sizes []string) bool {
	if len(colors) == 0 && len(sizes) == 0 {
		return true
	}

	if p.Kind == models.KindVariable && len(p.Variations) > 0 {
		for _, v := range p.AvailableVariations() {
			if variationSatisfies(p, v, colors, sizes) {
				return true
			}
		}
		return false
	}

	// Simple product: declared attribute options.
	if len(colors) > 0 && !declaredOptionMatch(p, colors, isColorAttribute) {
		return false
	}
	if len(sizes) > 0 && !declaredOptionMatch(p, sizes, isSizeAttribute) {
		return false
	}
	return true
}

// variationSatisfies checks a single variation against the selections. When
// the variation does not declare an attribute at all, the parent product's
// declared options stand in for it.
func variationSatisfies(p *models.Product, v models.Variation, colors, sizes []string) bool {
	color, size := variationPair(v)
	if len(colors) > 0 {
		if color != "" {
			if !containsFold(colors, color) {
				return false
			}
		} else if !declaredOptionMatch(p, colors, isColorAttribute) {
			return false
		}
	}
	if len(sizes) > 0 {
		if size != "" {
			if !containsFold(sizes, size) {
				return false
			}
		} else if !declaredOptionMatch(p, sizes, isSizeAttribute) {
			return false
		}
	}
	return true
}

// variationPair extracts the color and size values of a variation; either
// may be empty when the variation does not declare the attribute.
func variationPair(v models.Variation) (color, size string) {
	for name, value := range v.Attributes {
		if isColorAttribute(name) {
			color = value
		}
		if isSizeAttribute(name) {
			size = value
		}
	}
	return color, size
}

// declaredOptionMatch reports whether any declared option of a matching
// attribute intersects the selected values.
func declaredOptionMatch(p *models.Product, selected []string, match func(string) bool) bool {
	for _, attr := range p.Attributes {
		if !match(attr.Name) {
			continue
		}
		for _, opt := range attr.Options {
			if containsFold(selected, opt) {
				return true
			}
		}
	}
	return false
}

func addAll(set map[string]struct{}, values []string) {
	for _, v := range values {
		if v != "" {
			set[v] = struct{}{}
		}
	}
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func sortedColors(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// sortedSizes sorts numerically when every member parses as a number and
// falls back to plain string comparison for the whole set otherwise.
func sortedSizes(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	allNumeric := true
	for v := range set {
		out = append(out, v)
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			allNumeric = false
		}
	}
	if allNumeric {
		sort.Slice(out, func(i, j int) bool {
			a, _ := strconv.ParseFloat(out[i], 64)
			b, _ := strconv.ParseFloat(out[j], 64)
			return a < b
		})
	} else {
		sort.Strings(out)
	}
	return out
}
