package service

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/veldshoe/storefront_api/internal/models"
)

func simpleProduct(id, price string, slugs ...string) models.Product {
	p := models.Product{
		ID:          id,
		Name:        "Product " + id,
		Kind:        models.KindSimple,
		Price:       price,
		StockStatus: models.StockInStock,
	}
	for _, slug := range slugs {
		p.Categories = append(p.Categories, models.Category{ID: "cat-" + slug, Name: slug, Slug: slug})
	}
	return p
}

func variableProduct(id, price string, variations ...models.Variation) models.Product {
	colorSet := map[string]struct{}{}
	sizeSet := map[string]struct{}{}
	for _, v := range variations {
		if c := v.Attributes["pa_colour"]; c != "" {
			colorSet[c] = struct{}{}
		}
		if s := v.Attributes["pa_size"]; s != "" {
			sizeSet[s] = struct{}{}
		}
	}
	return models.Product{
		ID:    id,
		Name:  "Product " + id,
		Kind:  models.KindVariable,
		Price: price,
		Attributes: []models.Attribute{
			{Name: "pa_colour", Options: sortedColors(colorSet)},
			{Name: "pa_size", Options: sortedSizes(sizeSet)},
		},
		Variations: variations,
	}
}

func variation(id, color, size string, status models.StockStatus) models.Variation {
	return models.Variation{
		ID:          id,
		Name:        color + " / " + size,
		StockStatus: status,
		Attributes:  map[string]string{"pa_colour": color, "pa_size": size},
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"plain", "449.00", "449", true},
		{"currency symbol and grouping", "R 1,234.50", "1234.50", true},
		{"integer", "750", "750", true},
		{"zero", "0", "0", true},
		{"empty", "", "0", false},
		{"symbol only", "R ", "0", false},
		{"letters only", "POA", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ParsePrice(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if want := decimal.RequireFromString(tt.want); !got.Equal(want) {
				t.Errorf("ParsePrice(%q) = %s, want %s", tt.raw, got.String(), want.String())
			}
		})
	}
}

func TestApplyFiltersSubsetAndIdempotent(t *testing.T) {
	e := NewFacetEngine(false)
	products := []models.Product{
		simpleProduct("1", "R 449.00", "sneakers"),
		simpleProduct("2", "R 899.00", "boots"),
		simpleProduct("3", "R 1,250.00", "boots"),
	}
	sel := FilterSelection{Categories: []string{"boots"}}

	once := e.ApplyFilters(products, sel)
	twice := e.ApplyFilters(once, sel)

	if len(once) > len(products) {
		t.Fatalf("filtered set larger than input: %d > %d", len(once), len(products))
	}
	for _, p := range once {
		if len(p.Categories) == 0 || p.Categories[0].Slug != "boots" {
			t.Errorf("product %s not in selected category", p.ID)
		}
	}
	if !reflect.DeepEqual(once, twice) {
		t.Error("applying the same selection twice changed the result")
	}
}

func TestApplyFiltersCategoryCaseInsensitive(t *testing.T) {
	e := NewFacetEngine(false)
	products := []models.Product{simpleProduct("1", "449", "Sneakers")}

	got := e.ApplyFilters(products, FilterSelection{Categories: []string{"sneakers"}})
	if len(got) != 1 {
		t.Fatalf("expected case-insensitive slug match, got %d products", len(got))
	}
}

func TestApplyFiltersExcludesUnpurchasable(t *testing.T) {
	e := NewFacetEngine(false)

	outOfStock := simpleProduct("1", "449")
	outOfStock.StockStatus = models.StockOutOfStock
	backorder := simpleProduct("2", "449")
	backorder.StockStatus = models.StockOnBackorder
	deadVariable := variableProduct("3", "899",
		variation("3a", "black", "8", models.StockOutOfStock),
		variation("3b", "black", "9", models.StockOutOfStock),
	)
	liveVariable := variableProduct("4", "899",
		variation("4a", "black", "8", models.StockOutOfStock),
		variation("4b", "black", "9", models.StockInStock),
	)

	got := e.ApplyFilters([]models.Product{outOfStock, backorder, deadVariable, liveVariable}, FilterSelection{})

	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	want := []string{"2", "4"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("purchasable ids = %v, want %v", ids, want)
	}
}

func TestPriceFilterStrictVsCompat(t *testing.T) {
	products := []models.Product{
		simpleProduct("priced", "R 449.00"),
		simpleProduct("unpriced", ""),
	}
	sel := FilterSelection{MinPrice: dec("0"), MaxPrice: dec("500")}

	strict := NewFacetEngine(false).ApplyFilters(products, sel)
	if len(strict) != 1 || strict[0].ID != "priced" {
		t.Errorf("strict mode: got %d products, want only the priced one", len(strict))
	}

	compat := NewFacetEngine(true).ApplyFilters(products, sel)
	if len(compat) != 2 {
		t.Errorf("compat mode: got %d products, want 2 (unpriced treated as zero)", len(compat))
	}
}

func TestPriceFilterInclusiveBounds(t *testing.T) {
	e := NewFacetEngine(false)
	products := []models.Product{simpleProduct("1", "450.00")}

	tests := []struct {
		name string
		sel  FilterSelection
		want int
	}{
		{"exact min", FilterSelection{MinPrice: dec("450")}, 1},
		{"exact max", FilterSelection{MaxPrice: dec("450")}, 1},
		{"below min", FilterSelection{MinPrice: dec("450.01")}, 0},
		{"above max", FilterSelection{MaxPrice: dec("449.99")}, 0},
		{"no bounds", FilterSelection{}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.ApplyFilters(products, tt.sel); len(got) != tt.want {
				t.Errorf("got %d products, want %d", len(got), tt.want)
			}
		})
	}
}

func TestAttributeFilterRequiresCoOccurrence(t *testing.T) {
	e := NewFacetEngine(false)
	// Black only exists in size 8, red only in size 9.
	p := variableProduct("1", "899",
		variation("1a", "black", "8", models.StockInStock),
		variation("1b", "red", "9", models.StockInStock),
	)

	if got := e.ApplyFilters([]models.Product{p}, FilterSelection{Colors: []string{"black"}, Sizes: []string{"8"}}); len(got) != 1 {
		t.Error("expected match: black/8 exists in one variation")
	}
	if got := e.ApplyFilters([]models.Product{p}, FilterSelection{Colors: []string{"black"}, Sizes: []string{"9"}}); len(got) != 0 {
		t.Error("expected no match: black and 9 never co-occur in a variation")
	}
}

func TestAttributeFilterIgnoresOutOfStockVariations(t *testing.T) {
	e := NewFacetEngine(false)
	p := variableProduct("1", "899",
		variation("1a", "black", "8", models.StockOutOfStock),
		variation("1b", "red", "9", models.StockInStock),
	)

	if got := e.ApplyFilters([]models.Product{p}, FilterSelection{Colors: []string{"black"}}); len(got) != 0 {
		t.Error("out-of-stock variation should not satisfy a color filter")
	}
}

func TestSimpleProductAttributeMatch(t *testing.T) {
	e := NewFacetEngine(false)
	p := simpleProduct("1", "449")
	p.Attributes = []models.Attribute{{Name: "Color", Options: []string{"Black", "White"}}}

	if got := e.ApplyFilters([]models.Product{p}, FilterSelection{Colors: []string{"black"}}); len(got) != 1 {
		t.Error("simple product should match on declared options, case-insensitively")
	}
	if got := e.ApplyFilters([]models.Product{p}, FilterSelection{Colors: []string{"red"}}); len(got) != 0 {
		t.Error("simple product should not match an undeclared color")
	}
}

func TestDeriveFacetsNarrowing(t *testing.T) {
	e := NewFacetEngine(false)
	products := []models.Product{
		variableProduct("1", "899",
			variation("1a", "black", "8", models.StockInStock),
			variation("1b", "black", "9", models.StockOutOfStock),
			variation("1c", "red", "9", models.StockInStock),
		),
	}

	t.Run("no selection offers everything", func(t *testing.T) {
		f := e.DeriveFacets(products, FilterSelection{})
		if !reflect.DeepEqual(f.Colors, []string{"black", "red"}) {
			t.Errorf("colors = %v", f.Colors)
		}
		if !reflect.DeepEqual(f.Sizes, []string{"8", "9"}) {
			t.Errorf("sizes = %v", f.Sizes)
		}
	})

	t.Run("selected color narrows sizes to in-stock pairings", func(t *testing.T) {
		f := e.DeriveFacets(products, FilterSelection{Colors: []string{"black"}})
		// black/9 is out of stock, so only size 8 pairs with black.
		if !reflect.DeepEqual(f.Sizes, []string{"8"}) {
			t.Errorf("sizes = %v, want [8]", f.Sizes)
		}
		if !reflect.DeepEqual(f.Colors, []string{"black", "red"}) {
			t.Errorf("colors should stay unnarrowed, got %v", f.Colors)
		}
	})

	t.Run("selected size narrows colors", func(t *testing.T) {
		f := e.DeriveFacets(products, FilterSelection{Sizes: []string{"9"}})
		if !reflect.DeepEqual(f.Colors, []string{"red"}) {
			t.Errorf("colors = %v, want [red]", f.Colors)
		}
	})
}

func TestSortedSizes(t *testing.T) {
	tests := []struct {
		name  string
		sizes []string
		want  []string
	}{
		{"numeric", []string{"10", "8", "9.5"}, []string{"8", "9.5", "10"}},
		{"mixed falls back to lexical", []string{"M", "10", "8"}, []string{"10", "8", "M"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := map[string]struct{}{}
			for _, s := range tt.sizes {
				set[s] = struct{}{}
			}
			if got := sortedSizes(set); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("sortedSizes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPriceBounds(t *testing.T) {
	e := NewFacetEngine(false)
	products := []models.Product{
		simpleProduct("1", "R 449.50"),
		simpleProduct("2", "R 1,299.20"),
		simpleProduct("3", ""),
		simpleProduct("4", "0"),
	}

	min, max := e.PriceBounds(products)
	if min != 449 || max != 1300 {
		t.Errorf("PriceBounds = (%d, %d), want (449, 1300)", min, max)
	}

	min, max = e.PriceBounds([]models.Product{simpleProduct("3", "")})
	if min != 0 || max != 0 {
		t.Errorf("PriceBounds with no parsable prices = (%d, %d), want (0, 0)", min, max)
	}
}
