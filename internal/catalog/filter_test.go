package catalog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func ids(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func prices(products []Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.Price
	}
	return out
}

func sampleProducts() []Product {
	return []Product{
		{ID: "1", Name: "Casque", Price: 250_000, Category: "Audio", ReviewCount: 12},
		{ID: "2", Name: "Enceinte", Price: 400_000, Category: "Audio", ReviewCount: 40},
		{ID: "3", Name: "Chargeur", Price: 50_000, Category: "Accessoires"},
		{ID: "4", Name: "Écouteurs", Price: 150_000, Category: "Audio", ReviewCount: 40},
		{ID: "5", Name: "Câble", Price: 20_000},
		{ID: "6", Name: "Batterie", Price: 150_000, Category: "Accessoires", ReviewCount: 3},
	}
}

func Test_ApplyFilters_Category(t *testing.T) {
	testCases := []struct {
		name     string
		category string
		expected []string
	}{
		{name: "all keeps everything", category: CategoryAll, expected: []string{"1", "2", "3", "4", "5", "6"}},
		{name: "exact match", category: "Audio", expected: []string{"1", "2", "4"}},
		{name: "case sensitive", category: "audio", expected: []string{}},
		{name: "unknown category", category: "Maison", expected: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			criteria := Criteria{Category: tc.category, PriceMin: 0, PriceMax: 1_000_000}
			// when
			res := ApplyFilters(sampleProducts(), criteria)
			// then
			assert.Equal(t, tc.expected, ids(res.Products))
			assert.Equal(t, len(tc.expected), res.TotalCount)
		})
	}
}

func Test_ApplyFilters_MissingCategoryNeverMatches(t *testing.T) {
	// given
	products := []Product{
		{ID: "audio", Name: "Casque", Price: 10, Category: "Audio"},
		{ID: "none", Name: "Mystère", Price: 10},
	}
	// when
	res := ApplyFilters(products, Criteria{Category: "Audio", PriceMin: 0, PriceMax: 10})
	// then
	assert.Equal(t, []string{"audio"}, ids(res.Products))
	assert.Equal(t, 1, res.TotalCount)
}

func Test_ApplyFilters_PriceBoundsInclusive(t *testing.T) {
	// given
	criteria := Criteria{Category: CategoryAll, PriceMin: 50_000, PriceMax: 250_000}
	// when
	res := ApplyFilters(sampleProducts(), criteria)
	// then
	assert.Equal(t, []string{"1", "3", "4", "6"}, ids(res.Products))
}

func Test_ApplyFilters_Sort(t *testing.T) {
	testCases := []struct {
		name     string
		sort     SortMode
		expected []string
	}{
		{name: "default keeps input order", sort: SortDefault, expected: []string{"1", "2", "3", "4", "5", "6"}},
		{name: "price ascending, ties keep input order", sort: SortPriceAsc, expected: []string{"5", "3", "4", "6", "1", "2"}},
		{name: "price descending, ties keep input order", sort: SortPriceDesc, expected: []string{"2", "1", "4", "6", "3", "5"}},
		{name: "popularity, missing counts as zero", sort: SortPopularity, expected: []string{"2", "4", "1", "6", "3", "5"}},
		{name: "name ascending, accents collate with base letter", sort: SortNameAsc, expected: []string{"6", "5", "1", "3", "4", "2"}},
		{name: "name descending", sort: SortNameDesc, expected: []string{"2", "4", "3", "1", "5", "6"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			criteria := Criteria{Category: CategoryAll, PriceMin: 0, PriceMax: 1_000_000, Sort: tc.sort}
			// when
			res := ApplyFilters(sampleProducts(), criteria)
			// then
			assert.Equal(t, tc.expected, ids(res.Products))
		})
	}
}

func Test_ApplyFilters_NameDescendingMirrorsAscending(t *testing.T) {
	// given
	products := []Product{
		{ID: "lamp-1", Name: "Lampe", Price: 1},
		{ID: "bulb", Name: "Ampoule", Price: 1},
		{ID: "lamp-2", Name: "Lampe", Price: 1},
		{ID: "desk", Name: "Bureau", Price: 1},
	}

	// when
	asc := ApplyFilters(products, Criteria{Category: CategoryAll, PriceMax: 1, Sort: SortNameAsc})
	desc := ApplyFilters(products, Criteria{Category: CategoryAll, PriceMax: 1, Sort: SortNameDesc})

	// then
	assert.Equal(t, []string{"bulb", "desk", "lamp-1", "lamp-2"}, ids(asc.Products))
	// equal names keep their input order in both directions
	assert.Equal(t, []string{"lamp-1", "lamp-2", "desk", "bulb"}, ids(desc.Products))
}

func Test_ApplyFilters_AccentedNamesDoNotSortLast(t *testing.T) {
	// given
	products := []Product{
		{ID: "z", Name: "Zèbre en peluche"},
		{ID: "e", Name: "Éclair"},
		{ID: "a", Name: "Ananas"},
	}
	// when
	res := ApplyFilters(products, Criteria{Category: CategoryAll, Sort: SortNameAsc})
	// then
	assert.Equal(t, []string{"a", "e", "z"}, ids(res.Products))
}

func Test_ApplyFilters_StableUnderPriceTies(t *testing.T) {
	// given
	products := []Product{
		{ID: "second-name-first", Name: "Zinc", Price: 100},
		{ID: "cheap", Name: "Bois", Price: 10},
		{ID: "first-name-second", Name: "Acier", Price: 100},
	}
	// when
	res := ApplyFilters(products, Criteria{Category: CategoryAll, PriceMax: 100, Sort: SortPriceAsc})
	// then
	assert.Equal(t, []string{"cheap", "second-name-first", "first-name-second"}, ids(res.Products))
}

func Test_ApplyFilters_DoesNotMutateInput(t *testing.T) {
	// given
	products := sampleProducts()
	before := ids(products)
	// when
	res := ApplyFilters(products, Criteria{Category: "Audio", PriceMax: 1_000_000, Sort: SortPriceDesc})
	res.Products[0].Name = "changed"
	// then
	assert.Equal(t, before, ids(products))
	assert.Equal(t, "Casque", products[0].Name)
	assert.NotEqual(t, "changed", products[1].Name)
}

func Test_ApplyFilters_Properties(t *testing.T) {
	criteriaSet := []Criteria{
		{Category: CategoryAll, PriceMin: 0, PriceMax: 1_000_000, Sort: SortDefault},
		{Category: "Audio", PriceMin: 100_000, PriceMax: 300_000, Sort: SortNameAsc},
		{Category: "Accessoires", PriceMin: 0, PriceMax: 200_000, Sort: SortPopularity},
		{Category: CategoryAll, PriceMin: 150_000, PriceMax: 150_000, Sort: SortPriceDesc},
		{Category: CategoryAll, PriceMin: 0, PriceMax: 0, Sort: SortNameDesc},
	}
	products := sampleProducts()
	byID := make(map[string]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for i, criteria := range criteriaSet {
		t.Run(fmt.Sprintf("criteria %d", i), func(t *testing.T) {
			res := ApplyFilters(products, criteria)

			// subset, no duplicates, predicates hold
			seen := make(map[string]bool)
			for _, p := range res.Products {
				src, ok := byID[p.ID]
				require.True(t, ok, "product %s was invented", p.ID)
				assert.Equal(t, src, p)
				assert.False(t, seen[p.ID], "product %s duplicated", p.ID)
				seen[p.ID] = true
				if criteria.Category != CategoryAll {
					assert.Equal(t, criteria.Category, p.Category)
				}
				assert.GreaterOrEqual(t, p.Price, criteria.PriceMin)
				assert.LessOrEqual(t, p.Price, criteria.PriceMax)
			}

			// idempotence
			again := ApplyFilters(res.Products, criteria)
			assert.Equal(t, ids(res.Products), ids(again.Products))
		})
	}
}

func Test_ApplyFilters_DefaultSortPreservesRelativeOrder(t *testing.T) {
	// given
	products := sampleProducts()
	criteria := Criteria{Category: "Audio", PriceMin: 0, PriceMax: 1_000_000}
	// when
	res := ApplyFilters(products, criteria)
	// then
	var expected []string
	for _, p := range products {
		if p.Category == "Audio" {
			expected = append(expected, p.ID)
		}
	}
	assert.Equal(t, expected, ids(res.Products))
}

func Test_ApplyFilters_Empty(t *testing.T) {
	// when
	res := ApplyFilters(nil, DefaultCriteria(0))
	// then
	assert.Empty(t, res.Products)
	assert.Equal(t, 0, res.TotalCount)
}

func Test_Pipeline_CustomLanguage(t *testing.T) {
	// given
	// Swedish sorts "ö" after "z"; the root collation treats it as a variant of "o".
	products := []Product{
		{ID: "o-umlaut", Name: "Öl"},
		{ID: "z", Name: "Zon"},
		{ID: "o", Name: "Ost"},
	}
	criteria := Criteria{Category: CategoryAll, Sort: SortNameAsc}

	// when
	swedish := NewPipeline(language.Swedish).ApplyFilters(products, criteria)
	french := NewPipeline(language.French).ApplyFilters(products, criteria)

	// then
	assert.Equal(t, []string{"o", "z", "o-umlaut"}, ids(swedish.Products))
	assert.Equal(t, []string{"o-umlaut", "o", "z"}, ids(french.Products))
}

func Test_MaxPrice(t *testing.T) {
	assert.Equal(t, int64(0), MaxPrice(nil))
	assert.Equal(t, int64(400_000), MaxPrice(sampleProducts()))
}

func Test_ParseSortMode(t *testing.T) {
	testCases := []struct {
		input    string
		expected SortMode
		err      bool
	}{
		{input: "", expected: SortDefault},
		{input: "relevance", expected: SortDefault},
		{input: "DEFAULT", expected: SortDefault},
		{input: "name_asc", expected: SortNameAsc},
		{input: "name_desc", expected: SortNameDesc},
		{input: "price_asc", expected: SortPriceAsc},
		{input: " price_desc ", expected: SortPriceDesc},
		{input: "popularity", expected: SortPopularity},
		{input: "newest", err: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			mode, err := ParseSortMode(tc.input)
			if tc.err {
				assert.ErrorIs(t, err, ErrUnknownSortMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, mode)
		})
	}
}

func Test_SortMode_Text(t *testing.T) {
	text, err := SortPopularity.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "popularity", string(text))

	var m SortMode
	require.NoError(t, m.UnmarshalText([]byte("price_desc")))
	assert.Equal(t, SortPriceDesc, m)
	assert.Error(t, m.UnmarshalText([]byte("bogus")))
}
