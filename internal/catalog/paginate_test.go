package catalog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pricedProducts(values ...int64) []Product {
	out := make([]Product, len(values))
	for i, v := range values {
		out[i] = Product{ID: fmt.Sprintf("p%d", i+1), Name: fmt.Sprintf("Produit %d", i+1), Price: v}
	}
	return out
}

func Test_Paginate_PriceAscendingPages(t *testing.T) {
	// given
	products := pricedProducts(30, 10, 50, 20, 40)
	filtered := ApplyFilters(products, Criteria{Category: CategoryAll, PriceMax: 50, Sort: SortPriceAsc})

	testCases := []struct {
		page     int
		expected []int64
		start    int
		end      int
	}{
		{page: 1, expected: []int64{10, 20}, start: 1, end: 2},
		{page: 2, expected: []int64{30, 40}, start: 3, end: 4},
		{page: 3, expected: []int64{50}, start: 5, end: 5},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("page %d", tc.page), func(t *testing.T) {
			// when
			res := Paginate(filtered.Products, tc.page, 2)
			// then
			assert.Equal(t, tc.expected, prices(res.Products))
			assert.Equal(t, tc.page, res.Page)
			assert.Equal(t, 3, res.TotalPages)
			assert.Equal(t, 5, res.TotalCount)
			assert.Equal(t, tc.start, res.StartIndex)
			assert.Equal(t, tc.end, res.EndIndex)
		})
	}
}

func Test_Paginate_Empty(t *testing.T) {
	// when
	res := Paginate(nil, 1, 12)
	// then
	assert.Empty(t, res.Products)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 1, res.TotalPages)
	assert.Equal(t, 0, res.TotalCount)
	assert.Equal(t, 0, res.StartIndex)
	assert.Equal(t, 0, res.EndIndex)
}

func Test_Paginate_ClampsOutOfRangePages(t *testing.T) {
	products := pricedProducts(1, 2, 3, 4, 5, 6, 7)

	testCases := []struct {
		name     string
		page     int
		expected int
	}{
		{name: "zero behaves as first", page: 0, expected: 1},
		{name: "negative behaves as first", page: -3, expected: 1},
		{name: "past the end behaves as last", page: 4 + 5, expected: 4},
		{name: "in range is untouched", page: 2, expected: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			res := Paginate(products, tc.page, 2)
			want := Paginate(products, tc.expected, 2)
			// then
			assert.Equal(t, tc.expected, res.Page)
			assert.Equal(t, want, res)
		})
	}
}

func Test_Paginate_PagesPartitionSequence(t *testing.T) {
	for _, size := range []int{1, 2, 3, 5, 12} {
		t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
			// given
			products := pricedProducts(5, 3, 8, 1, 9, 2, 7, 4, 6, 10, 11)
			first := Paginate(products, 1, size)

			// when
			var all []Product
			for page := 1; page <= first.TotalPages; page++ {
				res := Paginate(products, page, size)
				require.LessOrEqual(t, len(res.Products), size)
				all = append(all, res.Products...)
			}

			// then
			assert.Equal(t, products, all)
		})
	}
}

func Test_Paginate_DefaultPageSize(t *testing.T) {
	// given
	products := pricedProducts(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13)
	// when
	res := Paginate(products, 1, 0)
	// then
	assert.Len(t, res.Products, DefaultPageSize)
	assert.Equal(t, 2, res.TotalPages)
}

func Test_Paginate_ReturnsCopy(t *testing.T) {
	// given
	products := pricedProducts(1, 2, 3)
	// when
	res := Paginate(products, 1, 2)
	res.Products[0].Price = 999
	// then
	assert.Equal(t, int64(1), products[0].Price)
}

func Test_TotalPages(t *testing.T) {
	testCases := []struct {
		total, size, expected int
	}{
		{total: 0, size: 12, expected: 1},
		{total: 1, size: 12, expected: 1},
		{total: 12, size: 12, expected: 1},
		{total: 13, size: 12, expected: 2},
		{total: 24, size: 12, expected: 2},
		{total: 5, size: 2, expected: 3},
		{total: 30, size: 0, expected: 3},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d/%d", tc.total, tc.size), func(t *testing.T) {
			assert.Equal(t, tc.expected, TotalPages(tc.total, tc.size))
		})
	}
}
