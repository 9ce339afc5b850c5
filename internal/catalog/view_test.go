package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NewView_Defaults(t *testing.T) {
	// when
	v := NewView(sampleProducts(), 0)

	// then
	assert.Equal(t, DefaultPageSize, v.PageSize())
	assert.Equal(t, 1, v.Page())
	assert.Equal(t, int64(400_000), v.MaxSelectablePrice())
	assert.Equal(t, DefaultCriteria(400_000), v.Criteria())

	res := v.Result()
	assert.Equal(t, 6, res.TotalCount)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, ids(res.Products))
}

func Test_View_PriceBoundsStayOrdered(t *testing.T) {
	testCases := []struct {
		name        string
		apply       func(v *View)
		expectedMin int64
		expectedMax int64
	}{
		{
			name:        "min above max drags max up",
			apply:       func(v *View) { v.SetPriceMax(100_000); v.SetPriceMin(200_000) },
			expectedMin: 200_000,
			expectedMax: 200_000,
		},
		{
			name:        "max below min drags min down",
			apply:       func(v *View) { v.SetPriceMin(200_000); v.SetPriceMax(50_000) },
			expectedMin: 50_000,
			expectedMax: 50_000,
		},
		{
			name:        "negative values clamp to zero",
			apply:       func(v *View) { v.SetPriceMin(-5); v.SetPriceMax(-10) },
			expectedMin: 0,
			expectedMax: 0,
		},
		{
			name:        "ordered bounds are kept",
			apply:       func(v *View) { v.SetPriceMin(20_000); v.SetPriceMax(150_000) },
			expectedMin: 20_000,
			expectedMax: 150_000,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			v := NewView(sampleProducts(), 2)
			// when
			tc.apply(v)
			// then
			c := v.Criteria()
			assert.Equal(t, tc.expectedMin, c.PriceMin)
			assert.Equal(t, tc.expectedMax, c.PriceMax)
			assert.LessOrEqual(t, c.PriceMin, c.PriceMax)
		})
	}
}

func Test_View_CriteriaChangesResetPage(t *testing.T) {
	changes := map[string]func(v *View){
		"category":  func(v *View) { v.SetCategory("Audio") },
		"sort":      func(v *View) { v.SetSort(SortPriceAsc) },
		"price min": func(v *View) { v.SetPriceMin(10) },
		"price max": func(v *View) { v.SetPriceMax(300_000) },
	}

	for name, change := range changes {
		t.Run(name, func(t *testing.T) {
			// given
			v := NewView(sampleProducts(), 2)
			v.SetPage(3)
			assert.Equal(t, 3, v.Result().Page)
			// when
			change(v)
			// then
			assert.Equal(t, 1, v.Page())
		})
	}
}

func Test_View_SetPageClampsOnResult(t *testing.T) {
	// given
	v := NewView(sampleProducts(), 4)
	// when
	v.SetPage(10)
	res := v.Result()
	// then
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 2, v.Page())
	assert.Equal(t, []string{"5", "6"}, ids(res.Products))
}

func Test_View_MaxSelectablePriceIgnoresFilters(t *testing.T) {
	// given
	v := NewView(sampleProducts(), 2)
	// when
	v.SetCategory("Accessoires")
	v.SetPriceMax(60_000)
	res := v.Result()
	// then
	assert.Equal(t, []string{"3"}, ids(res.Products))
	assert.Equal(t, int64(400_000), v.MaxSelectablePrice())
}

func Test_View_EmptyCategoryMeansAll(t *testing.T) {
	// given
	v := NewView(sampleProducts(), 12)
	v.SetCategory("Audio")
	// when
	v.SetCategory("")
	// then
	assert.Equal(t, CategoryAll, v.Criteria().Category)
	assert.Equal(t, 6, v.Result().TotalCount)
}

func Test_View_Reload(t *testing.T) {
	// given
	v := NewView(sampleProducts(), 2)
	v.SetCategory("Audio")
	v.SetSort(SortNameAsc)
	v.SetPage(2)

	// when
	v.Reload(pricedProducts(5, 15, 25))

	// then
	assert.Equal(t, int64(25), v.MaxSelectablePrice())
	assert.Equal(t, DefaultCriteria(25), v.Criteria())
	assert.Equal(t, 1, v.Page())
	res := v.Result()
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, 2, res.TotalPages)
}

func Test_View_SnapshotIsIsolated(t *testing.T) {
	// given
	products := sampleProducts()
	v := NewView(products, 12)
	// when
	products[0].Price = 1
	// then
	assert.Equal(t, int64(250_000), v.Result().Products[0].Price)
}

func Test_View_EmptySnapshot(t *testing.T) {
	// given
	v := NewView(nil, 12)
	// when
	res := v.Result()
	// then
	assert.Equal(t, int64(0), v.MaxSelectablePrice())
	assert.Equal(t, PageResult{Products: []Product{}, Page: 1, TotalPages: 1}, res)
}
