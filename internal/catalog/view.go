package catalog

import "slices"

// View holds the state of one catalog browsing session: a snapshot of the product
// list, the current criteria and the page cursor.
//
// View enforces the orchestration rules around the pure pipeline: price bounds stay
// ordered, and any criteria change resets the cursor to the first page.
// A View is not safe for concurrent use.
type View struct {
	pipeline *Pipeline
	products []Product
	maxPrice int64
	criteria Criteria
	page     int
	pageSize int
}

// NewView creates a view over products using the default pipeline.
func NewView(products []Product, pageSize int) *View {
	return NewViewWithPipeline(defaultPipeline, products, pageSize)
}

// NewViewWithPipeline creates a view that filters with the given pipeline.
func NewViewWithPipeline(p *Pipeline, products []Product, pageSize int) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	v := &View{pipeline: p, pageSize: pageSize}
	v.Reload(products)
	return v
}

// Reload replaces the product snapshot and restores default criteria.
// This is the only operation that recomputes the selectable price ceiling.
func (v *View) Reload(products []Product) {
	v.products = slices.Clone(products)
	v.maxPrice = MaxPrice(v.products)
	v.criteria = DefaultCriteria(v.maxPrice)
	v.page = 1
}

// MaxSelectablePrice is the highest price in the snapshot.
func (v *View) MaxSelectablePrice() int64 {
	return v.maxPrice
}

// Criteria returns the current criteria.
func (v *View) Criteria() Criteria {
	return v.criteria
}

// Page returns the requested page cursor, before clamping.
func (v *View) Page() int {
	return v.page
}

// PageSize returns the fixed page size.
func (v *View) PageSize() int {
	return v.pageSize
}

// SetCategory restricts the view to one category, or lifts the restriction with CategoryAll.
// An empty category is treated as CategoryAll.
func (v *View) SetCategory(category string) {
	if category == "" {
		category = CategoryAll
	}
	v.criteria.Category = category
	v.page = 1
}

// SetSort changes the ordering.
func (v *View) SetSort(mode SortMode) {
	v.criteria.Sort = mode
	v.page = 1
}

// SetPriceMin moves the lower bound. Raising it above the upper bound drags the upper bound along.
func (v *View) SetPriceMin(price int64) {
	price = max(price, 0)
	v.criteria.PriceMin = price
	if price > v.criteria.PriceMax {
		v.criteria.PriceMax = price
	}
	v.page = 1
}

// SetPriceMax moves the upper bound. Lowering it below the lower bound drags the lower bound along.
func (v *View) SetPriceMax(price int64) {
	price = max(price, 0)
	v.criteria.PriceMax = price
	if price < v.criteria.PriceMin {
		v.criteria.PriceMin = price
	}
	v.page = 1
}

// SetPage moves the cursor. The value is clamped when the result is computed.
func (v *View) SetPage(page int) {
	v.page = page
}

// Result filters, sorts and paginates the snapshot with the current state.
// The stored cursor is updated to the clamped page.
func (v *View) Result() PageResult {
	filtered := v.pipeline.ApplyFilters(v.products, v.criteria)
	res := Paginate(filtered.Products, v.page, v.pageSize)
	v.page = res.Page
	return res
}
