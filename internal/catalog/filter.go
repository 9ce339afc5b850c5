package catalog

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLanguage is the collation used by the package-level functions.
// The storefront sells in Guinea, so names are ordered the French way.
var DefaultLanguage = language.French

// FilteredResult is the full filtered and sorted sequence, before pagination.
type FilteredResult struct {
	Products   []Product `json:"products"`
	TotalCount int       `json:"total_count"`
}

// Pipeline filters and sorts products using a fixed collation language.
// The zero value is not usable; use NewPipeline.
type Pipeline struct {
	lang language.Tag
}

// NewPipeline returns a pipeline that orders names according to lang.
func NewPipeline(lang language.Tag) *Pipeline {
	return &Pipeline{lang: lang}
}

var defaultPipeline = NewPipeline(DefaultLanguage)

// ApplyFilters runs the default pipeline. See Pipeline.ApplyFilters.
func ApplyFilters(products []Product, criteria Criteria) FilteredResult {
	return defaultPipeline.ApplyFilters(products, criteria)
}

// ApplyFilters keeps the products matching the category and the inclusive price bounds
// and stable-sorts them by criteria.Sort. The input slice is never modified.
func (p *Pipeline) ApplyFilters(products []Product, criteria Criteria) FilteredResult {
	filtered := lo.Filter(products, func(item Product, _ int) bool {
		return criteria.matches(item)
	})

	switch criteria.Sort {
	case SortNameAsc:
		// collate.Collator keeps internal buffers, one per call
		col := collate.New(p.lang)
		slices.SortStableFunc(filtered, func(a, b Product) int {
			return col.CompareString(a.Name, b.Name)
		})
	case SortNameDesc:
		// same collation with operands swapped: equal names keep their relative order
		col := collate.New(p.lang)
		slices.SortStableFunc(filtered, func(a, b Product) int {
			return col.CompareString(b.Name, a.Name)
		})
	case SortPriceAsc:
		slices.SortStableFunc(filtered, func(a, b Product) int {
			return cmp.Compare(a.Price, b.Price)
		})
	case SortPriceDesc:
		slices.SortStableFunc(filtered, func(a, b Product) int {
			return cmp.Compare(b.Price, a.Price)
		})
	case SortPopularity:
		slices.SortStableFunc(filtered, func(a, b Product) int {
			return cmp.Compare(b.ReviewCount, a.ReviewCount)
		})
	}

	return FilteredResult{
		Products:   filtered,
		TotalCount: len(filtered),
	}
}
