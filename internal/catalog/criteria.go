package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

// ErrUnknownSortMode is returned by ParseSortMode for unsupported values.
var ErrUnknownSortMode = errors.New("unknown sort mode")

// SortMode selects the ordering applied after filtering.
type SortMode int

const (
	// SortDefault keeps the source order (relevance).
	SortDefault SortMode = iota
	SortNameAsc
	SortNameDesc
	SortPriceAsc
	SortPriceDesc
	// SortPopularity orders by review count, most reviewed first.
	SortPopularity
)

var sortModeNames = map[SortMode]string{
	SortDefault:    "default",
	SortNameAsc:    "name_asc",
	SortNameDesc:   "name_desc",
	SortPriceAsc:   "price_asc",
	SortPriceDesc:  "price_desc",
	SortPopularity: "popularity",
}

// String returns the wire name of the sort mode.
func (m SortMode) String() string {
	if name, ok := sortModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("SortMode(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m SortMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *SortMode) UnmarshalText(text []byte) error {
	parsed, err := ParseSortMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseSortMode converts a wire name into a SortMode.
// An empty value and "relevance" both map to SortDefault.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "relevance":
		return SortDefault, nil
	case "name_asc":
		return SortNameAsc, nil
	case "name_desc":
		return SortNameDesc, nil
	case "price_asc":
		return SortPriceAsc, nil
	case "price_desc":
		return SortPriceDesc, nil
	case "popularity":
		return SortPopularity, nil
	default:
		return SortDefault, fmt.Errorf("%w: %q", ErrUnknownSortMode, s)
	}
}

// Criteria is the combination of category filter, price bounds and sort mode chosen by a user.
// Callers keep PriceMin <= PriceMax; View enforces it.
type Criteria struct {
	Category string   `json:"category"`
	PriceMin int64    `json:"price_min"`
	PriceMax int64    `json:"price_max"`
	Sort     SortMode `json:"sort"`
}

// DefaultCriteria returns the criteria a fresh catalog view starts with.
func DefaultCriteria(maxPrice int64) Criteria {
	return Criteria{
		Category: CategoryAll,
		PriceMin: 0,
		PriceMax: maxPrice,
		Sort:     SortDefault,
	}
}

func (c Criteria) matches(p Product) bool {
	if c.Category != CategoryAll && (p.Category == "" || p.Category != c.Category) {
		return false
	}
	return p.Price >= c.PriceMin && p.Price <= c.PriceMax
}
