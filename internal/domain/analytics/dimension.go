package analytics

import (
	"sort"
	"strings"
)

// Dimension is a categorical field wagers can be grouped by
type Dimension string

const (
	DimensionSport      Dimension = "sport"
	DimensionTrack      Dimension = "track"
	DimensionBetType    Dimension = "bet_type"
	DimensionMarketType Dimension = "market_type"
)

// categoryDimensions is the closed set of dimensions valid per category
var categoryDimensions = map[Category]map[Dimension]bool{
	CategorySport: {
		DimensionSport:      true,
		DimensionBetType:    true,
		DimensionMarketType: true,
	},
	CategoryRacing: {
		DimensionTrack:      true,
		DimensionBetType:    true,
		DimensionMarketType: true,
	},
}

// ParseDimension validates a dimension name
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(strings.TrimSpace(s))
	switch d {
	case DimensionSport, DimensionTrack, DimensionBetType, DimensionMarketType:
		return d, nil
	}
	return "", &QueryError{Param: "dimension", Value: s, Reason: "must be one of sport, track, bet_type, market_type"}
}

// ParseCategory validates a category name
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if _, ok := categoryDimensions[c]; ok {
		return c, nil
	}
	return "", &QueryError{Param: "category", Value: s, Reason: "must be one of sport, racing"}
}

// Dimensions returns the dimensions valid for a category in a stable order
func (c Category) Dimensions() []Dimension {
	dims := make([]Dimension, 0, len(categoryDimensions[c]))
	for d := range categoryDimensions[c] {
		dims = append(dims, d)
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })
	return dims
}

// Allows reports whether d is a valid dimension for the category
func (c Category) Allows(d Dimension) bool {
	return categoryDimensions[c][d]
}

// Filters are equality constraints applied before grouping
type Filters struct {
	Category Category
	Equals   map[Dimension]string
}

// ForCategory returns filters restricted to one category
func ForCategory(c Category) Filters {
	return Filters{Category: c}
}

// With returns a copy of f that also requires dimension d to equal value.
// The value is canonicalized the same way the classifier canonicalizes keys.
func (f Filters) With(d Dimension, value string) Filters {
	equals := make(map[Dimension]string, len(f.Equals)+1)
	for k, v := range f.Equals {
		equals[k] = v
	}
	equals[d] = CanonicalKey(value)
	return Filters{Category: f.Category, Equals: equals}
}

// Validate checks the filters against the category dimension mapping
func (f Filters) Validate() error {
	if _, err := ParseCategory(string(f.Category)); err != nil {
		return err
	}
	for d := range f.Equals {
		if _, err := ParseDimension(string(d)); err != nil {
			return err
		}
		if !f.Category.Allows(d) {
			return &QueryError{Param: "filter", Value: string(d), Reason: "not valid for category " + string(f.Category)}
		}
	}
	return nil
}

// Match reports whether a record satisfies the filters
func (f Filters) Match(r BetRecord) bool {
	if r.Category != f.Category {
		return false
	}
	for d, v := range f.Equals {
		if r.Key(d) != v {
			return false
		}
	}
	return true
}

// CanonicalKey normalizes a categorical value: trimmed, case preserved,
// empty mapped to Unclassified
func CanonicalKey(s string) string {
	return strings.TrimSpace(s)
}
