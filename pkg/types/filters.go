package types

import (
	"maps"
	"slices"
	"strings"
)

const (
	PageKey     = "page"
	CategoryKey = "category"
	PriceKey    = "price"
	RubricKey   = "rubric"

	TokenSeparator = "-"
	RangeSeparator = "_"
	SlugSeparator  = "/"
)

type PriceRange struct {
	From *float64 `json:"from,omitempty"`
	To   *float64 `json:"to,omitempty"`
}

func NewPriceRange(from, to float64) PriceRange {
	return PriceRange{From: &from, To: &to}
}

func (p PriceRange) IsSet() bool {
	return p.From != nil || p.To != nil
}

func (p PriceRange) Contains(value float64) bool {
	if p.From != nil && value < *p.From {
		return false
	}
	if p.To != nil && value > *p.To {
		return false
	}
	return true
}

func (p PriceRange) Equal(other PriceRange) bool {
	return equalBound(p.From, other.From) && equalBound(p.To, other.To)
}

func equalBound(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ParsedFilterState is the decoded form of the filter segments of a catalogue route.
// Options holds the selected option slugs per attribute slug, sorted and without
// duplicates. The category selection lives under CategoryKey.
type ParsedFilterState struct {
	Page            int                 `json:"page"`
	Limit           int                 `json:"limit"`
	Options         map[string][]string `json:"options"`
	Price           PriceRange          `json:"priceRange"`
	RubricSlugs     []string            `json:"rubricSlugs,omitempty"`
	Search          string              `json:"search,omitempty"`
	ClearSlug       string              `json:"clearSlug"`
	NoSearchResults bool                `json:"noSearchResults,omitempty"`
}

func NewParsedFilterState() *ParsedFilterState {
	return &ParsedFilterState{
		Page:    1,
		Options: map[string][]string{},
	}
}

func (f *ParsedFilterState) Clone() *ParsedFilterState {
	result := *f
	result.Options = make(map[string][]string, len(f.Options))
	for attribute, options := range f.Options {
		result.Options[attribute] = slices.Clone(options)
	}
	result.RubricSlugs = slices.Clone(f.RubricSlugs)
	if f.Price.From != nil {
		from := *f.Price.From
		result.Price.From = &from
	}
	if f.Price.To != nil {
		to := *f.Price.To
		result.Price.To = &to
	}
	return &result
}

// WithOut returns a copy of the state without the selection of one dimension.
// PriceKey drops the price range, RubricKey the rubric scope.
func (f *ParsedFilterState) WithOut(key string) *ParsedFilterState {
	result := f.Clone()
	switch key {
	case PriceKey:
		result.Price = PriceRange{}
	case RubricKey:
		result.RubricSlugs = nil
	default:
		delete(result.Options, key)
	}
	return result
}

func (f *ParsedFilterState) WithOutOption(attribute, option string) *ParsedFilterState {
	result := f.Clone()
	options := slices.DeleteFunc(result.Options[attribute], func(o string) bool {
		return o == option
	})
	if len(options) == 0 {
		delete(result.Options, attribute)
	} else {
		result.Options[attribute] = options
	}
	return result
}

// WithOption adds an option to the attribute's OR-set, or replaces the
// current selection when replace is set (single select attributes).
func (f *ParsedFilterState) WithOption(attribute, option string, replace bool) *ParsedFilterState {
	result := f.Clone()
	if replace {
		result.Options[attribute] = []string{option}
		return result
	}
	result.Options[attribute] = AddSorted(result.Options[attribute], option)
	return result
}

func (f *ParsedFilterState) WithPrice(price PriceRange) *ParsedFilterState {
	result := f.Clone()
	result.Price = price
	return result
}

// Equal compares the selection, ignoring the derived ClearSlug.
func (f *ParsedFilterState) Equal(other *ParsedFilterState) bool {
	if f.Page != other.Page || f.Limit != other.Limit || f.Search != other.Search ||
		f.NoSearchResults != other.NoSearchResults || !f.Price.Equal(other.Price) {
		return false
	}
	if !slices.Equal(f.RubricSlugs, other.RubricSlugs) {
		return false
	}
	return maps.EqualFunc(f.Options, other.Options, slices.Equal[[]string])
}

func (f *ParsedFilterState) HasOption(attribute, option string) bool {
	_, found := slices.BinarySearch(f.Options[attribute], option)
	return found
}

func (f *ParsedFilterState) HasRubric(slug string) bool {
	_, found := slices.BinarySearch(f.RubricSlugs, slug)
	return found
}

func (f *ParsedFilterState) HasAttribute(attribute string) bool {
	if attribute == PriceKey {
		return f.Price.IsSet()
	}
	return len(f.Options[attribute]) > 0
}

// Attributes returns the selected attribute slugs in sorted order.
func (f *ParsedFilterState) Attributes() []string {
	return slices.Sorted(maps.Keys(f.Options))
}

// OptionSlugs returns every selected option as a key-value filter token,
// the same form documents carry in their filter slugs.
func (f *ParsedFilterState) OptionSlugs() []string {
	result := make([]string, 0, len(f.Options))
	for attribute, options := range f.Options {
		for _, option := range options {
			result = append(result, Token(attribute, option))
		}
	}
	slices.Sort(result)
	return result
}

func (f *ParsedFilterState) IsFiltered() bool {
	return len(f.Options) > 0 || f.Price.IsSet() || len(f.RubricSlugs) > 0
}

func Token(key, value string) string {
	return key + TokenSeparator + value
}

// SplitToken splits on the first separator; keys never contain it.
func SplitToken(token string) (key, value string, ok bool) {
	return strings.Cut(token, TokenSeparator)
}

func AddSorted(list []string, value string) []string {
	idx, found := slices.BinarySearch(list, value)
	if found {
		return list
	}
	return slices.Insert(list, idx, value)
}
