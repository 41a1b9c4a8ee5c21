package price

import (
	"math"
	"strings"

	"github.com/matst80/slask-catalogue/pkg/filter"
	"github.com/matst80/slask-catalogue/pkg/types"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DefaultBuckets = 5

var symbols = map[string]string{
	"RUB": "₽",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"SEK": "kr",
	"NOK": "kr",
	"KZT": "₸",
	"UAH": "₴",
}

type Options struct {
	Buckets  int
	Locale   string
	Currency string
	Name     string
}

// Symbol returns the display postfix for an ISO 4217 code, or an empty
// string when the code is not a known currency.
func Symbol(code string) string {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return ""
	}
	if symbol, ok := symbols[unit.String()]; ok {
		return symbol
	}
	return unit.String()
}

// Buckets splits [min, max] into at most n linear ranges with integer bounds.
// Equal extremes give a single range holding exactly that value.
func Buckets(minPrice, maxPrice float64, n int) []types.PriceRange {
	if n <= 0 {
		n = DefaultBuckets
	}
	if minPrice > maxPrice {
		minPrice, maxPrice = maxPrice, minPrice
	}
	if minPrice == maxPrice {
		return []types.PriceRange{types.NewPriceRange(minPrice, maxPrice)}
	}
	lo := math.Floor(minPrice)
	hi := math.Ceil(maxPrice)
	step := math.Max(math.Ceil((hi-lo)/float64(n)), 1)

	result := make([]types.PriceRange, 0, n)
	from := lo
	for i := 1; i <= n && from < hi; i++ {
		// bounds are derived from the index; past 2^53 a step can vanish in rounding
		to := math.Min(lo+float64(i)*step, hi)
		if to <= from {
			continue
		}
		result = append(result, types.NewPriceRange(from, to))
		from = to
	}
	return result
}

// Formatter renders amounts with locale digit grouping and a currency postfix.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

func NewFormatter(locale, currencyCode string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag), symbol: Symbol(currencyCode)}
}

func (f *Formatter) Symbol() string {
	return f.symbol
}

func (f *Formatter) number(value float64) string {
	if value == math.Trunc(value) {
		return f.printer.Sprintf("%d", int64(value))
	}
	return f.printer.Sprintf("%.2f", value)
}

func (f *Formatter) withSymbol(label string) string {
	if f.symbol == "" {
		return label
	}
	return label + " " + f.symbol
}

func (f *Formatter) Amount(value float64) string {
	return f.withSymbol(f.number(value))
}

func (f *Formatter) Label(bucket types.PriceRange) string {
	var label string
	switch {
	case bucket.From != nil && bucket.To != nil && *bucket.From == *bucket.To:
		label = f.number(*bucket.From)
	case bucket.From != nil && bucket.To != nil:
		label = f.number(*bucket.From) + " - " + f.number(*bucket.To)
	case bucket.From != nil:
		label = f.number(*bucket.From) + "+"
	case bucket.To != nil:
		label = "0 - " + f.number(*bucket.To)
	}
	return f.withSymbol(label)
}

// Resolve builds the synthetic price attribute from the price branch of an
// aggregation. A bucket counts the documents its range would return when
// selected. Empty buckets are left out unless selected, and a selected range
// that is not one of the buckets is appended as its own option.
func Resolve(raw *types.PriceFacet, state *types.ParsedFilterState, opts Options) *types.AttributeFacet {
	format := NewFormatter(opts.Locale, opts.Currency)
	result := &types.AttributeFacet{
		Slug:       types.PriceKey,
		Name:       opts.Name,
		Variant:    types.VariantNumber,
		Options:    []*types.OptionFacet{},
		IsSelected: state.Price.IsSet(),
		ClearSlug:  filter.ClearPriceSlug(state),
		Postfix:    format.Symbol(),
	}
	if raw.IsEmpty() {
		return result
	}

	option := func(bucket types.PriceRange, count int, selected bool) *types.OptionFacet {
		return &types.OptionFacet{
			Slug:       filter.FormatPrice(bucket),
			Name:       format.Label(bucket),
			Counter:    count,
			IsSelected: selected,
			ClearSlug:  result.ClearSlug,
			AddSlug:    filter.PriceSlug(state, bucket),
		}
	}
	matchedSelection := false
	for _, bucket := range Buckets(raw.Min, raw.Max, opts.Buckets) {
		selected := state.Price.Equal(bucket)
		count := raw.CountBetween(bucket)
		if count == 0 && !selected {
			continue
		}
		matchedSelection = matchedSelection || selected
		result.Options = append(result.Options, option(bucket, count, selected))
	}
	if state.Price.IsSet() && !matchedSelection {
		result.Options = append(result.Options, option(state.Price, raw.CountBetween(state.Price), true))
	}
	return result
}
