package filter

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matst80/slask-catalogue/pkg/pagination"
	"github.com/matst80/slask-catalogue/pkg/types"
)

// SplitSlug splits a route path of filter segments into tokens.
func SplitSlug(path string) []string {
	parts := strings.Split(strings.Trim(path, types.SlugSeparator), types.SlugSeparator)
	return slices.DeleteFunc(parts, func(part string) bool {
		return strings.TrimSpace(part) == ""
	})
}

// Decode turns filter tokens into a filter state. It never fails: unknown keys
// and malformed values are skipped. A known attribute, category or rubric key
// pointing at a slug that does not exist sets NoSearchResults.
func Decode(tokens []string, ctx Context) *types.ParsedFilterState {
	state := types.NewParsedFilterState()
	state.Limit = ctx.Limit
	if state.Limit <= 0 {
		state.Limit = pagination.DefaultLimit
	}
	state.Search = strings.TrimSpace(ctx.Search)

	for _, raw := range tokens {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		key, value, ok := types.SplitToken(token)
		if !ok {
			decodeBare(state, token, ctx)
			continue
		}
		if key == "" || value == "" {
			continue
		}

		switch key {
		case types.PageKey:
			state.Page = parsePage(value)
		case types.PriceKey:
			if price, ok := ParsePrice(value); ok {
				state.Price = price
			}
		case types.RubricKey:
			if ctx.Rubrics != nil && !ctx.Rubrics.has(value) {
				state.NoSearchResults = true
				continue
			}
			state.RubricSlugs = types.AddSorted(state.RubricSlugs, value)
		case types.CategoryKey:
			if !ctx.Categories.has(value) {
				state.NoSearchResults = true
				continue
			}
			state.Options[key] = types.AddSorted(state.Options[key], value)
		default:
			info, known := ctx.Attributes[key]
			if !known {
				continue
			}
			if !info.Options.has(value) {
				state.NoSearchResults = true
				continue
			}
			if info.SingleSelect {
				state.Options[key] = []string{value}
			} else {
				state.Options[key] = types.AddSorted(state.Options[key], value)
			}
		}
	}

	state.ClearSlug = ClearSlug(state)
	return state
}

func decodeBare(state *types.ParsedFilterState, value string, ctx Context) {
	if page, err := strconv.Atoi(value); err == nil {
		state.Page = max(page, 1)
		return
	}
	if ctx.Rubrics.has(value) {
		state.RubricSlugs = types.AddSorted(state.RubricSlugs, value)
		return
	}
	if ctx.Categories.has(value) {
		state.Options[types.CategoryKey] = types.AddSorted(state.Options[types.CategoryKey], value)
	}
}

func parsePage(value string) int {
	page, err := strconv.Atoi(value)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func parseBound(value string) (*float64, bool) {
	if value == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return &v, true
}

// ParsePrice parses "{from}_{to}" where either bound may be empty.
func ParsePrice(value string) (types.PriceRange, bool) {
	fromValue, toValue, ok := strings.Cut(value, types.RangeSeparator)
	if !ok || (fromValue == "" && toValue == "") {
		return types.PriceRange{}, false
	}
	from, ok := parseBound(fromValue)
	if !ok {
		return types.PriceRange{}, false
	}
	to, ok := parseBound(toValue)
	if !ok {
		return types.PriceRange{}, false
	}
	if from != nil && to != nil && *from > *to {
		from, to = to, from
	}
	return types.PriceRange{From: from, To: to}, true
}

func formatBound(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func FormatPrice(price types.PriceRange) string {
	return formatBound(price.From) + types.RangeSeparator + formatBound(price.To)
}

// Encode serializes a state deterministically: option, category and rubric
// tokens sorted, then the price range, then the page.
func Encode(state *types.ParsedFilterState) []string {
	tokens := state.OptionSlugs()
	for _, rubric := range state.RubricSlugs {
		tokens = append(tokens, types.Token(types.RubricKey, rubric))
	}
	slices.Sort(tokens)
	if state.Price.IsSet() {
		tokens = append(tokens, types.Token(types.PriceKey, FormatPrice(state.Price)))
	}
	return append(tokens, types.Token(types.PageKey, strconv.Itoa(max(state.Page, 1))))
}

func Slug(state *types.ParsedFilterState) string {
	return strings.Join(Encode(state), types.SlugSeparator)
}

func firstPage(state *types.ParsedFilterState) string {
	state.Page = 1
	return Slug(state)
}

// ClearSlug reproduces the current route with pagination reset to the first page.
func ClearSlug(state *types.ParsedFilterState) string {
	return firstPage(state.Clone())
}

// ClearAttributeSlug is the route with one whole dimension removed.
func ClearAttributeSlug(state *types.ParsedFilterState, attribute string) string {
	return firstPage(state.WithOut(attribute))
}

func ClearPriceSlug(state *types.ParsedFilterState) string {
	return ClearAttributeSlug(state, types.PriceKey)
}

func ClearOptionSlug(state *types.ParsedFilterState, attribute, option string) string {
	return firstPage(state.WithOutOption(attribute, option))
}

// AddOptionSlug is the route with the option turned on. replace drops any
// other option of the same attribute.
func AddOptionSlug(state *types.ParsedFilterState, attribute, option string, replace bool) string {
	return firstPage(state.WithOption(attribute, option, replace))
}

func PriceSlug(state *types.ParsedFilterState, price types.PriceRange) string {
	return firstPage(state.WithPrice(price))
}
