package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matst80/slask-catalogue/pkg/types"
)

func wineRubric() *types.Rubric {
	return &types.Rubric{
		Slug:     "wine",
		NameI18n: types.I18n{"en": "Wine"},
		Attributes: []types.Attribute{
			{
				Slug:    "color",
				Variant: types.VariantMultiSelect,
				Options: []types.Option{{Slug: "red"}, {Slug: "white"}, {Slug: "rose"}},
			},
			{
				Slug:    "sweetness",
				Variant: types.VariantSelect,
				Options: []types.Option{{Slug: "dry"}, {Slug: "semi-sweet"}, {Slug: "sweet"}},
			},
		},
		Categories: []types.Category{{Slug: "still"}, {Slug: "sparkling"}},
	}
}

func wineContext(limit int) Context {
	ctx := NewContext(wineRubric(), []types.Rubric{{Slug: "wine"}, {Slug: "beer"}})
	ctx.Limit = limit
	return ctx
}

func sameState(t *testing.T, expected, actual *types.ParsedFilterState) {
	t.Helper()
	assert.Equal(t, expected.Page, actual.Page, "page")
	assert.Equal(t, expected.Options, actual.Options, "options")
	assert.True(t, expected.Price.Equal(actual.Price), "price %v != %v", expected.Price, actual.Price)
	assert.Equal(t, expected.RubricSlugs, actual.RubricSlugs, "rubrics")
}

func TestDecodeWineScenario(t *testing.T) {
	state := Decode([]string{"color-red", "price-1000_3000", "page-2"}, wineContext(2))

	assert.Equal(t, 2, state.Page)
	assert.Equal(t, 2, state.Limit)
	assert.Equal(t, map[string][]string{"color": {"red"}}, state.Options)
	assert.Equal(t, []string{"color-red"}, state.OptionSlugs())
	require.NotNil(t, state.Price.From)
	require.NotNil(t, state.Price.To)
	assert.Equal(t, 1000.0, *state.Price.From)
	assert.Equal(t, 3000.0, *state.Price.To)
	assert.False(t, state.NoSearchResults)

	assert.Equal(t, "color-red/price-1000_3000/page-1", state.ClearSlug)
	clearColor := ClearAttributeSlug(state, "color")
	assert.Equal(t, []string{"price-1000_3000", "page-1"}, SplitSlug(clearColor))
}

func TestDecodeIgnoresUnknownKeys(t *testing.T) {
	state := Decode([]string{"vintage-1990", "color-white", "", "  "}, wineContext(0))
	assert.Equal(t, map[string][]string{"color": {"white"}}, state.Options)
	assert.False(t, state.NoSearchResults)
	assert.Equal(t, 30, state.Limit)
}

func TestDecodeFlagsUnknownOption(t *testing.T) {
	tests := [][]string{
		{"color-blue"},
		{"category-fortified"},
		{"rubric-whisky"},
	}
	for _, tokens := range tests {
		state := Decode(tokens, wineContext(10))
		assert.True(t, state.NoSearchResults, "tokens %v", tokens)
	}
}

func TestDecodeMalformedPrice(t *testing.T) {
	for _, token := range []string{"price-abc_def", "price-1000", "price-_", "price--5_10", "price-NaN_4"} {
		state := Decode([]string{token}, wineContext(10))
		assert.False(t, state.Price.IsSet(), token)
		assert.False(t, state.NoSearchResults, token)
	}
}

func TestDecodePriceBounds(t *testing.T) {
	state := Decode([]string{"price-3000_1000"}, wineContext(10))
	assert.True(t, state.Price.Equal(types.NewPriceRange(1000, 3000)))

	open := Decode([]string{"price-1500_"}, wineContext(10))
	require.NotNil(t, open.Price.From)
	assert.Nil(t, open.Price.To)
	assert.Equal(t, "price-1500_/page-1", open.ClearSlug)
}

func TestDecodePage(t *testing.T) {
	assert.Equal(t, 1, Decode([]string{"page-0"}, wineContext(10)).Page)
	assert.Equal(t, 1, Decode([]string{"page--4"}, wineContext(10)).Page)
	assert.Equal(t, 1, Decode([]string{"page-x"}, wineContext(10)).Page)
	assert.Equal(t, 7, Decode([]string{"page-7"}, wineContext(10)).Page)
}

func TestDecodeAccumulatesAndReplaces(t *testing.T) {
	state := Decode([]string{"color-white", "color-red", "color-red", "sweetness-dry", "sweetness-semi-sweet"}, wineContext(10))
	assert.Equal(t, []string{"red", "white"}, state.Options["color"])
	assert.Equal(t, []string{"semi-sweet"}, state.Options["sweetness"])
}

func TestDecodeBareTokens(t *testing.T) {
	state := Decode([]string{"3", "beer", "sparkling", "nonsense"}, wineContext(10))
	assert.Equal(t, 3, state.Page)
	assert.Equal(t, []string{"beer"}, state.RubricSlugs)
	assert.Equal(t, []string{"sparkling"}, state.Options[types.CategoryKey])
	assert.False(t, state.NoSearchResults)
}

func TestEncodeIsOrderIndependent(t *testing.T) {
	a := Decode([]string{"sweetness-dry", "color-white", "color-red", "category-still", "page-3"}, wineContext(10))
	b := Decode([]string{"page-3", "category-still", "color-red", "sweetness-dry", "color-white"}, wineContext(10))
	assert.Equal(t, Encode(a), Encode(b))
	assert.Equal(t, []string{"category-still", "color-red", "color-white", "sweetness-dry", "page-3"}, Encode(a))
}

func TestRoundTrip(t *testing.T) {
	states := []*types.ParsedFilterState{
		types.NewParsedFilterState(),
		{Page: 4, Options: map[string][]string{"color": {"red", "rose"}}},
		{Page: 1, Options: map[string][]string{"sweetness": {"semi-sweet"}, types.CategoryKey: {"still"}}, Price: types.NewPriceRange(99.5, 1200)},
		{Page: 2, Options: map[string][]string{}, RubricSlugs: []string{"beer", "wine"}},
		{Page: 1, Options: map[string][]string{}, Price: types.PriceRange{To: types.NewPriceRange(0, 10).To}},
	}
	ctx := wineContext(10)
	for _, state := range states {
		decoded := Decode(Encode(state), ctx)
		sameState(t, state, decoded)
		assert.False(t, decoded.NoSearchResults)
	}
}

func TestClearSlugIdempotence(t *testing.T) {
	ctx := wineContext(10)
	state := Decode([]string{"color-red", "color-white", "sweetness-dry", "price-10_20", "page-5"}, ctx)

	cleared := Decode(SplitSlug(ClearAttributeSlug(state, "color")), ctx)
	assert.Empty(t, cleared.Options["color"])
	assert.Equal(t, []string{"dry"}, cleared.Options["sweetness"])
	assert.True(t, cleared.Price.Equal(state.Price))
	assert.Equal(t, 1, cleared.Page)

	noPrice := Decode(SplitSlug(ClearPriceSlug(state)), ctx)
	assert.False(t, noPrice.Price.IsSet())
	assert.Equal(t, state.Options, noPrice.Options)
}

func TestOptionToggles(t *testing.T) {
	state := Decode([]string{"color-red", "sweetness-dry", "page-4"}, wineContext(10))

	assert.Equal(t, "sweetness-dry/page-1", ClearOptionSlug(state, "color", "red"))
	assert.Equal(t, "color-red/color-white/sweetness-dry/page-1", AddOptionSlug(state, "color", "white", false))
	assert.Equal(t, "color-red/sweetness-sweet/page-1", AddOptionSlug(state, "sweetness", "sweet", true))
	assert.Equal(t, "color-red/sweetness-dry/price-5_50/page-1", PriceSlug(state, types.NewPriceRange(5, 50)))

	// the source state is never mutated
	assert.Equal(t, 4, state.Page)
	assert.Equal(t, []string{"red"}, state.Options["color"])
}

func TestSplitSlug(t *testing.T) {
	assert.Equal(t, []string{"color-red", "page-2"}, SplitSlug("/color-red//page-2/"))
	assert.Empty(t, SplitSlug(""))
}
