package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selection() *ParsedFilterState {
	state := NewParsedFilterState()
	state.Options["color"] = []string{"red", "white"}
	state.Price = NewPriceRange(1000, 3000)
	state.RubricSlugs = []string{"wine"}
	return state
}

func TestCloneIsIndependent(t *testing.T) {
	state := selection()
	clone := state.Clone()
	require.True(t, state.Equal(clone))

	clone.Options["color"][0] = "rose"
	*clone.Price.From = 10
	clone.RubricSlugs[0] = "beer"
	assert.Equal(t, "red", state.Options["color"][0])
	assert.Equal(t, 1000.0, *state.Price.From)
	assert.Equal(t, "wine", state.RubricSlugs[0])
	assert.False(t, state.Equal(clone))
}

func TestWithOut(t *testing.T) {
	state := selection()

	assert.False(t, state.WithOut(PriceKey).Price.IsSet())
	assert.Empty(t, state.WithOut(RubricKey).RubricSlugs)
	assert.NotContains(t, state.WithOut("color").Options, "color")
	assert.True(t, state.HasAttribute("color"))

	assert.Equal(t, []string{"white"}, state.WithOutOption("color", "red").Options["color"])
	assert.NotContains(t, state.WithOutOption("color", "red").WithOutOption("color", "white").Options, "color")
}

func TestWithOption(t *testing.T) {
	state := selection()
	assert.Equal(t, []string{"red", "rose", "white"}, state.WithOption("color", "rose", false).Options["color"])
	assert.Equal(t, []string{"rose"}, state.WithOption("color", "rose", true).Options["color"])
	assert.Equal(t, []string{"color-red", "color-white"}, state.OptionSlugs())
}

func TestEqualIgnoresClearSlug(t *testing.T) {
	a, b := selection(), selection()
	b.ClearSlug = "something-else"
	assert.True(t, a.Equal(b))
	b.Page = 2
	assert.False(t, a.Equal(b))
}

func TestPriceRange(t *testing.T) {
	from := 100.0
	open := PriceRange{From: &from}
	assert.True(t, open.Contains(100))
	assert.True(t, open.Contains(1e9))
	assert.False(t, open.Contains(99))
	assert.False(t, PriceRange{}.IsSet())
	assert.True(t, NewPriceRange(1, 2).Equal(NewPriceRange(1, 2)))
	assert.False(t, open.Equal(NewPriceRange(100, 200)))
}

func TestLocalize(t *testing.T) {
	names := I18n{"en": "Wine", "ru": "Вино", "de": ""}
	assert.Equal(t, "Вино", names.Localize("ru", "en"))
	assert.Equal(t, "Wine", names.Localize("de", "en"))
	assert.Equal(t, "Wine", names.Localize("fr", "sv"))
	assert.Equal(t, "", I18n{}.Localize("en", "en"))
}

func TestMergeRubrics(t *testing.T) {
	merged := MergeRubrics([]Rubric{
		{Slug: "wine", Attributes: []Attribute{{Slug: "color", Options: []Option{{Slug: "red"}}}}, Categories: []Category{{Slug: "still"}}},
		{Slug: "cider", Attributes: []Attribute{{Slug: "color", Options: []Option{{Slug: "red"}, {Slug: "gold"}}}, {Slug: "sweetness"}}, Categories: []Category{{Slug: "still"}}},
	})
	require.Len(t, merged.Attributes, 2)
	color, ok := merged.Attribute("color")
	require.True(t, ok)
	assert.Equal(t, []Option{{Slug: "red"}, {Slug: "gold"}}, color.Options)
	assert.Len(t, merged.Categories, 1)
}
