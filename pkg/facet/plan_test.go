package facet

import (
	"testing"

	"github.com/matst80/slask-catalogue/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wine() *types.Rubric {
	return &types.Rubric{
		Slug: "wine",
		Attributes: []types.Attribute{
			{Slug: "color", Variant: types.VariantMultiSelect, Options: []types.Option{{Slug: "red"}, {Slug: "white"}}},
			{Slug: "internal", HideFacet: true},
			{Slug: "sweetness", Variant: types.VariantSelect, Options: []types.Option{{Slug: "dry"}}},
		},
		Categories: []types.Category{{Slug: "still"}},
	}
}

func TestPlanWineScenario(t *testing.T) {
	state := types.NewParsedFilterState()
	state.Page = 2
	state.Limit = 2
	state.Options["color"] = []string{"red"}
	state.Price = types.NewPriceRange(1000, 3000)

	req := Plan(state, wine(), PlanOptions{Collection: "products", Sort: SortPriceAsc})

	assert.Equal(t, Match{Collection: "products", RubricSlugs: []string{"wine"}}, req.Match)
	assert.Equal(t, []Dimension{{Attribute: "color", Tokens: []string{"color-red"}}}, req.Filters)
	assert.True(t, req.Price.Equal(state.Price))
	assert.Equal(t, DocsBranch{Sort: SortPriceAsc, Page: 2, Limit: 2}, req.Docs)
	assert.Equal(t, []string{"color", "sweetness", types.CategoryKey}, req.Attributes)
	assert.True(t, req.Prices)
	assert.Empty(t, req.FiltersWithout("color"))
}

func TestPlanDimensionsAreSortedAndOrSets(t *testing.T) {
	state := types.NewParsedFilterState()
	state.Options["sweetness"] = []string{"dry"}
	state.Options["color"] = []string{"red", "white"}
	state.Options[types.CategoryKey] = []string{"still"}

	req := Plan(state, wine(), PlanOptions{})
	require.Len(t, req.Filters, 3)
	assert.Equal(t, types.CategoryKey, req.Filters[0].Attribute)
	assert.Equal(t, []string{"color-red", "color-white"}, req.Filters[1].Tokens)

	without := req.FiltersWithout("color")
	require.Len(t, without, 2)
	assert.Len(t, req.Filters, 3)

	d, ok := req.Filter("sweetness")
	require.True(t, ok)
	assert.Equal(t, []string{"sweetness-dry"}, d.Tokens)
}

func TestPlanRubricScope(t *testing.T) {
	state := types.NewParsedFilterState()
	state.RubricSlugs = []string{"beer", "wine"}
	req := Plan(state, &types.Rubric{}, PlanOptions{})
	assert.Equal(t, []string{"beer", "wine"}, req.Match.RubricSlugs)

	scoped := Plan(state, &types.Rubric{Slug: "wine"}, PlanOptions{})
	assert.Equal(t, []string{"wine"}, scoped.Match.RubricSlugs)

	crossRubric := Plan(types.NewParsedFilterState(), &types.Rubric{}, PlanOptions{})
	assert.Empty(t, crossRubric.Match.RubricSlugs)
	assert.Empty(t, crossRubric.Attributes)
}

func TestEmptyResult(t *testing.T) {
	req := Plan(types.NewParsedFilterState(), wine(), PlanOptions{})
	raw := EmptyResult(req)
	assert.Equal(t, 1, raw.Page)
	assert.Empty(t, raw.Docs)
	assert.Len(t, raw.Attributes, 3)
	assert.Equal(t, 0, raw.Count("color", "red"))
	assert.True(t, raw.Prices.IsEmpty())
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortPriceDesc, ParseSort("price_desc"))
	assert.Equal(t, SortDefault, ParseSort("popular"))
}
