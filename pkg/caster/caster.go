package caster

import (
	"github.com/matst80/slask-catalogue/pkg/facet"
	"github.com/matst80/slask-catalogue/pkg/filter"
	"github.com/matst80/slask-catalogue/pkg/pagination"
	"github.com/matst80/slask-catalogue/pkg/price"
	"github.com/matst80/slask-catalogue/pkg/tree"
	"github.com/matst80/slask-catalogue/pkg/types"
)

type Options struct {
	Locale         string
	FallbackLocale string
	Currency       string
	PriceBuckets   int
	PriceName      types.I18n
	CategoryName   types.I18n
}

func (o Options) localize(m types.I18n, fallback string) string {
	if name := m.Localize(o.Locale, o.FallbackLocale); name != "" {
		return name
	}
	return fallback
}

// Cast shapes a raw aggregation into the catalogue payload. It never touches
// storage: every slug is derived from the decoded state.
func Cast(raw *facet.RawFacets, state *types.ParsedFilterState, rubric *types.Rubric, opts Options) *types.CataloguePayload {
	return cast(raw, state, rubric, opts, false)
}

// CastEmpty is the payload for a request known to match nothing. Attributes
// keep every option with a zero counter.
func CastEmpty(state *types.ParsedFilterState, rubric *types.Rubric, opts Options) *types.CataloguePayload {
	raw := &facet.RawFacets{
		Docs:       []types.Document{},
		Page:       1,
		Attributes: map[string]map[string]int{},
		Prices:     &types.PriceFacet{},
	}
	return cast(raw, state, rubric, opts, true)
}

func cast(raw *facet.RawFacets, state *types.ParsedFilterState, rubric *types.Rubric, opts Options, keepEmpty bool) *types.CataloguePayload {
	if rubric == nil {
		rubric = &types.Rubric{}
	}
	page := pagination.Resolve(raw.Page, state.Limit, raw.CountAllDocs)
	format := price.NewFormatter(opts.Locale, opts.Currency)

	payload := &types.CataloguePayload{
		RubricSlug:         rubric.Slug,
		RubricName:         opts.localize(rubric.NameI18n, rubric.Slug),
		Search:             state.Search,
		Docs:               make([]types.CatalogueDocument, 0, len(raw.Docs)),
		TotalDocs:          raw.CountAllDocs,
		TotalPages:         page.TotalPages,
		Page:               page.Page,
		Limit:              page.Limit,
		ClearSlug:          filter.ClearSlug(state),
		NoSearchResults:    state.NoSearchResults,
		Attributes:         []*types.AttributeFacet{},
		SelectedAttributes: []*types.AttributeFacet{},
	}
	for _, doc := range raw.Docs {
		payload.Docs = append(payload.Docs, types.CatalogueDocument{
			Id:         doc.Id,
			Slug:       doc.Slug,
			RubricSlug: doc.RubricSlug,
			Name:       opts.localize(doc.NameI18n, doc.Slug),
			Price:      doc.Price,
			PriceLabel: format.Amount(doc.Price),
			ImageURL:   doc.ImageURL,
			StartsAt:   doc.StartsAt,
		})
	}

	for i := range rubric.Attributes {
		attribute := &rubric.Attributes[i]
		if attribute.HideFacet {
			continue
		}
		if result := castAttribute(raw, state, attribute, opts, keepEmpty); result != nil {
			payload.Attributes = append(payload.Attributes, result)
		}
	}
	if categories := categoryAttribute(rubric, opts); categories != nil {
		if result := castAttribute(raw, state, categories, opts, keepEmpty); result != nil {
			payload.Attributes = append(payload.Attributes, result)
		}
	}
	priceFacet := price.Resolve(raw.Prices, state, price.Options{
		Buckets:  opts.PriceBuckets,
		Locale:   opts.Locale,
		Currency: opts.Currency,
		Name:     opts.localize(opts.PriceName, types.PriceKey),
	})
	if len(priceFacet.Options) > 0 || priceFacet.IsSelected {
		payload.Attributes = append(payload.Attributes, priceFacet)
	}

	for _, attribute := range payload.Attributes {
		if !attribute.IsSelected {
			continue
		}
		selected := *attribute
		selected.Options = attribute.SelectedOptions()
		payload.SelectedAttributes = append(payload.SelectedAttributes, &selected)
	}
	return payload
}

// categoryAttribute presents the rubric's categories as a multi select
// attribute keyed by the category token.
func categoryAttribute(rubric *types.Rubric, opts Options) *types.Attribute {
	if len(rubric.Categories) == 0 {
		return nil
	}
	result := &types.Attribute{
		Slug:     types.CategoryKey,
		NameI18n: opts.CategoryName,
		Variant:  types.VariantMultiSelect,
		Options:  make([]types.Option, 0, len(rubric.Categories)),
	}
	for _, category := range rubric.Categories {
		result.Options = append(result.Options, types.Option{
			Id:       category.Id,
			Slug:     category.Slug,
			NameI18n: category.NameI18n,
			ParentId: category.ParentId,
			Priority: category.Priority,
		})
	}
	return result
}

func optionId(o types.Option) string {
	if o.Id != "" {
		return o.Id
	}
	return o.Slug
}

// castAttribute nests the options, attaches counters and slugs, and prunes
// unselected options without documents. A parent stays while any child is
// visible. Returns nil when nothing is left to show.
func castAttribute(raw *facet.RawFacets, state *types.ParsedFilterState, attribute *types.Attribute, opts Options, keepEmpty bool) *types.AttributeFacet {
	replace := attribute.IsSingleSelect()
	nodes := tree.Build(attribute.Options, tree.Options[types.Option, string]{
		Id: optionId,
		Parent: func(o types.Option) (string, bool) {
			return o.ParentId, o.ParentId != ""
		},
		Priority: func(o types.Option) int { return o.Priority },
	})

	var convert func(nodes []*tree.Node[types.Option]) []*types.OptionFacet
	convert = func(nodes []*tree.Node[types.Option]) []*types.OptionFacet {
		result := make([]*types.OptionFacet, 0, len(nodes))
		for _, node := range nodes {
			option := node.Value
			children := convert(node.Children)
			counter := raw.Count(attribute.Slug, option.Slug)
			selected := state.HasOption(attribute.Slug, option.Slug)
			if counter == 0 && !selected && !keepEmpty && len(children) == 0 {
				continue
			}
			result = append(result, &types.OptionFacet{
				Slug:       option.Slug,
				Name:       opts.localize(option.NameI18n, option.Slug),
				ParentId:   option.ParentId,
				Counter:    counter,
				IsSelected: selected,
				ClearSlug:  filter.ClearOptionSlug(state, attribute.Slug, option.Slug),
				AddSlug:    filter.AddOptionSlug(state, attribute.Slug, option.Slug, replace),
				Children:   children,
			})
		}
		return result
	}

	options := convert(nodes)
	isSelected := state.HasAttribute(attribute.Slug)
	if len(options) == 0 && !isSelected && !keepEmpty {
		return nil
	}
	return &types.AttributeFacet{
		Slug:                    attribute.Slug,
		Name:                    opts.localize(attribute.NameI18n, attribute.Slug),
		Variant:                 attribute.Variant,
		Options:                 options,
		IsSelected:              isSelected,
		ClearSlug:               filter.ClearAttributeSlug(state, attribute.Slug),
		ShowAsLinkInFilter:      attribute.ShowAsLinkInFilter,
		ShowAsAccordionInFilter: attribute.ShowAsAccordionInFilter,
		VisibleOptionsCount:     attribute.VisibleOptionsCount,
	}
}
