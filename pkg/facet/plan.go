package facet

import (
	"slices"

	"github.com/matst80/slask-catalogue/pkg/types"
)

const (
	BranchDocs         = "docs"
	BranchCountAllDocs = "countAllDocs"
	BranchAttributes   = "attributes"
	BranchPrices       = "prices"
)

type Sort string

const (
	SortDefault   Sort = ""
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortName      Sort = "name"
	SortStartsAt  Sort = "starts_at"
)

func ParseSort(value string) Sort {
	switch Sort(value) {
	case SortPriceAsc, SortPriceDesc, SortName, SortStartsAt:
		return Sort(value)
	}
	return SortDefault
}

// Dimension is one attribute's OR-set of filter tokens. Dimensions combine
// with AND.
type Dimension struct {
	Attribute string   `json:"attribute"`
	Tokens    []string `json:"tokens"`
}

type Match struct {
	Collection  string   `json:"collection"`
	RubricSlugs []string `json:"rubricSlugs,omitempty"`
	Search      string   `json:"search,omitempty"`
}

type DocsBranch struct {
	Sort  Sort `json:"sort,omitempty"`
	Page  int  `json:"page"`
	Limit int  `json:"limit"`
}

// AggregationRequest describes one round trip: the initial match, the
// filters, and the branches computed from the single matched set.
type AggregationRequest struct {
	Match      Match            `json:"match"`
	Filters    []Dimension      `json:"filters,omitempty"`
	Price      types.PriceRange `json:"price"`
	Docs       DocsBranch       `json:"docs"`
	Attributes []string         `json:"attributes"`
	Prices     bool             `json:"prices"`
}

// FiltersWithout returns every dimension except the one for attribute.
func (r *AggregationRequest) FiltersWithout(attribute string) []Dimension {
	return slices.DeleteFunc(slices.Clone(r.Filters), func(d Dimension) bool {
		return d.Attribute == attribute
	})
}

func (r *AggregationRequest) Filter(attribute string) (Dimension, bool) {
	for _, d := range r.Filters {
		if d.Attribute == attribute {
			return d, true
		}
	}
	return Dimension{}, false
}

type PlanOptions struct {
	Collection string
	Sort       Sort
}

// Plan turns a decoded filter state and the rubric scope into an aggregation
// request. Rubric tokens take precedence over the scope's own slug; an empty
// scope slug without rubric tokens spans every rubric.
func Plan(state *types.ParsedFilterState, scope *types.Rubric, opts PlanOptions) *AggregationRequest {
	req := &AggregationRequest{
		Match: Match{
			Collection: opts.Collection,
			Search:     state.Search,
		},
		Price: state.Price,
		Docs: DocsBranch{
			Sort:  opts.Sort,
			Page:  max(state.Page, 1),
			Limit: state.Limit,
		},
		Attributes: CountedAttributes(scope),
		Prices:     true,
	}
	switch {
	case scope != nil && scope.Slug != "":
		req.Match.RubricSlugs = []string{scope.Slug}
	case len(state.RubricSlugs) > 0:
		req.Match.RubricSlugs = slices.Clone(state.RubricSlugs)
	}
	for _, attribute := range state.Attributes() {
		options := state.Options[attribute]
		if len(options) == 0 {
			continue
		}
		tokens := make([]string, 0, len(options))
		for _, option := range options {
			tokens = append(tokens, types.Token(attribute, option))
		}
		req.Filters = append(req.Filters, Dimension{Attribute: attribute, Tokens: tokens})
	}
	return req
}

// CountedAttributes lists the attribute slugs whose options get counters,
// in display order, followed by the category key when the scope has categories.
func CountedAttributes(scope *types.Rubric) []string {
	result := make([]string, 0)
	if scope == nil {
		return result
	}
	for _, attribute := range scope.Attributes {
		if attribute.HideFacet {
			continue
		}
		result = append(result, attribute.Slug)
	}
	if len(scope.Categories) > 0 {
		result = append(result, types.CategoryKey)
	}
	return result
}
