package types

type OptionFacet struct {
	Slug       string         `json:"slug"`
	Name       string         `json:"name"`
	ParentId   string         `json:"parentId,omitempty"`
	Counter    int            `json:"counter"`
	IsSelected bool           `json:"isSelected"`
	ClearSlug  string         `json:"clearSlug"`
	AddSlug    string         `json:"addSlug"`
	Children   []*OptionFacet `json:"children,omitempty"`
}

type AttributeFacet struct {
	Slug                    string           `json:"slug"`
	Name                    string           `json:"name"`
	Variant                 AttributeVariant `json:"variant"`
	Options                 []*OptionFacet   `json:"options"`
	IsSelected              bool             `json:"isSelected"`
	ClearSlug               string           `json:"clearSlug"`
	ShowAsLinkInFilter      bool             `json:"showAsLinkInFilter"`
	ShowAsAccordionInFilter bool             `json:"showAsAccordionInFilter"`
	VisibleOptionsCount     int              `json:"visibleOptionsCount,omitempty"`
	Postfix                 string           `json:"postfix,omitempty"`
}

// SelectedOptions walks the option tree and returns the selected nodes
// without their children.
func (a *AttributeFacet) SelectedOptions() []*OptionFacet {
	result := make([]*OptionFacet, 0)
	var walk func(options []*OptionFacet)
	walk = func(options []*OptionFacet) {
		for _, option := range options {
			if option.IsSelected {
				selected := *option
				selected.Children = nil
				result = append(result, &selected)
			}
			walk(option.Children)
		}
	}
	walk(a.Options)
	return result
}

type CataloguePayload struct {
	RubricSlug         string              `json:"rubricSlug,omitempty"`
	RubricName         string              `json:"rubricName,omitempty"`
	Search             string              `json:"search,omitempty"`
	Docs               []CatalogueDocument `json:"docs"`
	TotalDocs          int                 `json:"totalDocs"`
	TotalPages         int                 `json:"totalPages"`
	Page               int                 `json:"page"`
	Limit              int                 `json:"limit"`
	ClearSlug          string              `json:"clearSlug"`
	NoSearchResults    bool                `json:"noSearchResults,omitempty"`
	Attributes         []*AttributeFacet   `json:"attributes"`
	SelectedAttributes []*AttributeFacet   `json:"selectedAttributes"`
}

type PricePoint struct {
	Price float64 `json:"price"`
	Count int     `json:"count"`
}

// PriceFacet is the raw price branch of an aggregation: the extent of the
// matched prices and how many documents carry each distinct price.
type PriceFacet struct {
	Min       float64      `json:"min"`
	Max       float64      `json:"max"`
	Histogram []PricePoint `json:"histogram"`
}

func (p *PriceFacet) IsEmpty() bool {
	return p == nil || len(p.Histogram) == 0
}

// CountBetween counts documents priced inside the inclusive range.
func (p *PriceFacet) CountBetween(price PriceRange) int {
	if p == nil {
		return 0
	}
	count := 0
	for _, point := range p.Histogram {
		if price.Contains(point.Price) {
			count += point.Count
		}
	}
	return count
}
