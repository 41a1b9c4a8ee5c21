package types

import (
	"maps"
	"slices"
)

type AttributeVariant string

const (
	VariantSelect      AttributeVariant = "select"
	VariantMultiSelect AttributeVariant = "multiSelect"
	VariantNumber      AttributeVariant = "number"
	VariantString      AttributeVariant = "string"
)

// I18n maps a locale code to a translated string.
type I18n map[string]string

// Localize never fails: it tries locale, then fallback, then the first
// non-empty value in locale order.
func (m I18n) Localize(locale, fallback string) string {
	if v, ok := m[locale]; ok && v != "" {
		return v
	}
	if v, ok := m[fallback]; ok && v != "" {
		return v
	}
	for _, key := range slices.Sorted(maps.Keys(m)) {
		if m[key] != "" {
			return m[key]
		}
	}
	return ""
}

type Option struct {
	Id       string `json:"id"`
	Slug     string `json:"slug"`
	NameI18n I18n   `json:"nameI18n"`
	ParentId string `json:"parentId,omitempty"`
	Priority int    `json:"prio,omitempty"`
}

type Attribute struct {
	Id                      string           `json:"id"`
	Slug                    string           `json:"slug"`
	NameI18n                I18n             `json:"nameI18n"`
	Variant                 AttributeVariant `json:"variant"`
	Options                 []Option         `json:"options"`
	ShowAsLinkInFilter      bool             `json:"showAsLinkInFilter,omitempty"`
	ShowAsAccordionInFilter bool             `json:"showAsAccordionInFilter,omitempty"`
	VisibleOptionsCount     int              `json:"visibleOptionsCount,omitempty"`
	HideFacet               bool             `json:"hide,omitempty"`
	Priority                int              `json:"prio,omitempty"`
}

func (a *Attribute) IsSingleSelect() bool {
	return a.Variant == VariantSelect
}

func (a *Attribute) HasOption(slug string) bool {
	return slices.ContainsFunc(a.Options, func(o Option) bool {
		return o.Slug == slug
	})
}

type Category struct {
	Id       string `json:"id"`
	Slug     string `json:"slug"`
	NameI18n I18n   `json:"nameI18n"`
	ParentId string `json:"parentId,omitempty"`
	Priority int    `json:"prio,omitempty"`
}

// Rubric scopes which attributes, categories and documents are in play.
// Attributes are kept in display order.
type Rubric struct {
	Id         string      `json:"id"`
	Slug       string      `json:"slug"`
	NameI18n   I18n        `json:"nameI18n"`
	Attributes []Attribute `json:"attributes"`
	Categories []Category  `json:"categories,omitempty"`
	Priority   int         `json:"prio,omitempty"`
}

func (r *Rubric) Attribute(slug string) (*Attribute, bool) {
	for i := range r.Attributes {
		if r.Attributes[i].Slug == slug {
			return &r.Attributes[i], true
		}
	}
	return nil, false
}

func (r *Rubric) HasCategory(slug string) bool {
	return slices.ContainsFunc(r.Categories, func(c Category) bool {
		return c.Slug == slug
	})
}

// MergeRubrics builds a synthetic scope for searches spanning several rubrics.
// Attributes sharing a slug are merged, options are unioned by slug.
func MergeRubrics(rubrics []Rubric) *Rubric {
	result := &Rubric{NameI18n: I18n{}}
	for _, rubric := range rubrics {
		for _, attribute := range rubric.Attributes {
			existing, ok := result.Attribute(attribute.Slug)
			if !ok {
				attribute.Options = slices.Clone(attribute.Options)
				result.Attributes = append(result.Attributes, attribute)
				continue
			}
			for _, option := range attribute.Options {
				if !existing.HasOption(option.Slug) {
					existing.Options = append(existing.Options, option)
				}
			}
		}
		for _, category := range rubric.Categories {
			if !result.HasCategory(category.Slug) {
				result.Categories = append(result.Categories, category)
			}
		}
	}
	return result
}
