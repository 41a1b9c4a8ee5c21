package filter

import (
	"github.com/matst80/slask-catalogue/pkg/pagination"
	"github.com/matst80/slask-catalogue/pkg/types"
)

type set map[string]struct{}

func (s set) has(value string) bool {
	_, ok := s[value]
	return ok
}

type AttributeInfo struct {
	Options      set
	SingleSelect bool
}

// Context describes what a token may legally reference. A nil Rubrics set
// means rubric tokens are accepted without validation.
type Context struct {
	Attributes map[string]AttributeInfo
	Categories set
	Rubrics    set
	Limit      int
	Search     string
}

// NewContext collects the attribute, option and category slugs of the rubric
// in scope. rubrics lists every rubric a rubric token may name.
func NewContext(rubric *types.Rubric, rubrics []types.Rubric) Context {
	ctx := Context{
		Attributes: map[string]AttributeInfo{},
		Categories: set{},
		Limit:      pagination.DefaultLimit,
	}
	if rubric != nil {
		for _, attribute := range rubric.Attributes {
			info := AttributeInfo{
				Options:      make(set, len(attribute.Options)),
				SingleSelect: attribute.IsSingleSelect(),
			}
			for _, option := range attribute.Options {
				info.Options[option.Slug] = struct{}{}
			}
			ctx.Attributes[attribute.Slug] = info
		}
		for _, category := range rubric.Categories {
			ctx.Categories[category.Slug] = struct{}{}
		}
	}
	if rubrics != nil {
		ctx.Rubrics = make(set, len(rubrics))
		for _, r := range rubrics {
			ctx.Rubrics[r.Slug] = struct{}{}
		}
	}
	return ctx
}
