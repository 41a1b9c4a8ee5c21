package catalogue

import (
	"context"

	"github.com/matst80/slask-catalogue/pkg/filter"
	"github.com/matst80/slask-catalogue/pkg/tree"
	"github.com/matst80/slask-catalogue/pkg/types"
)

type CategoryLink struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	FilterSlug string `json:"filterSlug"`
}

// CategoryTree returns the rubric's categories nested for navigation, each
// with the filter route selecting only that category.
func (s *Service) CategoryTree(ctx context.Context, rubricSlug, locale string) ([]*tree.Node[CategoryLink], error) {
	rubric, err := s.metadata.Rubric(ctx, rubricSlug)
	if err != nil {
		return nil, err
	}
	opts := s.castOptions(Request{Locale: locale})
	nodes := tree.Build(rubric.Categories, tree.Options[types.Category, string]{
		Id: func(c types.Category) string {
			if c.Id != "" {
				return c.Id
			}
			return c.Slug
		},
		Parent: func(c types.Category) (string, bool) {
			return c.ParentId, c.ParentId != ""
		},
		Priority: func(c types.Category) int { return c.Priority },
	})

	var convert func(nodes []*tree.Node[types.Category]) []*tree.Node[CategoryLink]
	convert = func(nodes []*tree.Node[types.Category]) []*tree.Node[CategoryLink] {
		result := make([]*tree.Node[CategoryLink], 0, len(nodes))
		for _, node := range nodes {
			state := types.NewParsedFilterState()
			state.Options[types.CategoryKey] = []string{node.Value.Slug}
			name := node.Value.NameI18n.Localize(opts.Locale, opts.FallbackLocale)
			if name == "" {
				name = node.Value.Slug
			}
			result = append(result, &tree.Node[CategoryLink]{
				Value: CategoryLink{
					Slug:       node.Value.Slug,
					Name:       name,
					FilterSlug: filter.Slug(state),
				},
				Children: convert(node.Children),
			})
		}
		return result
	}
	return convert(nodes), nil
}
