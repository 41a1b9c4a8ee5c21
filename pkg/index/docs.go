package index

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/matst80/slask-catalogue/pkg/facet"
	"github.com/matst80/slask-catalogue/pkg/pagination"
	"github.com/matst80/slask-catalogue/pkg/types"
)

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

// compareDocs orders by relevance when a search score is present, then by
// priority and newest internal id first.
func (i *Index) compareDocs(sort facet.Sort, scores map[uint32]float64) func(a, b uint32) int {
	byDefault := func(a, b uint32) int {
		if scores != nil {
			if c := cmp.Compare(scores[b], scores[a]); c != 0 {
				return c
			}
		}
		if c := cmp.Compare(i.docs[b].Priority, i.docs[a].Priority); c != 0 {
			return c
		}
		return cmp.Compare(b, a)
	}
	switch sort {
	case facet.SortPriceAsc:
		return func(a, b uint32) int {
			return cmp.Or(cmp.Compare(i.docs[a].Price, i.docs[b].Price), byDefault(a, b))
		}
	case facet.SortPriceDesc:
		return func(a, b uint32) int {
			return cmp.Or(cmp.Compare(i.docs[b].Price, i.docs[a].Price), byDefault(a, b))
		}
	case facet.SortName:
		return func(a, b uint32) int {
			return cmp.Or(strings.Compare(i.docs[a].Slug, i.docs[b].Slug), byDefault(a, b))
		}
	case facet.SortStartsAt:
		return func(a, b uint32) int {
			return cmp.Or(compareTime(i.docs[a], i.docs[b]), byDefault(a, b))
		}
	}
	return byDefault
}

// compareTime puts documents without a start time last.
func compareTime(a, b *types.Document) int {
	switch {
	case a.StartsAt == nil && b.StartsAt == nil:
		return 0
	case a.StartsAt == nil:
		return 1
	case b.StartsAt == nil:
		return -1
	}
	return a.StartsAt.Compare(*b.StartsAt)
}

func (i *Index) page(matched *roaring.Bitmap, sort facet.Sort, scores map[uint32]float64, page pagination.Page) []types.Document {
	ids := matched.ToArray()
	slices.SortFunc(ids, i.compareDocs(sort, scores))
	if page.Skip >= len(ids) {
		return []types.Document{}
	}
	ids = ids[page.Skip:min(page.Skip+page.Limit, len(ids))]
	result := make([]types.Document, 0, len(ids))
	for _, id := range ids {
		result = append(result, *i.docs[id])
	}
	return result
}
