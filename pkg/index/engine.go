package index

import (
	"context"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/matst80/slask-catalogue/pkg/facet"
	"github.com/matst80/slask-catalogue/pkg/pagination"
	"github.com/matst80/slask-catalogue/pkg/search"
	"github.com/matst80/slask-catalogue/pkg/types"
	"github.com/pkg/errors"
)

// Index keeps one collection of documents in memory with a bitmap posting
// list per filter token and per rubric. Aggregations hold the read lock for
// their whole duration, so every branch sees the same documents.
type Index struct {
	mu         sync.RWMutex
	collection string
	nextId     uint32
	ids        map[string]uint32
	docs       map[uint32]*types.Document
	all        *roaring.Bitmap
	options    map[string]map[string]*roaring.Bitmap
	rubrics    map[string]*roaring.Bitmap
	text       textIndex
}

type textIndex interface {
	Add(id, text string) error
	Remove(id string)
	Flush() error
	Search(ctx context.Context, text string) (map[string]float64, error)
	Close() error
}

func NewIndex(collection string) (*Index, error) {
	text, err := search.NewTextIndex()
	if err != nil {
		return nil, err
	}
	return &Index{
		collection: collection,
		ids:        make(map[string]uint32),
		docs:       make(map[uint32]*types.Document),
		all:        roaring.New(),
		options:    make(map[string]map[string]*roaring.Bitmap),
		rubrics:    make(map[string]*roaring.Bitmap),
		text:       text,
	}, nil
}

func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.text.Close()
}

func (i *Index) Collection() string {
	return i.collection
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docs)
}

// Documents returns a copy of every stored document, used for snapshots.
func (i *Index) Documents() []types.Document {
	i.mu.RLock()
	defer i.mu.RUnlock()
	result := make([]types.Document, 0, len(i.docs))
	for _, id := range i.all.ToArray() {
		result = append(result, *i.docs[id])
	}
	return result
}

func bitmapFor(m map[string]*roaring.Bitmap, key string) *roaring.Bitmap {
	bm, ok := m[key]
	if !ok {
		bm = roaring.New()
		m[key] = bm
	}
	return bm
}

func (i *Index) addPostings(id uint32, doc *types.Document) {
	i.all.Add(id)
	bitmapFor(i.rubrics, doc.RubricSlug).Add(id)
	for _, token := range doc.FilterSlugs {
		attribute, option, ok := types.SplitToken(token)
		if !ok {
			continue
		}
		byOption, found := i.options[attribute]
		if !found {
			byOption = make(map[string]*roaring.Bitmap)
			i.options[attribute] = byOption
		}
		bitmapFor(byOption, option).Add(id)
	}
}

func (i *Index) removePostings(id uint32, doc *types.Document) {
	i.all.Remove(id)
	if bm, ok := i.rubrics[doc.RubricSlug]; ok {
		bm.Remove(id)
	}
	for _, token := range doc.FilterSlugs {
		attribute, option, ok := types.SplitToken(token)
		if !ok {
			continue
		}
		if bm, ok := i.options[attribute][option]; ok {
			bm.Remove(id)
		}
	}
}

// Upsert adds, replaces or (for documents flagged Deleted) removes documents.
// A document whose text cannot be indexed is left untouched; the documents
// applied before it stay searchable.
func (i *Index) Upsert(docs ...types.Document) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	for idx := range docs {
		if err := i.upsert(docs[idx]); err != nil {
			if flushErr := i.text.Flush(); flushErr != nil {
				return errors.Wrapf(err, "%v", flushErr)
			}
			return err
		}
	}
	return i.text.Flush()
}

func (i *Index) upsert(doc types.Document) error {
	if !doc.Deleted {
		if err := i.text.Add(doc.Id, searchText(&doc)); err != nil {
			return errors.Wrapf(err, "index text of %s", doc.Id)
		}
	}
	id, exists := i.ids[doc.Id]
	if exists {
		i.removePostings(id, i.docs[id])
	}
	if doc.Deleted {
		if exists {
			delete(i.docs, id)
			delete(i.ids, doc.Id)
			i.text.Remove(doc.Id)
		}
		return nil
	}
	if !exists {
		i.nextId++
		id = i.nextId
		i.ids[doc.Id] = id
	}
	doc.FilterSlugs = slices.Clone(doc.FilterSlugs)
	i.docs[id] = &doc
	i.addPostings(id, &doc)
	return nil
}

func (i *Index) Delete(ids ...string) error {
	docs := make([]types.Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, types.Document{Id: id, Deleted: true})
	}
	return i.Upsert(docs...)
}

func searchText(doc *types.Document) string {
	if doc.SearchText != "" {
		return doc.SearchText
	}
	text := doc.Slug
	for _, locale := range sortedKeys(map[string]string(doc.NameI18n)) {
		text += " " + doc.NameI18n[locale]
	}
	return text
}

// Aggregate evaluates every branch of the request against one matched set.
func (i *Index) Aggregate(ctx context.Context, req *facet.AggregationRequest) (*facet.RawFacets, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i.mu.RLock()
	defer i.mu.RUnlock()

	base, scores, err := i.initialMatch(ctx, req.Match)
	if err != nil {
		return nil, err
	}

	dimensions := make(map[string]*roaring.Bitmap, len(req.Filters))
	for _, d := range req.Filters {
		dimensions[d.Attribute] = i.dimension(d)
	}
	inPrice := i.priceFilter(base, req.Price)

	matched := i.intersect(base, dimensions, "")
	matched.And(inPrice)
	total := int(matched.GetCardinality())

	page := pagination.Resolve(req.Docs.Page, req.Docs.Limit, total)
	result := &facet.RawFacets{
		Docs:         i.page(matched, req.Docs.Sort, scores, page),
		CountAllDocs: total,
		Page:         page.Page,
		Attributes:   make(map[string]map[string]int, len(req.Attributes)),
	}

	for _, attribute := range req.Attributes {
		scope := i.intersect(base, dimensions, attribute)
		scope.And(inPrice)
		counts := make(map[string]int)
		for option, bm := range i.options[attribute] {
			if n := scope.AndCardinality(bm); n > 0 {
				counts[option] = int(n)
			}
		}
		result.Attributes[attribute] = counts
	}

	if req.Prices {
		result.Prices = i.prices(i.intersect(base, dimensions, ""))
	}
	return result, nil
}

func (i *Index) initialMatch(ctx context.Context, match facet.Match) (*roaring.Bitmap, map[uint32]float64, error) {
	var base *roaring.Bitmap
	if len(match.RubricSlugs) == 0 {
		base = i.all.Clone()
	} else {
		base = roaring.New()
		for _, slug := range match.RubricSlugs {
			if bm, ok := i.rubrics[slug]; ok {
				base.Or(bm)
			}
		}
	}
	if match.Search == "" {
		return base, nil, nil
	}
	hits, err := i.text.Search(ctx, match.Search)
	if err != nil {
		return nil, nil, err
	}
	found := roaring.New()
	scores := make(map[uint32]float64, len(hits))
	for docId, score := range hits {
		if id, ok := i.ids[docId]; ok {
			found.Add(id)
			scores[id] = score
		}
	}
	base.And(found)
	return base, scores, nil
}

// dimension is the OR of every token bitmap of one attribute filter.
func (i *Index) dimension(d facet.Dimension) *roaring.Bitmap {
	sets := make([]*roaring.Bitmap, 0, len(d.Tokens))
	for _, token := range d.Tokens {
		attribute, option, ok := types.SplitToken(token)
		if !ok {
			continue
		}
		if bm, found := i.options[attribute][option]; found {
			sets = append(sets, bm)
		}
	}
	return roaring.FastOr(sets...)
}

// intersect applies every dimension except the excluded attribute.
func (i *Index) intersect(base *roaring.Bitmap, dimensions map[string]*roaring.Bitmap, excluded string) *roaring.Bitmap {
	result := base.Clone()
	for attribute, bm := range dimensions {
		if attribute == excluded {
			continue
		}
		result.And(bm)
	}
	return result
}

func (i *Index) priceFilter(base *roaring.Bitmap, price types.PriceRange) *roaring.Bitmap {
	if !price.IsSet() {
		return base
	}
	result := roaring.New()
	it := base.Iterator()
	for it.HasNext() {
		id := it.Next()
		if price.Contains(i.docs[id].Price) {
			result.Add(id)
		}
	}
	return result
}

func (i *Index) prices(set *roaring.Bitmap) *types.PriceFacet {
	result := &types.PriceFacet{Histogram: []types.PricePoint{}}
	if set.IsEmpty() {
		return result
	}
	counts := make(map[float64]int)
	it := set.Iterator()
	for it.HasNext() {
		counts[i.docs[it.Next()].Price]++
	}
	for _, price := range sortedKeys(counts) {
		result.Histogram = append(result.Histogram, types.PricePoint{Price: price, Count: counts[price]})
	}
	result.Min = result.Histogram[0].Price
	result.Max = result.Histogram[len(result.Histogram)-1].Price
	return result
}
