package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-catalogue/pkg/facet"
	"github.com/matst80/slask-catalogue/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryStore struct {
	data    map[string][]byte
	failGet bool
}

func (m *memoryStore) Get(_ context.Context, key string, out any) (bool, error) {
	if m.failGet {
		return false, errors.New("redis down")
	}
	data, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, sonic.Unmarshal(data, out)
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := sonic.Marshal(value)
	m.data[key] = data
	return err
}

func (m *memoryStore) Invalidate(_ context.Context, prefix string) (int, error) {
	removed := 0
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
			removed++
		}
	}
	return removed, nil
}

type countingEngine struct {
	calls int
	err   error
}

func (c *countingEngine) Aggregate(_ context.Context, req *facet.AggregationRequest) (*facet.RawFacets, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &facet.RawFacets{
		Docs:         []types.Document{{Id: "red-1", Price: 1200}},
		CountAllDocs: 1,
		Page:         1,
		Attributes:   map[string]map[string]int{"color": {"red": 1}},
		Prices:       &types.PriceFacet{Min: 1200, Max: 1200, Histogram: []types.PricePoint{{Price: 1200, Count: 1}}},
	}, nil
}

func request(collection string, page int) *facet.AggregationRequest {
	return &facet.AggregationRequest{
		Match:      facet.Match{Collection: collection},
		Docs:       facet.DocsBranch{Page: page, Limit: 10},
		Attributes: []string{"color"},
		Prices:     true,
	}
}

func TestEngineCachesWholeResult(t *testing.T) {
	store := &memoryStore{data: map[string][]byte{}}
	next := &countingEngine{}
	engine := NewEngine(next, store, "catalogue:", time.Minute, zap.NewNop())

	first, err := engine.Aggregate(context.Background(), request("products", 1))
	require.NoError(t, err)
	second, err := engine.Aggregate(context.Background(), request("products", 1))
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first.CountAllDocs, second.CountAllDocs)
	assert.Equal(t, first.Docs, second.Docs)
	assert.Equal(t, 1, second.Count("color", "red"))
	assert.Equal(t, first.Prices, second.Prices)

	_, err = engine.Aggregate(context.Background(), request("products", 2))
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestEngineInvalidateByCollection(t *testing.T) {
	store := &memoryStore{data: map[string][]byte{}}
	next := &countingEngine{}
	engine := NewEngine(next, store, "catalogue:", time.Minute, zap.NewNop())

	_, _ = engine.Aggregate(context.Background(), request("products", 1))
	_, _ = engine.Aggregate(context.Background(), request("events", 1))

	removed, err := engine.Invalidate(context.Background(), "products")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, _ = engine.Aggregate(context.Background(), request("products", 1))
	_, _ = engine.Aggregate(context.Background(), request("events", 1))
	assert.Equal(t, 3, next.calls)
}

func TestEngineFallsThroughOnCacheFailure(t *testing.T) {
	store := &memoryStore{data: map[string][]byte{}, failGet: true}
	next := &countingEngine{}
	engine := NewEngine(next, store, "", time.Minute, zap.NewNop())

	raw, err := engine.Aggregate(context.Background(), request("products", 1))
	require.NoError(t, err)
	assert.Equal(t, 1, raw.CountAllDocs)
}

func TestEngineDoesNotCacheErrors(t *testing.T) {
	store := &memoryStore{data: map[string][]byte{}}
	next := &countingEngine{err: errors.New("engine down")}
	engine := NewEngine(next, store, "", time.Minute, zap.NewNop())

	_, err := engine.Aggregate(context.Background(), request("products", 1))
	assert.Error(t, err)
	assert.Empty(t, store.data)
}
