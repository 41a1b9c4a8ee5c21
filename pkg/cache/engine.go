package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-catalogue/pkg/facet"
	"go.uber.org/zap"
)

// Engine caches whole aggregation results. A cached entry always holds every
// branch of one engine call, never a mix of calls.
type Engine struct {
	next   facet.Engine
	store  Store
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func NewEngine(next facet.Engine, store Store, prefix string, ttl time.Duration, logger *zap.Logger) *Engine {
	return &Engine{next: next, store: store, prefix: prefix, ttl: ttl, logger: logger}
}

func (e *Engine) Key(req *facet.AggregationRequest) (string, error) {
	data, err := sonic.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return e.prefix + req.Match.Collection + ":" + hex.EncodeToString(sum[:]), nil
}

// Aggregate serves from cache when possible. Cache failures are logged and
// fall through to the wrapped engine.
func (e *Engine) Aggregate(ctx context.Context, req *facet.AggregationRequest) (*facet.RawFacets, error) {
	key, err := e.Key(req)
	if err != nil {
		return e.next.Aggregate(ctx, req)
	}
	cached := &facet.RawFacets{}
	found, err := e.store.Get(ctx, key, cached)
	if err != nil {
		e.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		return cached, nil
	}
	result, err := e.next.Aggregate(ctx, req)
	if err != nil {
		return nil, err
	}
	if err = e.store.Set(ctx, key, result, e.ttl); err != nil {
		e.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

// Invalidate drops every cached result of a collection.
func (e *Engine) Invalidate(ctx context.Context, collection string) (int, error) {
	return e.store.Invalidate(ctx, e.prefix+collection+":")
}
