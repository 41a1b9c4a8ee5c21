package facet

import (
	"context"

	"github.com/matst80/slask-catalogue/pkg/types"
)

// RawFacets holds every branch of one aggregation. Page is the requested page
// clamped against CountAllDocs by the engine that produced Docs.
type RawFacets struct {
	Docs         []types.Document          `json:"docs"`
	CountAllDocs int                       `json:"countAllDocs"`
	Page         int                       `json:"page"`
	Attributes   map[string]map[string]int `json:"attributes"`
	Prices       *types.PriceFacet         `json:"prices"`
}

// Count returns the counter for an option token, zero when absent.
func (r *RawFacets) Count(attribute, option string) int {
	if r == nil {
		return 0
	}
	return r.Attributes[attribute][option]
}

// Engine executes an aggregation request as a single call against one
// consistent view of the documents.
type Engine interface {
	Aggregate(ctx context.Context, req *AggregationRequest) (*RawFacets, error)
}

// EmptyResult is the raw result used when the request is known to match
// nothing. Every counted attribute is present with no counters.
func EmptyResult(req *AggregationRequest) *RawFacets {
	result := &RawFacets{
		Docs:       []types.Document{},
		Page:       1,
		Attributes: make(map[string]map[string]int, len(req.Attributes)),
		Prices:     &types.PriceFacet{},
	}
	for _, attribute := range req.Attributes {
		result.Attributes[attribute] = map[string]int{}
	}
	return result
}
