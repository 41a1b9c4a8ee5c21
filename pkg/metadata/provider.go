package metadata

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/matst80/slask-catalogue/pkg/types"
)

var ErrRubricNotFound = errors.New("rubric not found")

// Provider serves rubric metadata: attributes in display order with their
// options and flags, and the rubric's categories.
type Provider interface {
	Rubric(ctx context.Context, slug string) (*types.Rubric, error)
	Rubrics(ctx context.Context) ([]types.Rubric, error)
}

// Static holds rubrics in memory; Replace swaps the whole set atomically.
type Static struct {
	mu      sync.RWMutex
	rubrics []types.Rubric
	bySlug  map[string]int
}

func NewStatic(rubrics []types.Rubric) *Static {
	s := &Static{}
	s.Replace(rubrics)
	return s
}

func (s *Static) Replace(rubrics []types.Rubric) {
	sorted := slices.Clone(rubrics)
	slices.SortStableFunc(sorted, func(a, b types.Rubric) int {
		return a.Priority - b.Priority
	})
	bySlug := make(map[string]int, len(sorted))
	for i, rubric := range sorted {
		bySlug[rubric.Slug] = i
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rubrics = sorted
	s.bySlug = bySlug
}

func (s *Static) Rubric(_ context.Context, slug string) (*types.Rubric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.bySlug[slug]
	if !ok {
		return nil, ErrRubricNotFound
	}
	rubric := s.rubrics[idx]
	return &rubric, nil
}

func (s *Static) Rubrics(_ context.Context) ([]types.Rubric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rubrics), nil
}
