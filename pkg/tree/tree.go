package tree

import (
	"cmp"
	"slices"
)

type Node[T any] struct {
	Value    T          `json:"value"`
	Children []*Node[T] `json:"children,omitempty"`
}

// Options tells Build how to read identity, parent and ordering from an item.
// Parent returns false for items without a parent. Priority is optional; when
// set, siblings are sorted ascending by it, otherwise input order is kept.
type Options[T any, K comparable] struct {
	Id       func(T) K
	Parent   func(T) (K, bool)
	Priority func(T) int
}

// Build nests a flat list by parent reference in a single pass over an arena
// of indices. Items whose parent is missing, and items that are part of a
// parent cycle, become roots.
func Build[T any, K comparable](items []T, opts Options[T, K]) []*Node[T] {
	byId := make(map[K]int, len(items))
	for i, item := range items {
		if _, seen := byId[opts.Id(item)]; !seen {
			byId[opts.Id(item)] = i
		}
	}

	parents := make([]int, len(items))
	for i, item := range items {
		parents[i] = -1
		if parentId, ok := opts.Parent(item); ok {
			if p, found := byId[parentId]; found && p != i {
				parents[i] = p
			}
		}
	}
	cyclic := make([]bool, len(items))
	for i := range items {
		cyclic[i] = inCycle(parents, i)
	}
	for i, isCyclic := range cyclic {
		if isCyclic {
			parents[i] = -1
		}
	}

	children := make(map[int][]int, len(items))
	roots := make([]int, 0)
	for i := range items {
		if parents[i] < 0 {
			roots = append(roots, i)
		} else {
			children[parents[i]] = append(children[parents[i]], i)
		}
	}

	var materialize func(indices []int) []*Node[T]
	materialize = func(indices []int) []*Node[T] {
		if opts.Priority != nil {
			slices.SortStableFunc(indices, func(a, b int) int {
				return cmp.Compare(opts.Priority(items[a]), opts.Priority(items[b]))
			})
		}
		result := make([]*Node[T], 0, len(indices))
		for _, idx := range indices {
			result = append(result, &Node[T]{
				Value:    items[idx],
				Children: materialize(children[idx]),
			})
		}
		return result
	}
	return materialize(roots)
}

// inCycle reports whether walking up from start ever returns to start.
// The walk is bounded by the number of items.
func inCycle(parents []int, start int) bool {
	current := parents[start]
	for steps := 0; current >= 0 && steps < len(parents); steps++ {
		if current == start {
			return true
		}
		current = parents[current]
	}
	return false
}

// Walk visits every node depth first, parents before children.
func Walk[T any](nodes []*Node[T], fn func(node *Node[T], depth int)) {
	var walk func(nodes []*Node[T], depth int)
	walk = func(nodes []*Node[T], depth int) {
		for _, node := range nodes {
			fn(node, depth)
			walk(node.Children, depth+1)
		}
	}
	walk(nodes, 0)
}

func Flatten[T any](nodes []*Node[T]) []T {
	result := make([]T, 0)
	Walk(nodes, func(node *Node[T], _ int) {
		result = append(result, node.Value)
	})
	return result
}

type Group[T any] struct {
	Key   string `json:"key"`
	Items []T    `json:"items"`
}

// GroupBy buckets items by key, keeping the first-seen order of keys and items.
// Used for alphabet grouped option lists.
func GroupBy[T any](items []T, key func(T) string) []Group[T] {
	index := map[string]int{}
	result := make([]Group[T], 0)
	for _, item := range items {
		k := key(item)
		idx, ok := index[k]
		if !ok {
			idx = len(result)
			index[k] = idx
			result = append(result, Group[T]{Key: k})
		}
		result[idx].Items = append(result[idx].Items, item)
	}
	return result
}
