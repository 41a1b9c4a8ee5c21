package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	id     string
	parent string
	prio   int
}

func entryOptions(withPriority bool) Options[entry, string] {
	opts := Options[entry, string]{
		Id: func(e entry) string { return e.id },
		Parent: func(e entry) (string, bool) {
			return e.parent, e.parent != ""
		},
	}
	if withPriority {
		opts.Priority = func(e entry) int { return e.prio }
	}
	return opts
}

func ids(nodes []*Node[entry]) []string {
	result := make([]string, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, n.Value.id)
	}
	return result
}

func TestBuildNestsByParent(t *testing.T) {
	items := []entry{
		{id: "red"},
		{id: "dark-red", parent: "red"},
		{id: "white"},
		{id: "light-red", parent: "red"},
		{id: "ruby", parent: "dark-red"},
	}
	roots := Build(items, entryOptions(false))
	require.Equal(t, []string{"red", "white"}, ids(roots))
	assert.Equal(t, []string{"dark-red", "light-red"}, ids(roots[0].Children))
	assert.Equal(t, []string{"ruby"}, ids(roots[0].Children[0].Children))
	assert.Empty(t, roots[1].Children)
}

func TestBuildOrphansBecomeRoots(t *testing.T) {
	items := []entry{
		{id: "a", parent: "missing"},
		{id: "b"},
	}
	assert.Equal(t, []string{"a", "b"}, ids(Build(items, entryOptions(false))))
}

func TestBuildCycleTerminates(t *testing.T) {
	items := []entry{
		{id: "a", parent: "b"},
		{id: "b", parent: "a"},
	}
	roots := Build(items, entryOptions(false))
	assert.Equal(t, []string{"a", "b"}, ids(roots))
	assert.Empty(t, roots[0].Children)
	assert.Empty(t, roots[1].Children)
}

func TestBuildSelfParentAndTailOfCycle(t *testing.T) {
	items := []entry{
		{id: "self", parent: "self"},
		{id: "x", parent: "y"},
		{id: "y", parent: "z"},
		{id: "z", parent: "x"},
		{id: "leaf", parent: "x"},
	}
	roots := Build(items, entryOptions(false))
	assert.Equal(t, []string{"self", "x", "y", "z"}, ids(roots))
	assert.Equal(t, []string{"leaf"}, ids(roots[1].Children))
}

func TestBuildSortsByPriorityStable(t *testing.T) {
	items := []entry{
		{id: "c", prio: 2},
		{id: "a", prio: 1},
		{id: "b", prio: 1},
		{id: "a1", parent: "a", prio: 5},
		{id: "a0", parent: "a", prio: 0},
	}
	roots := Build(items, entryOptions(true))
	assert.Equal(t, []string{"a", "b", "c"}, ids(roots))
	assert.Equal(t, []string{"a0", "a1"}, ids(roots[0].Children))

	unsorted := Build(items, entryOptions(false))
	assert.Equal(t, []string{"c", "a", "b"}, ids(unsorted))
}

func TestWalkAndFlatten(t *testing.T) {
	items := []entry{
		{id: "root"},
		{id: "child", parent: "root"},
		{id: "grandchild", parent: "child"},
		{id: "other"},
	}
	roots := Build(items, entryOptions(false))
	depths := map[string]int{}
	Walk(roots, func(n *Node[entry], depth int) {
		depths[n.Value.id] = depth
	})
	assert.Equal(t, map[string]int{"root": 0, "child": 1, "grandchild": 2, "other": 0}, depths)

	flat := Flatten(roots)
	require.Len(t, flat, 4)
	assert.Equal(t, "grandchild", flat[2].id)
}

func TestGroupBy(t *testing.T) {
	words := []string{"apple", "avocado", "banana", "apricot", "cherry"}
	groups := GroupBy(words, func(w string) string { return w[:1] })
	require.Len(t, groups, 3)
	assert.Equal(t, "a", groups[0].Key)
	assert.Equal(t, []string{"apple", "avocado", "apricot"}, groups[0].Items)
	assert.Equal(t, []string{"cherry"}, groups[2].Items)
}
