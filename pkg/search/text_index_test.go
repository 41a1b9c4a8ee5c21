package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextIndexSearch(t *testing.T) {
	index, err := NewTextIndex()
	require.NoError(t, err)
	defer index.Close()

	require.NoError(t, index.Add("1", "Margaux red wine"))
	require.NoError(t, index.Add("2", "Chablis white wine"))
	require.NoError(t, index.Add("3", "Stout beer"))
	require.NoError(t, index.Flush())

	hits, err := index.Search(context.Background(), "wine")
	require.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.Contains(t, hits, "1")
	assert.Contains(t, hits, "2")

	hits, err = index.Search(context.Background(), "red wine")
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Contains(t, hits, "1")

	hits, err = index.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestTextIndexRemove(t *testing.T) {
	index, err := NewTextIndex()
	require.NoError(t, err)
	defer index.Close()

	require.NoError(t, index.Add("1", "Margaux red wine"))
	require.NoError(t, index.Flush())
	index.Remove("1")
	require.NoError(t, index.Flush())

	hits, err := index.Search(context.Background(), "margaux")
	require.NoError(t, err)
	assert.Empty(t, hits)
}
