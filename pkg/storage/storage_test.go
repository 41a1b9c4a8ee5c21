package storage

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matst80/slask-catalogue/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wineRubric() types.Rubric {
	return types.Rubric{
		Slug:     "wine",
		NameI18n: types.I18n{"en": "Wine"},
		Attributes: []types.Attribute{{
			Slug:    "color",
			Variant: types.VariantMultiSelect,
			Options: []types.Option{{Slug: "red"}, {Slug: "white"}},
		}},
		Categories: []types.Category{{Slug: "still"}},
	}
}

func TestRubricsRoundTrip(t *testing.T) {
	storage := NewDiskStorage(t.TempDir())
	require.NoError(t, storage.SaveRubrics([]types.Rubric{wineRubric()}))

	rubrics, err := storage.LoadRubrics()
	require.NoError(t, err)
	require.Len(t, rubrics, 1)
	assert.Equal(t, "wine", rubrics[0].Slug)
	assert.Equal(t, []types.Option{{Slug: "red"}, {Slug: "white"}}, rubrics[0].Attributes[0].Options)
}

func TestValidateRubricsRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"not an array":     `{"slug":"wine"}`,
		"missing slug":     `[{"attributes":[]}]`,
		"reserved key":     `[{"slug":"wine","attributes":[{"slug":"price","variant":"select"}]}]`,
		"dash in key":      `[{"slug":"wine","attributes":[{"slug":"grape-type","variant":"select"}]}]`,
		"unknown variant":  `[{"slug":"wine","attributes":[{"slug":"color","variant":"range"}]}]`,
		"malformed json":   `[{`,
		"option sans slug": `[{"slug":"wine","attributes":[{"slug":"color","variant":"select","options":[{}]}]}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateRubrics([]byte(raw)), ErrInvalidSchema)
		})
	}
	assert.NoError(t, ValidateRubrics([]byte(`[{"slug":"wine","attributes":[{"slug":"color","variant":"select","options":[{"slug":"dry-red"}]}]}]`)))
}

func TestLoadRubricsRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, rubricsFile), []byte(`[{"nameI18n":{}}]`), 0o644))
	_, err := NewDiskStorage(dir).LoadRubrics()
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestDocumentsRoundTrip(t *testing.T) {
	storage := NewDiskStorage(t.TempDir())
	docs := []*types.Document{
		{Id: "1", Slug: "merlot", RubricSlug: "wine", Price: 400, FilterSlugs: []string{"color-red"}},
		{Id: "2", Slug: "gone", RubricSlug: "wine", Deleted: true},
		{Id: "3", Slug: "riesling", RubricSlug: "wine", Price: 600, FilterSlugs: []string{"color-white"}},
	}
	require.NoError(t, storage.SaveDocuments("products", slices.Values(docs)))

	var loaded []types.Document
	count, err := storage.LoadDocuments("products", func(doc types.Document) error {
		loaded = append(loaded, doc)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "merlot", loaded[0].Slug)
	assert.Equal(t, []string{"color-white"}, loaded[1].FilterSlugs)
}

func TestLoadDocumentsMissingFile(t *testing.T) {
	count, err := NewDiskStorage(t.TempDir()).LoadDocuments("events", func(types.Document) error {
		t.Fatal("unexpected document")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
