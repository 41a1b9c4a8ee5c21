package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-catalogue/pkg/types"
	"github.com/pkg/errors"
)

const upsertDocuments = `INSERT INTO %[1]s (id, collection, slug, rubric_slug, name_i18n, price, filter_slugs, prio, image_url, search_text, starts_at, deleted)
SELECT d.id, $1, d.slug, d."rubricSlug", COALESCE(d."nameI18n", '{}'), COALESCE(d.price, 0), COALESCE(d."filterSlugs", '{}'),
	COALESCE(d.prio, 0), COALESCE(d."imageUrl", ''), COALESCE(d."searchText", ''), d."startsAt", COALESCE(d.deleted, false)
FROM jsonb_to_recordset($2::jsonb) AS d(id text, slug text, "rubricSlug" text, "nameI18n" jsonb, price numeric,
	"filterSlugs" text[], prio int, "imageUrl" text, "searchText" text, "startsAt" timestamptz, deleted boolean)
ON CONFLICT (id) DO UPDATE SET
	collection = EXCLUDED.collection,
	slug = EXCLUDED.slug,
	rubric_slug = EXCLUDED.rubric_slug,
	name_i18n = EXCLUDED.name_i18n,
	price = EXCLUDED.price,
	filter_slugs = EXCLUDED.filter_slugs,
	prio = EXCLUDED.prio,
	image_url = EXCLUDED.image_url,
	search_text = EXCLUDED.search_text,
	starts_at = EXCLUDED.starts_at,
	deleted = EXCLUDED.deleted`

// Upsert writes documents in one statement. Deleted documents are kept as
// tombstones and excluded from every aggregation.
func (e *Engine) Upsert(ctx context.Context, collection string, docs []types.Document) error {
	if len(docs) == 0 {
		return nil
	}
	data, err := sonic.Marshal(docs)
	if err != nil {
		return errors.Wrap(err, "encode documents")
	}
	_, err = e.db.Exec(ctx, fmt.Sprintf(upsertDocuments, e.table), collection, string(data))
	return errors.Wrapf(err, "upsert %d documents", len(docs))
}
