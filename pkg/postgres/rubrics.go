package postgres

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
	"github.com/matst80/slask-catalogue/pkg/metadata"
	"github.com/matst80/slask-catalogue/pkg/types"
	"github.com/pkg/errors"
)

// RubricStore reads rubric metadata stored as one jsonb document per rubric.
type RubricStore struct {
	db Querier
}

func NewRubricStore(db Querier) *RubricStore {
	return &RubricStore{db: db}
}

func (s *RubricStore) Rubric(ctx context.Context, slug string) (*types.Rubric, error) {
	var data []byte
	err := s.db.QueryRow(ctx, "SELECT data FROM rubrics WHERE slug = $1", slug).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, metadata.ErrRubricNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load rubric %s", slug)
	}
	rubric := &types.Rubric{}
	if err = sonic.Unmarshal(data, rubric); err != nil {
		return nil, errors.Wrapf(err, "decode rubric %s", slug)
	}
	return rubric, nil
}

func (s *RubricStore) Rubrics(ctx context.Context) ([]types.Rubric, error) {
	var data []byte
	err := s.db.QueryRow(ctx, "SELECT COALESCE(json_agg(data ORDER BY prio, slug), '[]'::json) FROM rubrics").Scan(&data)
	if err != nil {
		return nil, errors.Wrap(err, "load rubrics")
	}
	result := make([]types.Rubric, 0)
	if err = sonic.Unmarshal(data, &result); err != nil {
		return nil, errors.Wrap(err, "decode rubrics")
	}
	return result, nil
}

// SaveRubrics replaces the stored rubric set in one statement.
func (s *RubricStore) SaveRubrics(ctx context.Context, rubrics []types.Rubric) error {
	data, err := sonic.Marshal(rubrics)
	if err != nil {
		return errors.Wrap(err, "encode rubrics")
	}
	_, err = s.db.Exec(ctx, `WITH incoming AS (SELECT value AS data FROM jsonb_array_elements($1::jsonb)),
removed AS (DELETE FROM rubrics WHERE slug NOT IN (SELECT data->>'slug' FROM incoming))
INSERT INTO rubrics (slug, prio, data)
SELECT data->>'slug', COALESCE((data->>'prio')::int, 0), data FROM incoming
ON CONFLICT (slug) DO UPDATE SET prio = EXCLUDED.prio, data = EXCLUDED.data`, string(data))
	return errors.Wrap(err, "save rubrics")
}

var _ metadata.Provider = (*RubricStore)(nil)
