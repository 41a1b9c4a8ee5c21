package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matst80/slask-catalogue/pkg/facet"
	"github.com/matst80/slask-catalogue/pkg/types"
	"github.com/pkg/errors"
)

// Querier is the part of a pgx pool or connection the engine needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS %[1]s (
	id text PRIMARY KEY,
	collection text NOT NULL,
	slug text NOT NULL,
	rubric_slug text NOT NULL,
	name_i18n jsonb NOT NULL DEFAULT '{}',
	price numeric NOT NULL DEFAULT 0,
	filter_slugs text[] NOT NULL DEFAULT '{}',
	prio int NOT NULL DEFAULT 0,
	image_url text NOT NULL DEFAULT '',
	search_text text NOT NULL DEFAULT '',
	starts_at timestamptz,
	deleted boolean NOT NULL DEFAULT false
);
CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s USING gin (filter_slugs);
CREATE INDEX IF NOT EXISTS %[3]s ON %[1]s (collection, rubric_slug);
CREATE TABLE IF NOT EXISTS rubrics (
	slug text PRIMARY KEY,
	prio int NOT NULL DEFAULT 0,
	data jsonb NOT NULL
);`

type Engine struct {
	db    Querier
	name  string
	table string
}

func NewEngine(db Querier, table string) *Engine {
	if table == "" {
		table = "documents"
	}
	return &Engine{db: db, name: table, table: pgx.Identifier{table}.Sanitize()}
}

func (e *Engine) EnsureSchema(ctx context.Context) error {
	_, err := e.db.Exec(ctx, fmt.Sprintf(schema,
		e.table,
		pgx.Identifier{e.name + "_filter_slugs_idx"}.Sanitize(),
		pgx.Identifier{e.name + "_collection_rubric_idx"}.Sanitize(),
	))
	return errors.Wrap(err, "ensure schema")
}

// Aggregate runs the request as a single statement and decodes every branch
// from the one returned row.
func (e *Engine) Aggregate(ctx context.Context, req *facet.AggregationRequest) (*facet.RawFacets, error) {
	sql, args := buildQuery(e.table, req)
	var (
		total, page            int
		docs, counts, histogram []byte
	)
	if err := e.db.QueryRow(ctx, sql, args...).Scan(&total, &page, &docs, &counts, &histogram); err != nil {
		return nil, errors.Wrap(err, "aggregate")
	}

	result := &facet.RawFacets{
		CountAllDocs: total,
		Page:         page,
		Attributes:   make(map[string]map[string]int, len(req.Attributes)),
	}
	if err := sonic.Unmarshal(docs, &result.Docs); err != nil {
		return nil, errors.Wrap(err, "decode docs branch")
	}
	for _, attribute := range req.Attributes {
		result.Attributes[attribute] = map[string]int{}
	}
	var rows [][]any
	if err := sonic.Unmarshal(counts, &rows); err != nil {
		return nil, errors.Wrap(err, "decode attributes branch")
	}
	for _, row := range rows {
		if len(row) != 3 {
			continue
		}
		attribute, _ := row[0].(string)
		option, _ := row[1].(string)
		counter, _ := row[2].(float64)
		if byOption, ok := result.Attributes[attribute]; ok && counter > 0 {
			byOption[option] = int(counter)
		}
	}
	if req.Prices {
		prices, err := decodeHistogram(histogram)
		if err != nil {
			return nil, err
		}
		result.Prices = prices
	}
	return result, nil
}

func decodeHistogram(data []byte) (*types.PriceFacet, error) {
	var points [][2]float64
	if err := sonic.Unmarshal(data, &points); err != nil {
		return nil, errors.Wrap(err, "decode prices branch")
	}
	result := &types.PriceFacet{Histogram: make([]types.PricePoint, 0, len(points))}
	for _, point := range points {
		result.Histogram = append(result.Histogram, types.PricePoint{Price: point[0], Count: int(point[1])})
	}
	if len(result.Histogram) > 0 {
		result.Min = result.Histogram[0].Price
		result.Max = result.Histogram[len(result.Histogram)-1].Price
	}
	return result, nil
}
