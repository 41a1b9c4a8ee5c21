package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matst80/slask-catalogue/pkg/facet"
)

type queryBuilder struct {
	args []any
}

func (b *queryBuilder) arg(value any) string {
	b.args = append(b.args, value)
	return "$" + strconv.Itoa(len(b.args))
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

// conditions renders the dimension and price filters, skipping the excluded
// attribute. Each dimension is an overlap test so its tokens are OR-ed.
func (b *queryBuilder) conditions(req *facet.AggregationRequest, excluded string, withPrice bool) []string {
	result := make([]string, 0, len(req.Filters)+2)
	for _, d := range req.Filters {
		if d.Attribute == excluded {
			continue
		}
		result = append(result, "filter_slugs && "+b.arg(d.Tokens)+"::text[]")
	}
	if withPrice {
		if req.Price.From != nil {
			result = append(result, "price >= "+b.arg(*req.Price.From))
		}
		if req.Price.To != nil {
			result = append(result, "price <= "+b.arg(*req.Price.To))
		}
	}
	return result
}

func where(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

// orderBy ranks earlier text matches first when searching.
func orderBy(sort facet.Sort, searchArg string) string {
	fallback := "prio DESC, id DESC"
	if searchArg != "" {
		fallback = "position(lower(" + searchArg + "::text) in lower(search_text)) ASC, " + fallback
	}
	switch sort {
	case facet.SortPriceAsc:
		return "price ASC, prio DESC, id DESC"
	case facet.SortPriceDesc:
		return "price DESC, prio DESC, id DESC"
	case facet.SortName:
		return "slug ASC, id DESC"
	case facet.SortStartsAt:
		return "starts_at ASC NULLS LAST, prio DESC, id DESC"
	}
	return fallback
}

// buildQuery renders the whole aggregation as one statement. Every branch is
// a CTE over the same base set, so all of them read a single snapshot.
func buildQuery(table string, req *facet.AggregationRequest) (string, []any) {
	b := &queryBuilder{}
	limit := max(req.Docs.Limit, 1)

	baseConditions := []string{"collection = " + b.arg(req.Match.Collection), "NOT deleted"}
	if len(req.Match.RubricSlugs) > 0 {
		baseConditions = append(baseConditions, "rubric_slug = ANY("+b.arg(req.Match.RubricSlugs)+"::text[])")
	}
	searchArg := ""
	if req.Match.Search != "" {
		searchArg = b.arg(req.Match.Search)
		baseConditions = append(baseConditions, "search_text ILIKE '%' || "+b.arg(escapeLike(req.Match.Search))+" || '%'")
	}

	var sql strings.Builder
	fmt.Fprintf(&sql, "WITH base AS (SELECT id, slug, rubric_slug, name_i18n, price, filter_slugs, prio, image_url, search_text, starts_at FROM %s%s)", table, where(baseConditions))
	fmt.Fprintf(&sql, ", matched AS (SELECT * FROM base%s)", where(b.conditions(req, "", true)))
	sql.WriteString(", counted AS (SELECT count(*)::int AS total FROM matched)")
	limitArg := b.arg(limit)
	fmt.Fprintf(&sql, ", paging AS (SELECT GREATEST(LEAST(%s::int, GREATEST(CEIL(total::numeric / %s::int)::int, 1)), 1) AS page FROM counted)", b.arg(max(req.Docs.Page, 1)), limitArg)
	order := orderBy(req.Docs.Sort, searchArg)
	fmt.Fprintf(&sql, ", docs AS (SELECT row_number() OVER (ORDER BY %s) AS position, * FROM matched ORDER BY %s OFFSET ((SELECT page FROM paging) - 1) * %s::int LIMIT %s::int)", order, order, limitArg, limitArg)

	counts := make([]string, 0, len(req.Attributes))
	for _, attribute := range req.Attributes {
		attributeArg := b.arg(attribute)
		conditions := append([]string{"starts_with(token, " + attributeArg + "::text || '-')"}, b.conditions(req, attribute, true)...)
		counts = append(counts, fmt.Sprintf(
			"SELECT %s::text AS attribute, substr(token, length(%s::text) + 2) AS option, count(DISTINCT id)::int AS counter FROM base, unnest(filter_slugs) AS token%s GROUP BY 1, 2",
			attributeArg, attributeArg, where(conditions)))
	}
	if len(counts) == 0 {
		counts = append(counts, "SELECT NULL::text AS attribute, NULL::text AS option, 0 AS counter WHERE false")
	}
	fmt.Fprintf(&sql, ", attribute_counts AS (%s)", strings.Join(counts, " UNION ALL "))

	if req.Prices {
		fmt.Fprintf(&sql, ", price_hist AS (SELECT price, count(*)::int AS counter FROM base%s GROUP BY price)", where(b.conditions(req, "", false)))
	} else {
		sql.WriteString(", price_hist AS (SELECT NULL::numeric AS price, 0 AS counter WHERE false)")
	}

	sql.WriteString(" SELECT (SELECT total FROM counted), (SELECT page FROM paging)")
	sql.WriteString(", COALESCE((SELECT json_agg(json_build_object('id', id, 'slug', slug, 'rubricSlug', rubric_slug, 'nameI18n', name_i18n, 'price', price, 'filterSlugs', filter_slugs, 'prio', prio, 'imageUrl', image_url, 'startsAt', starts_at) ORDER BY position) FROM docs), '[]'::json)")
	sql.WriteString(", COALESCE((SELECT json_agg(json_build_array(attribute, option, counter)) FROM attribute_counts), '[]'::json)")
	sql.WriteString(", COALESCE((SELECT json_agg(json_build_array(price, counter) ORDER BY price) FROM price_hist), '[]'::json)")
	return sql.String(), b.args
}
