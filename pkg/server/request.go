package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/schema"
	"github.com/matst80/slask-catalogue/pkg/catalogue"
	"github.com/matst80/slask-catalogue/pkg/facet"
	"github.com/matst80/slask-catalogue/pkg/filter"
)

type CatalogueQuery struct {
	Search   string `schema:"search"`
	Limit    int    `schema:"limit"`
	Locale   string `schema:"locale"`
	Currency string `schema:"currency"`
	Sort     string `schema:"sort"`
}

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// requestFromHttp never fails: fields that do not decode keep their zero
// value and fall back to the service defaults.
func requestFromHttp(r *http.Request, rubric string) (catalogue.Request, error) {
	query := CatalogueQuery{}
	err := decoder.Decode(&query, r.URL.Query())
	return catalogue.Request{
		RubricSlug: rubric,
		Filters:    filter.SplitSlug(r.PathValue("filters")),
		Search:     strings.TrimSpace(query.Search),
		Locale:     query.Locale,
		Currency:   strings.ToUpper(query.Currency),
		Limit:      query.Limit,
		Sort:       facet.ParseSort(query.Sort),
	}, err
}
