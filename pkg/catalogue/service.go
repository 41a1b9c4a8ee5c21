package catalogue

import (
	"context"
	"errors"
	"time"

	"github.com/matst80/slask-catalogue/pkg/caster"
	"github.com/matst80/slask-catalogue/pkg/facet"
	"github.com/matst80/slask-catalogue/pkg/filter"
	"github.com/matst80/slask-catalogue/pkg/metadata"
	"github.com/matst80/slask-catalogue/pkg/pagination"
	"github.com/matst80/slask-catalogue/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ErrUnavailable means the listing could not be computed; callers treat it
// as not found or retry later. Nothing is retried here.
var ErrUnavailable = errors.New("catalogue unavailable")

var (
	name   = "slask-catalogue"
	tracer = otel.Tracer(name)

	catalogueRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskcatalogue_requests_total",
		Help: "The total number of catalogue requests by outcome",
	}, []string{"collection", "outcome"})
	aggregationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "slaskcatalogue_aggregation_seconds",
		Help:    "Time spent in the aggregation round trip",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection"})
)

type Config struct {
	Collection      string
	DefaultLimit    int
	MaxLimit        int
	DefaultLocale   string
	DefaultCurrency string
	PriceBuckets    int
	PriceName       types.I18n
	CategoryName    types.I18n
}

type Request struct {
	// RubricSlug scopes the listing; empty searches across rubrics.
	RubricSlug string
	Filters    []string
	Search     string
	Locale     string
	Currency   string
	Limit      int
	Sort       facet.Sort
}

type Service struct {
	metadata metadata.Provider
	engine   facet.Engine
	logger   *zap.Logger
	config   Config
}

func NewService(provider metadata.Provider, engine facet.Engine, logger *zap.Logger, config Config) *Service {
	return &Service{
		metadata: provider,
		engine:   engine,
		logger:   logger.With(zap.String("collection", config.Collection)),
		config:   config,
	}
}

func (s *Service) Collection() string {
	return s.config.Collection
}

func (s *Service) castOptions(req Request) caster.Options {
	locale := req.Locale
	if locale == "" {
		locale = s.config.DefaultLocale
	}
	currency := req.Currency
	if currency == "" {
		currency = s.config.DefaultCurrency
	}
	return caster.Options{
		Locale:         locale,
		FallbackLocale: s.config.DefaultLocale,
		Currency:       currency,
		PriceBuckets:   s.config.PriceBuckets,
		PriceName:      s.config.PriceName,
		CategoryName:   s.config.CategoryName,
	}
}

// scope resolves the rubric the filters are validated against. Without a
// rubric slug the scope is every rubric, narrowed to the rubric tokens
// present in the filters. A rubric listing only accepts its own rubric token.
func (s *Service) scope(ctx context.Context, req Request, rubrics []types.Rubric, limit int) (*types.Rubric, *types.ParsedFilterState, error) {
	decode := func(scope *types.Rubric, known []types.Rubric) *types.ParsedFilterState {
		fctx := filter.NewContext(scope, known)
		fctx.Limit = limit
		fctx.Search = req.Search
		return filter.Decode(req.Filters, fctx)
	}
	if req.RubricSlug != "" {
		rubric, err := s.metadata.Rubric(ctx, req.RubricSlug)
		if err != nil {
			return nil, nil, err
		}
		return rubric, decode(rubric, []types.Rubric{*rubric}), nil
	}

	scope := types.MergeRubrics(rubrics)
	state := decode(scope, rubrics)
	if len(state.RubricSlugs) == 0 {
		return scope, state, nil
	}
	selected := make([]types.Rubric, 0, len(state.RubricSlugs))
	for _, rubric := range rubrics {
		if state.HasRubric(rubric.Slug) {
			selected = append(selected, rubric)
		}
	}
	scope = types.MergeRubrics(selected)
	return scope, decode(scope, rubrics), nil
}

// GetCatalogue decodes the filters, runs one aggregation and shapes the
// result. Filters naming options that do not exist short-circuit to an
// empty payload without touching the engine.
func (s *Service) GetCatalogue(ctx context.Context, req Request) (*types.CataloguePayload, error) {
	rubrics, err := s.metadata.Rubrics(ctx)
	if err != nil {
		s.logger.Error("rubric metadata unavailable", zap.Error(err))
		catalogueRequests.WithLabelValues(s.config.Collection, "error").Inc()
		return nil, ErrUnavailable
	}
	limit := pagination.ClampLimit(req.Limit, s.config.DefaultLimit, s.config.MaxLimit)
	scope, state, err := s.scope(ctx, req, rubrics, limit)
	if err != nil {
		if errors.Is(err, metadata.ErrRubricNotFound) {
			catalogueRequests.WithLabelValues(s.config.Collection, "not_found").Inc()
			return nil, err
		}
		s.logger.Error("rubric lookup failed", zap.String("rubric", req.RubricSlug), zap.Error(err))
		catalogueRequests.WithLabelValues(s.config.Collection, "error").Inc()
		return nil, ErrUnavailable
	}

	opts := s.castOptions(req)
	if state.NoSearchResults {
		catalogueRequests.WithLabelValues(s.config.Collection, "no_results").Inc()
		return caster.CastEmpty(state, scope, opts), nil
	}

	plan := facet.Plan(state, scope, facet.PlanOptions{Collection: s.config.Collection, Sort: req.Sort})
	raw, err := s.aggregate(ctx, plan)
	if err != nil {
		s.logger.Error("aggregation failed",
			zap.String("rubric", req.RubricSlug),
			zap.Strings("filters", req.Filters),
			zap.Error(err))
		catalogueRequests.WithLabelValues(s.config.Collection, "error").Inc()
		return nil, ErrUnavailable
	}
	catalogueRequests.WithLabelValues(s.config.Collection, "ok").Inc()
	return caster.Cast(raw, state, scope, opts), nil
}

func (s *Service) aggregate(ctx context.Context, plan *facet.AggregationRequest) (*facet.RawFacets, error) {
	ctx, span := tracer.Start(ctx, "aggregate")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", plan.Match.Collection),
		attribute.StringSlice("rubrics", plan.Match.RubricSlugs),
		attribute.Int("filters", len(plan.Filters)),
	)
	start := time.Now()
	raw, err := s.engine.Aggregate(ctx, plan)
	aggregationSeconds.WithLabelValues(s.config.Collection).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("count", raw.CountAllDocs))
	return raw, nil
}
