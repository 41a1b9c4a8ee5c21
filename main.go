package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/matst80/slask-catalogue/pkg/cache"
	"github.com/matst80/slask-catalogue/pkg/catalogue"
	"github.com/matst80/slask-catalogue/pkg/common"
	"github.com/matst80/slask-catalogue/pkg/config"
	"github.com/matst80/slask-catalogue/pkg/facet"
	"github.com/matst80/slask-catalogue/pkg/index"
	"github.com/matst80/slask-catalogue/pkg/logging"
	"github.com/matst80/slask-catalogue/pkg/messaging"
	"github.com/matst80/slask-catalogue/pkg/metadata"
	"github.com/matst80/slask-catalogue/pkg/postgres"
	"github.com/matst80/slask-catalogue/pkg/server"
	"github.com/matst80/slask-catalogue/pkg/storage"
	"github.com/matst80/slask-catalogue/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	productsCollection = "products"
	eventsCollection   = "events"
	loadBatchSize      = 1000
)

var configFile = flag.String("config", os.Getenv("CONFIG_FILE"), "path to a yaml config file")

// backend is one aggregation engine per collection plus the sinks change
// messages are applied through.
type backend struct {
	provider metadata.Provider
	rubrics  messaging.RubricSink
	engines  map[string]facet.Engine
	sinks    map[string]messaging.DocumentSink
	hooks    []common.ShutdownHook
	closers  []func() error
}

func memoryBackend(logger *zap.Logger, disk *storage.DiskStorage) (*backend, error) {
	rubrics, err := disk.LoadRubrics()
	if err != nil {
		logger.Warn("starting without rubrics", zap.Error(err))
	}
	provider := metadata.NewStatic(rubrics)
	b := &backend{
		provider: provider,
		rubrics: func(_ context.Context, rubrics []types.Rubric) error {
			provider.Replace(rubrics)
			return disk.SaveRubrics(rubrics)
		},
		engines: map[string]facet.Engine{},
		sinks:   map[string]messaging.DocumentSink{},
	}
	for _, collection := range []string{productsCollection, eventsCollection} {
		idx, err := index.NewIndex(collection)
		if err != nil {
			return nil, err
		}
		batch := make([]types.Document, 0, loadBatchSize)
		count, err := disk.LoadDocuments(collection, func(doc types.Document) error {
			batch = append(batch, doc)
			if len(batch) < loadBatchSize {
				return nil
			}
			err := idx.Upsert(batch...)
			batch = batch[:0]
			return err
		})
		if err == nil {
			err = idx.Upsert(batch...)
		}
		if err != nil {
			return nil, err
		}
		logger.Info("loaded documents", zap.String("collection", collection), zap.Int("count", count))

		b.engines[collection] = idx
		b.closers = append(b.closers, idx.Close)
		b.sinks[collection] = func(_ context.Context, docs []types.Document) error {
			return idx.Upsert(docs...)
		}
		b.hooks = append(b.hooks, func(context.Context) error {
			docs := idx.Documents()
			return disk.SaveDocuments(idx.Collection(), func(yield func(*types.Document) bool) {
				for i := range docs {
					if !yield(&docs[i]) {
						return
					}
				}
			})
		})
	}
	return b, nil
}

func postgresBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	pool, err := postgres.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, err
	}
	store := postgres.NewRubricStore(pool)
	b := &backend{
		provider: store,
		rubrics:  store.SaveRubrics,
		engines:  map[string]facet.Engine{},
		sinks:    map[string]messaging.DocumentSink{},
	}
	for collection, table := range map[string]string{
		productsCollection: cfg.Postgres.ProductsTable,
		eventsCollection:   cfg.Postgres.EventsTable,
	} {
		engine := postgres.NewEngine(pool, table)
		if err = engine.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		b.engines[collection] = engine
		b.sinks[collection] = func(ctx context.Context, docs []types.Document) error {
			return engine.Upsert(ctx, collection, docs)
		}
	}
	b.closers = append(b.closers, func() error {
		pool.Close()
		return nil
	})
	return b, nil
}

func main() {
	flag.Parse()
	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(err)
	}
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	disk := storage.NewDiskStorage(cfg.DataDir)
	var b *backend
	switch cfg.Engine {
	case config.EnginePostgres:
		b, err = postgresBackend(ctx, cfg)
	default:
		b, err = memoryBackend(logger, disk)
	}
	if err != nil {
		logger.Fatal("failed to start engine", zap.String("engine", cfg.Engine), zap.Error(err))
	}

	var hooks []common.ShutdownHook
	var invalidator messaging.Invalidator
	if cfg.Redis.Addr != "" {
		redis := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err = redis.Ping(ctx); err != nil {
			logger.Warn("redis not reachable, cache may miss", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		for collection, engine := range b.engines {
			cached := cache.NewEngine(engine, redis, cfg.Redis.Prefix, cfg.Redis.TTL, logger)
			b.engines[collection] = cached
			invalidator = cached
		}
		hooks = append(hooks, func(context.Context) error { return redis.Close() })
		logger.Info("aggregation cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
	}

	serviceConfig := func(collection string) catalogue.Config {
		return catalogue.Config{
			Collection:      collection,
			DefaultLimit:    cfg.Catalogue.DefaultLimit,
			MaxLimit:        cfg.Catalogue.MaxLimit,
			DefaultLocale:   cfg.Catalogue.DefaultLocale,
			DefaultCurrency: cfg.Catalogue.DefaultCurrency,
			PriceBuckets:    cfg.Catalogue.PriceBuckets,
			PriceName:       cfg.Catalogue.PriceName,
			CategoryName:    cfg.Catalogue.CategoryName,
		}
	}
	srv := server.WebServer{
		Logger:   logger,
		Products: catalogue.NewService(b.provider, b.engines[productsCollection], logger, serviceConfig(productsCollection)),
		Events:   catalogue.NewService(b.provider, b.engines[eventsCollection], logger, serviceConfig(eventsCollection)),
	}

	if cfg.RabbitURL != "" {
		conn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			logger.Fatal("failed to connect to rabbit", zap.Error(err))
		}
		sync := messaging.NewSync(logger, b.rubrics, invalidator)
		for collection, sink := range b.sinks {
			sync.AddCollection(collection, sink, 500, time.Second)
		}
		if err = sync.Listen(conn, cfg.TopicPrefix); err != nil {
			logger.Fatal("failed to listen for changes", zap.Error(err))
		}
		hooks = append(hooks, sync.Close, func(context.Context) error { return conn.Close() })
		logger.Info("listening for changes", zap.String("prefix", cfg.TopicPrefix))
	}
	hooks = append(hooks, b.hooks...)

	timeouts := common.LoadTimeoutConfig(common.DefaultTimeoutConfig())
	httpServer := common.NewServerWithTimeouts(&http.Server{
		Addr:    cfg.ListenAddress,
		Handler: srv.Handle(),
	}, timeouts)
	common.RunServerWithShutdown(logger, httpServer, "slask-catalogue", timeouts.Shutdown, timeouts.Hook, hooks...)
	for _, closeFn := range b.closers {
		if err := closeFn(); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}
}
