package messaging

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-catalogue/pkg/common"
	"github.com/matst80/slask-catalogue/pkg/storage"
	"github.com/matst80/slask-catalogue/pkg/types"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RubricSink replaces the rubric metadata.
type RubricSink func(ctx context.Context, rubrics []types.Rubric) error

// DocumentSink applies a batch of document upserts to one collection.
type DocumentSink func(ctx context.Context, docs []types.Document) error

// Invalidator drops cached aggregations of a collection.
type Invalidator interface {
	Invalidate(ctx context.Context, collection string) (int, error)
}

// Sync applies change messages to the running service. Document changes are
// batched per collection; every applied change invalidates the cache.
type Sync struct {
	logger      *zap.Logger
	rubrics     RubricSink
	invalidator Invalidator
	queues      map[string]*common.QueueHandler[types.Document]
	timeout     time.Duration
}

func NewSync(logger *zap.Logger, rubrics RubricSink, invalidator Invalidator) *Sync {
	return &Sync{
		logger:      logger,
		rubrics:     rubrics,
		invalidator: invalidator,
		queues:      map[string]*common.QueueHandler[types.Document]{},
		timeout:     30 * time.Second,
	}
}

// AddCollection registers the sink for a collection.
func (s *Sync) AddCollection(collection string, sink DocumentSink, batchSize int, interval time.Duration) {
	log := s.logger.With(zap.String("collection", collection))
	s.queues[collection] = common.NewQueueHandler(func(docs []types.Document) {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := sink(ctx, docs); err != nil {
			log.Error("failed to apply documents", zap.Int("count", len(docs)), zap.Error(err))
			return
		}
		log.Info("applied documents", zap.Int("count", len(docs)))
		s.invalidate(ctx, collection)
	}, batchSize, interval)
}

func (s *Sync) invalidate(ctx context.Context, collections ...string) {
	if s.invalidator == nil {
		return
	}
	for _, collection := range collections {
		removed, err := s.invalidator.Invalidate(ctx, collection)
		if err != nil {
			s.logger.Warn("cache invalidation failed", zap.String("collection", collection), zap.Error(err))
			continue
		}
		s.logger.Debug("cache invalidated", zap.String("collection", collection), zap.Int("keys", removed))
	}
}

func (s *Sync) collections() []string {
	result := make([]string, 0, len(s.queues))
	for collection := range s.queues {
		result = append(result, collection)
	}
	return result
}

// HandleRubrics validates a rubric list and replaces the metadata.
func (s *Sync) HandleRubrics(body []byte) error {
	rubrics, err := storage.ParseRubrics(body)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err = s.rubrics(ctx, rubrics); err != nil {
		return errors.Wrap(err, "replace rubrics")
	}
	s.logger.Info("rubrics replaced", zap.Int("count", len(rubrics)))
	s.invalidate(ctx, s.collections()...)
	return nil
}

// HandleDocuments queues the documents of a change for their collection.
func (s *Sync) HandleDocuments(body []byte) error {
	var change DocumentsChange
	if err := sonic.Unmarshal(body, &change); err != nil {
		return errors.Wrap(err, "decode documents change")
	}
	queue, ok := s.queues[change.Collection]
	if !ok {
		return errors.Errorf("unknown collection %q", change.Collection)
	}
	queue.Add(change.Documents...)
	return nil
}

// Listen subscribes both topics on the connection.
func (s *Sync) Listen(conn *amqp.Connection, prefix string) error {
	for topic, handle := range map[ChangeTopic]func([]byte) error{
		RubricsChanged:   s.HandleRubrics,
		DocumentsChanged: s.HandleDocuments,
	} {
		ch, err := conn.Channel()
		if err != nil {
			return errors.Wrap(err, "open channel")
		}
		if err = ListenToTopic(ch, s.logger, prefix, topic, handle); err != nil {
			return errors.Wrapf(err, "listen to %s", topic)
		}
	}
	return nil
}

// Close applies pending document batches.
func (s *Sync) Close(context.Context) error {
	for _, queue := range s.queues {
		queue.Close()
	}
	return nil
}
