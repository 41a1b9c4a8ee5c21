package common

import (
	"context"
	"iter"
	"slices"
	"sync"
	"time"
)

// QueueProcessor processes a batch of items taken from the queue.
type QueueProcessor[V any] func(items []V)

// QueueHandler batches items and processes them on a background goroutine
// until Close is called. Close drains what is left.
type QueueHandler[V any] struct {
	mu        sync.Mutex
	queue     []V
	processor QueueProcessor[V]
	chunkSize int
	interval  time.Duration
	wake      chan struct{}
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewQueueHandler[V any](processor QueueProcessor[V], chunkSize int, interval time.Duration) *QueueHandler[V] {
	if chunkSize <= 0 {
		chunkSize = 100
	}
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &QueueHandler[V]{
		processor: processor,
		chunkSize: chunkSize,
		interval:  interval,
		wake:      make(chan struct{}, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go q.processQueue(ctx)
	return q
}

func (h *QueueHandler[V]) Add(item ...V) {
	h.mu.Lock()
	h.queue = append(h.queue, item...)
	full := len(h.queue) >= h.chunkSize
	h.mu.Unlock()
	if full {
		h.signal()
	}
}

func (h *QueueHandler[V]) AddIter(items iter.Seq[V]) {
	h.Add(slices.Collect(items)...)
}

func (h *QueueHandler[V]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}

// Flush asks the worker to process pending items now.
func (h *QueueHandler[V]) Flush() {
	h.signal()
}

// Close stops the worker after the remaining items are processed.
func (h *QueueHandler[V]) Close() {
	h.cancel()
	<-h.done
}

func (h *QueueHandler[V]) signal() {
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

func (h *QueueHandler[V]) processQueue(ctx context.Context) {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.drain()
			return
		case <-ticker.C:
		case <-h.wake:
		}
		h.drain()
	}
}

func (h *QueueHandler[V]) drain() {
	for {
		h.mu.Lock()
		if len(h.queue) == 0 {
			h.mu.Unlock()
			return
		}
		items := h.queue[:min(h.chunkSize, len(h.queue))]
		h.queue = h.queue[len(items):]
		h.mu.Unlock()

		h.processor(items)
	}
}
