package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// defaultWriteTimeout bounds one queued store write.
const defaultWriteTimeout = 5 * time.Second

// LoadList reads a JSON array stored under key. Missing keys, read failures,
// malformed JSON and documents rejected by schema all yield an empty list.
func LoadList[T any](ctx context.Context, store KVStore, key string, schema *jsonschema.Schema, logger Logger) []T {
	if logger == nil {
		logger = nopLogger{}
	}
	out := []T{}
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		logger.Warn("persisted list unreadable, using empty list", "key", key, "err", err)
		return out
	}
	if !ok {
		return out
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		logger.Debug("persisted list is not valid json, using empty list", "key", key, "err", err)
		return out
	}
	if _, isArray := doc.([]any); !isArray {
		logger.Debug("persisted value is not an array, using empty list", "key", key)
		return out
	}
	if schema != nil {
		if err := schema.Validate(doc); err != nil {
			logger.Debug("persisted list failed schema validation, using empty list", "key", key, "err", err)
			return out
		}
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		logger.Debug("persisted list does not decode, using empty list", "key", key, "err", err)
		return []T{}
	}
	return out
}

// SaveList serializes list and queues the write. Encoding failures are logged
// and dropped.
func SaveList[T any](w *Writer, key string, list []T) {
	if list == nil {
		list = []T{}
	}
	encoded, err := json.Marshal(list)
	if err != nil {
		w.logger.Error("encode list failed", "key", key, "err", err)
		return
	}
	w.Enqueue(key, string(encoded))
}

// Writer mirrors values to a KVStore from a single goroutine. Writes for the
// same key coalesce so the store converges on the latest value; failures are
// logged and never retried.
type Writer struct {
	store   KVStore
	logger  Logger
	timeout time.Duration

	mu      sync.Mutex
	idle    *sync.Cond
	pending map[string]string
	order   []string
	busy    bool
	closed  bool

	wake    chan struct{}
	stopped chan struct{}
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithWriteTimeout sets the per-write context timeout.
func WithWriteTimeout(d time.Duration) WriterOption {
	return func(w *Writer) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// NewWriter starts a writer goroutine over store.
func NewWriter(store KVStore, logger Logger, opts ...WriterOption) *Writer {
	if logger == nil {
		logger = nopLogger{}
	}
	w := &Writer{
		store:   store,
		logger:  logger,
		timeout: defaultWriteTimeout,
		pending: map[string]string{},
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	w.idle = sync.NewCond(&w.mu)
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	go w.loop()
	return w
}

// Enqueue schedules value to be written under key and returns immediately.
func (w *Writer) Enqueue(key, value string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.logger.Warn("write dropped after close", "key", key)
		return
	}
	if _, ok := w.pending[key]; !ok {
		w.order = append(w.order, key)
	}
	w.pending[key] = value
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every queued write has been attempted.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for len(w.pending) > 0 || w.busy {
		w.idle.Wait()
	}
}

// Close drains queued writes and stops the writer goroutine.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWriterClosed
	}
	w.closed = true
	close(w.wake)
	w.mu.Unlock()
	<-w.stopped
	return nil
}

// loop drains the queue each time it is woken.
func (w *Writer) loop() {
	defer close(w.stopped)
	for range w.wake {
		w.drain()
	}
	w.drain()
}

// drain writes pending batches until the queue is empty.
func (w *Writer) drain() {
	for {
		w.mu.Lock()
		if len(w.pending) == 0 {
			w.busy = false
			w.idle.Broadcast()
			w.mu.Unlock()
			return
		}
		order := w.order
		batch := w.pending
		w.order = nil
		w.pending = map[string]string{}
		w.busy = true
		w.mu.Unlock()

		for _, key := range order {
			w.write(key, batch[key])
		}
	}
}

// write performs one store write and logs its failure.
func (w *Writer) write(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.store.Set(ctx, key, value); err != nil {
		w.logger.Error("persist list failed", "key", key, "bytes", len(value), "err", err)
		return
	}
	w.logger.Debug("persisted list", "key", key, "bytes", len(value))
}
