package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Counter resource and name constants shared with the flush job.
const (
	CounterResourceBlog   = "blog"
	CounterResourceThread = "thread"
	CounterLikes          = "likes"
	CounterViews          = "views"
)

type counterStore interface {
	Increment(ctx context.Context, resource, id, name string) (int, error)
	Decrement(ctx context.Context, resource, id, name string) (int, error)
	Get(ctx context.Context, resource, id, name string) (int, error)
	Seed(ctx context.Context, resource, id, name string, value int) error
	Dirty(ctx context.Context, resource, id string) error
	TakeDirty(ctx context.Context, resource string) ([]string, error)
}

type counterSink interface {
	SetCounters(ctx context.Context, resource, id string, likes, views int) error
}

type counterWriter interface {
	SetCounters(ctx context.Context, id string, likes, views int) error
}

// CounterWriterFunc adapts a function to the counterWriter interface.
type CounterWriterFunc func(ctx context.Context, id string, likes, views int) error

// SetCounters implements counterWriter.
func (f CounterWriterFunc) SetCounters(ctx context.Context, id string, likes, views int) error {
	return f(ctx, id, likes, views)
}

// CounterSinkMux routes flushed counters to the repository owning the
// resource.
type CounterSinkMux struct {
	writers map[string]counterWriter
}

// Register binds a resource name to its upstream writer.
func (m *CounterSinkMux) Register(resource string, writer counterWriter) {
	if m.writers == nil {
		m.writers = make(map[string]counterWriter)
	}
	m.writers[resource] = writer
}

// SetCounters implements counterSink.
func (m *CounterSinkMux) SetCounters(ctx context.Context, resource, id string, likes, views int) error {
	writer, ok := m.writers[resource]
	if !ok {
		return fmt.Errorf("no counter writer for resource %q", resource)
	}
	return writer.SetCounters(ctx, id, likes, views)
}

// CounterService keeps like and view counters in Redis and periodically
// flushes them back upstream. Reads and writes between flushes never hit
// the backend, so concurrent likes do not lose updates.
type CounterService struct {
	store   counterStore
	sink    counterSink
	logger  *zap.Logger
	metrics *MetricsService
}

// NewCounterService constructs the service.
func NewCounterService(store counterStore, sink counterSink, logger *zap.Logger, metrics *MetricsService) *CounterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CounterService{store: store, sink: sink, logger: logger, metrics: metrics}
}

// Seed primes the Redis counters from upstream values. SetNX semantics keep
// any increments that landed before the seed.
func (s *CounterService) Seed(ctx context.Context, resource, id string, likes, views int) {
	if err := s.store.Seed(ctx, resource, id, CounterLikes, likes); err != nil {
		s.logger.Warn("seed likes counter", zap.String("id", id), zap.Error(err))
	}
	if err := s.store.Seed(ctx, resource, id, CounterViews, views); err != nil {
		s.logger.Warn("seed views counter", zap.String("id", id), zap.Error(err))
	}
}

// Like bumps the like counter and returns the new value.
func (s *CounterService) Like(ctx context.Context, resource, id string) (int, error) {
	value, err := s.store.Increment(ctx, resource, id, CounterLikes)
	if err != nil {
		return 0, err
	}
	s.markDirty(ctx, resource, id)
	return value, nil
}

// Unlike lowers the like counter, clamped at zero.
func (s *CounterService) Unlike(ctx context.Context, resource, id string) (int, error) {
	value, err := s.store.Decrement(ctx, resource, id, CounterLikes)
	if err != nil {
		return 0, err
	}
	s.markDirty(ctx, resource, id)
	return value, nil
}

// View bumps the view counter and returns the new value.
func (s *CounterService) View(ctx context.Context, resource, id string) (int, error) {
	value, err := s.store.Increment(ctx, resource, id, CounterViews)
	if err != nil {
		return 0, err
	}
	s.markDirty(ctx, resource, id)
	return value, nil
}

// Current reads both counters. Used to overlay live values on list and
// detail responses.
func (s *CounterService) Current(ctx context.Context, resource, id string) (likes, views int, err error) {
	likes, err = s.store.Get(ctx, resource, id, CounterLikes)
	if err != nil {
		return 0, 0, err
	}
	views, err = s.store.Get(ctx, resource, id, CounterViews)
	if err != nil {
		return 0, 0, err
	}
	return likes, views, nil
}

// Flush writes every dirty counter back upstream for the resource.
func (s *CounterService) Flush(ctx context.Context, resource string) error {
	start := time.Now()
	ids, err := s.store.TakeDirty(ctx, resource)
	if err != nil {
		return err
	}
	for _, id := range ids {
		likes, views, err := s.Current(ctx, resource, id)
		if err != nil {
			s.logger.Error("read counters for flush", zap.String("resource", resource), zap.String("id", id), zap.Error(err))
			s.markDirty(ctx, resource, id)
			continue
		}
		if err := s.sink.SetCounters(ctx, resource, id, likes, views); err != nil {
			s.logger.Error("flush counters upstream", zap.String("resource", resource), zap.String("id", id), zap.Error(err))
			s.markDirty(ctx, resource, id)
		}
	}
	if s.metrics != nil && len(ids) > 0 {
		s.metrics.ObserveCounterFlush(time.Since(start))
	}
	return nil
}

// StartFlusher flushes every interval until the context is cancelled.
func (s *CounterService) StartFlusher(ctx context.Context, interval time.Duration, resources ...string) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, resource := range resources {
					if err := s.Flush(ctx, resource); err != nil {
						s.logger.Error("counter flush", zap.String("resource", resource), zap.Error(err))
					}
				}
			}
		}
	}()
}

func (s *CounterService) markDirty(ctx context.Context, resource, id string) {
	if err := s.store.Dirty(ctx, resource, id); err != nil {
		s.logger.Warn("mark counter dirty", zap.String("resource", resource), zap.String("id", id), zap.Error(err))
	}
}
