package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memCounterStore struct {
	values map[string]int
	dirty  map[string]map[string]struct{}
}

func newMemCounterStore() *memCounterStore {
	return &memCounterStore{
		values: make(map[string]int),
		dirty:  make(map[string]map[string]struct{}),
	}
}

func (m *memCounterStore) key(resource, id, name string) string {
	return resource + ":" + id + ":" + name
}

func (m *memCounterStore) Increment(ctx context.Context, resource, id, name string) (int, error) {
	m.values[m.key(resource, id, name)]++
	return m.values[m.key(resource, id, name)], nil
}

func (m *memCounterStore) Decrement(ctx context.Context, resource, id, name string) (int, error) {
	k := m.key(resource, id, name)
	if m.values[k] > 0 {
		m.values[k]--
	}
	return m.values[k], nil
}

func (m *memCounterStore) Get(ctx context.Context, resource, id, name string) (int, error) {
	return m.values[m.key(resource, id, name)], nil
}

func (m *memCounterStore) Seed(ctx context.Context, resource, id, name string, value int) error {
	k := m.key(resource, id, name)
	if _, ok := m.values[k]; !ok {
		m.values[k] = value
	}
	return nil
}

func (m *memCounterStore) Dirty(ctx context.Context, resource, id string) error {
	if m.dirty[resource] == nil {
		m.dirty[resource] = make(map[string]struct{})
	}
	m.dirty[resource][id] = struct{}{}
	return nil
}

func (m *memCounterStore) TakeDirty(ctx context.Context, resource string) ([]string, error) {
	var ids []string
	for id := range m.dirty[resource] {
		ids = append(ids, id)
	}
	delete(m.dirty, resource)
	return ids, nil
}

type recordedWrite struct {
	id    string
	likes int
	views int
}

func TestCounterServiceLikeUnlikeRoundTrip(t *testing.T) {
	store := newMemCounterStore()
	svc := NewCounterService(store, &CounterSinkMux{}, zap.NewNop(), nil)
	ctx := context.Background()

	likes, err := svc.Like(ctx, CounterResourceBlog, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	likes, err = svc.Unlike(ctx, CounterResourceBlog, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, likes)
}

func TestCounterServiceUnlikeNeverNegative(t *testing.T) {
	store := newMemCounterStore()
	svc := NewCounterService(store, &CounterSinkMux{}, zap.NewNop(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		likes, err := svc.Unlike(ctx, CounterResourceBlog, "p1")
		require.NoError(t, err)
		assert.Equal(t, 0, likes)
	}
}

func TestCounterServiceSeedKeepsEarlierIncrements(t *testing.T) {
	store := newMemCounterStore()
	svc := NewCounterService(store, &CounterSinkMux{}, zap.NewNop(), nil)
	ctx := context.Background()

	_, err := svc.Like(ctx, CounterResourceBlog, "p1")
	require.NoError(t, err)

	svc.Seed(ctx, CounterResourceBlog, "p1", 10, 5)

	likes, views, err := svc.Current(ctx, CounterResourceBlog, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, likes, "seed must not overwrite the earlier like")
	assert.Equal(t, 5, views)
}

func TestCounterServiceFlushRoutesToRegisteredWriter(t *testing.T) {
	store := newMemCounterStore()
	var writes []recordedWrite
	sink := &CounterSinkMux{}
	sink.Register(CounterResourceThread, CounterWriterFunc(func(ctx context.Context, id string, likes, views int) error {
		writes = append(writes, recordedWrite{id: id, likes: likes, views: views})
		return nil
	}))
	svc := NewCounterService(store, sink, zap.NewNop(), nil)
	ctx := context.Background()

	_, err := svc.Like(ctx, CounterResourceThread, "t1")
	require.NoError(t, err)
	_, err = svc.View(ctx, CounterResourceThread, "t1")
	require.NoError(t, err)

	require.NoError(t, svc.Flush(ctx, CounterResourceThread))
	require.Len(t, writes, 1)
	assert.Equal(t, recordedWrite{id: "t1", likes: 1, views: 1}, writes[0])

	// A second flush has nothing dirty to write.
	require.NoError(t, svc.Flush(ctx, CounterResourceThread))
	assert.Len(t, writes, 1)
}
